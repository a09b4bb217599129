// Package store はユーザーと投稿の永続化を提供します。
// DSN が postgres:// で始まる場合は pgx 経由で PostgreSQL に、それ以外は SQLite に接続します。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/blog-forge/internal/models"
	"github.com/yourusername/blog-forge/internal/store/migrations"
)

var (
	// ErrNotFound は対象の行が存在しない場合に返されます。
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate は一意制約に違反した場合に返されます。
	ErrDuplicate = errors.New("store: duplicate key")
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Store はデータベース接続と各リポジトリをまとめたものです。
type Store struct {
	db      *gorm.DB
	dialect string

	Users *UserStore
	Posts *PostStore
}

// IsPostgresDSN は DSN が PostgreSQL を指しているかを返します。
func IsPostgresDSN(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// Open はデータベースへ接続し、疎通を確認します。スキーマの適用は Migrate で行います。
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store: empty DSN")
	}
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var (
		gdb     *gorm.DB
		dialect string
		err     error
	)
	if IsPostgresDSN(dsn) {
		dialect = dialectPostgres
		sqlDB, openErr := sql.Open("pgx", dsn)
		if openErr != nil {
			return nil, fmt.Errorf("open postgres: %w", openErr)
		}
		gdb, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
	} else {
		dialect = dialectSQLite
		gdb, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if dialect == dialectSQLite {
		// SQLite は書き込みを直列化しないとロックエラーになる
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return newStore(gdb, dialect), nil
}

func newStore(db *gorm.DB, dialect string) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		Users:   &UserStore{db: db},
		Posts:   &PostStore{db: db},
	}
}

// Migrate はスキーマを最新にします。PostgreSQL は埋め込み SQL を goose で適用し、
// SQLite はモデル定義から AutoMigrate します。
func (s *Store) Migrate(ctx context.Context) error {
	if s.dialect == dialectPostgres {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		goose.SetBaseFS(migrations.Migrations)
		if err := goose.SetDialect("pgx"); err != nil {
			return err
		}
		if err := gooseUpContext(ctx, sqlDB, "."); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		return nil
	}
	return s.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Post{})
}

// Ping はデータベースの疎通を確認します。
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Dialect は接続先の種類（"postgres" または "sqlite"）を返します。
func (s *Store) Dialect() string { return s.dialect }

// DB は内部の gorm ハンドルを返します。storetest から行を直接確認するために使います。
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate はドライバー固有のエラーをパッケージのエラーへ変換します。
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

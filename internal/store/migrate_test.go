package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newPostgresMock(t *testing.T) *Store {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open error: %v", err)
	}
	return newStore(gdb, dialectPostgres)
}

func TestMigrate_PostgresRunsGoose(t *testing.T) {
	st := newPostgresMock(t)

	called := false
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if !called {
		t.Fatal("expected goose to run")
	}
}

func TestMigrate_PostgresPropagatesError(t *testing.T) {
	st := newPostgresMock(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	if err := st.Migrate(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestTranslate(t *testing.T) {
	if !errors.Is(translate(gorm.ErrRecordNotFound), ErrNotFound) {
		t.Fatal("record not found should map to ErrNotFound")
	}
	if !errors.Is(translate(gorm.ErrDuplicatedKey), ErrDuplicate) {
		t.Fatal("duplicated key should map to ErrDuplicate")
	}
	if !errors.Is(translate(errors.New("UNIQUE constraint failed: users.username")), ErrDuplicate) {
		t.Fatal("sqlite unique message should map to ErrDuplicate")
	}
	if translate(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	plain := errors.New("other")
	if translate(plain) != plain {
		t.Fatal("unknown errors pass through")
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yourusername/blog-forge/internal/config"
	"github.com/yourusername/blog-forge/internal/httpserver"
	"github.com/yourusername/blog-forge/internal/logutil"
	"github.com/yourusername/blog-forge/internal/password"
	"github.com/yourusername/blog-forge/internal/server"
	"github.com/yourusername/blog-forge/internal/store"
	"github.com/yourusername/blog-forge/internal/token"
)

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "Address to listen on (defaults to :$PORT)",
			EnvVars: []string{"BIND_ADDR"},
		},
		&cli.BoolFlag{
			Name:  "skip-migrate",
			Usage: "Do not apply the database schema on startup",
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the API server",
		Flags:  serveFlags(),
		Action: runServe,
	}
}

func runServe(appCtx *cli.Context) error {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logutil.New(cfg.LogLevel, cfg.GinMode)
	ctx := logutil.WithLogger(appCtx.Context, logger)

	st, err := openStore(ctx, cfg, !appCtx.Bool("skip-migrate"))
	if err != nil {
		return err
	}
	defer st.Close()

	issuer, err := token.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}

	attempts, closeAttempts, err := setupAttempts(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAttempts()

	router := server.New(server.Deps{
		Config:   cfg,
		Store:    st,
		Issuer:   issuer,
		Hasher:   password.NewHasher(password.DefaultCost),
		Logger:   logger,
		Attempts: attempts,
	})

	bind := appCtx.String("bind")
	if bind == "" {
		bind = ":" + cfg.Port
	}
	logger.Info().
		Str("bind", bind).
		Str("mode", cfg.GinMode).
		Str("database", st.Dialect()).
		Bool("loginLockout", attempts != nil).
		Msg("Starting API server")
	return httpserver.Serve(ctx, bind, router)
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool) (*store.Store, error) {
	log := logutil.GetOrDefault(ctx)
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if migrate {
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info().Str("database", st.Dialect()).Msg("Schema is up to date")
	}
	return st, nil
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the database schema and exit",
		Action: func(appCtx *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logutil.New(cfg.LogLevel, cfg.GinMode)
			ctx := logutil.WithLogger(appCtx.Context, logger)
			st, err := openStore(ctx, cfg, true)
			if err != nil {
				return err
			}
			return st.Close()
		},
	}
}


package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/sumire/issuetracker/internal/config"
	"github.com/sumire/issuetracker/internal/handler"
	"github.com/sumire/issuetracker/internal/repository"
	"github.com/sumire/issuetracker/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "issuetracker",
		Short:         "Issue tracker REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_FILE"),
		"path to a YAML config file (env: CONFIG_FILE)")

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			db, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			slog.Info("schema applied", "driver", cfg.Database.Driver)
			return nil
		},
	})

	return root
}

func setup(configPath string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	level, _ := cfg.Log.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
	return cfg, nil
}

func connect(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.URL, repository.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("database connected", "driver", cfg.Database.Driver)
	return db, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	issueSvc := service.NewIssueService(
		repository.NewIssueRepository(db),
		repository.NewProjectRepository(db),
	)
	issueHandler := handler.NewIssueHandler(issueSvc)

	e := handler.NewRouter(issueHandler, db, handler.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

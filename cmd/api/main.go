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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/kyat/internal/config"
	"github.com/MrJamesThe3rd/kyat/internal/database"
	"github.com/MrJamesThe3rd/kyat/internal/events"
	"github.com/MrJamesThe3rd/kyat/internal/export"
	kyatHttp "github.com/MrJamesThe3rd/kyat/internal/http"
	authHandler "github.com/MrJamesThe3rd/kyat/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/kyat/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/kyat/internal/http/importer"
	ledgerHandler "github.com/MrJamesThe3rd/kyat/internal/http/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/importer"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/kyat/internal/ledger/store"
	"github.com/MrJamesThe3rd/kyat/internal/session"
	"github.com/MrJamesThe3rd/kyat/internal/user"
	userStore "github.com/MrJamesThe3rd/kyat/internal/user/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.LogLevel})))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	dialect, err := cfg.Dialect()
	if err != nil {
		return err
	}

	dsn := cfg.ConnectionString()

	if err := database.Migrate(dialect, dsn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	db, err := database.New(dialect, dsn)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ledgerOpts := []ledger.Option{ledger.WithLocation(loc)}

	if cfg.AMQP.URL != "" {
		publisher, err := events.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return fmt.Errorf("connect to broker: %w", err)
		}
		defer publisher.Close()

		ledgerOpts = append(ledgerOpts, ledger.WithNotifier(publisher))
		slog.Info("month closure notifications enabled", "exchange", cfg.AMQP.Exchange)
	}

	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Secure, session.WithLocation(loc))

	var (
		userService   = user.NewService(userStore.New(db, dialect))
		ledgerService = ledger.NewService(ledgerStore.New(db, dialect), ledgerOpts...)
		importService = importer.NewService(ledgerService)
		exportService = export.NewService(ledgerService, export.Options{
			PDFEnabled: cfg.Export.PDFEnabled,
			FontPath:   cfg.Export.FontPath,
			FontDirs:   cfg.Export.FontDirs,
		})
	)

	var (
		authH   = authHandler.NewHandler(userService, sessions)
		ledgerH = ledgerHandler.NewHandler(ledgerService, sessions)
		exportH = exportHandler.NewHandler(exportService)
		importH = importHandler.NewHandler(importService, sessions)
	)

	router := kyatHttp.New(sessions, authH, ledgerH, exportH, importH, kyatHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "db", dialect)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

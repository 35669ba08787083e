package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shelfmark/db"
	"shelfmark/internal/auth"
	"shelfmark/internal/bookshelf"
	"shelfmark/internal/config"
	"shelfmark/internal/logging"
	"shelfmark/internal/web"
	"shelfmark/middleware"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("shelfmark: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	logger, flush := logging.Setup(cfg)
	defer flush()

	var sqliteDB, postgresDB *sql.DB
	switch cfg.StorageDriver {
	case config.SQLite:
		logger.Info("using sqlite storage", zap.String("path", cfg.SQLitePath))
		sqliteDB, err = db.ConnectToSQLite(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("error connecting to sqlite: %w", err)
		}
		defer sqliteDB.Close()
		if err := db.InitializeSchema(sqliteDB); err != nil {
			return fmt.Errorf("error initializing sqlite schema: %w", err)
		}
	case config.Postgres:
		logger.Info("using postgres storage")
		postgresDB, err = db.ConnectToPostgres(cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("error connecting to postgres: %w", err)
		}
		defer postgresDB.Close()
		if err := db.InitializePostgresSchema(postgresDB); err != nil {
			return fmt.Errorf("error initializing postgres schema: %w", err)
		}
	}

	repoFactory := db.NewRepositoryFactory(sqliteDB, postgresDB)
	userRepo := repoFactory.NewUserRepository()
	bookRepo := repoFactory.NewBookRepository()

	authService := auth.NewService(userRepo)
	sessionManager := auth.NewSessionManager(cfg.SessionSecret, cfg.IsProduction, userRepo)
	bookService := bookshelf.NewService(bookRepo, logger)

	webHandler, err := web.NewWebHandler(authService, bookService, sessionManager, logger)
	if err != nil {
		return fmt.Errorf("error building web handler: %w", err)
	}

	mw := middleware.NewMiddleware(sessionManager, logger)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: webHandler.SetupRoutes(mw),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

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

	"golang.org/x/sync/errgroup"

	accounthandler "matchport/internal/account/handler"
	accountservice "matchport/internal/account/service"
	accountstore "matchport/internal/account/store"
	adminhandler "matchport/internal/admin/handler"
	"matchport/internal/board"
	boardhandler "matchport/internal/board/handler"
	"matchport/internal/catalog"
	"matchport/internal/history"
	httpapi "matchport/internal/http"
	"matchport/internal/jwttoken"
	"matchport/internal/notify"
	notifyhandler "matchport/internal/notify/handler"
	"matchport/internal/platform/config"
	"matchport/internal/platform/httpserver"
	"matchport/internal/platform/logger"
	"matchport/internal/platform/metrics"
	"matchport/internal/platform/postgres"
	"matchport/internal/platform/redis"
	"matchport/internal/profile"
	profilehandler "matchport/internal/profile/handler"
	"matchport/internal/request"
	requesthandler "matchport/internal/request/handler"
	requestservice "matchport/internal/request/service"
	"matchport/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

// main wires stores, services and handlers, then supervises the HTTP server
// and the email worker until a shutdown signal arrives. Business logic lives
// in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Store selection: DATABASE_DSN switches the whole persistence layer.
	// The in-memory stores back local development and keep main runnable
	// without infrastructure.
	var (
		accounts  accountstore.Store
		profiles  profile.Store
		catalogs  catalog.Store
		requests  request.Store
		histories history.Store
		notes     notify.Store
		runner    tx.Runner
		health    func(ctx context.Context) error
	)

	if cfg.DatabaseDSN != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		accounts = accountstore.NewPostgres(db)
		profiles = profile.NewPostgresStore(db)
		catalogs = catalog.NewPostgresStore(db)
		requests = request.NewPostgresStore(db)
		histories = history.NewPostgresStore(db)
		notes = notify.NewPostgresStore(db)
		runner = tx.NewSQLRunner(db)
		health = db.PingContext
	} else {
		log.Warn("DATABASE_DSN not set, using in-memory stores")
		accounts = accountstore.NewInMemory()
		profiles = profile.NewInMemoryStore()
		catalogs = catalog.NewInMemoryStore()
		requests = request.NewInMemoryStore()
		histories = history.NewInMemoryStore()
		notes = notify.NewInMemoryStore()
		runner = tx.NewMemoryRunner()
	}

	if err := catalog.Seed(ctx, catalogs); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	var boardCache board.Cache
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		boardCache = board.NewRedisCache(redisClient.Client)
		log.Info("board page cache enabled")
	}

	files, err := profile.NewLocalFileStore(cfg.UploadDir, "/uploads")
	if err != nil {
		return fmt.Errorf("init upload store: %w", err)
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	dispatcher := notify.NewDispatcher(notes, log, m)
	ledger := history.NewLedger(histories)

	accountSvc := accountservice.New(accounts, tokens, dispatcher, runner, log, m)
	profileSvc := profile.NewService(profiles, accounts, files, runner, log)
	requestSvc := requestservice.New(requests, accounts, profiles, catalogs, ledger, dispatcher, runner, log, m)
	boardSvc := board.New(requests, profiles, ledger, boardCache, log)
	inboxSvc := notify.NewService(notes)

	router := httpapi.NewRouter(httpapi.Deps{
		Accounts:      accounthandler.New(accountSvc, log),
		Requests:      requesthandler.New(requestSvc, log),
		Board:         boardhandler.New(boardSvc, catalogs, log),
		Profiles:      profilehandler.New(profileSvc, log),
		Notifications: notifyhandler.New(inboxSvc, log),
		Admin:         adminhandler.New(accountSvc, requestSvc, boardSvc, log),
		Auth:          tokens,
		Logger:        log,
		Health:        health,
		UploadDir:     cfg.UploadDir,
	})

	srv := httpserver.New(cfg.Addr, router)
	worker := notify.NewWorker(dispatcher, notify.NewConsoleTransport(log), log, m)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting matchport", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("email worker: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

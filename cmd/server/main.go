package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/movequote/internal/calculator"
	"github.com/Simplici0/movequote/internal/config"
	"github.com/Simplici0/movequote/internal/db"
	"github.com/Simplici0/movequote/internal/geo"
	"github.com/Simplici0/movequote/internal/logger"
	"github.com/Simplici0/movequote/internal/migrations"
	"github.com/Simplici0/movequote/internal/notify"
	"github.com/Simplici0/movequote/internal/pricing"
	"github.com/Simplici0/movequote/internal/seed"
	"github.com/Simplici0/movequote/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger depends on config, so this is the one place we bail out bare.
		panic(err)
	}

	log := logger.New(cfg.LogFilePath, !cfg.IsDev())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrations.Up(database, cfg.MigrationsDir, log); err != nil {
		return err
	}

	stats, err := seed.Run(database, seed.Config{Rates: pricing.DefaultRates()})
	if err != nil {
		return err
	}
	log.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	sessions, closeSessions, err := openSessionStore(ctx, cfg, database, log)
	if err != nil {
		return err
	}
	defer closeSessions()

	notifier, closeNotifier := buildNotifier(ctx, cfg, log)
	defer closeNotifier()

	srv := &server{
		db:             database,
		engine:         calculator.New(pricing.DefaultTable()),
		sessions:       sessions,
		geo:            buildGeo(cfg, log),
		dispatcher:     notify.NewDispatcher(notify.NewOutbox(database), notifier, logger.Module(log, "notify")),
		defaultMileage: cfg.DefaultMileage,
		log:            logger.Module(log, "http"),
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openSessionStore(ctx context.Context, cfg config.Config, database *sql.DB, log *zap.Logger) (session.Store, func(), error) {
	noop := func() {}
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		return session.NewMemoryStore(cfg.SessionTTL), noop, nil
	case config.SessionBackendRedis:
		rdb, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		// Shared between instances: never behind a process-local cache.
		return session.NewRedisStore(rdb, cfg.SessionTTL), func() { _ = rdb.Close() }, nil
	default:
		sqlStore := session.NewSQLStore(database, cfg.SessionTTL)
		stop := startPurger(ctx, sqlStore, time.Hour, logger.Module(log, "sessions"))
		return session.NewCached(sqlStore, time.Minute), stop, nil
	}
}

// startPurger deletes expired sqlite sessions every interval until stopped.
func startPurger(ctx context.Context, store *session.SQLStore, interval time.Duration, log *zap.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := store.PurgeExpired(ctx)
				if err != nil {
					log.Warn("purge expired sessions", zap.Error(err))
					continue
				}
				if n > 0 {
					log.Info("purged expired sessions", zap.Int64("count", n))
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func buildGeo(cfg config.Config, log *zap.Logger) geo.Provider {
	if cfg.GeoapifyAPIKey == "" {
		log.Warn("GEOAPIFY_API_KEY is not set, using fixed mileage", zap.Float64("miles", cfg.DefaultMileage))
		return geo.Fixed{Miles: cfg.DefaultMileage}
	}
	return geo.NewCached(geo.NewGeoapify(cfg.GeoapifyAPIKey), 24*time.Hour)
}

func buildNotifier(ctx context.Context, cfg config.Config, log *zap.Logger) (notify.Notifier, func()) {
	notifiers := notify.Multi{notify.NewLog(logger.Module(log, "callbacks"))}
	closer := func() {}

	if cfg.NatsURL != "" {
		pub, err := notify.NewPublisher(ctx, cfg.NatsURL, logger.Module(log, "nats"))
		if err != nil {
			log.Warn("failed to connect to NATS publisher", zap.Error(err))
		} else {
			notifiers = append(notifiers, pub)
			closer = pub.Close
		}
	}

	if cfg.SMTPHost != "" && cfg.CallbackEmail != "" {
		notifiers = append(notifiers, notify.NewMailer(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSender, cfg.CallbackEmail,
		))
	} else {
		log.Warn("SMTP_HOST or CALLBACK_EMAIL is not set, callback emails disabled")
	}

	return notifiers, closer
}

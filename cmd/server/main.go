package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"touragency/internal/api"
	"touragency/internal/config"
	"touragency/internal/database"
	"touragency/internal/domain"
	"touragency/internal/events"
	"touragency/internal/logging"
	"touragency/internal/metrics"
	"touragency/internal/models"
	"touragency/internal/repository"
	"touragency/internal/service"
	"touragency/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultConfigPath = "configs/config.yaml"
	shutdownTimeout   = 10 * time.Second
)

// app holds everything the server owns for its lifetime.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	logSink io.Closer
	db      *database.DB
	redis   *redis.Client
	bus     *events.EventBus
	http    *api.HTTPServer
}

func main() {
	a, err := newApp(envOr("CONFIG_PATH", defaultConfigPath))
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx); err != nil {
		a.log.Error().Err(err).Msg("server exited with error")
		a.close()
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	base, sink, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     base.With().Str("component", "main").Logger(),
		logSink: sink,
		bus:     events.NewEventBus(),
	}
	a.bus.OnError(func(event *events.Event, err error) {
		a.log.Warn().Err(err).Str("event", event.Type).Msg("event handler failed")
	})

	if a.db, err = a.openCatalog(); err != nil {
		a.close()
		return nil, err
	}
	a.redis = a.connectRedis()

	activity := service.NewActivityLogger(a.db, a.bus, a.named("activity"))
	services := api.Services{
		Auth:     service.NewAuthService(a.db, activity, a.bus, cfg.Security.BcryptCost, a.named("auth")),
		Catalog:  service.NewCatalogService(a.db),
		Bookings: service.NewBookingService(a.db, activity, a.bus, a.named("bookings")),
	}
	a.http, err = api.NewHTTPServer(cfg, services, session.NewManager(cfg.Session), a.attemptLimiter(), a.db, a.named("http"))
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create http server: %w", err)
	}
	return a, nil
}

func (a *app) named(component string) *zerolog.Logger {
	l := a.log.With().Str("component", component).Logger()
	return &l
}

// openCatalog opens the SQLite store and seeds tours into an empty catalog.
func (a *app) openCatalog() (*database.DB, error) {
	db, err := database.NewDB(a.cfg.Database.Path, a.named("database"))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.cfg.Database.Path, err)
	}

	tours, err := seedSource(envOr("TOURS_PATH", a.cfg.Database.ToursFile), a.log)
	if err == nil {
		_, err = db.SeedTours(context.Background(), tours)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("seed tours: %w", err)
	}
	return db, nil
}

// seedSource reads the tours file, or falls back to the built-in catalog when
// no file is configured or present.
func seedSource(path string, logger zerolog.Logger) ([]models.Tour, error) {
	if path == "" {
		return database.DefaultTours(), nil
	}
	tours, err := database.LoadTours(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info().Str("tours_path", path).Msg("tours file not found, using built-in tours")
		return database.DefaultTours(), nil
	}
	return tours, err
}

// connectRedis returns nil when redis is unconfigured or unreachable.
func (a *app) connectRedis() *redis.Client {
	if a.cfg.Redis.Address == "" {
		return nil
	}
	client := repository.NewRedisClient(a.cfg.Redis)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(ctx, client); err != nil {
		a.log.Warn().Err(err).Str("addr", a.cfg.Redis.Address).Msg("redis unavailable, attempts tracked in memory")
		_ = client.Close()
		return nil
	}
	a.log.Info().Str("addr", a.cfg.Redis.Address).Msg("redis connected")
	return client
}

func (a *app) attemptLimiter() domain.AttemptLimiter {
	local := repository.NewMemoryAttemptLimiter()
	if a.redis == nil {
		return local
	}
	return repository.NewFailoverAttemptLimiter(repository.NewRedisAttemptLimiter(a.redis), local, a.named("attempts"))
}

// run serves HTTP until ctx is cancelled or the listener fails, then drains.
func (a *app) run(ctx context.Context) error {
	if a.cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metrics.Subscribe(a.bus)
		go func() {
			if err := metrics.Serve(ctx, a.cfg.Monitoring.PrometheusPort, a.log); err != nil {
				a.log.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	go database.NewBackupService(a.cfg.Database.Path, a.cfg.Backup, &a.log).Start(ctx)

	served := make(chan error, 1)
	go func() { served <- a.http.Start() }()
	a.log.Info().Int("http_port", a.cfg.HTTP.Port).Str("env", a.cfg.App.Environment).Msg("tour agency started")

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	case runErr = <-served:
		if runErr == nil {
			return nil
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.http.Shutdown(drainCtx); err != nil {
		a.log.Error().Err(err).Msg("http shutdown")
	}
	a.log.Info().Msg("tour agency stopped")
	return runErr
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
	if a.logSink != nil {
		_ = a.logSink.Close()
		a.logSink = nil
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/wrapped-story/internal/config"
	"github.com/iliyamo/wrapped-story/internal/database"
	"github.com/iliyamo/wrapped-story/internal/handler"
	"github.com/iliyamo/wrapped-story/internal/middleware"
	"github.com/iliyamo/wrapped-story/internal/queue"
	"github.com/iliyamo/wrapped-story/internal/repository"
	"github.com/iliyamo/wrapped-story/internal/router"
	"github.com/iliyamo/wrapped-story/internal/service"
	"github.com/iliyamo/wrapped-story/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("config")
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hosts, closeHosts := newHostProvider(ctx, cfg, logger)
	defer closeHosts()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		logger.Info().Str("addr", cfg.Redis.Address()).Msg("redis connected")
	} else if cfg.Redis.Enabled {
		logger.Warn().Str("addr", cfg.Redis.Address()).Msg("redis unavailable; sessions stay in memory, cache and rate limit off")
	}

	opts := session.Options{
		SlideDuration: cfg.Story.SlideDuration,
		TickInterval:  cfg.Story.TickInterval,
		IdleTTL:       cfg.Story.SessionIdleTTL,
		Events:        newEventSink(cfg, logger),
		Logger:        logger,
	}
	if rdb != nil {
		opts.Store = repository.NewRedisSessionStore(rdb, cfg.Story.SessionPrefix, cfg.Story.SessionStoreTTL)
	}
	sessions := session.NewManager(hosts, opts)
	go sessions.Run(ctx)

	if cfg.Events.ConsumerEnabled {
		consumer := &queue.Consumer{URL: cfg.Events.RabbitMQURL, LogDir: cfg.Events.LogDir, Logger: logger}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("story consumer stopped")
			}
		}()
	}

	e := newServer(cfg, logger, rdb, hosts, sessions)
	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Str("hosts", cfg.HostSource).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	sessions.Close()
}

// newLogger builds the root logger.  Development runs get the console
// writer; production logs JSON.
func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsProd() {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Caller().Logger()
}

// newHostProvider opens the configured host directory.  A MySQL failure
// falls back to the sample hosts so the service still starts.
func newHostProvider(ctx context.Context, cfg config.Config, logger zerolog.Logger) (repository.HostProvider, func()) {
	static := repository.NewSampleHostRepo()
	if cfg.HostSource != config.HostSourceMySQL {
		return static, func() {}
	}

	log := logger.With().Str("component", "hosts").Logger()
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("mysql unavailable; using sample hosts")
		return static, func() {}
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		log.Error().Err(err).Msg("schema setup failed; using sample hosts")
		_ = db.Close()
		return static, func() {}
	}
	repo := repository.NewHostRepo(db)
	if cfg.DB.Seed {
		seeded, err := repository.Seed(ctx, repo)
		if err != nil {
			log.Warn().Err(err).Msg("seeding sample hosts failed")
		} else if seeded {
			log.Info().Msg("seeded sample hosts")
		}
	}
	return repo, func() { _ = db.Close() }
}

func newEventSink(cfg config.Config, logger zerolog.Logger) session.EventSink {
	if cfg.Events.Enabled {
		return service.NewStoryPublisher(cfg.Events.RabbitMQURL, logger)
	}
	return service.LogPublisher{Logger: logger.With().Str("component", "story-events").Logger()}
}

func newServer(cfg config.Config, logger zerolog.Logger, rdb *redis.Client, hosts repository.HostProvider, sessions *session.Manager) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(requestLogger(logger))
	e.Use(middleware.Identify(), middleware.LegacyView())

	summary := repository.StaticSummary{Platform: repository.SamplePlatformStats()}
	if p, err := hosts.Platform(context.Background()); err == nil {
		summary.Platform = *p
	}

	cache := middleware.NewRedisCache(cfg.Cache, rdb)
	limit := middleware.NewTokenBucket(cfg.RateLimit, rdb, logger)

	router.RegisterRoutes(e)
	router.RegisterStory(e, handler.NewStoryHandler(hosts, summary, logger), cache)
	router.RegisterAPI(e, handler.NewHostHandler(hosts, logger), cache, limit)
	router.RegisterSessions(e, handler.NewSessionHandler(sessions, logger), handler.NewWSHandler(sessions, logger), limit)
	return e
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	log := logger.With().Str("component", "http").Logger()
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

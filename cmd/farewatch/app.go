package main

import (
	"fmt"

	"github.com/farewatch/farewatch/internal/adapter/provider/amadeus"
	"github.com/farewatch/farewatch/internal/adapter/telegram"
	"github.com/farewatch/farewatch/internal/cache"
	"github.com/farewatch/farewatch/internal/config"
	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/infrastructure/logger"
	"github.com/farewatch/farewatch/internal/infrastructure/ratelimit"
	"github.com/farewatch/farewatch/internal/usecase"
)

// app holds the wired application components shared by the serve and
// search commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	plan     domain.SearchPlan
	watcher  usecase.FlightWatcher
	notifier telegram.Notifier
	cache    cache.OfferCache
}

// buildApp loads configuration and wires the full component graph.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "farewatch",
	})

	plan, err := config.LoadPlan(cfg.Watch.PlanPath)
	if err != nil {
		return nil, fmt.Errorf("load search plan: %w", err)
	}

	var store cache.OfferCache = cache.NewNoOpCache()
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			// The cache is an optimization; a dead Redis must not keep
			// the service down.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, caching disabled")
		} else {
			store = redisCache
		}
	}

	client := amadeus.NewClient(amadeus.Config{
		BaseURL:      cfg.Amadeus.BaseURL,
		ClientID:     cfg.Amadeus.ClientID,
		ClientSecret: cfg.Amadeus.ClientSecret,
		Pacer:        ratelimit.NewPacer(cfg.Watch.PaceInterval),
		Cache:        store,
		Logger:       log.WithComponent("amadeus"),
	})

	watcher := usecase.NewWatcher(client, &usecase.Config{
		Workers:     cfg.Watch.Workers,
		QueryBudget: cfg.Watch.QueryBudget,
		Logger:      log.WithComponent("watcher"),
	})

	var notifier telegram.Notifier = telegram.NopNotifier{}
	if cfg.Telegram.Token != "" {
		notifier = telegram.NewBotNotifier(telegram.Config{
			BaseURL: cfg.Telegram.BaseURL,
			Token:   cfg.Telegram.Token,
			Logger:  log.WithComponent("telegram"),
		})
	} else {
		log.Warn().Msg("No Telegram bot token configured, notifications disabled")
	}

	return &app{
		cfg:      cfg,
		log:      log,
		plan:     plan,
		watcher:  watcher,
		notifier: notifier,
		cache:    store,
	}, nil
}

// close releases held resources.
func (a *app) close() {
	if err := a.cache.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close cache")
	}
}

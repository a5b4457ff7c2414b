package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"github.com/ssbor/jobmap/internal/clients/nominatim"
	"github.com/ssbor/jobmap/internal/config"
	"github.com/ssbor/jobmap/internal/events"
	"github.com/ssbor/jobmap/internal/feed"
	"github.com/ssbor/jobmap/internal/gazetteer"
	"github.com/ssbor/jobmap/internal/geocache"
	"github.com/ssbor/jobmap/internal/logger"
	"github.com/ssbor/jobmap/internal/metrics"
	"github.com/ssbor/jobmap/internal/server"
	"github.com/ssbor/jobmap/internal/services"
)

func openCacheStore(cfg config.CacheConfig) (geocache.Store, func()) {

	switch cfg.Backend {
	case config.BackendSqlite:
		store, err := geocache.NewSqliteStore(cfg.ConnectionString)
		if err != nil {
			log.Fatalf("can't open sqlite cache: %v", err)
		}
		return store, func() { _ = store.Close() }
	case config.BackendRedis:
		store, err := geocache.NewRedisStore(cfg.RedisURL, "jobmap:geocache")
		if err != nil {
			log.Fatalf("can't open redis cache: %v", err)
		}
		return store, func() { _ = store.Close() }
	default:
		return geocache.NewFileStore(cfg.Path), func() {}
	}
}

func buildFilters(cfg *config.Config, bus EventBus.Bus, cache *geocache.Cache,
	reloader *feed.Reloader) map[string]*services.DistanceFilter {

	index := gazetteer.New(cfg.Feed.GazetteerPath)

	geocoder := nominatim.NewClient()
	geocoder.SetRateLimit(cfg.Engine.GeocodeMaxRequestsPerSecond)
	if cfg.Engine.UserAgent != "" {
		geocoder.SetUserAgent(cfg.Engine.UserAgent)
	}

	scheduler, err := services.NewScheduler(bus, cache, index, geocoder,
		cfg.Engine.MaxLookupsPerPass, cfg.Engine.RequestDelay)
	if err != nil {
		log.Fatalf("can't create scheduler: %v", err)
	}
	scheduler.SetCooldowns(cfg.Engine.ThrottleCooldown, cfg.Engine.ForbiddenCooldown)

	store := feed.NewStore(cfg.Feed.Dir)
	tags, err := store.Tags()
	if err != nil {
		log.Fatalf("can't list feeds: %v", err)
	}
	if len(tags) == 0 {
		log.Warnf("no feed files found in %v", cfg.Feed.Dir)
	}

	filters := map[string]*services.DistanceFilter{}
	for _, tag := range tags {
		doc, err := store.Load(tag)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeFeed).
				Errorf("failed to load feed %v: %v", tag, err)
			continue
		}

		offers := doc.AllOffers()
		session := services.NewSession(tag, offers)
		filter := services.NewDistanceFilter(session, scheduler, index, geocoder, cfg.Engine.MaxPasses)
		filters[tag] = filter
		reloader.Register(tag, filter)
		log.Infof("feed %v loaded, %d offers", tag, len(offers))
	}

	return filters
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Server.MetricsAddress)

	store, closeStore := openCacheStore(cfg.Cache)
	defer closeStore()

	cache := geocache.Open(store)
	bus := EventBus.New()

	err := bus.Subscribe(events.DistancesUpdatedTopic, func(e events.DistancesUpdated) {
		log.Debugf("distances updated for %v: %d resolved, %d remaining", e.Tag, e.Resolved, e.Remaining)
	})
	if err != nil {
		log.Fatalf("can't subscribe to events: %v", err)
	}

	feedStore := feed.NewStore(cfg.Feed.Dir)
	reloader, err := feed.NewReloader(feedStore, bus, cfg.Feed.ReloadSchedule)
	if err != nil {
		log.Fatalf("can't create feed reloader: %v", err)
	}
	defer reloader.Stop()

	filters := buildFilters(cfg, bus, cache, reloader)
	reloader.Start()

	srv := server.New(cfg.Server.Address, server.NewHandler(filters))
	srv.Start()

	<-ctx.Done()

	log.Info("Shutting down services...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http server shutdown: %v", err)
	}

	cache.Persist()
	log.Info("Services stopped.")
}

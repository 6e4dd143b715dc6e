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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/srgjo27/class_booking/internal/adapter/cache"
	"github.com/srgjo27/class_booking/internal/adapter/handler"
	"github.com/srgjo27/class_booking/internal/adapter/notify"
	"github.com/srgjo27/class_booking/internal/adapter/redisbus"
	"github.com/srgjo27/class_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/class_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
	"github.com/srgjo27/class_booking/internal/core/services"
	"github.com/srgjo27/class_booking/internal/platform/clock"
	"github.com/srgjo27/class_booking/internal/platform/config"
	"github.com/srgjo27/class_booking/internal/platform/database"
	"github.com/srgjo27/class_booking/internal/platform/logger"
)

func main() {
	logger.Configure(logger.Config{Level: os.Getenv("LOG_LEVEL")})
	config.LoadDotEnv(".env", logger.WithComponent("config"))

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		base := logger.Base()
		base.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.SetLevel(cfg.Log.Level)
	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server exiting")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}

	store, catalog, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		occupancy  ports.OccupancyCache
		publisher  ports.EventPublisher
		subscriber ports.EventSubscriber
	)

	if cfg.Redis.Enabled {
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("connecting to redis")

		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		log.Info().Msg("redis connected successfully")

		occupancy = cache.NewRedisOccupancyCache(redisClient, cfg.Redis.CacheTTL, logger.WithComponent("cache"))
		bus := redisbus.New(redisClient, logger.WithComponent("redisbus"))
		publisher, subscriber = bus, bus
	} else {
		bus := notify.NewMemoryBus()
		publisher, subscriber = bus, bus
	}

	bookingService, err := services.NewBookingService(&services.Config{
		Store:        store,
		Catalog:      catalog,
		Cache:        occupancy,
		Publisher:    publisher,
		Clock:        &clock.DefaultClock{},
		Logger:       logger.WithComponent("booking"),
		Location:     loc,
		Window:       cfg.Booking.Window,
		HoldDuration: cfg.Booking.HoldDuration,
	})
	if err != nil {
		return err
	}

	sweeper, err := services.NewExpirySweeper(bookingService, cfg.Sweeper.Interval, cfg.Sweeper.BatchSize, logger.WithComponent("sweeper"))
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(subscriber, notify.NewLogSink(logger.WithComponent("notify")), logger.WithComponent("dispatcher"))

	bookingHandler := handler.NewBookingHandler(bookingService, logger.WithComponent("http"))
	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: handler.NewRouter(bookingHandler, handler.RouterConfig{
			BookingRateLimit:  cfg.HTTP.BookingRateLimit,
			BookingRateWindow: cfg.HTTP.BookingRateWindow,
		}, logger.WithComponent("http")),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sweeper.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr).Str("store", cfg.Store).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (ports.BookingStore, ports.CatalogRepository, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; bookings are lost on restart")
		return memory.NewStore(), seedCatalog(cfg.Catalog), func() {}, nil
	}

	db, err := database.NewPostgresDB(ctx, database.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		DBName:       cfg.Database.DBName,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	}, logger.WithComponent("database"))
	if err != nil {
		return nil, nil, nil, err
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		closeDB(db, log)
		return nil, nil, nil, err
	}

	return postgres.NewBookingRepository(db), postgres.NewCatalogRepository(db), func() { closeDB(db, log) }, nil
}

func seedCatalog(seed config.CatalogSeed) *memory.Catalog {
	catalog := memory.NewCatalog()
	for _, code := range seed.Languages {
		catalog.AddLanguage(code)
	}
	for _, s := range seed.Schedules {
		catalog.AddSlot(domain.SlotDefinition{ClassType: s.ClassType, StartTime: s.StartTime})
	}
	for _, c := range seed.Capacities {
		catalog.SetCapacity(domain.CapacityRule{ClassType: c.ClassType, MinCapacity: c.MinCapacity, MaxCapacity: c.MaxCapacity})
	}
	for _, p := range seed.Prices {
		catalog.SetPrice(domain.PriceRule{ClassType: p.ClassType, Currency: p.Currency, Category: p.Category, UnitPrice: p.UnitPrice})
	}
	return catalog
}

func closeDB(db *sql.DB, log zerolog.Logger) {
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
}

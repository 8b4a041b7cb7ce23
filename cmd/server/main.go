package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"

	"github.com/99minutos/bulk-shipping/internal/api"
	"github.com/99minutos/bulk-shipping/internal/api/handler"
	"github.com/99minutos/bulk-shipping/internal/core/location"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
	"github.com/99minutos/bulk-shipping/internal/core/pricing"
	"github.com/99minutos/bulk-shipping/internal/core/service"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/config"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/db/mongo"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/db/redis"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/db/sqldb"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/distance"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/messaging"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/messaging/kafka"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/queue"
	"github.com/99minutos/bulk-shipping/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// store bundles the repositories of whichever backend was selected.
type store struct {
	batches   ports.BatchRepository
	shipments ports.ShipmentRepository
	index     ports.TrackingIndex
	ping      handler.Checker
	close     func(context.Context) error
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "bulk-shipping",
	})

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			log.Fatal().Msg("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret"
		log.Warn().Msg("JWT_SECRET not set, using an insecure development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	checks := map[string]handler.Checker{cfg.Store.Driver: st.ping}

	// --- Distance provider (optionally cached in Redis) ---
	var provider ports.DistanceProvider
	switch cfg.Distance.Provider {
	case "static":
		provider = distance.Static{Km: cfg.Distance.StaticKm}
	default:
		provider = distance.NewNominatim(distance.NominatimConfig{
			BaseURL:    cfg.Distance.NominatimURL,
			UserAgent:  cfg.Distance.NominatimUserAgent,
			RoadFactor: cfg.Distance.RoadFactor,
		})
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		provider = redis.NewDistanceCache(redisClient, provider, cfg.Redis.CacheTTL, logger.Component("distance_cache"))
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, redisClient, 2*time.Second) }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("distance cache enabled")
	}

	// --- Status events ---
	var (
		publisher   ports.EventPublisher = messaging.NewLogPublisher(logger.Component("events"))
		kafkaWriter *kafka.Publisher
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaWriter = kafka.NewPublisher(kafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic}, logger.Component("kafka"))
		publisher = kafkaWriter
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka publishing enabled")
	}
	dispatcher := queue.NewDispatcher(cfg.Kafka.Workers, publisher, logger.Component("dispatcher"))
	dispatcher.Start()

	// --- Services ---
	locator := location.Default()
	pricer := pricing.NewEngine(pricing.DefaultSchedule())

	ingestor := service.NewIngestor(st.batches, locator, pricer, provider, dispatcher, service.IngestConfig{
		Workers:         cfg.Ingest.Workers,
		DistanceTimeout: cfg.Distance.Timeout,
		DefaultPickup:   cfg.Ingest.DefaultPickup,
	}, logger.Component("ingest"))
	batches := service.NewBatchService(st.batches, dispatcher, logger.Component("batches"))
	payments := service.NewPaymentReconciler(st.batches, dispatcher, cfg.Ingest.PaymentMethods, logger.Component("payments"))
	tracking := service.NewTrackingService(st.index, st.batches, st.shipments, dispatcher, logger.Component("tracking"))
	shipments := service.NewShipmentService(st.shipments, locator, pricer, provider, cfg.Distance.Timeout, dispatcher, logger.Component("shipments"))

	e := api.NewRouter(api.Deps{
		Ingestor:       ingestor,
		Batches:        batches,
		Payments:       payments,
		Tracking:       tracking,
		Shipments:      shipments,
		Health:         checks,
		JWTSecret:      cfg.JWTSecret,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// Drain queued events after the last request has committed.
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("event dispatcher shutdown")
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			log.Error().Err(err).Msg("kafka writer close")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close")
	}
	log.Info().Msg("bye")
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	if cfg.Store.Driver == "mongo" {
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		batches := mongo.NewBatchRepository(db, log)
		shipments := mongo.NewShipmentRepository(db, log)
		if err := mongo.EnsureIndexes(ctx, batches, shipments); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &store{
			batches:   batches,
			shipments: shipments,
			index:     mongo.NewTrackingIndex(db),
			ping:      func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close:     client.Disconnect,
		}, nil
	}

	db, err := sqldb.Open(sqldb.Config{
		Driver: cfg.Store.Driver,
		DSN:    cfg.Store.DSN,
		Debug:  cfg.LogLevel == "debug",
	})
	if err != nil {
		return nil, err
	}
	return &store{
		batches:   sqldb.NewBatchRepository(db),
		shipments: sqldb.NewShipmentRepository(db),
		index:     sqldb.NewTrackingIndex(db),
		ping:      func(ctx context.Context) error { return sqldb.Ping(ctx, db) },
		close:     func(context.Context) error { return closeSQL(db) },
	}, nil
}

func closeSQL(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

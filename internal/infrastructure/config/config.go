package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port           string `env:"PORT,             default=8080"`
	Env            string `env:"ENV,              default=development"`
	JWTSecret      string `env:"JWT_SECRET"`
	LogLevel       string `env:"LOG_LEVEL,        default=info"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES, default=10485760"`

	Store    StoreConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Distance DistanceConfig
	Ingest   IngestConfig
}

// StoreConfig selects the persistence backend: "postgres", "sqlite" or "mongo".
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=sqlite"`
	DSN    string `env:"DATABASE_DSN, default=file:bulk_shipping.db?_pragma=foreign_keys(1)"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bulk_shipping"`
}

// RedisConfig backs the distance cache. An empty address disables it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,           default=0"`
	CacheTTL time.Duration `env:"DISTANCE_CACHE_TTL, default=24h"`
}

// KafkaConfig enables status event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC,   default=shipment-status-events"`
	Workers int      `env:"EVENT_WORKERS, default=4"`
}

type DistanceConfig struct {
	Provider           string        `env:"DISTANCE_PROVIDER,    default=nominatim"`
	NominatimURL       string        `env:"NOMINATIM_URL,        default=https://nominatim.openstreetmap.org"`
	NominatimUserAgent string        `env:"NOMINATIM_USER_AGENT, default=bulk-shipping/1.0"`
	RoadFactor         float64       `env:"DISTANCE_ROAD_FACTOR, default=1.4"`
	StaticKm           float64       `env:"DISTANCE_STATIC_KM,   default=10"`
	Timeout            time.Duration `env:"DISTANCE_TIMEOUT,     default=10s"`
}

type IngestConfig struct {
	Workers        int      `env:"INGEST_WORKERS,         default=8"`
	DefaultPickup  string   `env:"DEFAULT_PICKUP_ADDRESS, default=Calgary, Alberta, Canada"`
	PaymentMethods []string `env:"PAYMENT_METHODS,        default=stripe"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "postgres", "sqlite", "mongo":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres, sqlite or mongo, got %q", c.Store.Driver)
	}
	switch c.Distance.Provider {
	case "nominatim", "static":
	default:
		return fmt.Errorf("DISTANCE_PROVIDER must be nominatim or static, got %q", c.Distance.Provider)
	}
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("INGEST_WORKERS must be positive, got %d", c.Ingest.Workers)
	}
	return nil
}

// IsProduction reports whether the service runs with production defaults
// (JSON logs, JWT secret required).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

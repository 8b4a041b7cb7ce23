// Package mongo is the document store: one document per batch with its items
// embedded, one per single shipment, and an audit collection of status events.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 10 * time.Second
	// defaultTimeout bounds every single repository call.
	defaultTimeout = 10 * time.Second
	appName        = "bulk-shipping"
)

type Config struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	Timeout     time.Duration
}

// Connect dials the cluster, waits for a primary and returns the database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = connectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetConnectTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes both repositories query by.
func EnsureIndexes(ctx context.Context, batches *BatchRepository, shipments *ShipmentRepository) error {
	if err := batches.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("batch indexes: %w", err)
	}
	if err := shipments.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("shipment indexes: %w", err)
	}
	return nil
}

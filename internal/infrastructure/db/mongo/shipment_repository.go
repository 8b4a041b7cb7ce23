package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

const collectionShipments = "shipments"

type ShipmentRepository struct {
	col    *mongo.Collection
	events *mongo.Collection
	log    zerolog.Logger
}

func NewShipmentRepository(db *mongo.Database, log zerolog.Logger) *ShipmentRepository {
	return &ShipmentRepository{
		col:    db.Collection(collectionShipments),
		events: db.Collection(collectionEvents),
		log:    log,
	}
}

var _ ports.ShipmentRepository = (*ShipmentRepository)(nil)

// Create inserts a new shipment document.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toShipmentDoc(s)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return err
	}
	insertAudit(ctx, r.events, r.log, s.PendingEvents())
	return nil
}

// FindByTrackingCode retrieves a shipment by tracking code.
// When ownerID is non-empty, an additional filter by owner_id is applied.
func (r *ShipmentRepository) FindByTrackingCode(ctx context.Context, code, ownerID string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := r.find(ctx, code, ownerID)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// Update applies fn and writes the result if no other writer got there first.
func (r *ShipmentRepository) Update(ctx context.Context, code string, fn func(s *domain.Shipment) error) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		doc, err := r.find(ctx, code, "")
		if err != nil {
			return nil, err
		}
		s := doc.toDomain()
		if err := fn(s); err != nil {
			return nil, err
		}

		filter := bson.M{"_id": doc.ID, "version": doc.Version}
		update := bson.M{
			"$set": bson.M{
				"status":         string(s.Status),
				"status_history": toHistoryDocs(s.History),
				"updated_at":     s.UpdatedAt.UTC(),
			},
			"$inc": bson.M{"version": 1},
		}
		res, err := r.col.UpdateOne(ctx, filter, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			continue
		}
		insertAudit(ctx, r.events, r.log, s.PendingEvents())
		return s, nil
	}
	return nil, domain.ErrConcurrentUpdate
}

// EnsureIndexes creates necessary indexes on the shipments collection.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *ShipmentRepository) find(ctx context.Context, code, ownerID string) (*shipmentDoc, error) {
	filter := bson.M{"tracking_code": code}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}
	var doc shipmentDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

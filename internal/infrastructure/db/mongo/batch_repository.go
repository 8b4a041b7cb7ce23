package mongo

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

const (
	collectionBatches = "shipment_batches"
	collectionEvents  = "status_events"

	// maxUpdateAttempts bounds optimistic retries on version conflicts.
	maxUpdateAttempts = 5
)

// BatchRepository stores each batch as one document with its items embedded,
// so a batch and its ledger are always written together. Concurrent writers
// are serialized with a version field.
type BatchRepository struct {
	col    *mongo.Collection
	events *mongo.Collection
	log    zerolog.Logger
}

func NewBatchRepository(db *mongo.Database, log zerolog.Logger) *BatchRepository {
	return &BatchRepository{
		col:    db.Collection(collectionBatches),
		events: db.Collection(collectionEvents),
		log:    log,
	}
}

var _ ports.BatchRepository = (*BatchRepository)(nil)

// Create inserts the batch header document.
func (r *BatchRepository) Create(ctx context.Context, b *domain.ShipmentBatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toBatchDoc(b)
	doc.Items = []itemDoc{}
	doc.Version = 1
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// Finalize replaces the header with the complete batch document.
func (r *BatchRepository) Finalize(ctx context.Context, b *domain.ShipmentBatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var current batchDoc
	err := r.col.FindOne(ctx, bson.M{"tracking_code": b.TrackingCode}).Decode(&current)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrBatchNotFound
		}
		return err
	}
	if err := r.replace(ctx, &current, b); err != nil {
		return err
	}
	r.audit(ctx, b.PendingEvents())
	return nil
}

func (r *BatchRepository) FindByTrackingCode(ctx context.Context, code, ownerID string) (*domain.ShipmentBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := r.find(ctx, code, ownerID)
	if err != nil {
		return nil, err
	}
	b := doc.toDomain()
	sortItems(b)
	return b, nil
}

// FindItem loads the batch holding itemCode through the items index.
func (r *BatchRepository) FindItem(ctx context.Context, itemCode string) (*domain.ShipmentBatch, *domain.ShipmentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc batchDoc
	err := r.col.FindOne(ctx, bson.M{"items.tracking_code": itemCode}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, domain.ErrItemNotFound
		}
		return nil, nil, err
	}
	b := doc.toDomain()
	it := b.Item(itemCode)
	if it == nil {
		return nil, nil, domain.ErrItemNotFound
	}
	return b, it, nil
}

// List returns batch headers without their items, newest first.
func (r *BatchRepository) List(ctx context.Context, f ports.ListBatchesFilter) ([]*domain.ShipmentBatch, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((f.Page - 1) * f.Limit)
	if skip < 0 {
		skip = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(f.Limit)).
		SetProjection(bson.M{"items": 0})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var docs []batchDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*domain.ShipmentBatch, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

// Update reloads and reapplies fn when another writer bumped the version in
// between. It gives up with ErrConcurrentUpdate after maxUpdateAttempts.
func (r *BatchRepository) Update(ctx context.Context, code, ownerID string, fn func(b *domain.ShipmentBatch) error) (*domain.ShipmentBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		doc, err := r.find(ctx, code, ownerID)
		if err != nil {
			return nil, err
		}
		b := doc.toDomain()
		sortItems(b)
		if err := fn(b); err != nil {
			return nil, err
		}

		err = r.replace(ctx, doc, b)
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			r.log.Debug().Str("batch", code).Int("attempt", attempt).Msg("batch version conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		r.audit(ctx, b.PendingEvents())
		return b, nil
	}
	return nil, domain.ErrConcurrentUpdate
}

func (r *BatchRepository) Delete(ctx context.Context, code, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"tracking_code": code}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrBatchNotFound
	}
	if _, err := r.events.DeleteMany(ctx, bson.M{"batch_code": code}); err != nil {
		r.log.Warn().Err(err).Str("batch", code).Msg("failed to remove batch audit events")
	}
	return nil
}

// EnsureIndexes creates the indexes used by lookups and listing.
func (r *BatchRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "items.tracking_code", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return err
	}

	_, err := r.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_code", Value: 1}, {Key: "occurred_at", Value: 1}}},
		{Keys: bson.D{{Key: "batch_code", Value: 1}}},
	})
	return err
}

func (r *BatchRepository) find(ctx context.Context, code, ownerID string) (*batchDoc, error) {
	filter := bson.M{"tracking_code": code}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}
	var doc batchDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// replace writes b over current if current's version is still the stored one.
func (r *BatchRepository) replace(ctx context.Context, current *batchDoc, b *domain.ShipmentBatch) error {
	next := toBatchDoc(b)
	next.ID = current.ID
	next.Version = current.Version + 1

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": current.ID, "version": current.Version}, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// audit copies committed events to the status_events collection. The
// embedded histories are authoritative; a failed copy is only logged.
func (r *BatchRepository) audit(ctx context.Context, events []domain.StatusEvent) {
	insertAudit(ctx, r.events, r.log, events)
}

func insertAudit(ctx context.Context, col *mongo.Collection, log zerolog.Logger, events []domain.StatusEvent) {
	if len(events) == 0 {
		return
	}
	if _, err := col.InsertMany(ctx, toEventDocs(events)); err != nil {
		log.Warn().Err(err).Int("events", len(events)).Msg("failed to write status event audit")
	}
}

func sortItems(b *domain.ShipmentBatch) {
	sort.SliceStable(b.Items, func(i, j int) bool { return b.Items[i].RowNumber < b.Items[j].RowNumber })
}

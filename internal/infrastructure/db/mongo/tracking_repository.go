package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// TrackingIndex resolves a parcel code across shipments and batch items with
// a single aggregation.
type TrackingIndex struct {
	shipments *mongo.Collection
}

func NewTrackingIndex(db *mongo.Database) *TrackingIndex {
	return &TrackingIndex{shipments: db.Collection(collectionShipments)}
}

var _ ports.TrackingIndex = (*TrackingIndex)(nil)

type trackingRefDoc struct {
	Kind      string `bson:"kind"`
	BatchCode string `bson:"batch_code"`
}

func (x *TrackingIndex) Resolve(ctx context.Context, code string) (domain.TrackingRef, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tracking_code": code}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "kind": bson.M{"$literal": string(domain.KindSingleShipment)}}}},
		{{Key: "$unionWith", Value: bson.M{
			"coll": collectionBatches,
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"items.tracking_code": code}},
				bson.M{"$project": bson.M{
					"_id":        0,
					"kind":       bson.M{"$literal": string(domain.KindBatchItem)},
					"batch_code": "$tracking_code",
				}},
			},
		}}},
		{{Key: "$limit", Value: 1}},
	}

	cur, err := x.shipments.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.TrackingRef{}, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return domain.TrackingRef{}, err
		}
		return domain.TrackingRef{}, domain.ErrTrackingCodeNotFound
	}
	var doc trackingRefDoc
	if err := cur.Decode(&doc); err != nil {
		return domain.TrackingRef{}, err
	}
	return domain.TrackingRef{Code: code, Kind: domain.ParcelKind(doc.Kind), BatchCode: doc.BatchCode}, nil
}

package journal

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// RunsCollection es la colección donde MongoRecorder escribe.
const RunsCollection = "runs"

// Inserter es la parte de *mongo.Collection que usa MongoRecorder.
type Inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

// MongoRecorder guarda un documento por ejecución.
type MongoRecorder struct {
	coll Inserter
}

func NewMongoRecorder(coll Inserter) *MongoRecorder {
	return &MongoRecorder{coll: coll}
}

func (m *MongoRecorder) Record(ctx context.Context, run Run) error {
	if _, err := m.coll.InsertOne(ctx, toDocument(run)); err != nil {
		return fmt.Errorf("journal: mongo: %w", err)
	}
	return nil
}

// Los uint64 se guardan como texto decimal: BSON no tiene enteros sin signo de 64 bits.
func toDocument(run Run) bson.D {
	eps := make(bson.A, 0, len(run.Endpoints))
	for _, ep := range run.Endpoints {
		eps = append(eps, bson.D{
			{Key: "endpoint", Value: ep.Endpoint},
			{Key: "begin", Value: u64(ep.Range.Begin)},
			{Key: "end", Value: u64(ep.Range.End)},
			{Key: "ok", Value: ep.OK},
			{Key: "value", Value: u64(ep.Value)},
			{Key: "error", Value: ep.Error},
		})
	}
	return bson.D{
		{Key: "_id", Value: run.ID},
		{Key: "k", Value: u64(run.K)},
		{Key: "mod", Value: u64(run.Modulus)},
		{Key: "status", Value: run.Status},
		{Key: "product", Value: u64(run.Outcome.Product)},
		{Key: "succeeded", Value: run.Outcome.Succeeded},
		{Key: "total", Value: run.Outcome.Total},
		{Key: "started_at", Value: run.StartedAt.UTC()},
		{Key: "duration_ms", Value: run.FinishedAt.Sub(run.StartedAt).Milliseconds()},
		{Key: "endpoints", Value: eps},
	}
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

package vectorDB

import (
	"context"

	"github.com/davifus/dogvet-rag/internal/domain/corpusModel"
)

// DataProcessor is the vector index capability. The ingestion pipeline is
// the only writer; queries may run concurrently with an in-progress
// ingestion and see a partial index (eventual consistency, by contract).
type DataProcessor interface {
	// EnsureCollection creates the collection with cosine distance if it
	// does not exist yet. Must be called before the first upsert.
	EnsureCollection(ctx context.Context, name string, dimension uint64) error
	UpsertBatch(ctx context.Context, name string, records []corpusModel.VectorRecord) error
	Query(ctx context.Context, vector []float32, topK int) ([]corpusModel.Match, error)

	// Answer cache: a second collection keyed by question embedding.
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}

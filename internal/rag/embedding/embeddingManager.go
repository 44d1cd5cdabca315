package embedding

import "context"

// Embedder maps text into the fixed-dimension vector space shared by the
// ingestion and retrieval pipelines. Both pipelines must hold the SAME
// instance: query and corpus vectors from different models or dimensions
// make similarity scores meaningless.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	Dimension() int
}

package rag_test

import (
	"context"

	"github.com/davifus/dogvet-rag/internal/domain/corpusModel"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnQuery            func(ctx context.Context, vector []float32, topK int) ([]corpusModel.Match, error)
	OnGetCachedAnswer  func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, vector []float32, answer string) error
	OnEnsureCollection func(ctx context.Context, name string, dimension uint64) error
	OnUpsertBatch      func(ctx context.Context, name string, records []corpusModel.VectorRecord) error
}

func (m *MockVectorDB) Query(ctx context.Context, v []float32, topK int) ([]corpusModel.Match, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, v, topK)
	}
	return []corpusModel.Match{{ID: "m-1", Score: 0.9, Metadata: corpusModel.RecordMetadata{Snippet: "default context"}}}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context, name string, dimension uint64) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, name, dimension)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, records []corpusModel.VectorRecord) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, records)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
	Dim              int
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	// Return dummy vectors matching chunk count
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) Dimension() int {
	if m.Dim > 0 {
		return m.Dim
	}
	return 1
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnComplete func(ctx context.Context, system string, user string) (string, error)
}

func (m *MockLLM) Complete(ctx context.Context, system string, user string) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, system, user)
	}
	return "mocked llm response", nil
}

package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/domain/corpusModel"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

type ClientHolder struct {
	QObj       *qdrant.Client
	collection string
	dimension  uint64
	logger     *logger_i.Logger
}

// NewClient connects to Qdrant over gRPC. Host and port come from the
// environment with config fallbacks. The corpus collection itself is created
// lazily by the ingestion pipeline via EnsureCollection; only the answer
// cache is provisioned eagerly here.
func NewClient(ctx context.Context, settings config.RAGSettings) (*ClientHolder, error) {
	logger := logger_i.NewLogger("Qdrant")

	host := os.Getenv("QDRANT_HOST")
	port, portErr := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" || portErr != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}

	holder := &ClientHolder{
		QObj:       client,
		collection: settings.IndexName,
		dimension:  uint64(settings.EmbeddingDimension),
		logger:     logger,
	}

	if err := holder.EnsureCollection(ctx, config.AnswerCacheCollection, holder.dimension); err != nil {
		logger.Error("Answer cache collection creation failed", "error", err)
	}

	go holder.closeOnDone(ctx)
	return holder, nil
}

func (db *ClientHolder) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.QObj.Close(); err != nil {
		db.logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, name string, dimension uint64) error {
	if name == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("collection lookup %s: %w", name, err)
	}
	if exists {
		return nil
	}

	db.logger.Info("Creating collection", "name", name, "dimension", dimension)
	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("collection create %s: %w", name, err)
	}
	return nil
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, name string, records []corpusModel.VectorRecord) error {
	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(rec.ID),
			Vectors: qdrant.NewVectors(rec.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"title":       rec.Metadata.Title,
				"url":         rec.Metadata.URL,
				"chunk_index": rec.Metadata.ChunkIndex,
				"source":      rec.Metadata.Source,
				"text":        rec.Metadata.Snippet,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, vector []float32, topK int) ([]corpusModel.Match, error) {
	loggr := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	matches := make([]corpusModel.Match, 0, len(result))
	for _, hit := range result {
		matches = append(matches, corpusModel.Match{
			ID:    pointIDString(hit.Id),
			Score: hit.Score,
			Metadata: corpusModel.RecordMetadata{
				Title:      hit.Payload["title"].GetStringValue(),
				URL:        hit.Payload["url"].GetStringValue(),
				ChunkIndex: int(hit.Payload["chunk_index"].GetIntegerValue()),
				Source:     hit.Payload["source"].GetStringValue(),
				Snippet:    hit.Payload["text"].GetStringValue(),
			},
		})
	}

	loggr.Debug("Query returned matches", "count", len(matches))
	return matches, nil
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

package ingest_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/domain/corpusModel"
	"github.com/davifus/dogvet-rag/internal/rag/chunk"
	"github.com/davifus/dogvet-rag/internal/rag/ingest"
	"github.com/davifus/dogvet-rag/internal/rag/keyword"
)

type mockFetcher struct {
	OnFetchSitemap func(ctx context.Context, url string) ([]byte, error)
	OnFetchPage    func(ctx context.Context, url string) (corpusModel.Page, error)
}

func (m *mockFetcher) FetchSitemap(ctx context.Context, url string) ([]byte, error) {
	return m.OnFetchSitemap(ctx, url)
}

func (m *mockFetcher) FetchPage(ctx context.Context, url string) (corpusModel.Page, error) {
	return m.OnFetchPage(ctx, url)
}

type mockEmbedder struct {
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimension() int { return 1 }

type mockVectorDB struct {
	OnEnsureCollection func(ctx context.Context, name string, dimension uint64) error
	OnUpsertBatch      func(ctx context.Context, name string, records []corpusModel.VectorRecord) error
	upserts            [][]corpusModel.VectorRecord
}

func (m *mockVectorDB) EnsureCollection(ctx context.Context, name string, dimension uint64) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, name, dimension)
	}
	return nil
}

func (m *mockVectorDB) UpsertBatch(ctx context.Context, name string, records []corpusModel.VectorRecord) error {
	if m.OnUpsertBatch != nil {
		if err := m.OnUpsertBatch(ctx, name, records); err != nil {
			return err
		}
	}
	m.upserts = append(m.upserts, records)
	return nil
}

func (m *mockVectorDB) Query(ctx context.Context, v []float32, topK int) ([]corpusModel.Match, error) {
	return nil, nil
}

func (m *mockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	return "", false, nil
}

func (m *mockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	return nil
}

func pipelineSettings() config.RAGSettings {
	return config.RAGSettings{
		IndexName:       "test-index",
		ChunkSizeTokens: 500,
		UpsertBatchSize: 100,
		SnippetLimit:    1000,
		CrawlDelay:      0, // no politeness delay against mocks
	}
}

func sitemapXML(urls ...string) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, u := range urls {
		b.WriteString("<url><loc>" + u + "</loc></url>\n")
	}
	b.WriteString("</urlset>")
	return []byte(b.String())
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRun_EndToEnd(t *testing.T) {
	bloatURL := "https://vet.example/dog-bloat"
	dietURL := "https://vet.example/puppy-diet"
	brokenURL := "https://vet.example/dog-dental"
	baitURL := "https://vet.example/dog-food-brands" // slug promises dogs, page is about fish

	bloatContent := strings.Repeat("Bloat in dogs is a medical emergency. ", 32) // ~1200 chars
	pages := map[string]corpusModel.Page{
		bloatURL: {URL: bloatURL, Title: "Bloat in Dogs", Content: bloatContent},
		dietURL:  {URL: dietURL, Title: "Puppy Diet", Content: "Puppies need frequent small meals."},
		baitURL:  {URL: baitURL, Title: "Aquarium Feed", Content: "Flake feed for tropical fish tanks."},
	}

	fetcher := &mockFetcher{
		OnFetchSitemap: func(ctx context.Context, url string) ([]byte, error) {
			return gzipBytes(t, sitemapXML(bloatURL, dietURL, brokenURL, baitURL, "https://vet.example/cat-diabetes")), nil
		},
		OnFetchPage: func(ctx context.Context, url string) (corpusModel.Page, error) {
			if url == brokenURL {
				return corpusModel.Page{}, errors.New("503 from origin")
			}
			return pages[url], nil
		},
	}
	db := &mockVectorDB{}

	p := ingest.NewPipeline(fetcher, keyword.NewFilter(keyword.DogKeywords), &mockEmbedder{}, db, pipelineSettings())
	report, err := p.Run(context.Background(), "vet-example", "https://vet.example/sitemap.xml.gz")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.URLsTotal != 5 || report.URLsShortlisted != 4 {
		t.Errorf("URL accounting got total=%d shortlisted=%d, want 5/4", report.URLsTotal, report.URLsShortlisted)
	}
	if report.PagesFetched != 3 || report.PagesSkipped != 1 {
		t.Errorf("fetch accounting got fetched=%d skipped=%d, want 3/1", report.PagesFetched, report.PagesSkipped)
	}
	if report.PagesDroppedByContent != 1 {
		t.Errorf("content filter dropped %d pages, want 1 (the fish page)", report.PagesDroppedByContent)
	}
	if report.Chunks != 2 || report.VectorsUpserted != 2 {
		t.Errorf("chunk accounting got chunks=%d vectors=%d, want 2/2", report.Chunks, report.VectorsUpserted)
	}
	if report.BatchesTotal != 1 || report.BatchesFailed != 0 {
		t.Errorf("batch accounting got total=%d failed=%d, want 1/0", report.BatchesTotal, report.BatchesFailed)
	}

	if len(db.upserts) != 1 {
		t.Fatalf("got %d upsert calls, want 1", len(db.upserts))
	}
	records := db.upserts[0]
	if records[0].ID != chunk.DeriveID(bloatURL, 0) {
		t.Errorf("record ID got %s, want the deterministic id for %s chunk 0", records[0].ID, bloatURL)
	}
	if records[0].Metadata.Source != "vet-example" || records[0].Metadata.Title != "Bloat in Dogs" {
		t.Errorf("record metadata got %+v", records[0].Metadata)
	}
	if records[0].Metadata.ChunkIndex != 0 {
		t.Errorf("ChunkIndex got %d, want 0 (content under one chunk window)", records[0].Metadata.ChunkIndex)
	}
}

func TestRun_SameInputSameIDs(t *testing.T) {
	url := "https://vet.example/dog-arthritis"
	fetcher := &mockFetcher{
		OnFetchSitemap: func(ctx context.Context, u string) ([]byte, error) {
			return sitemapXML(url), nil
		},
		OnFetchPage: func(ctx context.Context, u string) (corpusModel.Page, error) {
			return corpusModel.Page{URL: u, Title: "Dog Arthritis", Content: "Older dogs often develop arthritis."}, nil
		},
	}

	run := func() []corpusModel.VectorRecord {
		db := &mockVectorDB{}
		p := ingest.NewPipeline(fetcher, keyword.NewFilter(keyword.DogKeywords), &mockEmbedder{}, db, pipelineSettings())
		if _, err := p.Run(context.Background(), "vet-example", "https://vet.example/sitemap.xml"); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if len(db.upserts) != 1 {
			t.Fatalf("got %d upsert calls, want 1", len(db.upserts))
		}
		return db.upserts[0]
	}

	first, second := run(), run()
	if first[0].ID != second[0].ID {
		t.Errorf("re-ingesting produced a new id: %s vs %s", first[0].ID, second[0].ID)
	}
}

func TestRun_BatchPartitioning(t *testing.T) {
	// 150 chunks against a batch size of 100 must give batches of 100 and 50
	url := "https://vet.example/dog-encyclopedia"
	settings := pipelineSettings()
	settings.ChunkSizeTokens = 5 // 20-char windows keep the fixture small
	content := strings.Repeat("dog care notes here ", 150)

	fetcher := &mockFetcher{
		OnFetchSitemap: func(ctx context.Context, u string) ([]byte, error) {
			return sitemapXML(url), nil
		},
		OnFetchPage: func(ctx context.Context, u string) (corpusModel.Page, error) {
			return corpusModel.Page{URL: u, Title: "Dog Encyclopedia", Content: content}, nil
		},
	}
	db := &mockVectorDB{}

	p := ingest.NewPipeline(fetcher, keyword.NewFilter(keyword.DogKeywords), &mockEmbedder{}, db, settings)
	report, err := p.Run(context.Background(), "vet-example", "https://vet.example/sitemap.xml")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.Chunks != 150 {
		t.Fatalf("Chunks got %d, want 150", report.Chunks)
	}
	if report.BatchesTotal != 2 {
		t.Errorf("BatchesTotal got %d, want 2", report.BatchesTotal)
	}
	if len(db.upserts) != 2 || len(db.upserts[0]) != 100 || len(db.upserts[1]) != 50 {
		sizes := make([]int, len(db.upserts))
		for i, u := range db.upserts {
			sizes[i] = len(u)
		}
		t.Errorf("batch sizes got %v, want [100 50]", sizes)
	}
	if report.VectorsUpserted != 150 {
		t.Errorf("VectorsUpserted got %d, want 150", report.VectorsUpserted)
	}
}

func TestRun_FailedBatchDoesNotStopLaterBatches(t *testing.T) {
	url := "https://vet.example/dog-encyclopedia"
	settings := pipelineSettings()
	settings.ChunkSizeTokens = 5
	content := strings.Repeat("dog care notes here ", 150)

	fetcher := &mockFetcher{
		OnFetchSitemap: func(ctx context.Context, u string) ([]byte, error) {
			return sitemapXML(url), nil
		},
		OnFetchPage: func(ctx context.Context, u string) (corpusModel.Page, error) {
			return corpusModel.Page{URL: u, Title: "Dog Encyclopedia", Content: content}, nil
		},
	}

	calls := 0
	db := &mockVectorDB{
		OnUpsertBatch: func(ctx context.Context, name string, records []corpusModel.VectorRecord) error {
			calls++
			if calls == 1 {
				return errors.New("grpc unavailable")
			}
			return nil
		},
	}

	p := ingest.NewPipeline(fetcher, keyword.NewFilter(keyword.DogKeywords), &mockEmbedder{}, db, settings)
	report, err := p.Run(context.Background(), "vet-example", "https://vet.example/sitemap.xml")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.BatchesTotal != 2 || report.BatchesFailed != 1 {
		t.Errorf("batch accounting got total=%d failed=%d, want 2/1", report.BatchesTotal, report.BatchesFailed)
	}
	if report.VectorsUpserted != 50 {
		t.Errorf("VectorsUpserted got %d, want only the surviving batch of 50", report.VectorsUpserted)
	}
}

func TestRun_CancelBetweenFetchesStopsCrawl(t *testing.T) {
	urls := []string{
		"https://vet.example/dog-bloat",
		"https://vet.example/dog-dental",
		"https://vet.example/dog-arthritis",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetches := 0
	fetcher := &mockFetcher{
		OnFetchSitemap: func(ctx context.Context, u string) ([]byte, error) {
			return sitemapXML(urls...), nil
		},
		OnFetchPage: func(ctx context.Context, u string) (corpusModel.Page, error) {
			fetches++
			if fetches > 1 {
				t.Error("crawl continued after cancellation")
			}
			// shutdown arriving while the first page is in flight
			cancel()
			return corpusModel.Page{URL: u, Title: "Bloat in Dogs", Content: "Bloat in dogs is an emergency."}, nil
		},
	}
	db := &mockVectorDB{}

	p := ingest.NewPipeline(fetcher, keyword.NewFilter(keyword.DogKeywords), &mockEmbedder{}, db, pipelineSettings())
	report, err := p.Run(ctx, "vet-example", "https://vet.example/sitemap.xml")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if fetches != 1 {
		t.Errorf("got %d page fetches, want 1 before the cancel took effect", fetches)
	}
	if report.PagesFetched != 1 {
		t.Errorf("PagesFetched got %d, want the first page accounted for", report.PagesFetched)
	}
	if len(db.upserts) != 0 {
		t.Errorf("got %d upserts after a cancelled crawl", len(db.upserts))
	}
}

func TestRun_SnippetRespectsCharacterBoundaries(t *testing.T) {
	url := "https://vet.example/dog-notes"
	settings := pipelineSettings()
	settings.SnippetLimit = 4 // a byte-based cut would split the accented rune

	fetcher := &mockFetcher{
		OnFetchSitemap: func(ctx context.Context, u string) ([]byte, error) {
			return sitemapXML(url), nil
		},
		OnFetchPage: func(ctx context.Context, u string) (corpusModel.Page, error) {
			return corpusModel.Page{URL: u, Title: "Dog Notes", Content: strings.Repeat("dogé ", 100)}, nil
		},
	}
	db := &mockVectorDB{}

	p := ingest.NewPipeline(fetcher, keyword.NewFilter(keyword.DogKeywords), &mockEmbedder{}, db, settings)
	if _, err := p.Run(context.Background(), "vet-example", "https://vet.example/sitemap.xml"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(db.upserts) != 1 || len(db.upserts[0]) == 0 {
		t.Fatal("expected one upserted batch")
	}
	got := db.upserts[0][0].Metadata.Snippet
	if !utf8.ValidString(got) {
		t.Errorf("snippet is not valid UTF-8: %q", got)
	}
	if got != "dogé" {
		t.Errorf("snippet got %q, want the first 4 characters %q", got, "dogé")
	}
}

func TestRun_SitemapFailuresAreFatal(t *testing.T) {
	tests := []struct {
		name    string
		sitemap func(t *testing.T) ([]byte, error)
	}{
		{
			name: "fetch error",
			sitemap: func(t *testing.T) ([]byte, error) {
				return nil, errors.New("dns failure")
			},
		},
		{
			name: "malformed xml",
			sitemap: func(t *testing.T) ([]byte, error) {
				return []byte("<urlset><url><loc>https://vet.example/dog"), nil
			},
		},
		{
			name: "binary garbage",
			sitemap: func(t *testing.T) ([]byte, error) {
				return []byte{0x1f, 0x00, 0xff, 0xfe}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockFetcher{
				OnFetchSitemap: func(ctx context.Context, u string) ([]byte, error) {
					return tt.sitemap(t)
				},
				OnFetchPage: func(ctx context.Context, u string) (corpusModel.Page, error) {
					t.Error("no page fetch should happen when the sitemap is unusable")
					return corpusModel.Page{}, nil
				},
			}
			db := &mockVectorDB{}

			p := ingest.NewPipeline(fetcher, keyword.NewFilter(keyword.DogKeywords), &mockEmbedder{}, db, pipelineSettings())
			if _, err := p.Run(context.Background(), "vet-example", "https://vet.example/sitemap.xml"); err == nil {
				t.Error("Run must fail when the sitemap cannot be enumerated")
			}
			if len(db.upserts) != 0 {
				t.Errorf("got %d upserts after a fatal sitemap failure", len(db.upserts))
			}
		})
	}
}

func TestRun_EmbeddingFailureIsolatedPerBatch(t *testing.T) {
	url := "https://vet.example/dog-skin-conditions"
	fetcher := &mockFetcher{
		OnFetchSitemap: func(ctx context.Context, u string) ([]byte, error) {
			return sitemapXML(url), nil
		},
		OnFetchPage: func(ctx context.Context, u string) (corpusModel.Page, error) {
			return corpusModel.Page{URL: u, Title: "Dog Skin", Content: "Dogs get hot spots in summer."}, nil
		},
	}
	embedder := &mockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return nil, fmt.Errorf("embedding quota exhausted")
		},
	}
	db := &mockVectorDB{}

	p := ingest.NewPipeline(fetcher, keyword.NewFilter(keyword.DogKeywords), embedder, db, pipelineSettings())
	report, err := p.Run(context.Background(), "vet-example", "https://vet.example/sitemap.xml")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.BatchesFailed != 1 || report.VectorsUpserted != 0 {
		t.Errorf("got failed=%d upserted=%d, want 1/0", report.BatchesFailed, report.VectorsUpserted)
	}
	if len(db.upserts) != 0 {
		t.Error("no upsert should follow a failed embedding batch")
	}
}

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/domain/corpusModel"
	"github.com/davifus/dogvet-rag/internal/domain/jobModel"
	"github.com/davifus/dogvet-rag/internal/metrics"
	"github.com/davifus/dogvet-rag/internal/rag/chunk"
	"github.com/davifus/dogvet-rag/internal/rag/embedding"
	"github.com/davifus/dogvet-rag/internal/rag/fetch"
	"github.com/davifus/dogvet-rag/internal/rag/keyword"
	"github.com/davifus/dogvet-rag/internal/rag/vectorDB"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
	"golang.org/x/time/rate"
)

// Pipeline turns a sitemap into upserted vector records:
// sitemap -> URL filter -> fetch -> content filter -> chunk -> embed -> upsert.
// Fetching is sequential with an enforced delay against the source site; the
// limiter IS the politeness mechanism, so only the embed/upsert stages are
// allowed to be parallelized, never the crawl.
type Pipeline struct {
	fetcher  fetch.PageFetcher
	filter   *keyword.Filter
	embedder embedding.Embedder
	vectorDB vectorDB.DataProcessor
	limiter  *rate.Limiter
	settings config.RAGSettings
	logger   *logger_i.Logger
}

func NewPipeline(
	fetcher fetch.PageFetcher,
	filter *keyword.Filter,
	embedder embedding.Embedder,
	db vectorDB.DataProcessor,
	settings config.RAGSettings,
) *Pipeline {
	limiter := rate.NewLimiter(rate.Every(settings.CrawlDelay), 1)
	if settings.CrawlDelay <= 0 {
		// tests and offline replays run with the delay disabled
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Pipeline{
		fetcher:  fetcher,
		filter:   filter,
		embedder: embedder,
		vectorDB: db,
		limiter:  limiter,
		settings: settings,
		logger:   logger_i.NewLogger("Ingestion"),
	}
}

// Run executes one full ingestion of a source. Sitemap-level failures are
// fatal (there is nothing to enumerate); page-level and batch-level failures
// are contained and accounted for in the report.
func (p *Pipeline) Run(ctx context.Context, sourceName string, sitemapURL string) (jobModel.IngestReport, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ingestion_run", time.Since(start)) }()

	log := p.logger.With("source", sourceName, "sitemap", sitemapURL)
	var report jobModel.IngestReport

	raw, err := p.fetcher.FetchSitemap(ctx, sitemapURL)
	if err != nil {
		return report, err
	}

	content, format, err := fetch.DecodeSitemap(raw)
	if err != nil {
		return report, err
	}
	log.Debug("Sitemap decoded", "format", format.String())

	urls, err := fetch.ParseSitemap(content)
	if err != nil {
		return report, err
	}
	report.URLsTotal = len(urls)

	shortlist := make([]string, 0, len(urls))
	for _, u := range urls {
		if p.filter.Matches(u) {
			shortlist = append(shortlist, u)
		}
	}
	report.URLsShortlisted = len(shortlist)
	log.Info("Sitemap enumerated", "urls", report.URLsTotal, "shortlisted", report.URLsShortlisted)

	pages, err := p.crawl(ctx, shortlist, &report)
	if err != nil {
		return report, err
	}
	p.stagePages(sourceName, pages)

	kept := pages[:0]
	for _, page := range pages {
		if !p.filter.Matches(page.Content) {
			// a URL slug can promise dog content the page doesn't deliver
			report.PagesDroppedByContent++
			log.Debug("Page dropped by content filter", "url", page.URL)
			continue
		}
		kept = append(kept, page)
	}

	var chunks []corpusModel.Chunk
	for _, page := range kept {
		pageChunks, err := chunk.FromPage(page, p.settings.ChunkSizeTokens)
		if err != nil {
			return report, err
		}
		chunks = append(chunks, pageChunks...)
	}
	report.Chunks = len(chunks)
	p.stageChunks(sourceName, chunks)

	if len(chunks) == 0 {
		log.Warn("Nothing to index", "pages fetched", report.PagesFetched)
		return report, nil
	}

	if err := p.vectorDB.EnsureCollection(ctx, p.settings.IndexName, uint64(p.embedder.Dimension())); err != nil {
		return report, err
	}

	p.indexBatches(ctx, sourceName, chunks, &report, log)
	log.Info("Ingestion run finished",
		"vectors", report.VectorsUpserted,
		"batches failed", report.BatchesFailed,
		"pages skipped", report.PagesSkipped,
		"pages dropped by content", report.PagesDroppedByContent)
	return report, nil
}

// crawl fetches the shortlisted URLs one by one, waiting out the crawl delay
// before every request. Cancellation is honored between iterations; a fetch
// failure skips that URL and never aborts the run.
func (p *Pipeline) crawl(ctx context.Context, urls []string, report *jobModel.IngestReport) ([]corpusModel.Page, error) {
	pages := make([]corpusModel.Page, 0, len(urls))
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("Crawl cancelled", "fetched so far", len(pages))
			return pages, err
		}
		if err := p.limiter.Wait(ctx); err != nil {
			return pages, err
		}

		p.logger.Debug("Fetching page", "progress", fmt.Sprintf("%d/%d", i+1, len(urls)), "url", url)
		page, err := p.fetcher.FetchPage(ctx, url)
		if err != nil {
			p.logger.Warn("Page fetch failed, skipping", "url", url, "error", err)
			report.PagesSkipped++
			metrics.IncrementPagesSkipped()
			continue
		}
		report.PagesFetched++
		pages = append(pages, page)
	}
	return pages, nil
}

// indexBatches embeds and upserts in fixed-size batches. A failed batch is
// reported with its number and size and does not stop later batches, so a
// run can end partially indexed rather than empty.
func (p *Pipeline) indexBatches(ctx context.Context, sourceName string, chunks []corpusModel.Chunk, report *jobModel.IngestReport, log *logger_i.Logger) {
	batchSize := p.settings.UpsertBatchSize
	totalBatches := (len(chunks) + batchSize - 1) / batchSize

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]
		batchNum := i/batchSize + 1
		report.BatchesTotal++

		records, err := p.buildRecords(ctx, sourceName, batch)
		if err != nil {
			report.BatchesFailed++
			log.Error("Batch embedding failed", "batch", fmt.Sprintf("%d/%d", batchNum, totalBatches), "size", len(batch), "error", err)
			continue
		}

		start := time.Now()
		err = p.vectorDB.UpsertBatch(ctx, p.settings.IndexName, records)
		metrics.CaptureExecutionMetrics("batch_upsert", time.Since(start))
		if err != nil {
			report.BatchesFailed++
			log.Error("Batch upsert failed", "batch", fmt.Sprintf("%d/%d", batchNum, totalBatches), "size", len(batch), "error", err)
			continue
		}

		report.VectorsUpserted += len(records)
		metrics.AddVectorsUpserted(len(records))
		log.Info("Uploaded batch", "batch", fmt.Sprintf("%d/%d", batchNum, totalBatches), "vectors", len(records))
	}
}

// buildRecords embeds one batch and assembles the records with their
// deterministic ids and display metadata.
func (p *Pipeline) buildRecords(ctx context.Context, sourceName string, batch []corpusModel.Chunk) ([]corpusModel.VectorRecord, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	start := time.Now()
	vectors, err := p.embedder.BatchEmbedding(ctx, texts)
	metrics.CaptureExecutionMetrics("batch_embedding", time.Since(start))
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
	}

	records := make([]corpusModel.VectorRecord, len(batch))
	for i, c := range batch {
		records[i] = corpusModel.VectorRecord{
			ID:        chunk.DeriveID(c.URL, c.ChunkIndex),
			Embedding: vectors[i],
			Metadata: corpusModel.RecordMetadata{
				Title:      c.Title,
				URL:        c.URL,
				ChunkIndex: c.ChunkIndex,
				Source:     sourceName,
				Snippet:    snippet(c.Content, p.settings.SnippetLimit),
			},
		}
	}
	return records, nil
}

func snippet(content string, limit int) string {
	if limit <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit])
}

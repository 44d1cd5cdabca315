package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/customHttpClient"
	"github.com/davifus/dogvet-rag/internal/domain/corpusModel"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
)

// PageFetcher is the crawling capability the ingestion pipeline depends on.
// HTML mechanics live behind it so the pipeline can be tested without a
// network.
type PageFetcher interface {
	FetchSitemap(ctx context.Context, url string) ([]byte, error)
	FetchPage(ctx context.Context, url string) (corpusModel.Page, error)
}

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    *logger_i.Logger
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client:    customHttpClient.NewPooledClient(config.FetchTimeout),
		userAgent: config.CrawlUserAgent,
		logger:    logger_i.NewLogger("Fetcher"),
	}
}

// FetchSitemap returns the raw body bytes. Some publishers serve a .xml.gz
// URL that is actually plain XML, so no decompression happens here; format
// detection is the caller's problem (see DecodeSitemap).
func (f *HTTPFetcher) FetchSitemap(ctx context.Context, url string) ([]byte, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("sitemap fetch %s: %w", url, err)
	}
	return body, nil
}

func (f *HTTPFetcher) FetchPage(ctx context.Context, url string) (corpusModel.Page, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return corpusModel.Page{}, fmt.Errorf("page fetch %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return corpusModel.Page{}, fmt.Errorf("page parse %s: %w", url, err)
	}

	return corpusModel.Page{
		URL:     url,
		Title:   strings.TrimSpace(doc.Find("h1").First().Text()),
		Content: extractParagraphs(doc),
	}, nil
}

// extractParagraphs joins the text of every <p> node with newlines, matching
// the shape the chunker and the keyword content filter expect.
func extractParagraphs(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, strings.TrimSpace(s.Text()))
	})
	return strings.Join(paragraphs, "\n")
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

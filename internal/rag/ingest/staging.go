package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/davifus/dogvet-rag/internal/domain/corpusModel"
)

// Staging snapshots are an optional offline aid: pretty-printed JSON of the
// intermediate pages and chunks, so a crawl that took hours can be re-indexed
// without re-scraping. Failures here never affect the run.

func (p *Pipeline) stagePages(sourceName string, pages []corpusModel.Page) {
	p.stage(sourceName, "pages.json", pages)
}

func (p *Pipeline) stageChunks(sourceName string, chunks []corpusModel.Chunk) {
	p.stage(sourceName, "chunks.json", chunks)
}

func (p *Pipeline) stage(sourceName string, filename string, data any) {
	if p.settings.StagingDir == "" {
		return
	}

	dir := filepath.Join(p.settings.StagingDir, slug(sourceName))
	if err := os.MkdirAll(dir, 0750); err != nil {
		p.logger.Warn("Could not create staging dir", "dir", dir, "error", err)
		return
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		p.logger.Warn("Could not encode staging artifact", "file", filename, "error", err)
		return
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, encoded, 0640); err != nil {
		p.logger.Warn("Could not write staging artifact", "path", path, "error", err)
		return
	}
	p.logger.Debug("Staged artifact", "path", path)
}

func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, name)
}

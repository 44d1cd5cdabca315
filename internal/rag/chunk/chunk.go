package chunk

import (
	"errors"
	"strings"

	"github.com/davifus/dogvet-rag/internal/domain/corpusModel"
)

// ErrInvalidChunkSize is an invalid-configuration failure: splitting with a
// non-positive token target can never produce a usable corpus.
var ErrInvalidChunkSize = errors.New("chunk size in tokens must be positive")

// charsPerToken is the fixed token-to-character approximation the whole id
// scheme depends on. Chunk boundaries are length-based and may fall
// mid-sentence; changing this to sentence-aware splitting would shift every
// chunk index and break stable vector ids across runs.
const charsPerToken = 4

// Split partitions text into contiguous, non-overlapping windows of
// targetTokens*4 characters, in order, each trimmed of surrounding
// whitespace. Empty text yields no chunks; the final chunk may be short.
func Split(text string, targetTokens int) ([]string, error) {
	if targetTokens <= 0 {
		return nil, ErrInvalidChunkSize
	}

	// Windows are measured in characters, not bytes. Slicing the raw string
	// could cut a multi-byte rune in half and emit invalid UTF-8, which the
	// vector store rejects at the protobuf layer.
	runes := []rune(text)
	chunkSizeChars := targetTokens * charsPerToken
	var chunks []string
	for start := 0; start < len(runes); start += chunkSizeChars {
		end := start + chunkSizeChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))
	}
	return chunks, nil
}

// FromPage splits a page and assigns zero-based chunk indexes, carrying the
// page title and URL onto every chunk.
func FromPage(page corpusModel.Page, targetTokens int) ([]corpusModel.Chunk, error) {
	parts, err := Split(page.Content, targetTokens)
	if err != nil {
		return nil, err
	}

	chunks := make([]corpusModel.Chunk, 0, len(parts))
	for i, content := range parts {
		chunks = append(chunks, corpusModel.Chunk{
			Title:      page.Title,
			URL:        page.URL,
			ChunkIndex: i,
			Content:    content,
		})
	}
	return chunks, nil
}

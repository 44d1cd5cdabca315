package rag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/davifus/dogvet-rag/internal/domain/corpusModel"
)

// ErrNoRelevantContext is a designed retrieval outcome, not a failure: no
// match cleared the similarity threshold, so the model is never asked to
// answer from thin air. Callers should tell the user to rephrase.
var ErrNoRelevantContext = errors.New("no retrieved context cleared the similarity threshold")

const systemInstruction = "You are a veterinary assistant. Answer the user's question " +
	"using ONLY the context provided. Do NOT make up information. " +
	"If the answer isn't in the context, say you don't know."

const contextDelimiter = "\n\n---\n\n"

// FilterByScore keeps matches at or above the threshold, preserving the
// descending-score order the index returned.
func FilterByScore(matches []corpusModel.Match, threshold float32) []corpusModel.Match {
	filtered := make([]corpusModel.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score >= threshold {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// SelectRelevant applies the threshold gate and reports ErrNoRelevantContext
// when nothing survives.
func SelectRelevant(matches []corpusModel.Match, threshold float32) ([]corpusModel.Match, error) {
	relevant := FilterByScore(matches, threshold)
	if len(relevant) == 0 {
		return nil, ErrNoRelevantContext
	}
	return relevant, nil
}

// BuildContext concatenates the surviving matches into the grounding block,
// highest score first so the model sees the strongest evidence earliest.
func BuildContext(matches []corpusModel.Match) string {
	sections := make([]string, 0, len(matches))
	for _, m := range matches {
		sections = append(sections, fmt.Sprintf("Title: %s\nSource: %s\n%s",
			m.Metadata.Title, m.Metadata.Source, m.Metadata.Snippet))
	}
	return strings.Join(sections, contextDelimiter)
}

// BuildUserMessage embeds the assembled context and the original question,
// asking for source attribution in the answer.
func BuildUserMessage(contextText string, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\nAnswer with source attribution.", contextText, question)
}

// sourceURLs lists each surviving match's URL once, in score order.
func sourceURLs(matches []corpusModel.Match) []string {
	seen := make(map[string]bool, len(matches))
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		if url := m.Metadata.URL; url != "" && !seen[url] {
			seen[url] = true
			urls = append(urls, url)
		}
	}
	return urls
}

// Package summarizer condenses free-text review comments into a short
// extractive summary. A remote language service does the real work when
// configured; a local heuristic covers every failure mode so callers never
// see a summarization error.
package summarizer

import (
	"context"
	"log/slog"
	"strings"
)

type Sentence struct {
	Text string  `json:"text"`
	Rank float64 `json:"rank"`
}

type Result struct {
	Summary   string     `json:"summary"`
	Sentences []Sentence `json:"sentences"`
}

// Remote is the external summarization collaborator.
type Remote interface {
	Summarize(ctx context.Context, text string) (Result, error)
}

type Service struct {
	remote Remote
}

// NewService wraps an optional remote collaborator. A nil remote means the
// local fallback handles everything.
func NewService(remote Remote) *Service {
	return &Service{remote: remote}
}

func (s *Service) Summarize(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Summary: "No comments provided", Sentences: []Sentence{}}
	}

	if s.remote != nil {
		result, err := s.remote.Summarize(ctx, text)
		if err == nil && len(result.Sentences) > 0 {
			return result
		}
		if err != nil {
			slog.Warn("remote summarization failed, using fallback", "err", err)
		}
	}

	return Fallback(text)
}

// Fallback keeps the first three sentences longer than 20 characters. When
// nothing qualifies it truncates the raw text to 200 characters with an
// ellipsis.
func Fallback(text string) Result {
	var kept []string
	for _, part := range strings.FieldsFunc(text, isSentenceDelimiter) {
		part = strings.TrimSpace(part)
		if len(part) > 20 {
			kept = append(kept, part)
		}
		if len(kept) == 3 {
			break
		}
	}

	summary := strings.Join(kept, ". ")
	if len(kept) > 0 {
		summary += "."
	} else {
		summary = truncate(text, 200) + "..."
	}

	sentences := make([]Sentence, 0, len(kept))
	for i, t := range kept {
		sentences = append(sentences, Sentence{Text: t, Rank: 1 - float64(i)*0.1})
	}
	return Result{Summary: summary, Sentences: sentences}
}

func isSentenceDelimiter(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

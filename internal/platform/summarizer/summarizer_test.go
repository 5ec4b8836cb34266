package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRemote struct {
	result Result
	err    error
	calls  int
}

func (s *stubRemote) Summarize(ctx context.Context, text string) (Result, error) {
	s.calls++
	return s.result, s.err
}

func TestSummarizeEmptyText(t *testing.T) {
	svc := NewService(nil)

	for _, input := range []string{"", "   ", "\n\t"} {
		result := svc.Summarize(context.Background(), input)
		assert.Equal(t, "No comments provided", result.Summary)
		assert.NotNil(t, result.Sentences)
		assert.Empty(t, result.Sentences)
	}
}

func TestSummarizeUsesRemoteResult(t *testing.T) {
	remote := &stubRemote{result: Result{
		Summary:   "Consistently exceeds expectations in patient care.",
		Sentences: []Sentence{{Text: "Consistently exceeds expectations in patient care.", Rank: 0.99}},
	}}
	svc := NewService(remote)

	result := svc.Summarize(context.Background(), "Consistently exceeds expectations in patient care. Always on time.")
	assert.Equal(t, remote.result.Summary, result.Summary)
	assert.Equal(t, 1, remote.calls)
}

func TestSummarizeFallsBackOnRemoteError(t *testing.T) {
	svc := NewService(&stubRemote{err: errors.New("service unavailable")})

	result := svc.Summarize(context.Background(), "Handles the busiest shifts without complaint every single week. Short one.")
	assert.Contains(t, result.Summary, "Handles the busiest shifts")
}

func TestSummarizeFallsBackOnEmptyRemoteResult(t *testing.T) {
	svc := NewService(&stubRemote{result: Result{Summary: "something", Sentences: nil}})

	result := svc.Summarize(context.Background(), "Demonstrates excellent judgement under pressure during emergencies.")
	assert.Contains(t, result.Summary, "Demonstrates excellent judgement")
}

func TestFallbackKeepsFirstThreeLongSentences(t *testing.T) {
	text := "Shows outstanding commitment to patient outcomes every day. " +
		"Mentors junior staff with patience and genuine care for their growth! " +
		"Communicates clearly with families during difficult conversations? " +
		"Maintains meticulous records across every single rotation."

	result := Fallback(text)

	require.Len(t, result.Sentences, 3)
	assert.Equal(t, "Shows outstanding commitment to patient outcomes every day", result.Sentences[0].Text)
	assert.InDelta(t, 1.0, result.Sentences[0].Rank, 1e-9)
	assert.InDelta(t, 0.9, result.Sentences[1].Rank, 1e-9)
	assert.InDelta(t, 0.8, result.Sentences[2].Rank, 1e-9)
	assert.Equal(t,
		"Shows outstanding commitment to patient outcomes every day. "+
			"Mentors junior staff with patience and genuine care for their growth. "+
			"Communicates clearly with families during difficult conversations.",
		result.Summary)
}

func TestFallbackSkipsShortSentences(t *testing.T) {
	result := Fallback("Too short. This sentence is comfortably longer than twenty characters. Tiny.")

	require.Len(t, result.Sentences, 1)
	assert.Equal(t, "This sentence is comfortably longer than twenty characters.", result.Summary)
}

func TestFallbackTruncatesWhenNothingQualifies(t *testing.T) {
	text := "Excellent work. Keep it up. Team player."

	result := Fallback(text)

	assert.Empty(t, result.Sentences)
	assert.Equal(t, text+"...", result.Summary)
}

func TestFallbackTruncatesLongTextTo200Chars(t *testing.T) {
	text := strings.Repeat("Great job. ", 30)

	result := Fallback(text)

	assert.Empty(t, result.Sentences)
	assert.True(t, strings.HasSuffix(result.Summary, "..."))
	assert.Len(t, []rune(result.Summary), 203)
}

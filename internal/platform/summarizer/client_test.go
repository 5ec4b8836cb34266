package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSummarize(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()

	var serverURL string
	mux.HandleFunc("/language/analyze-text/jobs", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))

		var payload analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.AnalysisInput.Documents, 1)
		require.Equal(t, "ExtractiveSummarization", payload.Tasks[0].Kind)
		require.Equal(t, 3, payload.Tasks[0].Parameters.SentenceCount)

		w.Header().Set("Operation-Location", serverURL+"/jobs/abc123")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/jobs/abc123", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))

		// First poll still running, second succeeds.
		if atomic.AddInt32(&polls, 1) == 1 {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "running"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "succeeded",
			"tasks": map[string]any{
				"items": []any{map[string]any{
					"results": map[string]any{
						"documents": []any{map[string]any{
							"sentences": []any{
								map[string]any{"text": "Delivers exceptional care.", "rankScore": 0.95},
								map[string]any{"text": "A dependable team member.", "rankScore": 0.80},
							},
						}},
					},
				}},
			},
		})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()
	serverURL = ts.URL

	client := NewClient(ts.URL, "test-key", 5, time.Millisecond)
	result, err := client.Summarize(context.Background(), "Delivers exceptional care. A dependable team member.")
	require.NoError(t, err)

	assert.Equal(t, "Delivers exceptional care. A dependable team member.", result.Summary)
	require.Len(t, result.Sentences, 2)
	assert.InDelta(t, 0.95, result.Sentences[0].Rank, 1e-9)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(2))
}

func TestClientSummarizeJobFailure(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/language/analyze-text/jobs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", serverURL+"/jobs/fail")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/jobs/fail", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "failed"})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()
	serverURL = ts.URL

	client := NewClient(ts.URL, "test-key", 3, time.Millisecond)
	_, err := client.Summarize(context.Background(), "anything")
	assert.Error(t, err)
}

func TestClientSummarizeRejectedSubmission(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", 3, time.Millisecond)
	_, err := client.Summarize(context.Background(), "anything")
	assert.Error(t, err)
}

func TestClientSummarizePollingTimeout(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/language/analyze-text/jobs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", serverURL+"/jobs/slow")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/jobs/slow", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "running"})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()
	serverURL = ts.URL

	client := NewClient(ts.URL, "test-key", 2, time.Millisecond)
	_, err := client.Summarize(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

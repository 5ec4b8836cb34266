package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to an Azure-style asynchronous text-analytics endpoint:
// submit a summarization job, then poll the returned operation URL until it
// succeeds or the attempt budget runs out.
type Client struct {
	endpoint     string
	apiKey       string
	pollAttempts int
	pollInterval time.Duration
	httpClient   *http.Client
}

func NewClient(endpoint, apiKey string, pollAttempts int, pollInterval time.Duration) *Client {
	return &Client{
		endpoint:     strings.TrimRight(endpoint, "/"),
		apiKey:       apiKey,
		pollAttempts: pollAttempts,
		pollInterval: pollInterval,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

type analyzeRequest struct {
	DisplayName   string        `json:"displayName"`
	AnalysisInput analysisInput `json:"analysisInput"`
	Tasks         []analyzeTask `json:"tasks"`
}

type analysisInput struct {
	Documents []document `json:"documents"`
}

type document struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type analyzeTask struct {
	Kind       string         `json:"kind"`
	TaskName   string         `json:"taskName"`
	Parameters taskParameters `json:"parameters"`
}

type taskParameters struct {
	SentenceCount int    `json:"sentenceCount"`
	SortBy        string `json:"sortBy"`
}

type jobResponse struct {
	Status string `json:"status"`
	Tasks  struct {
		Items []struct {
			Results struct {
				Documents []struct {
					Sentences []struct {
						Text      string  `json:"text"`
						RankScore float64 `json:"rankScore"`
					} `json:"sentences"`
				} `json:"documents"`
			} `json:"results"`
		} `json:"items"`
	} `json:"tasks"`
}

func (c *Client) Summarize(ctx context.Context, text string) (Result, error) {
	operationURL, err := c.submitJob(ctx, text)
	if err != nil {
		return Result{}, err
	}
	return c.pollJob(ctx, operationURL)
}

func (c *Client) submitJob(ctx context.Context, text string) (string, error) {
	payload := analyzeRequest{
		DisplayName: "Staff Review Summarization",
		AnalysisInput: analysisInput{
			Documents: []document{{ID: "1", Language: "en", Text: text}},
		},
		Tasks: []analyzeTask{{
			Kind:       "ExtractiveSummarization",
			TaskName:   "Extractive Summarization Task",
			Parameters: taskParameters{SentenceCount: 3, SortBy: "Rank"},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := c.endpoint + "/language/analyze-text/jobs?api-version=2023-04-01"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("summarization job rejected: HTTP %d: %s", resp.StatusCode, string(data))
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", errors.New("no Operation-Location header in job response")
	}
	return operationURL, nil
}

func (c *Client) pollJob(ctx context.Context, operationURL string) (Result, error) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		job, err := c.fetchJob(ctx, operationURL)
		if err != nil {
			return Result{}, err
		}

		switch job.Status {
		case "succeeded":
			return buildResult(job)
		case "failed":
			return Result{}, errors.New("summarization job failed")
		}
	}
	return Result{}, errors.New("summarization polling timed out")
}

func (c *Client) fetchJob(ctx context.Context, operationURL string) (jobResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return jobResponse{}, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return jobResponse{}, err
	}
	defer resp.Body.Close()

	var job jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return jobResponse{}, err
	}
	return job, nil
}

func buildResult(job jobResponse) (Result, error) {
	if len(job.Tasks.Items) == 0 || len(job.Tasks.Items[0].Results.Documents) == 0 {
		return Result{}, errors.New("no documents in summarization response")
	}
	doc := job.Tasks.Items[0].Results.Documents[0]
	if len(doc.Sentences) == 0 {
		return Result{}, errors.New("no sentences in summarization response")
	}

	result := Result{Sentences: make([]Sentence, 0, len(doc.Sentences))}
	texts := make([]string, 0, len(doc.Sentences))
	for _, s := range doc.Sentences {
		texts = append(texts, s.Text)
		result.Sentences = append(result.Sentences, Sentence{Text: s.Text, Rank: s.RankScore})
	}
	result.Summary = strings.Join(texts, " ")
	return result, nil
}

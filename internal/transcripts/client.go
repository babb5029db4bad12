package transcripts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"coldcall-crm/internal/config"
)

// JobStatus mirrors the provider's lifecycle for an async transcription job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusError      JobStatus = "error"
)

// Result is one poll of an async transcription job.
type Result struct {
	Status     JobStatus
	Transcript string
}

// Terminal reports whether polling can stop.
func (r Result) Terminal() bool { return r.Status == StatusDone || r.Status == StatusError }

// Client talks to the speech-to-text provider's pre-recorded API. Jobs are
// asynchronous: Submit registers the audio URL and returns a result URL that
// Fetch polls until the job reaches a terminal status.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	http     *http.Client
}

func NewClient(cfg config.TranscribeConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Submit registers audioURL for transcription and returns the URL to poll.
func (c *Client) Submit(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"audio_url": audioURL,
		"language":  c.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcripts: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/pre-recorded", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("transcripts: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-gladia-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcripts: submit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("transcripts: submit: status %d", resp.StatusCode)
	}

	var decoded struct {
		ID        string `json:"id"`
		ResultURL string `json:"result_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("transcripts: decode submit response: %w", err)
	}
	if decoded.ResultURL == "" {
		return "", fmt.Errorf("transcripts: submit: empty result_url")
	}
	return decoded.ResultURL, nil
}

// Fetch polls a job once.
func (c *Client) Fetch(ctx context.Context, resultURL string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("transcripts: build poll request: %w", err)
	}
	req.Header.Set("x-gladia-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("transcripts: poll: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("transcripts: poll: status %d", resp.StatusCode)
	}

	var decoded struct {
		Status string `json:"status"`
		Result struct {
			Transcription struct {
				FullTranscript string `json:"full_transcript"`
			} `json:"transcription"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("transcripts: decode poll response: %w", err)
	}
	return Result{
		Status:     JobStatus(decoded.Status),
		Transcript: decoded.Result.Transcription.FullTranscript,
	}, nil
}

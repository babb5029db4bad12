package transcripts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"coldcall-crm/internal/config"
)

func TestClientSubmitAndFetch(t *testing.T) {
	var polls int
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/v2/pre-recorded", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("submit method = %s", r.Method)
		}
		if r.Header.Get("x-gladia-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var body struct {
			AudioURL string `json:"audio_url"`
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode submit body: %v", err)
		}
		if body.AudioURL != "https://cdn.example/call.mp3" || body.Language != "fr" {
			t.Errorf("submit body = %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":         "job-1",
			"result_url": srv.URL + "/v2/pre-recorded/job-1",
		})
	})
	mux.HandleFunc("/v2/pre-recorded/job-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "processing"
		transcript := ""
		if polls >= 2 {
			status = "done"
			transcript = "allo oui bonjour"
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": status,
			"result": map[string]any{
				"transcription": map[string]any{"full_transcript": transcript},
			},
		})
	})

	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(config.TranscribeConfig{
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Language: "fr",
	})

	resultURL, err := c.Submit(context.Background(), "https://cdn.example/call.mp3")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	res, err := c.Fetch(context.Background(), resultURL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Terminal() {
		t.Fatalf("first poll terminal: %+v", res)
	}

	res, err = c.Fetch(context.Background(), resultURL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Status != StatusDone || res.Transcript != "allo oui bonjour" {
		t.Errorf("result = %+v", res)
	}
}

func TestClientSubmitRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(config.TranscribeConfig{APIKey: "bad", BaseURL: srv.URL, Language: "fr"})
	if _, err := c.Submit(context.Background(), "https://cdn.example/call.mp3"); err == nil {
		t.Fatal("Submit succeeded against a 401 response")
	}
}

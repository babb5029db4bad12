package transcripts

import (
	"context"
	"errors"
	"testing"
	"time"

	"coldcall-crm/internal/config"
)

type fakeAPI struct {
	submitted []string
	results   []Result
	fetched   int
	fetchErr  error
}

func (f *fakeAPI) Submit(ctx context.Context, audioURL string) (string, error) {
	f.submitted = append(f.submitted, audioURL)
	return "https://stt.example/result/1", nil
}

func (f *fakeAPI) Fetch(ctx context.Context, resultURL string) (Result, error) {
	if f.fetchErr != nil {
		return Result{}, f.fetchErr
	}
	i := f.fetched
	f.fetched++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], nil
}

type fakeAttacher struct {
	recordings  map[string]string
	transcripts map[string]string
}

func newFakeAttacher() *fakeAttacher {
	return &fakeAttacher{recordings: map[string]string{}, transcripts: map[string]string{}}
}

func (f *fakeAttacher) AttachRecording(ctx context.Context, leadID, recordingURL string) error {
	f.recordings[leadID] = recordingURL
	return nil
}

func (f *fakeAttacher) AttachTranscript(ctx context.Context, leadID, transcript string) error {
	f.transcripts[leadID] = transcript
	return nil
}

func newTestService(api API, attach Attacher, maxAttempts int) (*Service, *int) {
	svc := NewService(api, attach, config.TranscribeConfig{
		PollInterval:    5 * time.Second,
		MaxPollAttempts: maxAttempts,
	})
	sleeps := 0
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}
	return svc, &sleeps
}

func TestProcessAttachesTranscript(t *testing.T) {
	api := &fakeAPI{results: []Result{
		{Status: StatusQueued},
		{Status: StatusProcessing},
		{Status: StatusDone, Transcript: "bonjour, je vous appelle au sujet de"},
	}}
	attach := newFakeAttacher()
	svc, sleeps := newTestService(api, attach, 60)

	got, err := svc.Process(context.Background(), "lead-1", "https://cdn.example/call.mp3")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got != "bonjour, je vous appelle au sujet de" {
		t.Errorf("transcript = %q", got)
	}
	if attach.recordings["lead-1"] != "https://cdn.example/call.mp3" {
		t.Errorf("recording not attached: %v", attach.recordings)
	}
	if attach.transcripts["lead-1"] != got {
		t.Errorf("transcript not attached: %v", attach.transcripts)
	}
	if api.fetched != 3 {
		t.Errorf("fetched %d times, want 3", api.fetched)
	}
	// No sleep before the first poll.
	if *sleeps != 2 {
		t.Errorf("slept %d times, want 2", *sleeps)
	}
}

func TestProcessTimesOutAfterMaxAttempts(t *testing.T) {
	api := &fakeAPI{results: []Result{{Status: StatusProcessing}}}
	attach := newFakeAttacher()
	svc, _ := newTestService(api, attach, 4)

	_, err := svc.Process(context.Background(), "lead-1", "https://cdn.example/call.mp3")
	if !errors.Is(err, ErrTranscriptionTimeout) {
		t.Fatalf("err = %v, want ErrTranscriptionTimeout", err)
	}
	if api.fetched != 4 {
		t.Errorf("fetched %d times, want 4", api.fetched)
	}
	if len(attach.transcripts) != 0 {
		t.Errorf("transcript attached after timeout: %v", attach.transcripts)
	}
}

func TestProcessProviderError(t *testing.T) {
	api := &fakeAPI{results: []Result{{Status: StatusError}}}
	svc, _ := newTestService(api, newFakeAttacher(), 10)

	_, err := svc.Process(context.Background(), "lead-1", "https://cdn.example/call.mp3")
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("err = %v, want ErrTranscriptionFailed", err)
	}
	if api.fetched != 1 {
		t.Errorf("fetched %d times, want 1", api.fetched)
	}
}

func TestProcessValidatesArguments(t *testing.T) {
	svc, _ := newTestService(&fakeAPI{}, newFakeAttacher(), 10)

	if _, err := svc.Process(context.Background(), "", "https://x"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty lead id: err = %v", err)
	}
	if _, err := svc.Process(context.Background(), "lead-1", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty recording url: err = %v", err)
	}
}

func TestProcessStopsOnCancelledContext(t *testing.T) {
	api := &fakeAPI{results: []Result{{Status: StatusProcessing}}}
	svc := NewService(api, newFakeAttacher(), config.TranscribeConfig{
		PollInterval:    time.Millisecond,
		MaxPollAttempts: 60,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, "lead-1", "https://cdn.example/call.mp3")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

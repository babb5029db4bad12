package transcripts

import (
	"context"
	"errors"
	"time"

	"coldcall-crm/internal/config"
)

var (
	ErrTranscriptionFailed  = errors.New("transcripts: provider reported failure")
	ErrTranscriptionTimeout = errors.New("transcripts: job did not finish in time")
	ErrInvalidArgument      = errors.New("transcripts: invalid argument")
)

// API is the async transcription provider surface used by the service.
type API interface {
	Submit(ctx context.Context, audioURL string) (string, error)
	Fetch(ctx context.Context, resultURL string) (Result, error)
}

// Attacher persists finished artifacts on the owning lead.
type Attacher interface {
	AttachRecording(ctx context.Context, leadID, recordingURL string) error
	AttachTranscript(ctx context.Context, leadID, transcript string) error
}

// Service drives a transcription job end to end: submit the recording, poll
// until terminal, store the transcript on the lead.
//
// Polling is bounded by MaxPollAttempts; a job still running after the last
// attempt is treated as a failure, not left dangling.
type Service struct {
	api    API
	attach Attacher
	cfg    config.TranscribeConfig
	// sleep is injectable for deterministic tests.
	sleep func(context.Context, time.Duration) error
}

func NewService(api API, attach Attacher, cfg config.TranscribeConfig) *Service {
	return &Service{api: api, attach: attach, cfg: cfg, sleep: sleepCtx}
}

// Process transcribes the recording at recordingURL and attaches both the
// recording reference and the resulting transcript to the lead.
func (s *Service) Process(ctx context.Context, leadID, recordingURL string) (string, error) {
	if leadID == "" || recordingURL == "" {
		return "", ErrInvalidArgument
	}

	if err := s.attach.AttachRecording(ctx, leadID, recordingURL); err != nil {
		return "", err
	}

	resultURL, err := s.api.Submit(ctx, recordingURL)
	if err != nil {
		return "", err
	}

	transcript, err := s.poll(ctx, resultURL)
	if err != nil {
		return "", err
	}

	if err := s.attach.AttachTranscript(ctx, leadID, transcript); err != nil {
		return "", err
	}
	return transcript, nil
}

func (s *Service) poll(ctx context.Context, resultURL string) (string, error) {
	for attempt := 0; attempt < s.cfg.MaxPollAttempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, s.cfg.PollInterval); err != nil {
				return "", err
			}
		}

		res, err := s.api.Fetch(ctx, resultURL)
		if err != nil {
			return "", err
		}
		switch res.Status {
		case StatusDone:
			return res.Transcript, nil
		case StatusError:
			return "", ErrTranscriptionFailed
		}
	}
	return "", ErrTranscriptionTimeout
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

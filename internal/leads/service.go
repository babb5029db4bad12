package leads

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("leads: not found")
	ErrInvalidArgument  = errors.New("leads: invalid argument")
	ErrAlreadyCompleted = errors.New("leads: already completed")
)

// Store is the persistence contract for leads.
type Store interface {
	// InsertBatch persists a distributed batch all-or-nothing: a storage
	// failure must leave no partial import behind. The batch arrives with
	// orders relative to 1; the store rebases them onto its own highest
	// assigned order atomically, so concurrent imports never collide, and
	// returns the batch as persisted.
	InsertBatch(ctx context.Context, batch []Lead) ([]Lead, error)

	Get(ctx context.Context, id string) (Lead, bool, error)

	// Complete records the terminal outcome, conditional on the lead still
	// being pending. Returns false when no pending row matched.
	Complete(ctx context.Context, id string, status Status, result CallResult, durationSeconds int, notes string, completedAt time.Time) (bool, error)

	// AttachRecording / AttachTranscript update call artifacts independently
	// of the pending/terminal state.
	AttachRecording(ctx context.Context, id, recordingURL string) (bool, error)
	AttachTranscript(ctx context.Context, id, transcript string) (bool, error)

	ListByAssignee(ctx context.Context, callerID string) ([]Lead, error)
	ListByStatus(ctx context.Context, status Status) ([]Lead, error)
}

// Directory supplies the ordered active-caller list for distribution. The
// identity system owns profiles; this package only consumes validated ids.
type Directory interface {
	ActiveCallerIDs(ctx context.Context) ([]string, error)
}

// Service owns lead ingestion, queueing, and completion.
type Service struct {
	store Store
	dir   Directory
	clock func() time.Time
}

func NewService(store Store, dir Directory) *Service {
	return &Service{store: store, dir: dir, clock: time.Now}
}

// Import distributes a batch of freshly parsed rows across the currently
// active callers and persists it. The import is rejected wholesale when no
// caller is active or any row is invalid; nothing is persisted in that case.
func (s *Service) Import(ctx context.Context, rows []NewLead) ([]Lead, error) {
	if len(rows) == 0 {
		return nil, ErrInvalidArgument
	}

	active, err := s.dir.ActiveCallerIDs(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := Distribute(rows, active, 1)
	if err != nil {
		return nil, err
	}

	return s.store.InsertBatch(ctx, batch)
}

// Complete records a call outcome on a pending lead. The terminal status
// follows the result: no_answer parks the lead on the callback list, any
// answered result completes it. CompletedAt is set exactly once.
func (s *Service) Complete(ctx context.Context, leadID string, result CallResult, durationSeconds int, notes string) (Lead, error) {
	if leadID == "" || durationSeconds < 0 {
		return Lead{}, ErrInvalidArgument
	}
	if !validResult(result) {
		return Lead{}, ErrInvalidArgument
	}

	now := s.clock().UTC()

	done, err := s.store.Complete(ctx, leadID, statusFor(result), result, durationSeconds, notes, now)
	if err != nil {
		return Lead{}, err
	}
	if !done {
		if _, ok, err := s.store.Get(ctx, leadID); err != nil {
			return Lead{}, err
		} else if ok {
			return Lead{}, ErrAlreadyCompleted
		}
		return Lead{}, ErrNotFound
	}

	out, ok, err := s.store.Get(ctx, leadID)
	if err != nil {
		return Lead{}, err
	}
	if !ok {
		return Lead{}, ErrNotFound
	}
	return out, nil
}

// QueueFor returns a caller's assigned leads in queue order.
func (s *Service) QueueFor(ctx context.Context, callerID string) ([]Lead, error) {
	if callerID == "" {
		return nil, ErrInvalidArgument
	}
	return s.store.ListByAssignee(ctx, callerID)
}

// Callbacks returns the callback list: leads that were attempted but not
// answered, to be retried later.
func (s *Service) Callbacks(ctx context.Context) ([]Lead, error) {
	return s.store.ListByStatus(ctx, StatusNoAnswer)
}

func (s *Service) Get(ctx context.Context, leadID string) (Lead, error) {
	if leadID == "" {
		return Lead{}, ErrInvalidArgument
	}
	l, ok, err := s.store.Get(ctx, leadID)
	if err != nil {
		return Lead{}, err
	}
	if !ok {
		return Lead{}, ErrNotFound
	}
	return l, nil
}

// AttachRecording stores the recording reference for a lead's call.
func (s *Service) AttachRecording(ctx context.Context, leadID, recordingURL string) error {
	if leadID == "" || recordingURL == "" {
		return ErrInvalidArgument
	}
	ok, err := s.store.AttachRecording(ctx, leadID, recordingURL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// AttachTranscript stores a transcript produced by the speech-to-text
// collaborator.
func (s *Service) AttachTranscript(ctx context.Context, leadID, transcript string) error {
	if leadID == "" || transcript == "" {
		return ErrInvalidArgument
	}
	ok, err := s.store.AttachTranscript(ctx, leadID, transcript)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

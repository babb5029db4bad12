package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Records are visible to admins, never to callers.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogLeadImport records a batch import with its size and the actor.
func (s *Service) LogLeadImport(ctx context.Context, actorUserID, actorRole, ip string, count int) error {
	return s.Append(ctx, Event{
		Type:        EventTypeLeadImport,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		Message:     fmt.Sprintf("imported %d leads", count),
	})
}

// LogOrphanSweep records one pass of the session sweep. Zero-close passes are
// not logged; the caller skips them.
func (s *Service) LogOrphanSweep(ctx context.Context, closed int) error {
	return s.Append(ctx, Event{
		Type:    EventTypeOrphanSweep,
		Message: fmt.Sprintf("closed %d orphaned sessions", closed),
	})
}

// LogAdminAction records a privileged action such as activating or
// deactivating a caller.
func (s *Service) LogAdminAction(ctx context.Context, actorUserID, actorRole, ip, message, callerID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeAdminAction,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		CallerID:    callerID,
		Message:     message,
	})
}

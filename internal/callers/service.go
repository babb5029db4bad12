package callers

import (
	"context"
	"errors"
	"strings"
	"time"

	"coldcall-crm/internal/rbac"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("callers: not found")
	ErrInvalidArgument = errors.New("callers: invalid argument")
	ErrDuplicateEmail  = errors.New("callers: email already registered")
)

// Store is the persistence contract for the caller directory.
//
// ListActiveCallers must return a stable order (created_at, then id): lead
// distribution is round-robin over this slice, and a deterministic order is
// what makes "why did lead X go to caller Y" answerable after the fact.
type Store interface {
	Create(ctx context.Context, c Caller) error
	Get(ctx context.Context, id string) (Caller, bool, error)
	GetByEmail(ctx context.Context, email string) (Caller, bool, error)
	List(ctx context.Context) ([]Caller, error)
	ListActiveCallers(ctx context.Context) ([]Caller, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
}

// Service manages the caller/admin profile directory.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

type CreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Caller, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return Caller{}, ErrInvalidArgument
	}
	if !rbac.IsKnownRole(req.Role) {
		return Caller{}, ErrInvalidArgument
	}

	if _, ok, err := s.store.GetByEmail(ctx, req.Email); err != nil {
		return Caller{}, err
	} else if ok {
		return Caller{}, ErrDuplicateEmail
	}

	c := Caller{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		IsActive:  true,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.store.Create(ctx, c); err != nil {
		return Caller{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Caller, error) {
	if id == "" {
		return Caller{}, ErrInvalidArgument
	}
	c, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Caller{}, err
	}
	if !ok {
		return Caller{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (Caller, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Caller{}, ErrInvalidArgument
	}
	c, ok, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return Caller{}, err
	}
	if !ok {
		return Caller{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]Caller, error) {
	return s.store.List(ctx)
}

// ActiveCallerIDs returns the ordered id list used for round-robin lead
// distribution. Only active profiles with the caller role participate.
func (s *Service) ActiveCallerIDs(ctx context.Context) ([]string, error) {
	active, err := s.store.ListActiveCallers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(active))
	for _, c := range active {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	if id == "" {
		return ErrInvalidArgument
	}
	ok, err := s.store.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

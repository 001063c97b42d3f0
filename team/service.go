package team

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MemberStore abstracts repository operations for the service.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (Member, error)
	List(ctx context.Context, includeInactive bool) ([]Member, error)
	Create(ctx context.Context, id string, params CreateMemberParams) (Member, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// Service exposes business-level team roster operations.
type Service struct {
	repo  MemberStore
	idGen func() string
}

// NewService builds a Service using the provided repository.
func NewService(repo MemberStore) *Service {
	return &Service{repo: repo, idGen: uuid.NewString}
}

// WithIDGenerator overrides ID generation, used in tests.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// GetByID returns the team member with the given identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Member, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the roster, active members only unless includeInactive is set.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]Member, error) {
	return s.repo.List(ctx, includeInactive)
}

// Create registers a new team member after validating required fields.
func (s *Service) Create(ctx context.Context, params CreateMemberParams) (Member, error) {
	params.FullName = strings.TrimSpace(params.FullName)
	params.Email = strings.TrimSpace(params.Email)
	if params.FullName == "" || params.Email == "" {
		return Member{}, fmt.Errorf("team: full_name and email are required")
	}
	if params.RoleTitle == "" {
		params.RoleTitle = "Corretor"
	}

	return s.repo.Create(ctx, s.idGen(), params)
}

// Deactivate hides a member from the public roster without deleting history.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, false)
}

// Reactivate returns a previously deactivated member to the roster.
func (s *Service) Reactivate(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, true)
}

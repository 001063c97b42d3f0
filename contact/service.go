package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Store abstracts repository operations for the service.
type Store interface {
	Create(ctx context.Context, id string, params CreateParams) (Message, error)
	List(ctx context.Context, onlyUnhandled bool) ([]Message, error)
	MarkHandled(ctx context.Context, id string) (Message, error)
}

type Service struct {
	repo  Store
	idGen func() string
}

func NewService(repo Store) *Service {
	return &Service{repo: repo, idGen: uuid.NewString}
}

// WithIDGenerator overrides ID generation, used in tests.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// Create validates and stores a contact form submission.
func (s *Service) Create(ctx context.Context, params CreateParams) (Message, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	params.Body = strings.TrimSpace(params.Body)

	if params.Name == "" || params.Email == "" || params.Body == "" {
		return Message{}, fmt.Errorf("contact: name, email and body are required")
	}
	if !strings.Contains(params.Email, "@") {
		return Message{}, fmt.Errorf("contact: invalid email address")
	}

	return s.repo.Create(ctx, s.idGen(), params)
}

// List returns stored messages, newest first.
func (s *Service) List(ctx context.Context, onlyUnhandled bool) ([]Message, error) {
	return s.repo.List(ctx, onlyUnhandled)
}

// MarkHandled flags a message as dealt with.
func (s *Service) MarkHandled(ctx context.Context, id string) (Message, error) {
	return s.repo.MarkHandled(ctx, id)
}

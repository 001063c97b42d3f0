package condominium

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Store abstracts repository operations for the service.
type Store interface {
	GetByID(ctx context.Context, id string) (Condominium, error)
	List(ctx context.Context, city string) ([]Condominium, error)
	Create(ctx context.Context, id string, condo Condominium) (Condominium, error)
}

// Service exposes business-level condominium operations.
type Service struct {
	repo  Store
	idGen func() string
}

// NewService builds a Service using the provided repository.
func NewService(repo Store) *Service {
	return &Service{repo: repo, idGen: uuid.NewString}
}

// WithIDGenerator overrides ID generation, used in tests.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// GetByID returns the condominium with the given identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Condominium, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns condominiums, optionally filtered by city.
func (s *Service) List(ctx context.Context, city string) ([]Condominium, error) {
	return s.repo.List(ctx, city)
}

// Create validates and stores a new condominium.
func (s *Service) Create(ctx context.Context, condo Condominium) (Condominium, error) {
	condo.Name = strings.TrimSpace(condo.Name)
	condo.City = strings.TrimSpace(condo.City)
	condo.State = strings.ToUpper(strings.TrimSpace(condo.State))

	if condo.Name == "" || condo.City == "" {
		return Condominium{}, fmt.Errorf("condominium: name and city are required")
	}
	if len(condo.State) != 2 {
		return Condominium{}, fmt.Errorf("condominium: state must be a two-letter UF code")
	}
	if condo.Amenities == nil {
		condo.Amenities = []string{}
	}

	return s.repo.Create(ctx, s.idGen(), condo)
}

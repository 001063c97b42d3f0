package property

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidTransition signals a listing status change that is not allowed.
var ErrInvalidTransition = errors.New("property: invalid status transition")

// CreateParams contains write parameters for publishing a listing.
type CreateParams struct {
	Code          string
	Title         string
	Description   string
	Type          Type
	Street        string
	District      string
	City          string
	State         string
	Price         int64
	Bedrooms      int
	Bathrooms     int
	ParkingSpaces int
	AreaM2        float64
	CondominiumID *string
	PhotoURLs     []string
}

// Service exposes business-level listing operations.
type Service struct {
	repo  Repository
	idGen func() string
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, idGen: uuid.NewString}
}

// WithIDGenerator overrides ID generation, used in tests.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// Create validates and publishes a new listing as available.
func (s *Service) Create(ctx context.Context, params CreateParams) (Listing, error) {
	params.Code = strings.TrimSpace(params.Code)
	params.Title = strings.TrimSpace(params.Title)
	params.City = strings.TrimSpace(params.City)
	params.State = strings.ToUpper(strings.TrimSpace(params.State))

	if params.Code == "" || params.Title == "" || params.City == "" {
		return Listing{}, fmt.Errorf("property: code, title and city are required")
	}
	if len(params.State) != 2 {
		return Listing{}, fmt.Errorf("property: state must be a two-letter UF code")
	}
	if !params.Type.Valid() {
		return Listing{}, fmt.Errorf("property: invalid type %q", params.Type)
	}
	if params.Price <= 0 {
		return Listing{}, fmt.Errorf("property: price must be positive")
	}
	if params.PhotoURLs == nil {
		params.PhotoURLs = []string{}
	}

	return s.repo.Create(ctx, Listing{
		ID:            s.idGen(),
		Code:          params.Code,
		Title:         params.Title,
		Description:   params.Description,
		Type:          params.Type,
		Status:        StatusAvailable,
		Street:        params.Street,
		District:      params.District,
		City:          params.City,
		State:         params.State,
		Price:         params.Price,
		Bedrooms:      params.Bedrooms,
		Bathrooms:     params.Bathrooms,
		ParkingSpaces: params.ParkingSpaces,
		AreaM2:        params.AreaM2,
		CondominiumID: params.CondominiumID,
		PhotoURLs:     params.PhotoURLs,
	})
}

// Get returns the listing with the given identifier.
func (s *Service) Get(ctx context.Context, id string) (Listing, error) {
	return s.repo.Get(ctx, id)
}

// List returns listings matching the filters plus a total count for paging.
func (s *Service) List(ctx context.Context, filters Filters) ([]Listing, int, error) {
	return s.repo.List(ctx, filters)
}

// Update replaces the mutable fields of a listing. Code, type and status are
// not editable through this path.
func (s *Service) Update(ctx context.Context, listing Listing) (Listing, error) {
	if listing.ID == "" {
		return Listing{}, ErrNotFound
	}
	if listing.Price <= 0 {
		return Listing{}, fmt.Errorf("property: price must be positive")
	}
	return s.repo.Update(ctx, listing)
}

// UpdateStatus moves a listing between availability states. A sold listing
// is terminal and cannot be relisted through this path.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Listing, error) {
	if !status.Valid() {
		return Listing{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if current.Status == status {
		return current, nil
	}
	if current.Status == StatusSold {
		return Listing{}, fmt.Errorf("%w: listing already sold", ErrInvalidTransition)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

package sale

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vendaflow/storage"
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service owns every mutation of sale processes. Each mutation runs as one
// transaction: lock the sale row, rehydrate the record, apply the pure
// transition, write the record back. The row lock serializes concurrent
// writers per sale, which is what keeps the single-active-step and
// monotonic-cursor invariants intact under racing requests.
type Service struct {
	pool  TxBeginner
	repo  Repository
	store storage.ObjectStore
	idGen func() string
	now   func() time.Time
}

func NewService(pool TxBeginner, repo Repository, store storage.ObjectStore) *Service {
	return &Service{
		pool:  pool,
		repo:  repo,
		store: store,
		idGen: func() string { return uuid.NewString() },
		now:   time.Now,
	}
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get returns the full sale record.
func (s *Service) Get(ctx context.Context, saleID string) (Process, error) {
	return s.repo.Get(ctx, saleID)
}

// List returns a page of sale records plus the unpaged total.
func (s *Service) List(ctx context.Context, filters Filters) ([]Process, int, error) {
	return s.repo.List(ctx, filters)
}

// Create promotes an accepted offer into a tracked sale process.
func (s *Service) Create(ctx context.Context, params CreateParams) (Process, error) {
	p, err := NewProcess(s.idGen(), params, s.now().UTC())
	if err != nil {
		return Process{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Process{}, fmt.Errorf("sale: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.Create(ctx, tx, p); err != nil {
		return Process{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Process{}, fmt.Errorf("sale: commit create: %w", err)
	}
	return p, nil
}

// ToggleItem flips a checklist item between approved and pending. It never
// completes the step; the operator does that explicitly.
func (s *Service) ToggleItem(ctx context.Context, saleID, stepSlug, itemSlug string, checked bool) (Process, error) {
	return s.mutate(ctx, saleID, func(p *Process) error {
		return p.ToggleItem(stepSlug, itemSlug, checked)
	})
}

// UploadDocument stores the document and records it on the checklist item.
// The store write happens before the sale record is touched, so a store
// failure surfaces ErrUploadFailed with the item left exactly as it was.
func (s *Service) UploadDocument(ctx context.Context, saleID, stepSlug, itemSlug, filename, contentType string, r io.Reader) (Process, error) {
	// Validate targets before paying for the store write.
	current, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return Process{}, err
	}
	if _, err := current.Item(stepSlug, itemSlug); err != nil {
		return Process{}, err
	}

	key := fmt.Sprintf("sales/%s/%s/%s-%s", saleID, stepSlug, itemSlug, sanitizeFilename(filename))
	url, err := s.store.Put(ctx, key, contentType, r)
	if err != nil {
		return Process{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return s.mutate(ctx, saleID, func(p *Process) error {
		return p.ApplyUpload(stepSlug, itemSlug, url)
	})
}

// CompleteStep finishes the current step and advances the cursor.
func (s *Service) CompleteStep(ctx context.Context, saleID, stepSlug string) (Process, error) {
	return s.mutate(ctx, saleID, func(p *Process) error {
		return p.CompleteStep(stepSlug)
	})
}

// SkipStep skips an optional in-progress step and advances the cursor.
func (s *Service) SkipStep(ctx context.Context, saleID, stepSlug string) (Process, error) {
	return s.mutate(ctx, saleID, func(p *Process) error {
		return p.SkipStep(stepSlug)
	})
}

// SetRGIProtocol initializes the registry tracker on the RGI step.
func (s *Service) SetRGIProtocol(ctx context.Context, saleID, stepSlug, protocol string) (Process, error) {
	return s.mutate(ctx, saleID, func(p *Process) error {
		return p.SetRGIProtocol(stepSlug, protocol, s.now().UTC())
	})
}

// SetRGIStage moves the registry tracker to a new stage.
func (s *Service) SetRGIStage(ctx context.Context, saleID, stepSlug string, stage RGIStage) (Process, error) {
	return s.mutate(ctx, saleID, func(p *Process) error {
		return p.SetRGIStage(stepSlug, stage, s.now().UTC())
	})
}

// mutate is the read-modify-write loop shared by every transition: one
// transaction, sale row locked for its whole duration.
func (s *Service) mutate(ctx context.Context, saleID string, apply func(p *Process) error) (Process, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Process{}, fmt.Errorf("sale: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.repo.GetForUpdate(ctx, tx, saleID)
	if err != nil {
		return Process{}, err
	}

	if err := apply(&p); err != nil {
		return Process{}, err
	}

	if err := s.repo.Save(ctx, tx, p); err != nil {
		return Process{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Process{}, fmt.Errorf("sale: commit: %w", err)
	}
	return p, nil
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "documento"
	}
	return string(out)
}

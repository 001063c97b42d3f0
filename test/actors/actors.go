package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"vendaflow/sale"
)

// tolerable reports whether an error is an expected domain rejection under
// contention rather than a harness failure.
func tolerable(err error) bool {
	return errors.Is(err, sale.ErrInvalidTransition) ||
		errors.Is(err, sale.ErrStepNotFound) ||
		errors.Is(err, sale.ErrItemNotFound) ||
		errors.Is(err, sale.ErrConflict) ||
		errors.Is(err, sale.ErrUploadFailed)
}

func pause() {
	time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
}

// Completer hammers CompleteStep on whatever step is current, racing the
// other actors for the row lock.
func Completer(ctx context.Context, svc *sale.Service, saleID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		p, err := svc.Get(ctx, saleID)
		if err != nil {
			return fmt.Errorf("completer get: %w", err)
		}
		if p.Status == sale.StatusCompleted {
			pause()
			continue
		}
		current := p.Steps[p.CurrentStep]

		if _, err := svc.CompleteStep(ctx, saleID, current.Slug); err != nil && !tolerable(err) {
			return fmt.Errorf("completer complete %s: %w", current.Slug, err)
		}
		pause()
	}
}

// Toggler randomly checks and unchecks checklist items across all steps.
func Toggler(ctx context.Context, svc *sale.Service, saleID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		p, err := svc.Get(ctx, saleID)
		if err != nil {
			return fmt.Errorf("toggler get: %w", err)
		}

		step := p.Steps[rand.Intn(len(p.Steps))]
		if len(step.Checklist) == 0 {
			pause()
			continue
		}
		item := step.Checklist[rand.Intn(len(step.Checklist))]

		if _, err := svc.ToggleItem(ctx, saleID, step.Slug, item.Slug, rand.Intn(2) == 0); err != nil && !tolerable(err) {
			return fmt.Errorf("toggler %s/%s: %w", step.Slug, item.Slug, err)
		}
		pause()
	}
}

// Uploader pushes small documents onto random checklist items.
func Uploader(ctx context.Context, svc *sale.Service, saleID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		p, err := svc.Get(ctx, saleID)
		if err != nil {
			return fmt.Errorf("uploader get: %w", err)
		}

		step := p.Steps[rand.Intn(len(p.Steps))]
		if len(step.Checklist) == 0 {
			pause()
			continue
		}
		item := step.Checklist[rand.Intn(len(step.Checklist))]

		body := strings.NewReader(fmt.Sprintf("stress-doc-%d", rand.Int63()))
		_, err = svc.UploadDocument(ctx, saleID, step.Slug, item.Slug, item.Slug+".pdf", "application/pdf", body)
		if err != nil && !tolerable(err) {
			return fmt.Errorf("uploader %s/%s: %w", step.Slug, item.Slug, err)
		}
		pause()
	}
}

// RGIOperator sets the registry protocol once and then walks random stages.
func RGIOperator(ctx context.Context, svc *sale.Service, saleID, stepSlug string, stop <-chan struct{}) error {
	stages := []sale.RGIStage{sale.StageAnalysis, sale.StageRequirements, sale.StageRegistered}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if _, err := svc.SetRGIProtocol(ctx, saleID, stepSlug, fmt.Sprintf("RGI-%d", rand.Int63())); err != nil && !tolerable(err) {
			return fmt.Errorf("rgi protocol: %w", err)
		}
		if _, err := svc.SetRGIStage(ctx, saleID, stepSlug, stages[rand.Intn(len(stages))]); err != nil && !tolerable(err) {
			return fmt.Errorf("rgi stage: %w", err)
		}
		pause()
	}
}

// Reader re-reads the sale under every role to shake out races between the
// read path and the serialized writers.
func Reader(ctx context.Context, svc *sale.Service, saleID string, stop <-chan struct{}) error {
	roles := []sale.Role{sale.RoleAdmin, sale.RoleCorretor, sale.RoleComprador, sale.RoleVendedor, sale.RoleParceiro}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		p, err := svc.Get(ctx, saleID)
		if err != nil {
			return fmt.Errorf("reader get: %w", err)
		}

		filtered := sale.FilterForRole(p, roles[rand.Intn(len(roles))])
		if len(filtered.Steps) != len(p.Steps) {
			return fmt.Errorf("reader: filtering changed step count")
		}
		pause()
	}
}

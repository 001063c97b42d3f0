package sale

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSaleNotFound signals the sale record does not exist.
	ErrSaleNotFound = errors.New("sale: not found")
	// ErrStepNotFound signals the step slug does not exist in the sale.
	ErrStepNotFound = errors.New("sale: step not found")
	// ErrItemNotFound signals the checklist item slug does not exist.
	ErrItemNotFound = errors.New("sale: checklist item not found")
	// ErrInvalidTransition signals a precondition violation; state is left
	// untouched.
	ErrInvalidTransition = errors.New("sale: invalid transition")
	// ErrUploadFailed signals the object store rejected or errored; item
	// state is preserved unchanged.
	ErrUploadFailed = errors.New("sale: document upload failed")
	// ErrConflict signals a concurrent writer was detected; callers should
	// re-read and retry.
	ErrConflict = errors.New("sale: concurrent modification")
)

// ToggleItem sets the item status to approved when checked, back to pending
// otherwise. A previously stored file URL is kept so unchecking does not
// orphan the document reference. Toggling is allowed on non-current steps
// for pre-staging; it never completes a step on its own.
func (p *Process) ToggleItem(stepSlug, itemSlug string, checked bool) error {
	item, err := p.Item(stepSlug, itemSlug)
	if err != nil {
		return err
	}
	if checked {
		item.Status = ItemApproved
	} else {
		item.Status = ItemPending
	}
	return nil
}

// ApplyUpload records a stored document on the item. Like ToggleItem it is
// allowed on non-current steps.
func (p *Process) ApplyUpload(stepSlug, itemSlug, fileURL string) error {
	item, err := p.Item(stepSlug, itemSlug)
	if err != nil {
		return err
	}
	if fileURL == "" {
		return fmt.Errorf("%w: empty file url", ErrUploadFailed)
	}
	item.Status = ItemUploaded
	item.FileURL = &fileURL
	return nil
}

// CompleteStep finishes the current step and advances the cursor. The step
// must be the one at the cursor, must be in progress, and must pass its
// completion gate: every required checklist item uploaded or approved, or,
// for the RGI tracker, the registry stage reached "registered".
func (p *Process) CompleteStep(slug string) error {
	step, err := p.currentStep(slug)
	if err != nil {
		return err
	}

	if step.Action == ActionRGITracker {
		if step.RGI == nil || step.RGI.CurrentStage != StageRegistered {
			return fmt.Errorf("%w: step %q requires the registry to reach %s", ErrInvalidTransition, slug, StageRegistered)
		}
	} else {
		for _, item := range step.Checklist {
			if item.Required && !item.Done() {
				return fmt.Errorf("%w: step %q has pending required item %q", ErrInvalidTransition, slug, item.Slug)
			}
		}
	}

	step.Status = StepCompleted
	p.advance()
	return nil
}

// SkipStep marks an optional in-progress step skipped and advances the
// cursor exactly as CompleteStep does.
func (p *Process) SkipStep(slug string) error {
	step, err := p.currentStep(slug)
	if err != nil {
		return err
	}
	if !step.Optional {
		return fmt.Errorf("%w: step %q is not optional", ErrInvalidTransition, slug)
	}

	step.Status = StepSkipped
	p.advance()
	return nil
}

// SetRGIProtocol initializes the registry tracker. The protocol is
// immutable once set.
func (p *Process) SetRGIProtocol(stepSlug, protocol string, now time.Time) error {
	step, err := p.Step(stepSlug)
	if err != nil {
		return err
	}
	if step.Action != ActionRGITracker {
		return fmt.Errorf("%w: step %q has no registry tracker", ErrInvalidTransition, stepSlug)
	}
	if protocol == "" {
		return fmt.Errorf("%w: empty protocol", ErrInvalidTransition)
	}
	if step.RGI != nil && step.RGI.Protocol != "" {
		return fmt.Errorf("%w: protocol already set", ErrInvalidTransition)
	}

	step.RGI = &RGIData{
		Protocol:     protocol,
		ProtocolDate: now,
		CurrentStage: StageProtocol,
		History: []RGIHistoryEntry{
			{Seq: 1, Status: HistoryCurrent, Label: StageProtocol.Label(), Date: now},
		},
	}
	return nil
}

// SetRGIStage moves the registry tracker to a new stage. Stages are
// free-form once a protocol exists: the registry office routinely bounces
// between analysis and requirements, so no transition table is enforced.
// History is append-only; the previous current entry is flipped to
// completed and a new current entry is appended, even when the same stage
// is reselected.
func (p *Process) SetRGIStage(stepSlug string, stage RGIStage, now time.Time) error {
	step, err := p.Step(stepSlug)
	if err != nil {
		return err
	}
	if step.Action != ActionRGITracker {
		return fmt.Errorf("%w: step %q has no registry tracker", ErrInvalidTransition, stepSlug)
	}
	if !stage.Valid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, stage)
	}
	if step.RGI == nil || step.RGI.Protocol == "" {
		return fmt.Errorf("%w: protocol not set", ErrInvalidTransition)
	}

	for i := range step.RGI.History {
		if step.RGI.History[i].Status == HistoryCurrent {
			step.RGI.History[i].Status = HistoryCompleted
		}
	}
	step.RGI.History = append(step.RGI.History, RGIHistoryEntry{
		Seq:    len(step.RGI.History) + 1,
		Status: HistoryCurrent,
		Label:  stage.Label(),
		Date:   now,
	})
	step.RGI.CurrentStage = stage
	return nil
}

// currentStep resolves the slug and enforces the strictly sequential
// ordering rule: only the in-progress step at the cursor may transition.
func (p *Process) currentStep(slug string) (*Step, error) {
	step, err := p.Step(slug)
	if err != nil {
		return nil, err
	}
	if step.Terminal() {
		return nil, fmt.Errorf("%w: step %q is already %s", ErrInvalidTransition, slug, step.Status)
	}
	if p.CurrentStep >= len(p.Steps) || p.Steps[p.CurrentStep].Slug != slug {
		return nil, fmt.Errorf("%w: step %q is not the current step", ErrInvalidTransition, slug)
	}
	if step.Status != StepInProgress {
		return nil, fmt.Errorf("%w: step %q is not in progress", ErrInvalidTransition, slug)
	}
	return step, nil
}

// advance moves the cursor forward by one and activates the next step. When
// the cursor passes the last step the whole process is completed.
func (p *Process) advance() {
	p.CurrentStep++
	if p.CurrentStep < len(p.Steps) {
		p.Steps[p.CurrentStep].Status = StepInProgress
		return
	}
	p.Status = StatusCompleted
}

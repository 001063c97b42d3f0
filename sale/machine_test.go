package sale

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestProcess(t *testing.T, payment PaymentType) Process {
	t.Helper()
	p, err := NewProcess("sale-1", CreateParams{
		PropertyID:  "prop-1",
		Buyer:       Party{Name: "Carlos Lima"},
		Seller:      Party{Name: "Marta Souza"},
		OfferAmount: 450_000_00,
		PaymentType: payment,
	}, t0)
	if err != nil {
		t.Fatalf("new process: %v", err)
	}
	return p
}

func assertSingleActive(t *testing.T, p Process) {
	t.Helper()
	active := 0
	for i, step := range p.Steps {
		if step.Status == StepInProgress {
			active++
			if i != p.CurrentStep {
				t.Fatalf("in-progress step at index %d but cursor is %d", i, p.CurrentStep)
			}
		}
	}
	if active > 1 {
		t.Fatalf("expected at most one in-progress step, got %d", active)
	}
	if p.CurrentStep < 0 || p.CurrentStep > len(p.Steps) {
		t.Fatalf("cursor %d out of range [0,%d]", p.CurrentStep, len(p.Steps))
	}
}

// approveRequired checks off every required item of the step.
func approveRequired(t *testing.T, p *Process, slug string) {
	t.Helper()
	step, err := p.Step(slug)
	if err != nil {
		t.Fatalf("step %s: %v", slug, err)
	}
	for _, item := range step.Checklist {
		if item.Required {
			if err := p.ToggleItem(slug, item.Slug, true); err != nil {
				t.Fatalf("toggle %s/%s: %v", slug, item.Slug, err)
			}
		}
	}
}

// completeUntil drives the process forward until slug is the current step.
func completeUntil(t *testing.T, p *Process, slug string) {
	t.Helper()
	for p.CurrentStep < len(p.Steps) && p.Steps[p.CurrentStep].Slug != slug {
		current := p.Steps[p.CurrentStep].Slug
		step, _ := p.Step(current)
		if step.Action == ActionRGITracker {
			if err := p.SetRGIProtocol(current, "PROT-0001", t0); err != nil {
				t.Fatalf("set protocol on %s: %v", current, err)
			}
			if err := p.SetRGIStage(current, StageRegistered, t0); err != nil {
				t.Fatalf("set stage on %s: %v", current, err)
			}
		} else {
			approveRequired(t, p, current)
		}
		before := p.CurrentStep
		if err := p.CompleteStep(current); err != nil {
			t.Fatalf("complete %s: %v", current, err)
		}
		if p.CurrentStep != before+1 {
			t.Fatalf("cursor advanced from %d to %d, want +1", before, p.CurrentStep)
		}
		assertSingleActive(t, *p)
	}
	if p.CurrentStep >= len(p.Steps) {
		t.Fatalf("ran past the last step looking for %s", slug)
	}
}

func TestNewProcess_InitialState(t *testing.T) {
	p := newTestProcess(t, PaymentFinanced)

	if p.Status != StatusActive {
		t.Fatalf("expected active, got %s", p.Status)
	}
	if p.CurrentStep != 0 {
		t.Fatalf("expected cursor 0, got %d", p.CurrentStep)
	}
	if p.Steps[0].Status != StepInProgress {
		t.Fatalf("expected first step in progress, got %s", p.Steps[0].Status)
	}
	for _, step := range p.Steps[1:] {
		if step.Status != StepPending {
			t.Fatalf("expected step %s pending, got %s", step.Slug, step.Status)
		}
	}
	assertSingleActive(t, p)

	if _, err := p.Step("financiamento"); err != nil {
		t.Fatalf("financed sale should carry a financing step: %v", err)
	}
}

func TestNewProcess_CashSkipsFinancing(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	if _, err := p.Step("financiamento"); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("cash sale should have no financing step, got %v", err)
	}
}

func TestCompleteStep_RequiredItemGate(t *testing.T) {
	p := newTestProcess(t, PaymentCash)

	err := p.CompleteStep("documentacao")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if p.CurrentStep != 0 {
		t.Fatalf("cursor moved to %d on failed completion", p.CurrentStep)
	}
	if p.Steps[0].Status != StepInProgress {
		t.Fatalf("step status changed to %s on failed completion", p.Steps[0].Status)
	}
}

func TestCompleteStep_AdvancesCursor(t *testing.T) {
	p := newTestProcess(t, PaymentCash)

	approveRequired(t, &p, "documentacao")
	if p.Steps[0].Status != StepInProgress {
		t.Fatal("toggling items must not complete the step")
	}

	if err := p.CompleteStep("documentacao"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if p.Steps[0].Status != StepCompleted {
		t.Fatalf("expected completed, got %s", p.Steps[0].Status)
	}
	if p.CurrentStep != 1 {
		t.Fatalf("expected cursor 1, got %d", p.CurrentStep)
	}
	if p.Steps[1].Status != StepInProgress {
		t.Fatalf("expected next step in progress, got %s", p.Steps[1].Status)
	}
	assertSingleActive(t, p)
}

func TestCompleteStep_NonCurrentRejected(t *testing.T) {
	p := newTestProcess(t, PaymentCash)

	approveRequired(t, &p, "escritura")
	if err := p.CompleteStep("escritura"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for non-current step, got %v", err)
	}
}

func TestCompleteStep_UnknownStep(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	if err := p.CompleteStep("nope"); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
}

func TestToggleItem_PreStagingOnNonCurrentStep(t *testing.T) {
	p := newTestProcess(t, PaymentCash)

	if err := p.ToggleItem("escritura", "guia-itbi", true); err != nil {
		t.Fatalf("pre-staging toggle should be allowed: %v", err)
	}
	item, _ := p.Item("escritura", "guia-itbi")
	if item.Status != ItemApproved {
		t.Fatalf("expected approved, got %s", item.Status)
	}

	if err := p.ToggleItem("escritura", "guia-itbi", false); err != nil {
		t.Fatalf("uncheck: %v", err)
	}
	if item.Status != ItemPending {
		t.Fatalf("expected pending after uncheck, got %s", item.Status)
	}
}

func TestApplyUpload_KeepsFileOnUncheck(t *testing.T) {
	p := newTestProcess(t, PaymentCash)

	if err := p.ApplyUpload("documentacao", "matricula-imovel", "https://files.test/m.pdf"); err != nil {
		t.Fatalf("apply upload: %v", err)
	}
	item, _ := p.Item("documentacao", "matricula-imovel")
	if item.Status != ItemUploaded || item.FileURL == nil {
		t.Fatalf("expected uploaded with url, got %s %v", item.Status, item.FileURL)
	}

	if err := p.ToggleItem("documentacao", "matricula-imovel", false); err != nil {
		t.Fatalf("uncheck: %v", err)
	}
	if item.Status != ItemPending {
		t.Fatalf("expected pending, got %s", item.Status)
	}
	if item.FileURL == nil {
		t.Fatal("unchecking must not drop the stored document reference")
	}
}

func TestApplyUpload_UnknownItem(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	if err := p.ApplyUpload("documentacao", "nope", "https://files.test/x.pdf"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestSkipStep_NonOptionalRejected(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	if err := p.SkipStep("documentacao"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if p.CurrentStep != 0 {
		t.Fatalf("cursor moved on rejected skip: %d", p.CurrentStep)
	}
}

func TestSkipStep_OptionalNonCurrentRejected(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	if err := p.SkipStep("vistoria"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestSkipStep_AdvancesAndBecomesTerminal(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	completeUntil(t, &p, "vistoria")

	before := p.CurrentStep
	if err := p.SkipStep("vistoria"); err != nil {
		t.Fatalf("skip: %v", err)
	}
	step, _ := p.Step("vistoria")
	if step.Status != StepSkipped {
		t.Fatalf("expected skipped, got %s", step.Status)
	}
	if p.CurrentStep != before+1 {
		t.Fatalf("expected cursor %d, got %d", before+1, p.CurrentStep)
	}
	assertSingleActive(t, p)

	if err := p.CompleteStep("vistoria"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing a skipped step must fail, got %v", err)
	}
}

func TestRGI_ProtocolAndStages(t *testing.T) {
	p := newTestProcess(t, PaymentCash)

	if err := p.SetRGIStage("rgi", StageAnalysis, t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("stage before protocol must fail, got %v", err)
	}

	if err := p.SetRGIProtocol("rgi", "PROT-123", t0); err != nil {
		t.Fatalf("set protocol: %v", err)
	}
	step, _ := p.Step("rgi")
	if step.RGI.CurrentStage != StageProtocol {
		t.Fatalf("expected stage protocol, got %s", step.RGI.CurrentStage)
	}
	if len(step.RGI.History) != 1 || step.RGI.History[0].Status != HistoryCurrent || step.RGI.History[0].Label != "Protocolado" {
		t.Fatalf("unexpected initial history: %+v", step.RGI.History)
	}

	if err := p.SetRGIProtocol("rgi", "PROT-456", t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("protocol is immutable, got %v", err)
	}

	t1 := t0.Add(48 * time.Hour)
	if err := p.SetRGIStage("rgi", StageRegistered, t1); err != nil {
		t.Fatalf("set stage: %v", err)
	}
	if step.RGI.CurrentStage != StageRegistered {
		t.Fatalf("expected registered, got %s", step.RGI.CurrentStage)
	}
	if len(step.RGI.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(step.RGI.History))
	}
	if step.RGI.History[0].Status != HistoryCompleted || step.RGI.History[0].Label != "Protocolado" || !step.RGI.History[0].Date.Equal(t0) {
		t.Fatalf("prior entry mutated beyond status flip: %+v", step.RGI.History[0])
	}
	if step.RGI.History[1].Status != HistoryCurrent || step.RGI.History[1].Label != "Registrado" {
		t.Fatalf("unexpected current entry: %+v", step.RGI.History[1])
	}
}

func TestRGI_StagesAreFreeForm(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	if err := p.SetRGIProtocol("rgi", "PROT-123", t0); err != nil {
		t.Fatalf("set protocol: %v", err)
	}

	// Registry offices bounce between analysis and requirements; the
	// tracker allows any stage order and repeated stages keep appending.
	for i, stage := range []RGIStage{StageAnalysis, StageRequirements, StageAnalysis, StageAnalysis} {
		if err := p.SetRGIStage("rgi", stage, t0.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("stage %s: %v", stage, err)
		}
	}
	step, _ := p.Step("rgi")
	if len(step.RGI.History) != 5 {
		t.Fatalf("expected 5 history entries, got %d", len(step.RGI.History))
	}
	current := 0
	for _, entry := range step.RGI.History {
		if entry.Status == HistoryCurrent {
			current++
		}
	}
	if current != 1 {
		t.Fatalf("expected exactly one current entry, got %d", current)
	}
}

func TestRGI_InvalidStageRejected(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	if err := p.SetRGIProtocol("rgi", "PROT-123", t0); err != nil {
		t.Fatalf("set protocol: %v", err)
	}
	if err := p.SetRGIStage("rgi", RGIStage("arquivado"), t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRGI_CompletionGate(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	completeUntil(t, &p, "vistoria")
	if err := p.SkipStep("vistoria"); err != nil {
		t.Fatalf("skip vistoria: %v", err)
	}
	approveRequired(t, &p, "escritura")
	if err := p.CompleteStep("escritura"); err != nil {
		t.Fatalf("complete escritura: %v", err)
	}

	if err := p.CompleteStep("rgi"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("rgi completion before registration must fail, got %v", err)
	}

	if err := p.SetRGIProtocol("rgi", "PROT-123", t0); err != nil {
		t.Fatalf("set protocol: %v", err)
	}
	if err := p.CompleteStep("rgi"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("rgi completion before registered stage must fail, got %v", err)
	}

	if err := p.SetRGIStage("rgi", StageRegistered, t0); err != nil {
		t.Fatalf("set stage: %v", err)
	}
	if err := p.CompleteStep("rgi"); err != nil {
		t.Fatalf("rgi completion after registration: %v", err)
	}
	assertSingleActive(t, p)
}

func TestProcess_RunsToCompletion(t *testing.T) {
	p := newTestProcess(t, PaymentFinanced)
	completeUntil(t, &p, "entrega-chaves")
	approveRequired(t, &p, "entrega-chaves")
	if err := p.CompleteStep("entrega-chaves"); err != nil {
		t.Fatalf("complete last step: %v", err)
	}

	if p.Status != StatusCompleted {
		t.Fatalf("expected completed process, got %s", p.Status)
	}
	if p.CurrentStep != len(p.Steps) {
		t.Fatalf("expected cursor %d, got %d", len(p.Steps), p.CurrentStep)
	}
	for _, step := range p.Steps {
		if !step.Terminal() {
			t.Fatalf("step %s left non-terminal: %s", step.Slug, step.Status)
		}
	}

	if err := p.CompleteStep("entrega-chaves"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing after the end must fail, got %v", err)
	}
}

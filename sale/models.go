package sale

import "time"

// Status represents the lifecycle of a whole sale process.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// StepStatus is the per-step state machine. Completed and skipped are
// terminal for the step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepSkipped    StepStatus = "skipped"
)

// ItemStatus tracks a single checklist item. Uploaded means a document was
// stored for the item; approved means an operator signed it off.
type ItemStatus string

const (
	ItemPending  ItemStatus = "pending"
	ItemUploaded ItemStatus = "uploaded"
	ItemApproved ItemStatus = "approved"
)

// StepAction selects the interaction pattern a step uses. It does not
// change the transition rules.
type StepAction string

const (
	ActionUpload     StepAction = "upload"
	ActionRGITracker StepAction = "rgi_tracker"
	ActionExternal   StepAction = "external"
	ActionManual     StepAction = "manual"
)

func (a StepAction) Valid() bool {
	switch a {
	case ActionUpload, ActionRGITracker, ActionExternal, ActionManual:
		return true
	default:
		return false
	}
}

// ItemCategory partitions checklist items for role-based visibility.
type ItemCategory string

const (
	CategoryProperty ItemCategory = "imovel"
	CategorySeller   ItemCategory = "vendedor"
	CategoryBuyer    ItemCategory = "comprador"
)

// RGIStage is the land-registry sub-tracker stage. Requirements
// ("exigências") is a recoverable exception state, so stages are not
// required to progress monotonically.
type RGIStage string

const (
	StageProtocol     RGIStage = "protocol"
	StageAnalysis     RGIStage = "analysis"
	StageRequirements RGIStage = "requirements"
	StageRegistered   RGIStage = "registered"
)

func (s RGIStage) Valid() bool {
	switch s {
	case StageProtocol, StageAnalysis, StageRequirements, StageRegistered:
		return true
	default:
		return false
	}
}

// Label returns the registry-office wording shown on the timeline.
func (s RGIStage) Label() string {
	switch s {
	case StageProtocol:
		return "Protocolado"
	case StageAnalysis:
		return "Em análise"
	case StageRequirements:
		return "Exigências"
	case StageRegistered:
		return "Registrado"
	default:
		return string(s)
	}
}

// HistoryStatus marks an RGI history entry as the live stage or a past one.
type HistoryStatus string

const (
	HistoryCurrent   HistoryStatus = "current"
	HistoryCompleted HistoryStatus = "completed"
)

// RGIHistoryEntry is one append-only audit entry of the registry tracker.
type RGIHistoryEntry struct {
	Seq    int
	Status HistoryStatus
	Label  string
	Date   time.Time
}

// RGIData is the nested registry sub-tracker attached to the RGI step.
// Protocol is immutable once set.
type RGIData struct {
	Protocol     string
	ProtocolDate time.Time
	CurrentStage RGIStage
	History      []RGIHistoryEntry
}

// ChecklistItem is one required or optional document/action within a step.
type ChecklistItem struct {
	Slug     string
	Label    string
	Category ItemCategory
	Required bool
	Position int
	Status   ItemStatus
	FileURL  *string
}

// Done reports whether the item satisfies the completion gate of its step.
func (i ChecklistItem) Done() bool {
	return i.Status == ItemUploaded || i.Status == ItemApproved
}

// Step is one discrete stage of the sale process. Slug is stable within a
// sale and ordering is fixed at creation.
type Step struct {
	Slug        string
	Name        string
	Description string
	Position    int
	Status      StepStatus
	Optional    bool
	Action      StepAction
	Checklist   []ChecklistItem
	RGI         *RGIData
}

// Terminal reports whether the step can no longer transition.
func (s Step) Terminal() bool {
	return s.Status == StepCompleted || s.Status == StepSkipped
}

// Party identifies the buyer or the seller of a sale.
type Party struct {
	Name  string
	Email *string
	Phone *string
}

// PaymentType mirrors the accepted offer's payment arrangement.
type PaymentType string

const (
	PaymentCash      PaymentType = "a_vista"
	PaymentFinanced  PaymentType = "financiamento"
	PaymentConsorcio PaymentType = "consorcio"
)

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentCash, PaymentFinanced, PaymentConsorcio:
		return true
	default:
		return false
	}
}

// Process is the whole tracked workflow from accepted offer to key
// handover for one property transaction. CurrentStep is a 0-based cursor
// into Steps; it may equal len(Steps) once every step is terminal.
type Process struct {
	ID          string
	PropertyID  string
	Buyer       Party
	Seller      Party
	OfferAmount int64 // centavos
	PaymentType PaymentType
	CurrentStep int
	Status      Status
	Steps       []Step
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Step returns the step with the given slug.
func (p *Process) Step(slug string) (*Step, error) {
	for i := range p.Steps {
		if p.Steps[i].Slug == slug {
			return &p.Steps[i], nil
		}
	}
	return nil, ErrStepNotFound
}

// Item returns the checklist item identified by step and item slugs.
func (p *Process) Item(stepSlug, itemSlug string) (*ChecklistItem, error) {
	step, err := p.Step(stepSlug)
	if err != nil {
		return nil, err
	}
	for i := range step.Checklist {
		if step.Checklist[i].Slug == itemSlug {
			return &step.Checklist[i], nil
		}
	}
	return nil, ErrItemNotFound
}

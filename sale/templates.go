package sale

import (
	"fmt"
	"time"
)

// CreateParams enumerates the data captured when an accepted offer is
// promoted into a tracked sale process.
type CreateParams struct {
	PropertyID  string
	Buyer       Party
	Seller      Party
	OfferAmount int64
	PaymentType PaymentType
}

// NewProcess builds a fresh sale process with the default step plan for the
// offer's payment type. The first step starts in progress; the step order
// is fixed for the life of the sale.
func NewProcess(id string, params CreateParams, now time.Time) (Process, error) {
	if id == "" {
		return Process{}, fmt.Errorf("sale: missing id")
	}
	if params.PropertyID == "" {
		return Process{}, fmt.Errorf("sale: missing property id")
	}
	if params.Buyer.Name == "" || params.Seller.Name == "" {
		return Process{}, fmt.Errorf("sale: buyer and seller names are required")
	}
	if params.OfferAmount <= 0 {
		return Process{}, fmt.Errorf("sale: invalid offer amount")
	}
	if !params.PaymentType.Valid() {
		return Process{}, fmt.Errorf("sale: invalid payment type %q", params.PaymentType)
	}

	steps := defaultSteps(params.PaymentType)
	steps[0].Status = StepInProgress

	return Process{
		ID:          id,
		PropertyID:  params.PropertyID,
		Buyer:       params.Buyer,
		Seller:      params.Seller,
		OfferAmount: params.OfferAmount,
		PaymentType: params.PaymentType,
		CurrentStep: 0,
		Status:      StatusActive,
		Steps:       steps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// defaultSteps is the brokerage's standard plan from accepted offer to key
// handover. Financing only exists for financed offers; inspection may be
// skipped when the buyer waives it.
func defaultSteps(payment PaymentType) []Step {
	steps := []Step{
		{
			Slug:        "documentacao",
			Name:        "Documentação",
			Description: "Coleta e conferência dos documentos do imóvel, vendedor e comprador.",
			Status:      StepPending,
			Action:      ActionUpload,
			Checklist: []ChecklistItem{
				{Slug: "matricula-imovel", Label: "Matrícula atualizada do imóvel", Category: CategoryProperty, Required: true, Status: ItemPending},
				{Slug: "certidao-onus", Label: "Certidão de ônus reais", Category: CategoryProperty, Required: true, Status: ItemPending},
				{Slug: "rg-cpf-vendedor", Label: "RG e CPF do vendedor", Category: CategorySeller, Required: true, Status: ItemPending},
				{Slug: "certidao-estado-civil-vendedor", Label: "Certidão de estado civil do vendedor", Category: CategorySeller, Required: false, Status: ItemPending},
				{Slug: "rg-cpf-comprador", Label: "RG e CPF do comprador", Category: CategoryBuyer, Required: true, Status: ItemPending},
				{Slug: "comprovante-residencia-comprador", Label: "Comprovante de residência do comprador", Category: CategoryBuyer, Required: false, Status: ItemPending},
			},
		},
	}

	if payment == PaymentFinanced {
		steps = append(steps, Step{
			Slug:        "financiamento",
			Name:        "Financiamento",
			Description: "Aprovação de crédito e avaliação do imóvel junto ao banco.",
			Status:      StepPending,
			Action:      ActionExternal,
			Checklist: []ChecklistItem{
				{Slug: "aprovacao-credito", Label: "Carta de aprovação de crédito", Category: CategoryBuyer, Required: true, Status: ItemPending},
				{Slug: "laudo-avaliacao", Label: "Laudo de avaliação do banco", Category: CategoryProperty, Required: true, Status: ItemPending},
			},
		})
	}

	steps = append(steps,
		Step{
			Slug:        "vistoria",
			Name:        "Vistoria",
			Description: "Vistoria do imóvel antes da lavratura da escritura.",
			Status:      StepPending,
			Optional:    true,
			Action:      ActionManual,
			Checklist: []ChecklistItem{
				{Slug: "laudo-vistoria", Label: "Laudo de vistoria", Category: CategoryProperty, Required: false, Status: ItemPending},
			},
		},
		Step{
			Slug:        "escritura",
			Name:        "Escritura",
			Description: "Lavratura da escritura pública e recolhimento do ITBI.",
			Status:      StepPending,
			Action:      ActionUpload,
			Checklist: []ChecklistItem{
				{Slug: "escritura-publica", Label: "Escritura pública assinada", Category: CategoryProperty, Required: true, Status: ItemPending},
				{Slug: "guia-itbi", Label: "Comprovante de pagamento do ITBI", Category: CategoryBuyer, Required: true, Status: ItemPending},
			},
		},
		Step{
			Slug:        "rgi",
			Name:        "Registro no RGI",
			Description: "Acompanhamento do registro da escritura no Registro Geral de Imóveis.",
			Status:      StepPending,
			Action:      ActionRGITracker,
		},
		Step{
			Slug:        "entrega-chaves",
			Name:        "Entrega das chaves",
			Description: "Assinatura do termo de entrega e repasse das chaves ao comprador.",
			Status:      StepPending,
			Action:      ActionManual,
			Checklist: []ChecklistItem{
				{Slug: "termo-entrega", Label: "Termo de entrega das chaves", Category: CategoryProperty, Required: true, Status: ItemPending},
			},
		},
	)

	for i := range steps {
		steps[i].Position = i
		for j := range steps[i].Checklist {
			steps[i].Checklist[j].Position = j
		}
	}
	return steps
}

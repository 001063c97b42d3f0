package api

import (
	"time"

	"vendaflow/sale"
)

type partyResponse struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type rgiHistoryResponse struct {
	Seq    int       `json:"seq"`
	Status string    `json:"status"`
	Label  string    `json:"label"`
	Date   time.Time `json:"date"`
}

type rgiResponse struct {
	Protocol     string               `json:"protocol"`
	ProtocolDate *time.Time           `json:"protocolDate,omitempty"`
	CurrentStage string               `json:"currentStage"`
	History      []rgiHistoryResponse `json:"history"`
}

type checklistItemResponse struct {
	Slug     string  `json:"slug"`
	Label    string  `json:"label"`
	Category string  `json:"category"`
	Required bool    `json:"required"`
	Position int     `json:"position"`
	Status   string  `json:"status"`
	FileURL  *string `json:"fileUrl,omitempty"`
}

type stepResponse struct {
	Slug        string                  `json:"slug"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Position    int                     `json:"position"`
	Status      string                  `json:"status"`
	Optional    bool                    `json:"optional"`
	ActionType  string                  `json:"actionType"`
	Checklist   []checklistItemResponse `json:"checklist"`
	RGIData     *rgiResponse            `json:"rgiData,omitempty"`
}

type saleResponse struct {
	ID               string         `json:"id"`
	PropertyID       string         `json:"propertyId"`
	Buyer            partyResponse  `json:"buyer"`
	Seller           partyResponse  `json:"seller"`
	OfferAmount      int64          `json:"offerAmount"`
	PaymentType      string         `json:"paymentType"`
	CurrentStepIndex int            `json:"currentStepIndex"`
	Status           string         `json:"status"`
	Steps            []stepResponse `json:"steps"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type saleListResponse struct {
	Items []saleResponse `json:"items"`
	Total int            `json:"total"`
}

func toSaleResponse(p sale.Process) saleResponse {
	steps := make([]stepResponse, 0, len(p.Steps))
	for _, step := range p.Steps {
		steps = append(steps, toStepResponse(step))
	}

	return saleResponse{
		ID:               p.ID,
		PropertyID:       p.PropertyID,
		Buyer:            toPartyResponse(p.Buyer),
		Seller:           toPartyResponse(p.Seller),
		OfferAmount:      p.OfferAmount,
		PaymentType:      string(p.PaymentType),
		CurrentStepIndex: p.CurrentStep,
		Status:           string(p.Status),
		Steps:            steps,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toPartyResponse(p sale.Party) partyResponse {
	return partyResponse{Name: p.Name, Email: p.Email, Phone: p.Phone}
}

func toStepResponse(s sale.Step) stepResponse {
	items := make([]checklistItemResponse, 0, len(s.Checklist))
	for _, item := range s.Checklist {
		items = append(items, checklistItemResponse{
			Slug:     item.Slug,
			Label:    item.Label,
			Category: string(item.Category),
			Required: item.Required,
			Position: item.Position,
			Status:   string(item.Status),
			FileURL:  item.FileURL,
		})
	}

	resp := stepResponse{
		Slug:        s.Slug,
		Name:        s.Name,
		Description: s.Description,
		Position:    s.Position,
		Status:      string(s.Status),
		Optional:    s.Optional,
		ActionType:  string(s.Action),
		Checklist:   items,
	}

	if s.RGI != nil {
		history := make([]rgiHistoryResponse, 0, len(s.RGI.History))
		for _, entry := range s.RGI.History {
			history = append(history, rgiHistoryResponse{
				Seq:    entry.Seq,
				Status: string(entry.Status),
				Label:  entry.Label,
				Date:   entry.Date,
			})
		}

		rgi := &rgiResponse{
			Protocol:     s.RGI.Protocol,
			CurrentStage: string(s.RGI.CurrentStage),
			History:      history,
		}
		if !s.RGI.ProtocolDate.IsZero() {
			date := s.RGI.ProtocolDate
			rgi.ProtocolDate = &date
		}
		resp.RGIData = rgi
	}

	return resp
}

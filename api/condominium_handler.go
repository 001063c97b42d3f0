package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vendaflow/auth"
	"vendaflow/condominium"
)

// CondominiumHandler exposes the condominium catalog.
type CondominiumHandler struct {
	svc *condominium.Service
}

func NewCondominiumHandler(svc *condominium.Service) *CondominiumHandler {
	return &CondominiumHandler{svc: svc}
}

func (h *CondominiumHandler) PublicRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{condominiumID}", h.get)
}

func (h *CondominiumHandler) PrivateRoutes(r chi.Router) {
	r.Use(requireRole(auth.RoleAdmin, auth.RoleCorretor))
	r.Post("/", h.create)
}

type condominiumResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Builder      string     `json:"builder,omitempty"`
	Street       string     `json:"street,omitempty"`
	District     string     `json:"district,omitempty"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	DeliveryDate *time.Time `json:"deliveryDate,omitempty"`
	Amenities    []string   `json:"amenities"`
	PriceMin     *int64     `json:"priceMin,omitempty"`
	PriceMax     *int64     `json:"priceMax,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func toCondominiumResponse(c condominium.Condominium) condominiumResponse {
	return condominiumResponse{
		ID:           c.ID,
		Name:         c.Name,
		Builder:      c.Builder,
		Street:       c.Street,
		District:     c.District,
		City:         c.City,
		State:        c.State,
		DeliveryDate: c.DeliveryDate,
		Amenities:    c.Amenities,
		PriceMin:     c.PriceMin,
		PriceMax:     c.PriceMax,
		CreatedAt:    c.CreatedAt,
	}
}

func (h *CondominiumHandler) list(w http.ResponseWriter, r *http.Request) {
	condos, err := h.svc.List(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]condominiumResponse, 0, len(condos))
	for _, c := range condos {
		items = append(items, toCondominiumResponse(c))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CondominiumHandler) get(w http.ResponseWriter, r *http.Request) {
	condo, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "condominiumID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCondominiumResponse(condo))
}

type condominiumRequest struct {
	Name         string     `json:"name"`
	Builder      string     `json:"builder"`
	Street       string     `json:"street"`
	District     string     `json:"district"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	DeliveryDate *time.Time `json:"deliveryDate"`
	Amenities    []string   `json:"amenities"`
	PriceMin     *int64     `json:"priceMin"`
	PriceMax     *int64     `json:"priceMax"`
}

func (h *CondominiumHandler) create(w http.ResponseWriter, r *http.Request) {
	var req condominiumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	condo, err := h.svc.Create(r.Context(), condominium.Condominium{
		Name:         req.Name,
		Builder:      req.Builder,
		Street:       req.Street,
		District:     req.District,
		City:         req.City,
		State:        req.State,
		DeliveryDate: req.DeliveryDate,
		Amenities:    req.Amenities,
		PriceMin:     req.PriceMin,
		PriceMax:     req.PriceMax,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCondominiumResponse(condo))
}

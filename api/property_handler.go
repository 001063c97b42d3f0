package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"vendaflow/auth"
	"vendaflow/property"
)

// PropertyHandler exposes the public listing catalog and its admin surface.
type PropertyHandler struct {
	svc *property.Service
}

func NewPropertyHandler(svc *property.Service) *PropertyHandler {
	return &PropertyHandler{svc: svc}
}

func (h *PropertyHandler) PublicRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{propertyID}", h.get)
}

func (h *PropertyHandler) PrivateRoutes(r chi.Router) {
	r.Use(requireRole(auth.RoleAdmin, auth.RoleCorretor))
	r.Post("/", h.create)
	r.Put("/{propertyID}", h.update)
	r.Patch("/{propertyID}/status", h.updateStatus)
}

type listingResponse struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Street        string    `json:"street,omitempty"`
	District      string    `json:"district,omitempty"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Price         int64     `json:"price"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	ParkingSpaces int       `json:"parkingSpaces"`
	AreaM2        float64   `json:"areaM2"`
	CondominiumID *string   `json:"condominiumId,omitempty"`
	PhotoURLs     []string  `json:"photoUrls"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type listingListResponse struct {
	Items []listingResponse `json:"items"`
	Total int               `json:"total"`
}

func toListingResponse(l property.Listing) listingResponse {
	return listingResponse{
		ID:            l.ID,
		Code:          l.Code,
		Title:         l.Title,
		Description:   l.Description,
		Type:          string(l.Type),
		Status:        string(l.Status),
		Street:        l.Street,
		District:      l.District,
		City:          l.City,
		State:         l.State,
		Price:         l.Price,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		ParkingSpaces: l.ParkingSpaces,
		AreaM2:        l.AreaM2,
		CondominiumID: l.CondominiumID,
		PhotoURLs:     l.PhotoURLs,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func (h *PropertyHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := property.Filters{
		Type:          property.Type(q.Get("type")),
		Status:        property.Status(q.Get("status")),
		City:          q.Get("city"),
		District:      q.Get("district"),
		CondominiumID: q.Get("condominiumId"),
		SortKey:       q.Get("sortKey"),
		SortOrder:     q.Get("sortOrder"),
	}
	if v, err := strconv.ParseInt(q.Get("priceMin"), 10, 64); err == nil {
		filters.PriceMin = v
	}
	if v, err := strconv.ParseInt(q.Get("priceMax"), 10, 64); err == nil {
		filters.PriceMax = v
	}
	if v, err := strconv.Atoi(q.Get("bedrooms")); err == nil {
		filters.Bedrooms = v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		filters.Page = v
	}
	if v, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		filters.PageSize = v
	}

	listings, total, err := h.svc.List(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		items = append(items, toListingResponse(l))
	}
	writeJSON(w, http.StatusOK, listingListResponse{Items: items, Total: total})
}

func (h *PropertyHandler) get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.Get(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

type listingRequest struct {
	Code          string   `json:"code"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	Street        string   `json:"street"`
	District      string   `json:"district"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	Price         int64    `json:"price"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	ParkingSpaces int      `json:"parkingSpaces"`
	AreaM2        float64  `json:"areaM2"`
	CondominiumID *string  `json:"condominiumId"`
	PhotoURLs     []string `json:"photoUrls"`
}

func (h *PropertyHandler) create(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	listing, err := h.svc.Create(r.Context(), property.CreateParams{
		Code:          req.Code,
		Title:         req.Title,
		Description:   req.Description,
		Type:          property.Type(req.Type),
		Street:        req.Street,
		District:      req.District,
		City:          req.City,
		State:         req.State,
		Price:         req.Price,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		ParkingSpaces: req.ParkingSpaces,
		AreaM2:        req.AreaM2,
		CondominiumID: req.CondominiumID,
		PhotoURLs:     req.PhotoURLs,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toListingResponse(listing))
}

func (h *PropertyHandler) update(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	listing, err := h.svc.Update(r.Context(), property.Listing{
		ID:            chi.URLParam(r, "propertyID"),
		Title:         req.Title,
		Description:   req.Description,
		Street:        req.Street,
		District:      req.District,
		City:          req.City,
		State:         req.State,
		Price:         req.Price,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		ParkingSpaces: req.ParkingSpaces,
		AreaM2:        req.AreaM2,
		CondominiumID: req.CondominiumID,
		PhotoURLs:     req.PhotoURLs,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

type updateListingStatusRequest struct {
	Status string `json:"status"`
}

func (h *PropertyHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateListingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	listing, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "propertyID"), property.Status(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

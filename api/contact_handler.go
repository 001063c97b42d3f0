package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vendaflow/auth"
	"vendaflow/contact"
)

// ContactHandler receives public contact form submissions and lets staff
// work through them.
type ContactHandler struct {
	svc *contact.Service
}

func NewContactHandler(svc *contact.Service) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) PublicRoutes(r chi.Router) {
	r.Post("/", h.create)
}

func (h *ContactHandler) PrivateRoutes(r chi.Router) {
	r.Use(requireRole(auth.RoleAdmin, auth.RoleCorretor))
	r.Get("/", h.list)
	r.Post("/{messageID}/handled", h.markHandled)
}

type messageResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	Body       string    `json:"body"`
	PropertyID *string   `json:"propertyId,omitempty"`
	Handled    bool      `json:"handled"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toMessageResponse(m contact.Message) messageResponse {
	return messageResponse{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Body:       m.Body,
		PropertyID: m.PropertyID,
		Handled:    m.Handled,
		CreatedAt:  m.CreatedAt,
	}
}

type messageRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone"`
	Body       string  `json:"body"`
	PropertyID *string `json:"propertyId"`
}

func (h *ContactHandler) create(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	msg, err := h.svc.Create(r.Context(), contact.CreateParams{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Body:       req.Body,
		PropertyID: req.PropertyID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(msg))
}

func (h *ContactHandler) list(w http.ResponseWriter, r *http.Request) {
	onlyUnhandled := r.URL.Query().Get("unhandled") == "true"

	messages, err := h.svc.List(r.Context(), onlyUnhandled)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		items = append(items, toMessageResponse(m))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ContactHandler) markHandled(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.MarkHandled(r.Context(), chi.URLParam(r, "messageID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponse(msg))
}

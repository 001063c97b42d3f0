package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vendaflow/auth"
	"vendaflow/team"
)

// TeamHandler exposes the agency roster.
type TeamHandler struct {
	svc *team.Service
}

func NewTeamHandler(svc *team.Service) *TeamHandler {
	return &TeamHandler{svc: svc}
}

func (h *TeamHandler) PublicRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{memberID}", h.get)
}

func (h *TeamHandler) PrivateRoutes(r chi.Router) {
	r.Use(requireRole(auth.RoleAdmin))
	r.Post("/", h.create)
	r.Post("/{memberID}/deactivate", h.deactivate)
	r.Post("/{memberID}/reactivate", h.reactivate)
}

type memberResponse struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	RoleTitle string  `json:"roleTitle"`
	CRECI     *string `json:"creci,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     string  `json:"email"`
	PhotoURL  *string `json:"photoUrl,omitempty"`
	Active    bool    `json:"active"`
}

func toMemberResponse(m team.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		FullName:  m.FullName,
		RoleTitle: m.RoleTitle,
		CRECI:     m.CRECI,
		Phone:     m.Phone,
		Email:     m.Email,
		PhotoURL:  m.PhotoURL,
		Active:    m.Active,
	}
}

func (h *TeamHandler) list(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true" &&
		callerRole(r) == auth.RoleAdmin

	members, err := h.svc.List(r.Context(), includeInactive)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, toMemberResponse(m))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TeamHandler) get(w http.ResponseWriter, r *http.Request) {
	member, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

type memberRequest struct {
	FullName  string  `json:"fullName"`
	RoleTitle string  `json:"roleTitle"`
	CRECI     *string `json:"creci"`
	Phone     *string `json:"phone"`
	Email     string  `json:"email"`
	PhotoURL  *string `json:"photoUrl"`
}

func (h *TeamHandler) create(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	member, err := h.svc.Create(r.Context(), team.CreateMemberParams{
		FullName:  req.FullName,
		RoleTitle: req.RoleTitle,
		CRECI:     req.CRECI,
		Phone:     req.Phone,
		Email:     req.Email,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberResponse(member))
}

func (h *TeamHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "memberID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) reactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reactivate(r.Context(), chi.URLParam(r, "memberID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"vendaflow/auth"
	"vendaflow/condominium"
	"vendaflow/contact"
	"vendaflow/property"
	"vendaflow/sale"
	"vendaflow/simulation"
	"vendaflow/team"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes. Unknown errors are
// logged and reported as a generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sale.ErrSaleNotFound),
		errors.Is(err, sale.ErrStepNotFound),
		errors.Is(err, sale.ErrItemNotFound),
		errors.Is(err, property.ErrNotFound),
		errors.Is(err, condominium.ErrNotFound),
		errors.Is(err, team.ErrNotFound),
		errors.Is(err, contact.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})

	case errors.Is(err, sale.ErrInvalidTransition),
		errors.Is(err, property.ErrInvalidTransition):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})

	case errors.Is(err, sale.ErrUploadFailed):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})

	case errors.Is(err, sale.ErrConflict),
		errors.Is(err, auth.ErrDuplicateEmail),
		errors.Is(err, team.ErrDuplicateEmail),
		errors.Is(err, property.ErrDuplicateCode):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})

	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrCRECIRequired),
		errors.Is(err, simulation.ErrInvalidParams):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})

	default:
		slog.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

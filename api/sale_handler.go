package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vendaflow/auth"
	"vendaflow/sale"
)

// maxUploadBytes caps checklist document uploads at 5 MiB.
const maxUploadBytes = 5 << 20

// SaleService is the slice of the sale service the handler consumes.
type SaleService interface {
	Get(ctx context.Context, saleID string) (sale.Process, error)
	List(ctx context.Context, filters sale.Filters) ([]sale.Process, int, error)
	Create(ctx context.Context, params sale.CreateParams) (sale.Process, error)
	ToggleItem(ctx context.Context, saleID, stepSlug, itemSlug string, checked bool) (sale.Process, error)
	UploadDocument(ctx context.Context, saleID, stepSlug, itemSlug, filename, contentType string, r io.Reader) (sale.Process, error)
	CompleteStep(ctx context.Context, saleID, stepSlug string) (sale.Process, error)
	SkipStep(ctx context.Context, saleID, stepSlug string) (sale.Process, error)
	SetRGIProtocol(ctx context.Context, saleID, stepSlug, protocol string) (sale.Process, error)
	SetRGIStage(ctx context.Context, saleID, stepSlug string, stage sale.RGIStage) (sale.Process, error)
}

// SaleHandler exposes the sale process tracker over HTTP.
type SaleHandler struct {
	svc SaleService
}

func NewSaleHandler(svc SaleService) *SaleHandler {
	return &SaleHandler{svc: svc}
}

func (h *SaleHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{saleID}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(requireRole(auth.RoleAdmin, auth.RoleCorretor))
		r.Post("/", h.create)
		r.Post("/{saleID}/steps/{stepSlug}/complete", h.completeStep)
		r.Post("/{saleID}/steps/{stepSlug}/skip", h.skipStep)
		r.Put("/{saleID}/steps/{stepSlug}/rgi/protocol", h.setRGIProtocol)
		r.Post("/{saleID}/steps/{stepSlug}/rgi/stages", h.setRGIStage)
	})

	r.Patch("/{saleID}/steps/{stepSlug}/items/{itemSlug}", h.toggleItem)
	r.Post("/{saleID}/steps/{stepSlug}/items/{itemSlug}/document", h.uploadDocument)
}

func (h *SaleHandler) list(w http.ResponseWriter, r *http.Request) {
	filters := sale.Filters{
		PropertyID: r.URL.Query().Get("propertyId"),
		Status:     sale.Status(r.URL.Query().Get("status")),
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		filters.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil {
		filters.PageSize = v
	}

	processes, total, err := h.svc.List(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}

	role := saleRole(r)
	items := make([]saleResponse, 0, len(processes))
	for _, p := range processes {
		items = append(items, toSaleResponse(sale.FilterForRole(p, role)))
	}

	writeJSON(w, http.StatusOK, saleListResponse{Items: items, Total: total})
}

func (h *SaleHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "saleID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSaleResponse(sale.FilterForRole(p, saleRole(r))))
}

type createSaleRequest struct {
	PropertyID  string       `json:"propertyId"`
	Buyer       partyRequest `json:"buyer"`
	Seller      partyRequest `json:"seller"`
	OfferAmount int64        `json:"offerAmount"`
	PaymentType string       `json:"paymentType"`
}

type partyRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (h *SaleHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.Create(r.Context(), sale.CreateParams{
		PropertyID:  req.PropertyID,
		Buyer:       sale.Party{Name: req.Buyer.Name, Email: req.Buyer.Email, Phone: req.Buyer.Phone},
		Seller:      sale.Party{Name: req.Seller.Name, Email: req.Seller.Email, Phone: req.Seller.Phone},
		OfferAmount: req.OfferAmount,
		PaymentType: sale.PaymentType(req.PaymentType),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSaleResponse(p))
}

type toggleItemRequest struct {
	Checked bool `json:"checked"`
}

func (h *SaleHandler) toggleItem(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleID")
	stepSlug := chi.URLParam(r, "stepSlug")
	itemSlug := chi.URLParam(r, "itemSlug")

	var req toggleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if ok, err := h.canTouchItem(r, saleID, stepSlug, itemSlug); err != nil {
		writeError(w, err)
		return
	} else if !ok {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "insufficient permissions"})
		return
	}

	p, err := h.svc.ToggleItem(r.Context(), saleID, stepSlug, itemSlug, req.Checked)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSaleResponse(sale.FilterForRole(p, saleRole(r))))
}

func (h *SaleHandler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleID")
	stepSlug := chi.URLParam(r, "stepSlug")
	itemSlug := chi.URLParam(r, "itemSlug")

	if ok, err := h.canTouchItem(r, saleID, stepSlug, itemSlug); err != nil {
		writeError(w, err)
		return
	} else if !ok {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "insufficient permissions"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeBadRequest(w, "file exceeds the upload limit or the form is malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	p, err := h.svc.UploadDocument(r.Context(), saleID, stepSlug, itemSlug, header.Filename, contentType, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSaleResponse(sale.FilterForRole(p, saleRole(r))))
}

func (h *SaleHandler) completeStep(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.CompleteStep(r.Context(), chi.URLParam(r, "saleID"), chi.URLParam(r, "stepSlug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(p))
}

func (h *SaleHandler) skipStep(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.SkipStep(r.Context(), chi.URLParam(r, "saleID"), chi.URLParam(r, "stepSlug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(p))
}

type setProtocolRequest struct {
	Protocol string `json:"protocol"`
}

func (h *SaleHandler) setRGIProtocol(w http.ResponseWriter, r *http.Request) {
	var req setProtocolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.SetRGIProtocol(r.Context(), chi.URLParam(r, "saleID"), chi.URLParam(r, "stepSlug"), req.Protocol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(p))
}

type setStageRequest struct {
	Stage string `json:"stage"`
}

func (h *SaleHandler) setRGIStage(w http.ResponseWriter, r *http.Request) {
	var req setStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.SetRGIStage(r.Context(), chi.URLParam(r, "saleID"), chi.URLParam(r, "stepSlug"), sale.RGIStage(req.Stage))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(p))
}

// canTouchItem decides whether the caller may check or upload a document for
// the given checklist item. Admins and corretores always may; other roles
// only for item categories visible to them.
func (h *SaleHandler) canTouchItem(r *http.Request, saleID, stepSlug, itemSlug string) (bool, error) {
	role := saleRole(r)
	if role == sale.RoleAdmin || role == sale.RoleCorretor {
		return true, nil
	}

	p, err := h.svc.Get(r.Context(), saleID)
	if err != nil {
		return false, err
	}
	item, err := p.Item(stepSlug, itemSlug)
	if err != nil {
		return false, err
	}

	return sale.RoleCanAccess(role, item.Category), nil
}

func saleRole(r *http.Request) sale.Role {
	return sale.Role(callerRole(r))
}

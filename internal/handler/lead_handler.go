package handler

import (
	"net/http"
	"strconv"

	"github.com/bktrade/site/internal/model"
	"github.com/bktrade/site/internal/service"
)

// defaultListLimit is used when GET /api/admin/requests has no limit.
const defaultListLimit = 100

// LeadHandler handles the public request form and lead management.
type LeadHandler struct {
	leads    service.LeadService
	clientIP func(*http.Request) string
}

// NewLeadHandler creates a LeadHandler. clientIP resolves the submitter address.
func NewLeadHandler(leads service.LeadService, clientIP func(*http.Request) string) *LeadHandler {
	return &LeadHandler{leads: leads, clientIP: clientIP}
}

// Submit handles POST /api/requests.
// Accepts JSON or a urlencoded form with the fields of model.LeadSubmission.
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub model.LeadSubmission
	if err := decodeBody(w, r, &sub); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	sub.IP = h.clientIP(r)
	sub.UserAgent = r.UserAgent()

	if _, err := h.leads.Submit(r.Context(), &sub); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msgSubmitted)
}

type leadListResponse struct {
	Items []*model.Lead `json:"items"`
}

// AdminList handles GET /api/admin/requests?limit=N.
func (h *LeadHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Некорректный параметр limit.")
			return
		}
		limit = n
	}

	leads, err := h.leads.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	// [] を返す（null ではなく）
	if leads == nil {
		leads = []*model.Lead{}
	}
	writeJSON(w, http.StatusOK, leadListResponse{Items: leads})
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	ManagerNote string `json:"manager_note"`
}

// UpdateStatus handles POST /api/admin/requests/{id}/status.
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePositiveInt(r.PathValue("id"))
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Некорректный идентификатор заявки.")
		return
	}

	var req updateStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.leads.UpdateStatus(r.Context(), id, req.Status, req.ManagerNote); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msgStatusUpdated)
}

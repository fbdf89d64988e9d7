package handlers

import (
	"net/http"

	"github.com/clinic-records/apiserver/internal/services"
	"github.com/clinic-records/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// AuditHandler exposes the audit trail to admins.
type AuditHandler struct {
	audit *services.AuditService
}

func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// AuditRouter registers audit routes on the given router.
func AuditRouter(r chi.Router, h *AuditHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware, RequireRoles(types.RoleAdmin))

	r.Get("/", h.ListAudits)
	r.Get("/user/{userID}", h.ListUserAudits)
}

func (h *AuditHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.audit.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, err, "Audit entries not found")
		return
	}
	writeAuditPage(w, items, page, limit, total)
}

func (h *AuditHandler) ListUserAudits(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userID", "user")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.audit.ListByUser(r.Context(), userID, offset, limit)
	if err != nil {
		writeServiceError(w, r, err, "Audit entries not found")
		return
	}
	writeAuditPage(w, items, page, limit, total)
}

func writeAuditPage(w http.ResponseWriter, items []types.AuditLogEntry, page, limit, total int) {
	if items == nil {
		items = []types.AuditLogEntry{}
	}
	writeJSON(w, http.StatusOK, ListResponse[types.AuditLogEntry]{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

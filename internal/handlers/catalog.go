package handlers

import (
	"context"
	"net/http"

	"github.com/clinic-records/apiserver/internal/services"
	"github.com/clinic-records/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// catalogService is the shape shared by the department and specialty services.
type catalogService[T any] interface {
	Get(ctx context.Context, id int) (T, error)
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id int, patch types.CatalogPatch) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// CatalogHandler serves a named catalog of departments or specialties.
type CatalogHandler[T any] struct {
	service  catalogService[T]
	audit    *services.AuditService
	resource string
	build    func(name string, description *string) T
	idOf     func(T) int
}

func NewDepartmentHandler(departments *services.DepartmentService, audit *services.AuditService) *CatalogHandler[types.Department] {
	return &CatalogHandler[types.Department]{
		service:  departments,
		audit:    audit,
		resource: types.ResourceDepartment,
		build: func(name string, description *string) types.Department {
			return types.Department{Name: name, Description: description}
		},
		idOf: func(d types.Department) int { return d.ID },
	}
}

func NewSpecialtyHandler(specialties *services.SpecialtyService, audit *services.AuditService) *CatalogHandler[types.Specialty] {
	return &CatalogHandler[types.Specialty]{
		service:  specialties,
		audit:    audit,
		resource: types.ResourceSpecialty,
		build: func(name string, description *string) types.Specialty {
			return types.Specialty{Name: name, Description: description}
		},
		idOf: func(s types.Specialty) int { return s.ID },
	}
}

// CatalogRouter registers catalog routes. Reads are public.
func CatalogRouter[T any](r chi.Router, h *CatalogHandler[T], authMiddleware func(http.Handler) http.Handler) {
	admin := chi.Chain(authMiddleware, RequireRoles(types.RoleAdmin))

	r.Get("/", h.List)
	r.With(admin...).Post("/", h.Create)
	r.Route("/{catalogID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.With(admin...).Put("/", h.Update)
		r.With(admin...).Delete("/", h.Delete)
	})
}

type CreateCatalogRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

type UpdateCatalogRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

func (h *CatalogHandler[T]) notFound() string {
	return h.resource + " not found"
}

func (h *CatalogHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.notFound())
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "catalogID", h.resource)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.notFound())
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCatalogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), h.build(req.Name, req.Description))
	if err != nil {
		writeServiceError(w, r, err, h.notFound())
		return
	}

	id := h.idOf(created)
	h.audit.Record(r.Context(), actorID(r), types.ActionCreate, h.resource, &id)
	writeCreated(w, h.resource+" created successfully", id)
}

func (h *CatalogHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "catalogID", h.resource)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateCatalogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.service.Get(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.notFound())
		return
	}

	affected, err := h.service.Update(r.Context(), id, types.CatalogPatch(req))
	if err != nil {
		writeServiceError(w, r, err, h.notFound())
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, h.notFound())
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionUpdate, h.resource, &id)
	writeMessage(w, http.StatusOK, h.resource+" updated successfully")
}

func (h *CatalogHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "catalogID", h.resource)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.service.Get(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.notFound())
		return
	}

	affected, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.notFound())
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, h.notFound())
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionDelete, h.resource, &id)
	writeMessage(w, http.StatusOK, h.resource+" deleted successfully")
}

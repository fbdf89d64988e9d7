package handlers

import (
	"net/http"

	"github.com/clinic-records/apiserver/internal/services"
	"github.com/clinic-records/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// DoctorAssociationHandler links doctors to specialties and departments.
type DoctorAssociationHandler struct {
	associations *services.DoctorAssociationService
	audit        *services.AuditService
}

func NewDoctorAssociationHandler(associations *services.DoctorAssociationService, audit *services.AuditService) *DoctorAssociationHandler {
	return &DoctorAssociationHandler{associations: associations, audit: audit}
}

// DoctorAssociationRouter registers association routes on the given router.
func DoctorAssociationRouter(r chi.Router, h *DoctorAssociationHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)
	admin := RequireRoles(types.RoleAdmin)

	r.With(admin).Post("/specialty", h.AssignSpecialty)
	r.With(admin).Delete("/specialty", h.RemoveSpecialty)
	r.With(admin).Post("/department", h.AssignDepartment)
	r.With(admin).Delete("/department", h.RemoveDepartment)

	r.Get("/{doctorID}/specialties", h.SpecialtiesOfDoctor)
	r.Get("/{doctorID}/departments", h.DepartmentsOfDoctor)
	r.Get("/specialty/{specialtyID}/doctors", h.DoctorsBySpecialty)
	r.Get("/department/{departmentID}/doctors", h.DoctorsByDepartment)
}

type SpecialtyAssignmentRequest struct {
	DoctorID    int `json:"doctorId" validate:"required,gt=0"`
	SpecialtyID int `json:"specialtyId" validate:"required,gt=0"`
}

type DepartmentAssignmentRequest struct {
	DoctorID     int `json:"doctorId" validate:"required,gt=0"`
	DepartmentID int `json:"departmentId" validate:"required,gt=0"`
}

func (h *DoctorAssociationHandler) AssignSpecialty(w http.ResponseWriter, r *http.Request) {
	var req SpecialtyAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.associations.AssignSpecialty(r.Context(), req.DoctorID, req.SpecialtyID); err != nil {
		writeServiceError(w, r, err, "Doctor or specialty not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionAssignSpecialty, types.ResourceDoctor, &req.DoctorID)
	writeMessage(w, http.StatusCreated, "Specialty assigned to doctor successfully")
}

func (h *DoctorAssociationHandler) AssignDepartment(w http.ResponseWriter, r *http.Request) {
	var req DepartmentAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.associations.AssignDepartment(r.Context(), req.DoctorID, req.DepartmentID); err != nil {
		writeServiceError(w, r, err, "Doctor or department not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionAssignDepartment, types.ResourceDoctor, &req.DoctorID)
	writeMessage(w, http.StatusCreated, "Department assigned to doctor successfully")
}

func (h *DoctorAssociationHandler) RemoveSpecialty(w http.ResponseWriter, r *http.Request) {
	var req SpecialtyAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	affected, err := h.associations.RemoveSpecialty(r.Context(), req.DoctorID, req.SpecialtyID)
	if err != nil {
		writeServiceError(w, r, err, "Association not found")
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, "Association not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionUnassignSpecialty, types.ResourceDoctor, &req.DoctorID)
	writeMessage(w, http.StatusOK, "Specialty removed from doctor successfully")
}

func (h *DoctorAssociationHandler) RemoveDepartment(w http.ResponseWriter, r *http.Request) {
	var req DepartmentAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	affected, err := h.associations.RemoveDepartment(r.Context(), req.DoctorID, req.DepartmentID)
	if err != nil {
		writeServiceError(w, r, err, "Association not found")
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, "Association not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionUnassignDepartment, types.ResourceDoctor, &req.DoctorID)
	writeMessage(w, http.StatusOK, "Department removed from doctor successfully")
}

func (h *DoctorAssociationHandler) SpecialtiesOfDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := parseID(r, "doctorID", "doctor")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	specialties, err := h.associations.SpecialtiesOfDoctor(r.Context(), doctorID)
	if err != nil {
		writeServiceError(w, r, err, "Doctor not found")
		return
	}
	if specialties == nil {
		specialties = []types.Specialty{}
	}
	writeJSON(w, http.StatusOK, specialties)
}

func (h *DoctorAssociationHandler) DepartmentsOfDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := parseID(r, "doctorID", "doctor")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	departments, err := h.associations.DepartmentsOfDoctor(r.Context(), doctorID)
	if err != nil {
		writeServiceError(w, r, err, "Doctor not found")
		return
	}
	if departments == nil {
		departments = []types.Department{}
	}
	writeJSON(w, http.StatusOK, departments)
}

func (h *DoctorAssociationHandler) DoctorsBySpecialty(w http.ResponseWriter, r *http.Request) {
	specialtyID, err := parseID(r, "specialtyID", "specialty")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	doctors, err := h.associations.DoctorsBySpecialty(r.Context(), specialtyID)
	if err != nil {
		writeServiceError(w, r, err, "Specialty not found")
		return
	}
	writeDoctors(w, doctors)
}

func (h *DoctorAssociationHandler) DoctorsByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, err := parseID(r, "departmentID", "department")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	doctors, err := h.associations.DoctorsByDepartment(r.Context(), departmentID)
	if err != nil {
		writeServiceError(w, r, err, "Department not found")
		return
	}
	writeDoctors(w, doctors)
}

func writeDoctors(w http.ResponseWriter, doctors []types.Doctor) {
	if doctors == nil {
		doctors = []types.Doctor{}
	}
	writeJSON(w, http.StatusOK, doctors)
}

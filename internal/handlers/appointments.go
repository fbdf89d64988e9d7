package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/clinic-records/apiserver/internal/notification"
	"github.com/clinic-records/apiserver/internal/services"
	"github.com/clinic-records/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// Notifier delivers a message to a user without blocking the request.
type Notifier interface {
	Notify(ctx context.Context, userID int, message string)
}

// AppointmentHandler provides HTTP handlers for appointments.
type AppointmentHandler struct {
	appointments *services.AppointmentService
	audit        *services.AuditService
	notifier     Notifier
}

func NewAppointmentHandler(appointments *services.AppointmentService, audit *services.AuditService, notifier Notifier) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		audit:        audit,
		notifier:     notifier,
	}
}

// AppointmentRouter registers appointment routes on the given router.
func AppointmentRouter(r chi.Router, h *AppointmentHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)

	r.With(RequireRoles(types.RolePatient, types.RoleAdmin)).Post("/", h.CreateAppointment)
	r.With(RequireRoles(types.RoleDoctor, types.RolePatient, types.RoleAdmin)).Get("/", h.ListAppointments)
	r.Route("/{appointmentID}", func(r chi.Router) {
		r.With(RequireRoles(types.RoleDoctor, types.RolePatient, types.RoleAdmin)).Get("/", h.GetAppointment)
		r.With(RequireRoles(types.RoleDoctor, types.RoleAdmin)).Put("/", h.UpdateAppointment)
		r.With(RequireRoles(types.RoleAdmin)).Delete("/", h.DeleteAppointment)
	})
}

type CreateAppointmentRequest struct {
	PatientID int       `json:"patientId" validate:"required,gt=0"`
	DoctorID  int       `json:"doctorId" validate:"required,gt=0"`
	DateTime  time.Time `json:"dateTime" validate:"required"`
	Reason    *string   `json:"reason"`
	Status    string    `json:"status" validate:"omitempty,oneof=confirmed canceled rescheduled"`
}

type UpdateAppointmentRequest struct {
	PatientID *int       `json:"patientId" validate:"omitempty,gt=0"`
	DoctorID  *int       `json:"doctorId" validate:"omitempty,gt=0"`
	DateTime  *time.Time `json:"dateTime"`
	Reason    *string    `json:"reason"`
	Status    *string    `json:"status" validate:"omitempty,oneof=confirmed canceled rescheduled"`
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	var req CreateAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if identity.Role == types.RolePatient && req.PatientID != identity.ID {
		writeMessage(w, http.StatusForbidden, msgAccessDenied)
		return
	}

	created, err := h.appointments.Create(r.Context(), types.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		DateTime:  req.DateTime,
		Reason:    req.Reason,
		Status:    req.Status,
	})
	if err != nil {
		writeServiceError(w, r, err, "Appointment not found")
		return
	}

	h.audit.Record(r.Context(), identity.ID, types.ActionCreate, types.ResourceAppointment, &created.ID)
	h.notifier.Notify(r.Context(), created.PatientID, notification.AppointmentCreated(created.DoctorID, created.DateTime))
	writeCreated(w, "Appointment created successfully", created.ID)
}

// ListAppointments returns every appointment to admins and only the
// caller's own appointments to doctors and patients.
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	var (
		appointments []types.Appointment
		err          error
	)
	if identity.Role == types.RoleAdmin {
		appointments, err = h.appointments.List(r.Context())
	} else {
		appointments, err = h.appointments.ListByUser(r.Context(), identity.ID, identity.Role)
	}
	if err != nil {
		writeServiceError(w, r, err, "Appointment not found")
		return
	}
	writeJSON(w, http.StatusOK, appointments)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "appointmentID", "appointment")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	appointment, err := h.appointments.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Appointment not found")
		return
	}

	identity, _ := identityFromContext(r.Context())
	if identity.Role != types.RoleAdmin && identity.ID != appointment.PatientID && identity.ID != appointment.DoctorID {
		writeMessage(w, http.StatusForbidden, msgAccessDenied)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "appointmentID", "appointment")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	appointment, err := h.appointments.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Appointment not found")
		return
	}

	patch := types.AppointmentPatch(req)
	affected, err := h.appointments.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err, "Appointment not found")
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, "Appointment not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionUpdate, types.ResourceAppointment, &id)
	h.notifier.Notify(r.Context(), appointment.PatientID, notification.AppointmentUpdated(patch))
	writeMessage(w, http.StatusOK, "Appointment updated successfully")
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "appointmentID", "appointment")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	appointment, err := h.appointments.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Appointment not found")
		return
	}

	affected, err := h.appointments.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Appointment not found")
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, "Appointment not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionDelete, types.ResourceAppointment, &id)
	h.notifier.Notify(r.Context(), appointment.PatientID, notification.AppointmentCanceled(appointment.DoctorID))
	writeMessage(w, http.StatusOK, "Appointment deleted successfully")
}

package services

import (
	"context"

	"github.com/clinic-records/apiserver/internal/store"
	"github.com/clinic-records/apiserver/types"
)

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	Get(ctx context.Context, id int) (types.Appointment, error)
	List(ctx context.Context) ([]types.Appointment, error)
	ListByPatient(ctx context.Context, patientID int) ([]types.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int) ([]types.Appointment, error)
	Create(ctx context.Context, appointment types.Appointment) (types.Appointment, error)
	Update(ctx context.Context, id int, patch types.AppointmentPatch) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// AppointmentService encapsulates appointment use-cases.
type AppointmentService struct {
	repo AppointmentRepository
}

func NewAppointmentService(repo AppointmentRepository) *AppointmentService {
	return &AppointmentService{repo: repo}
}

func (s *AppointmentService) Get(ctx context.Context, id int) (types.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context) ([]types.Appointment, error) {
	return s.repo.List(ctx)
}

// ListByUser returns the appointments of userID, matched on the patient
// column for patients and on the doctor column otherwise.
func (s *AppointmentService) ListByUser(ctx context.Context, userID int, role string) ([]types.Appointment, error) {
	if role == types.RolePatient {
		return s.repo.ListByPatient(ctx, userID)
	}
	return s.repo.ListByDoctor(ctx, userID)
}

func (s *AppointmentService) Create(ctx context.Context, appointment types.Appointment) (types.Appointment, error) {
	if appointment.Status == "" {
		appointment.Status = types.AppointmentConfirmed
	}
	return s.repo.Create(ctx, appointment)
}

func (s *AppointmentService) Update(ctx context.Context, id int, patch types.AppointmentPatch) (int64, error) {
	if patch.Empty() {
		return 0, store.ErrEmptyUpdate
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *AppointmentService) Delete(ctx context.Context, id int) (int64, error) {
	return s.repo.Delete(ctx, id)
}

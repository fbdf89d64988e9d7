package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinic-records/apiserver/types"
)

const appointmentColumns = `id, patient_id, doctor_id, date_time, reason, status`

// AppointmentRepository handles persistence for appointments.
type AppointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Get(ctx context.Context, id int) (types.Appointment, error) {
	const query = `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	var appointment types.Appointment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&appointment.DateTime,
		&appointment.Reason,
		&appointment.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Appointment{}, ErrNotFound
		}
		return types.Appointment{}, err
	}
	return appointment, nil
}

func (r *AppointmentRepository) List(ctx context.Context) ([]types.Appointment, error) {
	const query = `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY date_time, id`
	return r.list(ctx, query)
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID int) ([]types.Appointment, error) {
	const query = `SELECT ` + appointmentColumns + ` FROM appointments WHERE patient_id = $1 ORDER BY date_time, id`
	return r.list(ctx, query, patientID)
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID int) ([]types.Appointment, error) {
	const query = `SELECT ` + appointmentColumns + ` FROM appointments WHERE doctor_id = $1 ORDER BY date_time, id`
	return r.list(ctx, query, doctorID)
}

func (r *AppointmentRepository) list(ctx context.Context, query string, args ...any) ([]types.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]types.Appointment, 0)
	for rows.Next() {
		var appointment types.Appointment
		if err := rows.Scan(
			&appointment.ID,
			&appointment.PatientID,
			&appointment.DoctorID,
			&appointment.DateTime,
			&appointment.Reason,
			&appointment.Status,
		); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment types.Appointment) (types.Appointment, error) {
	const query = `
		INSERT INTO appointments (patient_id, doctor_id, date_time, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.DateTime,
		appointment.Reason,
		appointment.Status,
	).Scan(&appointment.ID); err != nil {
		return types.Appointment{}, translateError(err)
	}
	return appointment, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, id int, patch types.AppointmentPatch) (int64, error) {
	b := newUpdate("appointments")
	setIf(b, "patient_id", patch.PatientID)
	setIf(b, "doctor_id", patch.DoctorID)
	setIf(b, "date_time", patch.DateTime)
	setIf(b, "reason", patch.Reason)
	setIf(b, "status", patch.Status)
	return b.exec(ctx, r.db, id)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int) (int64, error) {
	return deleteByID(ctx, r.db, "appointments", id)
}

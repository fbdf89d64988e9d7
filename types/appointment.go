package types

import "time"

// Appointment statuses.
const (
	AppointmentConfirmed   = "confirmed"
	AppointmentCanceled    = "canceled"
	AppointmentRescheduled = "rescheduled"
)

// Appointment is a scheduled visit between a patient and a doctor.
type Appointment struct {
	ID        int       `json:"id" db:"id"`
	PatientID int       `json:"patientId" db:"patient_id"`
	DoctorID  int       `json:"doctorId" db:"doctor_id"`
	DateTime  time.Time `json:"dateTime" db:"date_time"`
	Reason    *string   `json:"reason,omitempty" db:"reason"`
	Status    string    `json:"status" db:"status"`
}

// AppointmentPatch lists the appointment fields an update may change.
type AppointmentPatch struct {
	PatientID *int       `json:"patientId,omitempty"`
	DoctorID  *int       `json:"doctorId,omitempty"`
	DateTime  *time.Time `json:"dateTime,omitempty"`
	Reason    *string    `json:"reason,omitempty"`
	Status    *string    `json:"status,omitempty"`
}

func (p AppointmentPatch) Empty() bool {
	return p.PatientID == nil && p.DoctorID == nil && p.DateTime == nil && p.Reason == nil && p.Status == nil
}

// ValidAppointmentStatus reports whether status is a known appointment status.
func ValidAppointmentStatus(status string) bool {
	switch status {
	case AppointmentConfirmed, AppointmentCanceled, AppointmentRescheduled:
		return true
	default:
		return false
	}
}

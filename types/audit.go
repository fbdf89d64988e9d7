package types

import "time"

// Audit actions.
const (
	ActionCreate             = "CREATE"
	ActionUpdate             = "UPDATE"
	ActionDelete             = "DELETE"
	ActionUpload             = "UPLOAD"
	ActionAssignSpecialty    = "ASSIGN-SPECIALTY"
	ActionAssignDepartment   = "ASSIGN-DEPARTMENT"
	ActionUnassignSpecialty  = "UNASSIGN-SPECIALTY"
	ActionUnassignDepartment = "UNASSIGN-DEPARTMENT"
)

// Audited resource names.
const (
	ResourceUser          = "User"
	ResourceAppointment   = "Appointment"
	ResourceMedicalRecord = "Medical record"
	ResourceAttachment    = "Medical record attachment"
	ResourceDepartment    = "Department"
	ResourceSpecialty     = "Specialty"
	ResourceDoctor        = "Doctor"
)

// AuditLogEntry records who did what to which resource, and when.
// Entries are append-only.
type AuditLogEntry struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"userId" db:"user_id"`
	Action     string    `json:"action" db:"action"`
	Resource   string    `json:"resource" db:"resource"`
	ResourceID *int      `json:"resourceId,omitempty" db:"resource_id"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

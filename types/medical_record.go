package types

import "time"

// MedicalRecord holds a doctor's clinical notes for a patient.
// Prescriptions, notes, test results and treatments are free text or JSON documents.
type MedicalRecord struct {
	ID            int       `json:"id" db:"id"`
	PatientID     int       `json:"patientId" db:"patient_id"`
	DoctorID      int       `json:"doctorId" db:"doctor_id"`
	Diagnosis     string    `json:"diagnosis" db:"diagnosis"`
	Prescriptions *string   `json:"prescriptions,omitempty" db:"prescriptions"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	TestResults   *string   `json:"testResults,omitempty" db:"test_results"`
	Treatments    *string   `json:"treatments,omitempty" db:"treatments"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// MedicalRecordPatch lists the medical record fields an update may change.
type MedicalRecordPatch struct {
	PatientID     *int    `json:"patientId,omitempty"`
	DoctorID      *int    `json:"doctorId,omitempty"`
	Diagnosis     *string `json:"diagnosis,omitempty"`
	Prescriptions *string `json:"prescriptions,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	TestResults   *string `json:"testResults,omitempty"`
	Treatments    *string `json:"treatments,omitempty"`
}

func (p MedicalRecordPatch) Empty() bool {
	return p.PatientID == nil && p.DoctorID == nil && p.Diagnosis == nil &&
		p.Prescriptions == nil && p.Notes == nil && p.TestResults == nil && p.Treatments == nil
}

// Attachment is a file stored in object storage and linked to a medical record.
type Attachment struct {
	ID              int       `json:"id" db:"id"`
	MedicalRecordID int       `json:"medicalRecordId" db:"medical_record_id"`
	ObjectKey       string    `json:"-" db:"object_key"`
	Filename        string    `json:"filename" db:"filename"`
	ContentType     string    `json:"contentType" db:"content_type"`
	SizeBytes       int64     `json:"sizeBytes" db:"size_bytes"`
	UploadedBy      int       `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

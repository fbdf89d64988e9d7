package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinic-records/apiserver/types"
)

const medicalRecordColumns = `id, patient_id, doctor_id, diagnosis, prescriptions, notes, test_results, treatments, created_at`

// MedicalRecordRepository handles persistence for medical records and their attachments.
type MedicalRecordRepository struct {
	db *sql.DB
}

func NewMedicalRecordRepository(db *sql.DB) *MedicalRecordRepository {
	return &MedicalRecordRepository{db: db}
}

func (r *MedicalRecordRepository) Get(ctx context.Context, id int) (types.MedicalRecord, error) {
	const query = `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = $1`
	var record types.MedicalRecord
	err := scanMedicalRecord(r.db.QueryRowContext(ctx, query, id), &record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MedicalRecord{}, ErrNotFound
		}
		return types.MedicalRecord{}, err
	}
	return record, nil
}

func (r *MedicalRecordRepository) List(ctx context.Context) ([]types.MedicalRecord, error) {
	const query = `SELECT ` + medicalRecordColumns + ` FROM medical_records ORDER BY id`
	return r.list(ctx, query)
}

func (r *MedicalRecordRepository) ListByPatient(ctx context.Context, patientID int) ([]types.MedicalRecord, error) {
	const query = `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE patient_id = $1 ORDER BY id`
	return r.list(ctx, query, patientID)
}

func (r *MedicalRecordRepository) ListByDoctor(ctx context.Context, doctorID int) ([]types.MedicalRecord, error) {
	const query = `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE doctor_id = $1 ORDER BY id`
	return r.list(ctx, query, doctorID)
}

func (r *MedicalRecordRepository) list(ctx context.Context, query string, args ...any) ([]types.MedicalRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]types.MedicalRecord, 0)
	for rows.Next() {
		var record types.MedicalRecord
		if err := scanMedicalRecord(rows, &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedicalRecord(row rowScanner, record *types.MedicalRecord) error {
	return row.Scan(
		&record.ID,
		&record.PatientID,
		&record.DoctorID,
		&record.Diagnosis,
		&record.Prescriptions,
		&record.Notes,
		&record.TestResults,
		&record.Treatments,
		&record.CreatedAt,
	)
}

func (r *MedicalRecordRepository) Create(ctx context.Context, record types.MedicalRecord) (types.MedicalRecord, error) {
	const query = `
		INSERT INTO medical_records (patient_id, doctor_id, diagnosis, prescriptions, notes, test_results, treatments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		record.PatientID,
		record.DoctorID,
		record.Diagnosis,
		record.Prescriptions,
		record.Notes,
		record.TestResults,
		record.Treatments,
	).Scan(&record.ID, &record.CreatedAt); err != nil {
		return types.MedicalRecord{}, translateError(err)
	}
	return record, nil
}

func (r *MedicalRecordRepository) Update(ctx context.Context, id int, patch types.MedicalRecordPatch) (int64, error) {
	b := newUpdate("medical_records")
	setIf(b, "patient_id", patch.PatientID)
	setIf(b, "doctor_id", patch.DoctorID)
	setIf(b, "diagnosis", patch.Diagnosis)
	setIf(b, "prescriptions", patch.Prescriptions)
	setIf(b, "notes", patch.Notes)
	setIf(b, "test_results", patch.TestResults)
	setIf(b, "treatments", patch.Treatments)
	return b.exec(ctx, r.db, id)
}

func (r *MedicalRecordRepository) Delete(ctx context.Context, id int) (int64, error) {
	return deleteByID(ctx, r.db, "medical_records", id)
}

const attachmentColumns = `id, medical_record_id, object_key, filename, content_type, size_bytes, uploaded_by, created_at`

func (r *MedicalRecordRepository) CreateAttachment(ctx context.Context, attachment types.Attachment) (types.Attachment, error) {
	const query = `
		INSERT INTO medical_record_attachments (medical_record_id, object_key, filename, content_type, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		attachment.MedicalRecordID,
		attachment.ObjectKey,
		attachment.Filename,
		attachment.ContentType,
		attachment.SizeBytes,
		attachment.UploadedBy,
	).Scan(&attachment.ID, &attachment.CreatedAt); err != nil {
		return types.Attachment{}, translateError(err)
	}
	return attachment, nil
}

func (r *MedicalRecordRepository) GetAttachment(ctx context.Context, recordID, attachmentID int) (types.Attachment, error) {
	const query = `SELECT ` + attachmentColumns + ` FROM medical_record_attachments WHERE medical_record_id = $1 AND id = $2`
	var attachment types.Attachment
	err := scanAttachment(r.db.QueryRowContext(ctx, query, recordID, attachmentID), &attachment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Attachment{}, ErrNotFound
		}
		return types.Attachment{}, err
	}
	return attachment, nil
}

func (r *MedicalRecordRepository) ListAttachments(ctx context.Context, recordID int) ([]types.Attachment, error) {
	const query = `SELECT ` + attachmentColumns + ` FROM medical_record_attachments WHERE medical_record_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := make([]types.Attachment, 0)
	for rows.Next() {
		var attachment types.Attachment
		if err := scanAttachment(rows, &attachment); err != nil {
			return nil, err
		}
		attachments = append(attachments, attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attachments, nil
}

func scanAttachment(row rowScanner, attachment *types.Attachment) error {
	return row.Scan(
		&attachment.ID,
		&attachment.MedicalRecordID,
		&attachment.ObjectKey,
		&attachment.Filename,
		&attachment.ContentType,
		&attachment.SizeBytes,
		&attachment.UploadedBy,
		&attachment.CreatedAt,
	)
}

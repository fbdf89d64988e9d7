package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/clinic-records/apiserver/internal/storage"
	"github.com/clinic-records/apiserver/internal/store"
	"github.com/clinic-records/apiserver/types"
	"github.com/google/uuid"
)

// ErrStorageDisabled is returned by attachment operations when no object
// storage backend is configured.
var ErrStorageDisabled = errors.New("attachment storage is not configured")

// MedicalRecordRepository defines persistence operations for medical records.
type MedicalRecordRepository interface {
	Get(ctx context.Context, id int) (types.MedicalRecord, error)
	List(ctx context.Context) ([]types.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID int) ([]types.MedicalRecord, error)
	ListByDoctor(ctx context.Context, doctorID int) ([]types.MedicalRecord, error)
	Create(ctx context.Context, record types.MedicalRecord) (types.MedicalRecord, error)
	Update(ctx context.Context, id int, patch types.MedicalRecordPatch) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
	CreateAttachment(ctx context.Context, attachment types.Attachment) (types.Attachment, error)
	GetAttachment(ctx context.Context, recordID, attachmentID int) (types.Attachment, error)
	ListAttachments(ctx context.Context, recordID int) ([]types.Attachment, error)
}

// MedicalRecordService encapsulates medical record use-cases.
type MedicalRecordService struct {
	repo    MedicalRecordRepository
	storage *storage.Storage
}

// NewMedicalRecordService constructs the service. objects may be nil, in
// which case attachment operations return ErrStorageDisabled.
func NewMedicalRecordService(repo MedicalRecordRepository, objects *storage.Storage) *MedicalRecordService {
	return &MedicalRecordService{repo: repo, storage: objects}
}

func (s *MedicalRecordService) Get(ctx context.Context, id int) (types.MedicalRecord, error) {
	return s.repo.Get(ctx, id)
}

func (s *MedicalRecordService) List(ctx context.Context) ([]types.MedicalRecord, error) {
	return s.repo.List(ctx)
}

func (s *MedicalRecordService) ListByPatient(ctx context.Context, patientID int) ([]types.MedicalRecord, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *MedicalRecordService) ListByDoctor(ctx context.Context, doctorID int) ([]types.MedicalRecord, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *MedicalRecordService) Create(ctx context.Context, record types.MedicalRecord) (types.MedicalRecord, error) {
	return s.repo.Create(ctx, record)
}

func (s *MedicalRecordService) Update(ctx context.Context, id int, patch types.MedicalRecordPatch) (int64, error) {
	if patch.Empty() {
		return 0, store.ErrEmptyUpdate
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *MedicalRecordService) Delete(ctx context.Context, id int) (int64, error) {
	return s.repo.Delete(ctx, id)
}

// UploadAttachment stores data under a fresh object key and records it
// against recordID.
func (s *MedicalRecordService) UploadAttachment(ctx context.Context, recordID, uploadedBy int, filename, contentType string, data []byte) (types.Attachment, error) {
	if s.storage == nil {
		return types.Attachment{}, ErrStorageDisabled
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := attachmentKey(recordID, filename)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return types.Attachment{}, fmt.Errorf("store attachment object: %w", err)
	}

	attachment, err := s.repo.CreateAttachment(ctx, types.Attachment{
		MedicalRecordID: recordID,
		ObjectKey:       key,
		Filename:        filename,
		ContentType:     contentType,
		SizeBytes:       int64(len(data)),
		UploadedBy:      uploadedBy,
	})
	if err != nil {
		_ = s.storage.Delete(ctx, key)
		return types.Attachment{}, err
	}
	return attachment, nil
}

func (s *MedicalRecordService) ListAttachments(ctx context.Context, recordID int) ([]types.Attachment, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	return s.repo.ListAttachments(ctx, recordID)
}

// OpenAttachment returns the attachment metadata and a reader over its content.
// The caller closes the reader.
func (s *MedicalRecordService) OpenAttachment(ctx context.Context, recordID, attachmentID int) (types.Attachment, io.ReadCloser, error) {
	if s.storage == nil {
		return types.Attachment{}, nil, ErrStorageDisabled
	}
	attachment, err := s.repo.GetAttachment(ctx, recordID, attachmentID)
	if err != nil {
		return types.Attachment{}, nil, err
	}
	reader, err := s.storage.Get(ctx, attachment.ObjectKey)
	if err != nil {
		return types.Attachment{}, nil, fmt.Errorf("open attachment object: %w", err)
	}
	return attachment, reader, nil
}

func attachmentKey(recordID int, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "attachment"
	}
	return fmt.Sprintf("medical-records/%d/%s-%s", recordID, uuid.NewString(), base)
}

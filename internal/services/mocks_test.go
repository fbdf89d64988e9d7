package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/clinic-records/apiserver/internal/store"
	"github.com/clinic-records/apiserver/types"
)

var _ UserRepository = (*mockUserRepository)(nil)

type mockUserRepository struct {
	users  map[string]types.User
	nextID int

	UpdateCalls int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[string]types.User{}, nextID: 1}
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	u, ok := m.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]types.User, error) {
	out := make([]types.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := m.users[user.Username]; ok {
		return types.User{}, store.ErrConflict
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return user, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id int, patch types.UserPatch) (int64, error) {
	m.UpdateCalls++
	for name, u := range m.users {
		if u.ID != id {
			continue
		}
		if patch.PasswordHash != nil {
			u.PasswordHash = *patch.PasswordHash
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if patch.Email != nil {
			u.Email = patch.Email
		}
		m.users[name] = u
		return 1, nil
	}
	return 0, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int) (int64, error) {
	for name, u := range m.users {
		if u.ID == id {
			delete(m.users, name)
			return 1, nil
		}
	}
	return 0, nil
}

var _ AppointmentRepository = (*mockAppointmentRepository)(nil)

type mockAppointmentRepository struct {
	ListByPatientFunc func(ctx context.Context, patientID int) ([]types.Appointment, error)
	ListByDoctorFunc  func(ctx context.Context, doctorID int) ([]types.Appointment, error)
	CreateFunc        func(ctx context.Context, appointment types.Appointment) (types.Appointment, error)
	UpdateFunc        func(ctx context.Context, id int, patch types.AppointmentPatch) (int64, error)
}

func (m *mockAppointmentRepository) Get(ctx context.Context, id int) (types.Appointment, error) {
	return types.Appointment{}, store.ErrNotFound
}

func (m *mockAppointmentRepository) List(ctx context.Context) ([]types.Appointment, error) {
	return nil, nil
}

func (m *mockAppointmentRepository) ListByPatient(ctx context.Context, patientID int) ([]types.Appointment, error) {
	if m.ListByPatientFunc != nil {
		return m.ListByPatientFunc(ctx, patientID)
	}
	return nil, errors.New("ListByPatientFunc not implemented in mock")
}

func (m *mockAppointmentRepository) ListByDoctor(ctx context.Context, doctorID int) ([]types.Appointment, error) {
	if m.ListByDoctorFunc != nil {
		return m.ListByDoctorFunc(ctx, doctorID)
	}
	return nil, errors.New("ListByDoctorFunc not implemented in mock")
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appointment types.Appointment) (types.Appointment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, appointment)
	}
	return types.Appointment{}, errors.New("CreateFunc not implemented in mock")
}

func (m *mockAppointmentRepository) Update(ctx context.Context, id int, patch types.AppointmentPatch) (int64, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	return 0, errors.New("UpdateFunc not implemented in mock")
}

func (m *mockAppointmentRepository) Delete(ctx context.Context, id int) (int64, error) {
	return 0, nil
}

var _ MedicalRecordRepository = (*mockMedicalRecordRepository)(nil)

type mockMedicalRecordRepository struct {
	attachments []types.Attachment

	CreateAttachmentErr error
}

func (m *mockMedicalRecordRepository) Get(ctx context.Context, id int) (types.MedicalRecord, error) {
	return types.MedicalRecord{}, store.ErrNotFound
}

func (m *mockMedicalRecordRepository) List(ctx context.Context) ([]types.MedicalRecord, error) {
	return nil, nil
}

func (m *mockMedicalRecordRepository) ListByPatient(ctx context.Context, patientID int) ([]types.MedicalRecord, error) {
	return nil, nil
}

func (m *mockMedicalRecordRepository) ListByDoctor(ctx context.Context, doctorID int) ([]types.MedicalRecord, error) {
	return nil, nil
}

func (m *mockMedicalRecordRepository) Create(ctx context.Context, record types.MedicalRecord) (types.MedicalRecord, error) {
	record.ID = 1
	return record, nil
}

func (m *mockMedicalRecordRepository) Update(ctx context.Context, id int, patch types.MedicalRecordPatch) (int64, error) {
	return 1, nil
}

func (m *mockMedicalRecordRepository) Delete(ctx context.Context, id int) (int64, error) {
	return 1, nil
}

func (m *mockMedicalRecordRepository) CreateAttachment(ctx context.Context, attachment types.Attachment) (types.Attachment, error) {
	if m.CreateAttachmentErr != nil {
		return types.Attachment{}, m.CreateAttachmentErr
	}
	attachment.ID = len(m.attachments) + 1
	m.attachments = append(m.attachments, attachment)
	return attachment, nil
}

func (m *mockMedicalRecordRepository) GetAttachment(ctx context.Context, recordID, attachmentID int) (types.Attachment, error) {
	for _, a := range m.attachments {
		if a.ID == attachmentID && a.MedicalRecordID == recordID {
			return a, nil
		}
	}
	return types.Attachment{}, store.ErrNotFound
}

func (m *mockMedicalRecordRepository) ListAttachments(ctx context.Context, recordID int) ([]types.Attachment, error) {
	var out []types.Attachment
	for _, a := range m.attachments {
		if a.MedicalRecordID == recordID {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ AuditRepository = (*mockAuditRepository)(nil)

type mockAuditRepository struct {
	mu      sync.Mutex
	entries []types.AuditLogEntry
	ctxErrs []error
	err     error
}

func (m *mockAuditRepository) Append(ctx context.Context, entry types.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

// stallingAuditRepository blocks every append until its context ends.
type stallingAuditRepository struct {
	mockAuditRepository
}

func (m *stallingAuditRepository) Append(ctx context.Context, entry types.AuditLogEntry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(3 * time.Second):
		return m.mockAuditRepository.Append(ctx, entry)
	}
}

func (m *mockAuditRepository) List(ctx context.Context, offset, limit int) ([]types.AuditLogEntry, int, error) {
	return m.entries, len(m.entries), nil
}

func (m *mockAuditRepository) ListByUser(ctx context.Context, userID, offset, limit int) ([]types.AuditLogEntry, int, error) {
	var out []types.AuditLogEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

// memoryObjects is an in-memory object store backend.
type memoryObjects struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryObjects) EnsureBucket(ctx context.Context) error { return nil }

func (m *memoryObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return nil
}

func (m *memoryObjects) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryObjects) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) Bucket() string { return "attachments" }

func (m *memoryObjects) Close() error { return nil }

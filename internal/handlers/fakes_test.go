package handlers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/clinic-records/apiserver/internal/services"
	"github.com/clinic-records/apiserver/internal/store"
	"github.com/clinic-records/apiserver/types"
)

// memStore is an in-memory stand-in for the Postgres repositories. It
// counts mutating calls so tests can assert that rejected requests never
// reach the store, and mimics the role triggers of the schema.
type memStore struct {
	mu sync.Mutex

	users        map[int]types.User
	appointments map[int]types.Appointment
	records      map[int]types.MedicalRecord
	attachments  map[int]types.Attachment
	departments  map[int]types.Department
	specialties  map[int]types.Specialty
	docSpecs     map[[2]int]bool
	docDepts     map[[2]int]bool
	audits       []types.AuditLogEntry

	nextID int
	writes int
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[int]types.User{},
		appointments: map[int]types.Appointment{},
		records:      map[int]types.MedicalRecord{},
		attachments:  map[int]types.Attachment{},
		departments:  map[int]types.Department{},
		specialties:  map[int]types.Specialty{},
		docSpecs:     map[[2]int]bool{},
		docDepts:     map[[2]int]bool{},
		nextID:       1,
	}
}

func (m *memStore) id() int {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memStore) auditEntries() []types.AuditLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.AuditLogEntry(nil), m.audits...)
}

func (m *memStore) requireRole(id int, role string) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("%w: user %d does not exist", store.ErrInvalidReference, id)
	}
	if u.Role != role {
		return fmt.Errorf("%w: user %d is not a %s", store.ErrInvalidReference, id, role)
	}
	return nil
}

func (m *memStore) seedUser(username, role string) types.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := types.User{ID: m.id(), Username: username, Role: role, PasswordHash: "x", CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u
}

type memUsers struct{ *memStore }

var _ services.UserRepository = memUsers{}

func (m memUsers) GetByID(ctx context.Context, id int) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m memUsers) GetByUsername(ctx context.Context, username string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m memUsers) List(ctx context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memUsers) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for _, u := range m.users {
		if u.Username == user.Username {
			return types.User{}, fmt.Errorf("%w: duplicate username", store.ErrConflict)
		}
	}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return user, nil
}

func (m memUsers) Update(ctx context.Context, id int, patch types.UserPatch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	u, ok := m.users[id]
	if !ok {
		return 0, nil
	}
	if patch.Username != nil {
		u.Username = *patch.Username
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
	m.users[id] = u
	return 1, nil
}

func (m memUsers) Delete(ctx context.Context, id int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.users[id]; !ok {
		return 0, nil
	}
	delete(m.users, id)
	return 1, nil
}

type memAppointments struct{ *memStore }

var _ services.AppointmentRepository = memAppointments{}

func (m memAppointments) Get(ctx context.Context, id int) (types.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return types.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (m memAppointments) filter(keep func(types.Appointment) bool) []types.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Appointment{}
	for _, a := range m.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memAppointments) List(ctx context.Context) ([]types.Appointment, error) {
	return m.filter(func(types.Appointment) bool { return true }), nil
}

func (m memAppointments) ListByPatient(ctx context.Context, patientID int) ([]types.Appointment, error) {
	return m.filter(func(a types.Appointment) bool { return a.PatientID == patientID }), nil
}

func (m memAppointments) ListByDoctor(ctx context.Context, doctorID int) ([]types.Appointment, error) {
	return m.filter(func(a types.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (m memAppointments) Create(ctx context.Context, a types.Appointment) (types.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if err := m.requireRole(a.PatientID, types.RolePatient); err != nil {
		return types.Appointment{}, err
	}
	if err := m.requireRole(a.DoctorID, types.RoleDoctor); err != nil {
		return types.Appointment{}, err
	}
	a.ID = m.id()
	m.appointments[a.ID] = a
	return a, nil
}

func (m memAppointments) Update(ctx context.Context, id int, patch types.AppointmentPatch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	a, ok := m.appointments[id]
	if !ok {
		return 0, nil
	}
	if patch.PatientID != nil {
		if err := m.requireRole(*patch.PatientID, types.RolePatient); err != nil {
			return 0, err
		}
		a.PatientID = *patch.PatientID
	}
	if patch.DoctorID != nil {
		if err := m.requireRole(*patch.DoctorID, types.RoleDoctor); err != nil {
			return 0, err
		}
		a.DoctorID = *patch.DoctorID
	}
	if patch.DateTime != nil {
		a.DateTime = *patch.DateTime
	}
	if patch.Reason != nil {
		a.Reason = patch.Reason
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	m.appointments[id] = a
	return 1, nil
}

func (m memAppointments) Delete(ctx context.Context, id int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.appointments[id]; !ok {
		return 0, nil
	}
	delete(m.appointments, id)
	return 1, nil
}

type memRecords struct{ *memStore }

var _ services.MedicalRecordRepository = memRecords{}

func (m memRecords) Get(ctx context.Context, id int) (types.MedicalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return types.MedicalRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (m memRecords) filter(keep func(types.MedicalRecord) bool) []types.MedicalRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.MedicalRecord{}
	for _, rec := range m.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memRecords) List(ctx context.Context) ([]types.MedicalRecord, error) {
	return m.filter(func(types.MedicalRecord) bool { return true }), nil
}

func (m memRecords) ListByPatient(ctx context.Context, patientID int) ([]types.MedicalRecord, error) {
	return m.filter(func(rec types.MedicalRecord) bool { return rec.PatientID == patientID }), nil
}

func (m memRecords) ListByDoctor(ctx context.Context, doctorID int) ([]types.MedicalRecord, error) {
	return m.filter(func(rec types.MedicalRecord) bool { return rec.DoctorID == doctorID }), nil
}

func (m memRecords) Create(ctx context.Context, rec types.MedicalRecord) (types.MedicalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if err := m.requireRole(rec.PatientID, types.RolePatient); err != nil {
		return types.MedicalRecord{}, err
	}
	if err := m.requireRole(rec.DoctorID, types.RoleDoctor); err != nil {
		return types.MedicalRecord{}, err
	}
	rec.ID = m.id()
	m.records[rec.ID] = rec
	return rec, nil
}

func (m memRecords) Update(ctx context.Context, id int, patch types.MedicalRecordPatch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	rec, ok := m.records[id]
	if !ok {
		return 0, nil
	}
	if patch.PatientID != nil {
		if err := m.requireRole(*patch.PatientID, types.RolePatient); err != nil {
			return 0, err
		}
		rec.PatientID = *patch.PatientID
	}
	if patch.DoctorID != nil {
		if err := m.requireRole(*patch.DoctorID, types.RoleDoctor); err != nil {
			return 0, err
		}
		rec.DoctorID = *patch.DoctorID
	}
	if patch.Diagnosis != nil {
		rec.Diagnosis = *patch.Diagnosis
	}
	if patch.Notes != nil {
		rec.Notes = patch.Notes
	}
	if patch.Prescriptions != nil {
		rec.Prescriptions = patch.Prescriptions
	}
	m.records[id] = rec
	return 1, nil
}

func (m memRecords) Delete(ctx context.Context, id int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.records[id]; !ok {
		return 0, nil
	}
	delete(m.records, id)
	return 1, nil
}

func (m memRecords) CreateAttachment(ctx context.Context, a types.Attachment) (types.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	a.ID = m.id()
	m.attachments[a.ID] = a
	return a, nil
}

func (m memRecords) GetAttachment(ctx context.Context, recordID, attachmentID int) (types.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attachments[attachmentID]
	if !ok || a.MedicalRecordID != recordID {
		return types.Attachment{}, store.ErrNotFound
	}
	return a, nil
}

func (m memRecords) ListAttachments(ctx context.Context, recordID int) ([]types.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Attachment{}
	for _, a := range m.attachments {
		if a.MedicalRecordID == recordID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memDepartments struct{ *memStore }

var _ services.DepartmentRepository = memDepartments{}

func (m memDepartments) Get(ctx context.Context, id int) (types.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.departments[id]
	if !ok {
		return types.Department{}, store.ErrNotFound
	}
	return d, nil
}

func (m memDepartments) List(ctx context.Context) ([]types.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Department{}
	for _, d := range m.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memDepartments) Create(ctx context.Context, d types.Department) (types.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	d.ID = m.id()
	m.departments[d.ID] = d
	return d, nil
}

func (m memDepartments) Update(ctx context.Context, id int, patch types.CatalogPatch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	d, ok := m.departments[id]
	if !ok {
		return 0, nil
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.Description != nil {
		d.Description = patch.Description
	}
	m.departments[id] = d
	return 1, nil
}

func (m memDepartments) Delete(ctx context.Context, id int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.departments[id]; !ok {
		return 0, nil
	}
	delete(m.departments, id)
	return 1, nil
}

type memSpecialties struct{ *memStore }

var _ services.SpecialtyRepository = memSpecialties{}

func (m memSpecialties) Get(ctx context.Context, id int) (types.Specialty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.specialties[id]
	if !ok {
		return types.Specialty{}, store.ErrNotFound
	}
	return s, nil
}

func (m memSpecialties) List(ctx context.Context) ([]types.Specialty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Specialty{}
	for _, s := range m.specialties {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memSpecialties) Create(ctx context.Context, s types.Specialty) (types.Specialty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	s.ID = m.id()
	m.specialties[s.ID] = s
	return s, nil
}

func (m memSpecialties) Update(ctx context.Context, id int, patch types.CatalogPatch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	s, ok := m.specialties[id]
	if !ok {
		return 0, nil
	}
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	m.specialties[id] = s
	return 1, nil
}

func (m memSpecialties) Delete(ctx context.Context, id int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.specialties[id]; !ok {
		return 0, nil
	}
	delete(m.specialties, id)
	return 1, nil
}

type memAssociations struct{ *memStore }

var _ services.DoctorAssociationRepository = memAssociations{}

func (m memAssociations) AssignSpecialty(ctx context.Context, doctorID, specialtyID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if err := m.requireRole(doctorID, types.RoleDoctor); err != nil {
		return err
	}
	if _, ok := m.specialties[specialtyID]; !ok {
		return fmt.Errorf("%w: specialty %d does not exist", store.ErrInvalidReference, specialtyID)
	}
	key := [2]int{doctorID, specialtyID}
	if m.docSpecs[key] {
		return fmt.Errorf("%w: already assigned", store.ErrConflict)
	}
	m.docSpecs[key] = true
	return nil
}

func (m memAssociations) AssignDepartment(ctx context.Context, doctorID, departmentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if err := m.requireRole(doctorID, types.RoleDoctor); err != nil {
		return err
	}
	if _, ok := m.departments[departmentID]; !ok {
		return fmt.Errorf("%w: department %d does not exist", store.ErrInvalidReference, departmentID)
	}
	m.docDepts[[2]int{doctorID, departmentID}] = true
	return nil
}

func (m memAssociations) RemoveSpecialty(ctx context.Context, doctorID, specialtyID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	key := [2]int{doctorID, specialtyID}
	if !m.docSpecs[key] {
		return 0, nil
	}
	delete(m.docSpecs, key)
	return 1, nil
}

func (m memAssociations) RemoveDepartment(ctx context.Context, doctorID, departmentID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	key := [2]int{doctorID, departmentID}
	if !m.docDepts[key] {
		return 0, nil
	}
	delete(m.docDepts, key)
	return 1, nil
}

func (m memAssociations) SpecialtiesOfDoctor(ctx context.Context, doctorID int) ([]types.Specialty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Specialty
	for key := range m.docSpecs {
		if key[0] == doctorID {
			out = append(out, m.specialties[key[1]])
		}
	}
	return out, nil
}

func (m memAssociations) DepartmentsOfDoctor(ctx context.Context, doctorID int) ([]types.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Department
	for key := range m.docDepts {
		if key[0] == doctorID {
			out = append(out, m.departments[key[1]])
		}
	}
	return out, nil
}

func (m memAssociations) DoctorsBySpecialty(ctx context.Context, specialtyID int) ([]types.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Doctor
	for key := range m.docSpecs {
		if key[1] == specialtyID {
			u := m.users[key[0]]
			out = append(out, types.Doctor{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role})
		}
	}
	return out, nil
}

func (m memAssociations) DoctorsByDepartment(ctx context.Context, departmentID int) ([]types.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Doctor
	for key := range m.docDepts {
		if key[1] == departmentID {
			u := m.users[key[0]]
			out = append(out, types.Doctor{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role})
		}
	}
	return out, nil
}

type memAudits struct{ *memStore }

var _ services.AuditRepository = memAudits{}

func (m memAudits) Append(ctx context.Context, entry types.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = len(m.audits) + 1
	entry.Timestamp = time.Now()
	m.audits = append(m.audits, entry)
	return nil
}

func (m memAudits) page(keep func(types.AuditLogEntry) bool, offset, limit int) ([]types.AuditLogEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []types.AuditLogEntry
	for i := len(m.audits) - 1; i >= 0; i-- {
		if keep(m.audits[i]) {
			matched = append(matched, m.audits[i])
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m memAudits) List(ctx context.Context, offset, limit int) ([]types.AuditLogEntry, int, error) {
	return m.page(func(types.AuditLogEntry) bool { return true }, offset, limit)
}

func (m memAudits) ListByUser(ctx context.Context, userID, offset, limit int) ([]types.AuditLogEntry, int, error) {
	return m.page(func(e types.AuditLogEntry) bool { return e.UserID == userID }, offset, limit)
}

type sentNotification struct {
	UserID  int
	Message string
}

// recordingNotifier captures notifications synchronously.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(ctx context.Context, userID int, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Message: message})
}

func (n *recordingNotifier) messages() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/clinic-records/apiserver/internal/notification"
	"github.com/clinic-records/apiserver/internal/services"
	"github.com/clinic-records/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const (
	maxAttachmentBytes = 20 << 20
	formFieldFile      = "file"
)

// MedicalRecordHandler provides HTTP handlers for medical records and
// their attachments.
type MedicalRecordHandler struct {
	records  *services.MedicalRecordService
	audit    *services.AuditService
	notifier Notifier
}

func NewMedicalRecordHandler(records *services.MedicalRecordService, audit *services.AuditService, notifier Notifier) *MedicalRecordHandler {
	return &MedicalRecordHandler{
		records:  records,
		audit:    audit,
		notifier: notifier,
	}
}

// MedicalRecordRouter registers medical record routes on the given router.
func MedicalRecordRouter(r chi.Router, h *MedicalRecordHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)

	readers := RequireRoles(types.RolePatient, types.RoleDoctor, types.RoleAdmin)
	writers := RequireRoles(types.RoleDoctor, types.RoleAdmin)

	r.With(writers).Post("/", h.CreateMedicalRecord)
	r.With(readers).Get("/", h.ListMedicalRecords)
	r.Route("/{recordID}", func(r chi.Router) {
		r.With(readers).Get("/", h.GetMedicalRecord)
		r.With(writers).Put("/", h.UpdateMedicalRecord)
		r.With(RequireRoles(types.RoleAdmin)).Delete("/", h.DeleteMedicalRecord)

		r.With(writers).Post("/attachments", h.UploadAttachment)
		r.With(readers).Get("/attachments", h.ListAttachments)
		r.With(readers).Get("/attachments/{attachmentID}", h.DownloadAttachment)
	})
}

type CreateMedicalRecordRequest struct {
	PatientID     int     `json:"patientId" validate:"required,gt=0"`
	DoctorID      int     `json:"doctorId" validate:"required,gt=0"`
	Diagnosis     string  `json:"diagnosis" validate:"required"`
	Prescriptions *string `json:"prescriptions"`
	Notes         *string `json:"notes"`
	TestResults   *string `json:"testResults"`
	Treatments    *string `json:"treatments"`
}

type UpdateMedicalRecordRequest struct {
	PatientID     *int    `json:"patientId" validate:"omitempty,gt=0"`
	DoctorID      *int    `json:"doctorId" validate:"omitempty,gt=0"`
	Diagnosis     *string `json:"diagnosis" validate:"omitempty,min=1"`
	Prescriptions *string `json:"prescriptions"`
	Notes         *string `json:"notes"`
	TestResults   *string `json:"testResults"`
	Treatments    *string `json:"treatments"`
}

func (h *MedicalRecordHandler) CreateMedicalRecord(w http.ResponseWriter, r *http.Request) {
	var req CreateMedicalRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.records.Create(r.Context(), types.MedicalRecord{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		Diagnosis:     req.Diagnosis,
		Prescriptions: req.Prescriptions,
		Notes:         req.Notes,
		TestResults:   req.TestResults,
		Treatments:    req.Treatments,
	})
	if err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionCreate, types.ResourceMedicalRecord, &created.ID)
	h.notifier.Notify(r.Context(), created.PatientID, notification.MedicalRecordCreated(created.DoctorID, created.Diagnosis))
	writeCreated(w, "Medical record created successfully", created.ID)
}

// ListMedicalRecords returns all records to admins, the caller's own
// records to patients and the records they authored to doctors.
func (h *MedicalRecordHandler) ListMedicalRecords(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	var (
		records []types.MedicalRecord
		err     error
	)
	switch identity.Role {
	case types.RoleAdmin:
		records, err = h.records.List(r.Context())
	case types.RoleDoctor:
		records, err = h.records.ListByDoctor(r.Context(), identity.ID)
	default:
		records, err = h.records.ListByPatient(r.Context(), identity.ID)
	}
	if err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *MedicalRecordHandler) GetMedicalRecord(w http.ResponseWriter, r *http.Request) {
	record, ok := h.loadReadable(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *MedicalRecordHandler) UpdateMedicalRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "recordID", "medical record")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateMedicalRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.records.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return
	}

	// Doctors may only amend records they authored.
	identity, _ := identityFromContext(r.Context())
	if !canReadRecord(identity, record) {
		writeMessage(w, http.StatusForbidden, msgAccessDenied)
		return
	}

	patch := types.MedicalRecordPatch(req)
	affected, err := h.records.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, "Medical record not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionUpdate, types.ResourceMedicalRecord, &id)
	h.notifier.Notify(r.Context(), record.PatientID, notification.MedicalRecordUpdated(record.DoctorID, patch))
	writeMessage(w, http.StatusOK, "Medical record updated successfully")
}

func (h *MedicalRecordHandler) DeleteMedicalRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "recordID", "medical record")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.records.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return
	}

	affected, err := h.records.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, "Medical record not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionDelete, types.ResourceMedicalRecord, &id)
	h.notifier.Notify(r.Context(), record.PatientID, notification.MedicalRecordRemoved(record.Diagnosis))
	writeMessage(w, http.StatusOK, "Medical record deleted successfully")
}

func (h *MedicalRecordHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "recordID", "medical record")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.records.Get(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBytes+(1<<20))
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, maxAttachmentBytes)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	attachment, err := h.records.UploadAttachment(r.Context(), id, actorID(r), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionUpload, types.ResourceAttachment, &attachment.ID)
	writeJSON(w, http.StatusCreated, attachment)
}

func (h *MedicalRecordHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	record, ok := h.loadReadable(w, r)
	if !ok {
		return
	}

	attachments, err := h.records.ListAttachments(r.Context(), record.ID)
	if err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return
	}
	if attachments == nil {
		attachments = []types.Attachment{}
	}
	writeJSON(w, http.StatusOK, attachments)
}

func (h *MedicalRecordHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	record, ok := h.loadReadable(w, r)
	if !ok {
		return
	}
	attachmentID, err := parseID(r, "attachmentID", "attachment")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	attachment, reader, err := h.records.OpenAttachment(r.Context(), record.ID, attachmentID)
	if err != nil {
		writeServiceError(w, r, err, "Attachment not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.SizeBytes, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": attachment.Filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

// loadReadable fetches the record named in the path and checks that the
// caller may read it. It writes the response and returns false otherwise.
func (h *MedicalRecordHandler) loadReadable(w http.ResponseWriter, r *http.Request) (types.MedicalRecord, bool) {
	id, err := parseID(r, "recordID", "medical record")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return types.MedicalRecord{}, false
	}

	record, err := h.records.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Medical record not found")
		return types.MedicalRecord{}, false
	}

	identity, _ := identityFromContext(r.Context())
	if !canReadRecord(identity, record) {
		writeMessage(w, http.StatusForbidden, msgAccessDenied)
		return types.MedicalRecord{}, false
	}
	return record, true
}

func canReadRecord(identity Identity, record types.MedicalRecord) bool {
	switch identity.Role {
	case types.RoleAdmin:
		return true
	case types.RoleDoctor:
		return record.DoctorID == identity.ID
	case types.RolePatient:
		return record.PatientID == identity.ID
	default:
		return false
	}
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("uploaded file exceeds %d bytes", limit)
	}
	return data, nil
}

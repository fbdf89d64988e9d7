package notification

import (
	"encoding/json"
	"fmt"
	"time"
)

func AppointmentCreated(doctorID int, at time.Time) string {
	return fmt.Sprintf("Your appointment with doctor %d on %s has been confirmed.", doctorID, at.UTC().Format(time.RFC3339))
}

// AppointmentUpdated embeds the changed fields as JSON.
func AppointmentUpdated(patch any) string {
	return "Your appointment has been updated: " + changes(patch)
}

func AppointmentCanceled(doctorID int) string {
	return fmt.Sprintf("Your appointment with doctor %d has been canceled.", doctorID)
}

func MedicalRecordCreated(doctorID int, diagnosis string) string {
	return fmt.Sprintf("A new medical record has been created for you by doctor %d. Diagnosis: %s.", doctorID, diagnosis)
}

func MedicalRecordUpdated(doctorID int, patch any) string {
	return fmt.Sprintf("Your medical record has been updated by doctor %d. Updates: %s", doctorID, changes(patch))
}

func MedicalRecordRemoved(diagnosis string) string {
	return fmt.Sprintf("A medical record has been removed from your profile by admin. Diagnosis: %s.", diagnosis)
}

func changes(patch any) string {
	data, err := json.Marshal(patch)
	if err != nil {
		return "{}"
	}
	return string(data)
}

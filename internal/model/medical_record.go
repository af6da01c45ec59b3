package model

import (
	"time"

	"github.com/google/uuid"
)

type MedicalRecord struct {
	Base
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	VisitDate   time.Time `db:"visit_date" json:"visit_date"`
}

type CreateMedicalRecordRequest struct {
	PatientID   string `json:"patient_id" binding:"required,uuid"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	VisitDate   string `json:"visit_date" binding:"required"`
}

type MedicalRecordFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

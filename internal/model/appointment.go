package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// IsTerminal reports whether the status no longer holds its slot. Only
// scheduled appointments count toward the one-active-claim-per-slot rule.
func (s AppointmentStatus) IsTerminal() bool {
	return s != AppointmentStatusScheduled
}

// DefaultReason is used when a booking omits the free-text reason.
const DefaultReason = "General Checkup"

// DateFormat is the wire format for appointment dates (day granularity).
const DateFormat = "2006-01-02"

type Appointment struct {
	Base
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	Slot            string            `db:"slot" json:"slot"`
	Reason          string            `db:"reason" json:"reason"`
	Status          AppointmentStatus `db:"status" json:"status"`
	CancelReason    *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type BookAppointmentRequest struct {
	DoctorID        string `json:"doctor_id" binding:"required,uuid"`
	AppointmentDate string `json:"appointment_date" binding:"required"`
	Slot            string `json:"appointment_time" binding:"required"`
	Reason          string `json:"reason" binding:"max=500"`
}

type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Slot string `json:"time" binding:"required"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type CloseOutAppointmentRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=completed no_show"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}

package model

import "github.com/google/uuid"

type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

type Bill struct {
	Base
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID    `db:"appointment_id" json:"appointment_id,omitempty"`
	Amount        int64         `db:"amount_cents" json:"amount_cents"`
	Description   string        `db:"description" json:"description"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
}

type GenerateBillRequest struct {
	PatientID     string `json:"patient_id" binding:"required,uuid"`
	AppointmentID string `json:"appointment_id" binding:"omitempty,uuid"`
	Amount        int64  `json:"amount_cents" binding:"required,gt=0"`
	Description   string `json:"description" binding:"required,max=500"`
}

type UpdateBillStatusRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" binding:"required,oneof=paid unpaid"`
}

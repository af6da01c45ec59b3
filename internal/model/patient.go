package model

import "time"

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type Patient struct {
	Base
	Name             string        `db:"name" json:"name"`
	Email            string        `db:"email" json:"email"`
	Phone            string        `db:"phone" json:"phone,omitempty"`
	DateOfBirth      *time.Time    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           string        `db:"gender" json:"gender,omitempty"`
	Address          string        `db:"address" json:"address,omitempty"`
	BloodGroup       string        `db:"blood_group" json:"blood_group,omitempty"`
	EmergencyContact string        `db:"emergency_contact" json:"emergency_contact,omitempty"`
	Status           PatientStatus `db:"status" json:"status"`
	PasswordHash     string        `db:"password_hash" json:"-"`
}

type CreatePatientRequest struct {
	Name        string     `json:"name" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      string     `json:"gender" binding:"omitempty,oneof=male female other"`
	Address     string     `json:"address"`
	BloodGroup  string     `json:"blood_group"`
	Password    string     `json:"password" binding:"required,min=8"`
}

type UpdatePatientRequest struct {
	Name        *string    `json:"name"`
	Phone       *string    `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	Address     *string    `json:"address"`
	BloodGroup  *string    `json:"blood_group"`
}

type UpdateEmergencyContactRequest struct {
	EmergencyContact string `json:"emergency_contact" binding:"required"`
}

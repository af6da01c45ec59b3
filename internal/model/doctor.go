package model

type DoctorStatus string

const (
	DoctorStatusActive   DoctorStatus = "active"
	DoctorStatusOnLeave  DoctorStatus = "on_leave"
	DoctorStatusInactive DoctorStatus = "inactive"
)

type Doctor struct {
	Base
	Name           string       `db:"name" json:"name"`
	Email          string       `db:"email" json:"email"`
	Specialization string       `db:"specialization" json:"specialization"`
	Phone          string       `db:"phone" json:"phone,omitempty"`
	Status         DoctorStatus `db:"status" json:"status"`
	PasswordHash   string       `db:"password_hash" json:"-"`
}

type CreateDoctorRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Specialization string `json:"specialization" binding:"required"`
	Phone          string `json:"phone"`
	Password       string `json:"password" binding:"required,min=8"`
}

type UpdateDoctorRequest struct {
	Name           *string `json:"name"`
	Specialization *string `json:"specialization"`
	Phone          *string `json:"phone"`
}

type UpdateDoctorStatusRequest struct {
	Status DoctorStatus `json:"status" binding:"required,oneof=active on_leave inactive"`
}

type DoctorFilters struct {
	Specialization string
	Status         DoctorStatus
}

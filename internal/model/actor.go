package model

import "github.com/google/uuid"

// Role identifies what kind of user is acting on the system.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Actor is the authenticated identity behind a request. The auth middleware
// resolves it from the bearer token; services use it for ownership checks
// instead of reading ambient request state.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsDoctor() bool {
	return a.Role == RoleDoctor
}

func (a Actor) IsPatient() bool {
	return a.Role == RolePatient
}

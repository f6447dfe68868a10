package models

import (
	"time"

	"github.com/google/uuid"
)

// Clinic represents a clinic tenant. Accounts with a clinic role reference
// exactly one clinic, and positions belong to exactly one clinic.
type Clinic struct {
	ClinicID uuid.UUID // UUIDv7

	Name          string
	Department    *string
	Address       *string
	ContactPerson *string
	Phone         *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

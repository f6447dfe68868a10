package models

import (
	"time"

	"github.com/google/uuid"
)

// PositionStatus is the closed set of position lifecycle states.
type PositionStatus string

const (
	PositionStatusActive PositionStatus = "active"
	PositionStatusClosed PositionStatus = "closed"
	PositionStatusDraft  PositionStatus = "draft"
)

// ValidPositionStatus reports whether s is a member of the status enum.
func ValidPositionStatus(s string) bool {
	switch PositionStatus(s) {
	case PositionStatusActive, PositionStatusClosed, PositionStatusDraft:
		return true
	}
	return false
}

// Position is an internship opening owned by one clinic. Start date and
// application deadline are non-null at rest; historical null data was
// backfilled by migration.
type Position struct {
	PositionID uuid.UUID // UUIDv7
	ClinicID   uuid.UUID // FK to clinics

	Title          string
	Description    string
	Specialty      string
	DurationMonths int

	StartDate           time.Time
	ApplicationDeadline time.Time

	Requirements *string
	Status       PositionStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the closed set of application review states.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusReviewed ApplicationStatus = "reviewed"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// ValidApplicationStatus reports whether s is a member of the status enum.
func ValidApplicationStatus(s string) bool {
	switch ApplicationStatus(s) {
	case ApplicationStatusPending, ApplicationStatusReviewed,
		ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application is a student profile's request against a position. At most one
// application exists per (profile, position) pair, and once the status
// leaves pending the applicant may no longer edit or withdraw it.
type Application struct {
	ApplicationID uuid.UUID // UUIDv7
	ProfileID     uuid.UUID // FK to student_profiles
	PositionID    uuid.UUID // FK to positions

	CoverLetter *string
	Status      ApplicationStatus

	AppliedAt  time.Time
	ReviewedAt *time.Time
	Notes      *string
}

// IsPending reports whether the application is still editable by the
// applicant.
func (a *Application) IsPending() bool {
	return a.Status == ApplicationStatusPending
}

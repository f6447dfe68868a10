package models

import (
	"time"

	"github.com/google/uuid"
)

// StudentProfile holds the student-specific extension of an account.
// One-to-one with Account; created explicitly on the first profile write,
// never as a side effect of a read.
type StudentProfile struct {
	ProfileID uuid.UUID // UUIDv7
	AccountID uuid.UUID // FK to accounts, unique

	University  string
	YearOfStudy int

	Specialization *string
	Phone          *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

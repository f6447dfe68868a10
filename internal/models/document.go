package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentKind is the closed set of document categories.
type DocumentKind string

const (
	DocumentKindCV          DocumentKind = "cv"
	DocumentKindCertificate DocumentKind = "certificate"
	DocumentKindOther       DocumentKind = "other"
)

// ValidDocumentKind reports whether s is a member of the kind enum.
func ValidDocumentKind(s string) bool {
	switch DocumentKind(s) {
	case DocumentKindCV, DocumentKindCertificate, DocumentKindOther:
		return true
	}
	return false
}

// Document is a file reference owned by a student profile. Filename is the
// name the file was uploaded with; BlobKey locates the content in the blob
// store.
type Document struct {
	DocumentID uuid.UUID // UUIDv7
	ProfileID  uuid.UUID // FK to student_profiles

	Kind     DocumentKind
	Filename string
	BlobKey  string
	SizeBytes int64

	UploadedAt time.Time
}

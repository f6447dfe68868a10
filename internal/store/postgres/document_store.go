package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
)

// DocumentStore implements store.DocumentStore backed by PostgreSQL.
type DocumentStore struct {
	pool *pgxpool.Pool
}

// NewDocumentStore creates a new PostgreSQL document store using the shared
// connection pool.
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Create(ctx context.Context, document *models.Document) error {
	query := `
		INSERT INTO documents (document_id, profile_id, kind, filename, blob_key, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		document.DocumentID,
		document.ProfileID,
		string(document.Kind),
		document.Filename,
		document.BlobKey,
		document.SizeBytes,
		document.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

func (s *DocumentStore) Get(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	query := `
		SELECT document_id, profile_id, kind, filename, blob_key, size_bytes, uploaded_at
		FROM documents
		WHERE document_id = $1
	`

	document, err := scanDocument(s.pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return document, nil
}

func (s *DocumentStore) GetOwned(ctx context.Context, documentID, profileID uuid.UUID) (*models.Document, error) {
	query := `
		SELECT document_id, profile_id, kind, filename, blob_key, size_bytes, uploaded_at
		FROM documents
		WHERE document_id = $1 AND profile_id = $2
	`

	document, err := scanDocument(s.pool.QueryRow(ctx, query, documentID, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return document, nil
}

func (s *DocumentStore) GetForClinic(ctx context.Context, documentID, clinicID uuid.UUID) (*models.Document, error) {
	// Clinic access flows through the application linkage: the owning
	// profile must have applied to one of the clinic's positions.
	query := `
		SELECT DISTINCT d.document_id, d.profile_id, d.kind, d.filename, d.blob_key, d.size_bytes, d.uploaded_at
		FROM documents d
		JOIN applications a ON a.profile_id = d.profile_id
		JOIN positions p ON p.position_id = a.position_id
		WHERE d.document_id = $1 AND p.clinic_id = $2
	`

	document, err := scanDocument(s.pool.QueryRow(ctx, query, documentID, clinicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document for clinic: %w", err)
	}

	return document, nil
}

func (s *DocumentStore) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT document_id, profile_id, kind, filename, blob_key, size_bytes, uploaded_at
		FROM documents
		WHERE profile_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := s.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, document)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return documents, nil
}

func (s *DocumentStore) DeleteOwned(ctx context.Context, documentID, profileID uuid.UUID) (*models.Document, error) {
	// RETURNING hands the caller the blob key for cleanup.
	query := `
		DELETE FROM documents
		WHERE document_id = $1 AND profile_id = $2
		RETURNING document_id, profile_id, kind, filename, blob_key, size_bytes, uploaded_at
	`

	document, err := scanDocument(s.pool.QueryRow(ctx, query, documentID, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}

	return document, nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var document models.Document
	var kind string

	err := row.Scan(
		&document.DocumentID,
		&document.ProfileID,
		&kind,
		&document.Filename,
		&document.BlobKey,
		&document.SizeBytes,
		&document.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	document.Kind = models.DocumentKind(kind)
	return &document, nil
}

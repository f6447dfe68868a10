package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/medmatch/internal/auth"
	"github.com/wolfeidau/medmatch/internal/blob"
	"github.com/wolfeidau/medmatch/internal/httperr"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/policy"
	"github.com/wolfeidau/medmatch/internal/telemetry"
)

// maxUploadBytes is the ceiling on a single document upload.
const maxUploadBytes = 10 << 20

// allowedExtensions is the closed set of accepted upload file extensions.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type documentResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
	Kind       string    `json:"kind"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toDocumentResponse(document *models.Document) documentResponse {
	return documentResponse{
		DocumentID: document.DocumentID,
		Kind:       string(document.Kind),
		Filename:   document.Filename,
		SizeBytes:  document.SizeBytes,
		UploadedAt: document.UploadedAt,
	}
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpReadOwn)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	profile, err := s.callerProfile(r, scope)
	if isNotFound(err) {
		respondJSON(w, http.StatusOK, []documentResponse{})
		return
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	documents, err := s.documents.ListByProfile(ctx, profile.ProfileID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	result := make([]documentResponse, 0, len(documents))
	for _, document := range documents {
		result = append(result, toDocumentResponse(document))
	}
	respondJSON(w, http.StatusOK, result)
}

// uploadDocument accepts a multipart upload with a `file` part and a `kind`
// field. The blob is written first; a failed metadata insert removes it so
// no orphan content is left behind.
func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOwn)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	profile, err := s.callerProfile(r, scope)
	if isNotFound(err) {
		respondError(ctx, w, httperr.New(httperr.KindInvalidState, "create a profile before uploading documents"))
		return
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	// Cap the whole request slightly above the content ceiling to leave
	// room for the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(64<<10))

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(ctx, w, httperr.Wrap(httperr.KindValidation, "multipart upload with a file part is required", err))
		return
	}
	defer file.Close()

	kind := models.DocumentKind(r.FormValue("kind"))
	if !models.ValidDocumentKind(string(kind)) {
		respondError(ctx, w, httperr.Newf(httperr.KindValidation, "invalid document kind %q", r.FormValue("kind")))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		respondError(ctx, w, httperr.Newf(httperr.KindValidation, "file type %q not allowed", ext))
		return
	}

	key, err := blob.NewKey()
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	size, err := s.blobs.Put(ctx, key, io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if size > maxUploadBytes {
		s.cleanupBlob(r, key)
		respondError(ctx, w, httperr.Newf(httperr.KindValidation, "file exceeds %d byte limit", maxUploadBytes))
		return
	}

	documentID, err := uuid.NewV7()
	if err != nil {
		s.cleanupBlob(r, key)
		respondError(ctx, w, err)
		return
	}

	document := &models.Document{
		DocumentID: documentID,
		ProfileID:  profile.ProfileID,
		Kind:       kind,
		Filename:   filepath.Base(header.Filename),
		BlobKey:    key,
		SizeBytes:  size,
		UploadedAt: time.Now(),
	}

	if err := s.documents.Create(ctx, document); err != nil {
		s.cleanupBlob(r, key)
		respondError(ctx, w, err)
		return
	}

	metrics := telemetry.GetMetrics()
	metrics.DocumentsUploadedTotal.Add(ctx, 1)
	metrics.DocumentUploadBytes.Record(ctx, size)

	respondJSON(w, http.StatusCreated, toDocumentResponse(document))
}

// downloadDocument streams document content. Owners always pass; clinic
// staff pass only when the owning profile has applied to one of their
// positions.
func (s *Server) downloadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	documentID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	document, err := s.resolveDocument(r, account, documentID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	content, err := s.blobs.Open(ctx, document.BlobKey)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	defer content.Close()

	telemetry.GetMetrics().DocumentsDownloadedTotal.Add(ctx, 1)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(document.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.Filename))

	if _, err := io.Copy(w, content); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Document download interrupted")
	}
}

// resolveDocument applies the role-appropriate access path to a document
// read.
func (s *Server) resolveDocument(r *http.Request, account *models.Account, documentID uuid.UUID) (*models.Document, error) {
	ctx := r.Context()

	if account != nil && account.IsClinicStaff() {
		scope, err := policy.Authorize(account, policy.OpReadOrg)
		if err != nil {
			return nil, err
		}
		return s.documents.GetForClinic(ctx, documentID, scope.ClinicID)
	}

	scope, err := policy.Authorize(account, policy.OpReadOwn)
	if err != nil {
		return nil, err
	}
	if scope.Unrestricted {
		return s.documents.Get(ctx, documentID)
	}

	profile, err := s.callerProfile(r, scope)
	if err != nil {
		return nil, err
	}
	return s.documents.GetOwned(ctx, documentID, profile.ProfileID)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOwn)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	documentID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	profile, err := s.callerProfile(r, scope)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	document, err := s.documents.DeleteOwned(ctx, documentID, profile.ProfileID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := s.blobs.Delete(ctx, document.BlobKey); err != nil {
		// Metadata row is gone; the orphaned blob is only a space leak.
		zerolog.Ctx(ctx).Error().Err(err).Str("blob_key", document.BlobKey).Msg("Failed to delete blob")
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cleanupBlob(r *http.Request, key string) {
	if err := s.blobs.Delete(r.Context(), key); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("blob_key", key).Msg("Failed to clean up blob")
	}
}

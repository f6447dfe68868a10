package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/auth"
	"github.com/wolfeidau/medmatch/internal/httperr"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/policy"
	"github.com/wolfeidau/medmatch/internal/telemetry"
)

type positionResponse struct {
	PositionID          uuid.UUID `json:"position_id"`
	ClinicID            uuid.UUID `json:"clinic_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Specialty           string    `json:"specialty"`
	DurationMonths      int       `json:"duration_months"`
	StartDate           time.Time `json:"start_date"`
	ApplicationDeadline time.Time `json:"application_deadline"`
	Requirements        *string   `json:"requirements,omitempty"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toPositionResponse(position *models.Position) positionResponse {
	return positionResponse{
		PositionID:          position.PositionID,
		ClinicID:            position.ClinicID,
		Title:               position.Title,
		Description:         position.Description,
		Specialty:           position.Specialty,
		DurationMonths:      position.DurationMonths,
		StartDate:           position.StartDate,
		ApplicationDeadline: position.ApplicationDeadline,
		Requirements:        position.Requirements,
		Status:              string(position.Status),
		CreatedAt:           position.CreatedAt,
		UpdatedAt:           position.UpdatedAt,
	}
}

func toPositionResponses(positions []*models.Position) []positionResponse {
	result := make([]positionResponse, 0, len(positions))
	for _, position := range positions {
		result = append(result, toPositionResponse(position))
	}
	return result
}

// listPositions returns the browse view of active positions, open to every
// authenticated account with a role.
func (s *Server) listPositions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := requireRole(auth.AccountFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}

	positions, err := s.positions.ListActive(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPositionResponses(positions))
}

func (s *Server) getPosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := requireRole(auth.AccountFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}

	positionID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	position, err := s.positions.Get(ctx, positionID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPositionResponse(position))
}

type positionRequest struct {
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Specialty           string     `json:"specialty"`
	DurationMonths      int        `json:"duration_months"`
	StartDate           time.Time  `json:"start_date"`
	ApplicationDeadline time.Time  `json:"application_deadline"`
	Requirements        *string    `json:"requirements,omitempty"`
	Status              string     `json:"status,omitempty"`
	ClinicID            *uuid.UUID `json:"clinic_id,omitempty"` // admin only
}

func (r *positionRequest) validate() error {
	if r.Title == "" {
		return httperr.New(httperr.KindValidation, "title is required")
	}
	if r.Description == "" {
		return httperr.New(httperr.KindValidation, "description is required")
	}
	if r.Specialty == "" {
		return httperr.New(httperr.KindValidation, "specialty is required")
	}
	if r.DurationMonths < 1 {
		return httperr.New(httperr.KindValidation, "duration_months must be positive")
	}
	if r.StartDate.IsZero() {
		return httperr.New(httperr.KindValidation, "start_date is required")
	}
	if r.ApplicationDeadline.IsZero() {
		return httperr.New(httperr.KindValidation, "application_deadline is required")
	}
	if r.Status != "" && !models.ValidPositionStatus(r.Status) {
		return httperr.Newf(httperr.KindValidation, "invalid status %q", r.Status)
	}
	return nil
}

func (r *positionRequest) status() models.PositionStatus {
	if r.Status == "" {
		return models.PositionStatusActive
	}
	return models.PositionStatus(r.Status)
}

func (s *Server) createPosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOrg)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(ctx, w, err)
		return
	}

	clinicID := scope.ClinicID
	if scope.Unrestricted {
		if req.ClinicID == nil {
			respondError(ctx, w, httperr.New(httperr.KindValidation, "clinic_id is required"))
			return
		}
		clinicID = *req.ClinicID
	}

	positionID, err := uuid.NewV7()
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	now := time.Now()
	position := &models.Position{
		PositionID:          positionID,
		ClinicID:            clinicID,
		Title:               req.Title,
		Description:         req.Description,
		Specialty:           req.Specialty,
		DurationMonths:      req.DurationMonths,
		StartDate:           req.StartDate,
		ApplicationDeadline: req.ApplicationDeadline,
		Requirements:        req.Requirements,
		Status:              req.status(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.positions.Create(ctx, position); err != nil {
		respondError(ctx, w, err)
		return
	}

	telemetry.GetMetrics().PositionsCreatedTotal.Add(ctx, 1)
	respondJSON(w, http.StatusCreated, toPositionResponse(position))
}

func (s *Server) updatePosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOrg)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	positionID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(ctx, w, err)
		return
	}

	ownerID, err := s.positionOwner(r, scope, positionID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	position := &models.Position{
		PositionID:          positionID,
		ClinicID:            ownerID,
		Title:               req.Title,
		Description:         req.Description,
		Specialty:           req.Specialty,
		DurationMonths:      req.DurationMonths,
		StartDate:           req.StartDate,
		ApplicationDeadline: req.ApplicationDeadline,
		Requirements:        req.Requirements,
		Status:              req.status(),
		UpdatedAt:           time.Now(),
	}

	if err := s.positions.UpdateOwned(ctx, position, ownerID); err != nil {
		respondError(ctx, w, mapOwnedPositionErr(err, scope))
		return
	}

	updated, err := s.positions.Get(ctx, positionID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPositionResponse(updated))
}

func (s *Server) deletePosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOrg)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	positionID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	ownerID, err := s.positionOwner(r, scope, positionID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := s.positions.DeleteOwned(ctx, positionID, ownerID); err != nil {
		respondError(ctx, w, mapOwnedPositionErr(err, scope))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// positionOwner resolves the clinic a mutation must match. Clinic callers
// always use their own clinic; an admin targets whichever clinic owns the
// position.
func (s *Server) positionOwner(r *http.Request, scope policy.Scope, positionID uuid.UUID) (uuid.UUID, error) {
	if !scope.Unrestricted {
		return scope.ClinicID, nil
	}

	position, err := s.positions.Get(r.Context(), positionID)
	if err != nil {
		return uuid.Nil, err
	}
	return position.ClinicID, nil
}

// mapOwnedPositionErr translates a missed conditional write. A clinic
// caller sees the same denial whether the position is missing or owned
// elsewhere; an admin sees the truth.
func mapOwnedPositionErr(err error, scope policy.Scope) error {
	if !scope.Unrestricted && isNotFound(err) {
		return httperr.Wrap(httperr.KindForbidden, "position not owned by your clinic", err)
	}
	return err
}

// requireRole gates the browse endpoints, which are open to every role but
// closed to accounts that have not picked one yet.
func requireRole(account *models.Account) error {
	if account == nil || account.Role == nil {
		return httperr.New(httperr.KindForbidden, "no role assigned")
	}
	return nil
}

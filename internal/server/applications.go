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

type applicationResponse struct {
	ApplicationID uuid.UUID  `json:"application_id"`
	ProfileID     uuid.UUID  `json:"profile_id"`
	PositionID    uuid.UUID  `json:"position_id"`
	CoverLetter   *string    `json:"cover_letter,omitempty"`
	Status        string     `json:"status"`
	AppliedAt     time.Time  `json:"applied_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

func toApplicationResponse(application *models.Application) applicationResponse {
	return applicationResponse{
		ApplicationID: application.ApplicationID,
		ProfileID:     application.ProfileID,
		PositionID:    application.PositionID,
		CoverLetter:   application.CoverLetter,
		Status:        string(application.Status),
		AppliedAt:     application.AppliedAt,
		ReviewedAt:    application.ReviewedAt,
		Notes:         application.Notes,
	}
}

func toApplicationResponses(applications []*models.Application) []applicationResponse {
	result := make([]applicationResponse, 0, len(applications))
	for _, application := range applications {
		result = append(result, toApplicationResponse(application))
	}
	return result
}

// callerProfile resolves the student profile behind an own-scope
// application operation.
func (s *Server) callerProfile(r *http.Request, scope policy.Scope) (*models.StudentProfile, error) {
	return s.profiles.GetByAccount(r.Context(), scope.AccountID)
}

func (s *Server) listApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpReadOwn)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	profile, err := s.callerProfile(r, scope)
	if isNotFound(err) {
		// No profile means no applications yet.
		respondJSON(w, http.StatusOK, []applicationResponse{})
		return
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	applications, err := s.applications.ListByProfile(ctx, profile.ProfileID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toApplicationResponses(applications))
}

type createApplicationRequest struct {
	PositionID  uuid.UUID `json:"position_id"`
	CoverLetter *string   `json:"cover_letter,omitempty"`
}

func (s *Server) createApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOwn)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req createApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if req.PositionID == uuid.Nil {
		respondError(ctx, w, httperr.New(httperr.KindValidation, "position_id is required"))
		return
	}

	profile, err := s.callerProfile(r, scope)
	if isNotFound(err) {
		respondError(ctx, w, httperr.New(httperr.KindInvalidState, "create a profile before applying"))
		return
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	position, err := s.positions.Get(ctx, req.PositionID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if position.Status != models.PositionStatusActive {
		respondError(ctx, w, httperr.New(httperr.KindInvalidState, "position is not open for applications"))
		return
	}

	applicationID, err := uuid.NewV7()
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	application := &models.Application{
		ApplicationID: applicationID,
		ProfileID:     profile.ProfileID,
		PositionID:    position.PositionID,
		CoverLetter:   req.CoverLetter,
		Status:        models.ApplicationStatusPending,
		AppliedAt:     time.Now(),
	}

	if err := s.applications.Create(ctx, application); err != nil {
		respondError(ctx, w, err)
		return
	}

	telemetry.GetMetrics().ApplicationsSubmittedTotal.Add(ctx, 1)
	respondJSON(w, http.StatusCreated, toApplicationResponse(application))
}

type updateApplicationRequest struct {
	CoverLetter *string `json:"cover_letter"`
}

// updateApplication lets the applicant revise the cover letter while the
// application is still pending.
func (s *Server) updateApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOwn)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	applicationID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req updateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	profile, err := s.callerProfile(r, scope)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := s.applications.UpdateCoverLetter(ctx, applicationID, profile.ProfileID, req.CoverLetter); err != nil {
		respondError(ctx, w, err)
		return
	}

	application, err := s.applications.Get(ctx, applicationID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toApplicationResponse(application))
}

func (s *Server) withdrawApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOwn)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	applicationID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	profile, err := s.callerProfile(r, scope)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := s.applications.DeletePending(ctx, applicationID, profile.ProfileID); err != nil {
		respondError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type reviewApplicationRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// reviewApplication records a clinic decision. The clinic scope rides along
// into the store write, so a decision against another clinic's application
// changes nothing and reads as not found.
func (s *Server) reviewApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOrg)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	applicationID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req reviewApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	status := models.ApplicationStatus(req.Status)
	switch status {
	case models.ApplicationStatusReviewed, models.ApplicationStatusAccepted, models.ApplicationStatusRejected:
	default:
		respondError(ctx, w, httperr.Newf(httperr.KindValidation, "invalid review status %q", req.Status))
		return
	}

	clinicID := scope.ClinicID
	if scope.Unrestricted {
		clinicID, err = s.applicationClinic(r, applicationID)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
	}

	if err := s.applications.SetStatus(ctx, applicationID, clinicID, status, req.Notes, time.Now()); err != nil {
		respondError(ctx, w, err)
		return
	}

	telemetry.GetMetrics().ApplicationsReviewedTotal.Add(ctx, 1)

	application, err := s.applications.Get(ctx, applicationID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toApplicationResponse(application))
}

// applicationClinic finds the clinic owning the position an application
// targets, for admin reviews that are not bound to one clinic.
func (s *Server) applicationClinic(r *http.Request, applicationID uuid.UUID) (uuid.UUID, error) {
	application, err := s.applications.Get(r.Context(), applicationID)
	if err != nil {
		return uuid.Nil, err
	}

	position, err := s.positions.Get(r.Context(), application.PositionID)
	if err != nil {
		return uuid.Nil, err
	}
	return position.ClinicID, nil
}

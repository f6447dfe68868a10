package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/auth"
	"github.com/wolfeidau/medmatch/internal/httperr"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/policy"
)

type profileResponse struct {
	ProfileID      uuid.UUID `json:"profile_id"`
	University     string    `json:"university"`
	YearOfStudy    int       `json:"year_of_study"`
	Specialization *string   `json:"specialization,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toProfileResponse(profile *models.StudentProfile) profileResponse {
	return profileResponse{
		ProfileID:      profile.ProfileID,
		University:     profile.University,
		YearOfStudy:    profile.YearOfStudy,
		Specialization: profile.Specialization,
		Phone:          profile.Phone,
		CreatedAt:      profile.CreatedAt,
		UpdatedAt:      profile.UpdatedAt,
	}
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpReadOwn)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	profile, err := s.profiles.GetByAccount(ctx, scope.AccountID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProfileResponse(profile))
}

type putProfileRequest struct {
	University     string  `json:"university"`
	YearOfStudy    int     `json:"year_of_study"`
	Specialization *string `json:"specialization,omitempty"`
	Phone          *string `json:"phone,omitempty"`
}

func (r *putProfileRequest) validate() error {
	if r.University == "" {
		return httperr.New(httperr.KindValidation, "university is required")
	}
	if r.YearOfStudy < 1 {
		return httperr.New(httperr.KindValidation, "year_of_study must be positive")
	}
	return nil
}

// putProfile upserts the caller's student profile. The first write creates
// the profile; reads never do.
func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOwn)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req putProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(ctx, w, err)
		return
	}

	profile, err := s.profiles.GetByAccount(ctx, scope.AccountID)
	switch {
	case err == nil:
		profile.University = req.University
		profile.YearOfStudy = req.YearOfStudy
		profile.Specialization = req.Specialization
		profile.Phone = req.Phone
		profile.UpdatedAt = time.Now()

		if err := s.profiles.Update(ctx, profile); err != nil {
			respondError(ctx, w, err)
			return
		}
		respondJSON(w, http.StatusOK, toProfileResponse(profile))

	case isNotFound(err):
		profileID, err := uuid.NewV7()
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		now := time.Now()
		profile = &models.StudentProfile{
			ProfileID:      profileID,
			AccountID:      scope.AccountID,
			University:     req.University,
			YearOfStudy:    req.YearOfStudy,
			Specialization: req.Specialization,
			Phone:          req.Phone,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			respondError(ctx, w, err)
			return
		}
		respondJSON(w, http.StatusCreated, toProfileResponse(profile))

	default:
		respondError(ctx, w, err)
	}
}

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

type clinicResponse struct {
	ClinicID      uuid.UUID `json:"clinic_id"`
	Name          string    `json:"name"`
	Department    *string   `json:"department,omitempty"`
	Address       *string   `json:"address,omitempty"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toClinicResponse(clinic *models.Clinic) clinicResponse {
	return clinicResponse{
		ClinicID:      clinic.ClinicID,
		Name:          clinic.Name,
		Department:    clinic.Department,
		Address:       clinic.Address,
		ContactPerson: clinic.ContactPerson,
		Phone:         clinic.Phone,
		CreatedAt:     clinic.CreatedAt,
		UpdatedAt:     clinic.UpdatedAt,
	}
}

// ownClinicID resolves which clinic the org-scoped endpoints operate on.
// Admins fall back to their own clinic link, which they may not have.
func ownClinicID(account *models.Account, scope policy.Scope) (uuid.UUID, error) {
	if !scope.Unrestricted {
		return scope.ClinicID, nil
	}
	if account.ClinicID != nil {
		return *account.ClinicID, nil
	}
	return uuid.Nil, httperr.New(httperr.KindNotFound, "no clinic linked to account")
}

func (s *Server) getClinic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpReadOrg)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	clinicID, err := ownClinicID(account, scope)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toClinicResponse(clinic))
}

type updateClinicRequest struct {
	Name          string  `json:"name"`
	Department    *string `json:"department,omitempty"`
	Address       *string `json:"address,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
	Phone         *string `json:"phone,omitempty"`
}

func (s *Server) updateClinic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpWriteOrg)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	clinicID, err := ownClinicID(account, scope)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req updateClinicRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if req.Name == "" {
		respondError(ctx, w, httperr.New(httperr.KindValidation, "name is required"))
		return
	}

	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	clinic.Name = req.Name
	clinic.Department = req.Department
	clinic.Address = req.Address
	clinic.ContactPerson = req.ContactPerson
	clinic.Phone = req.Phone
	clinic.UpdatedAt = time.Now()

	if err := s.clinics.Update(ctx, clinic); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toClinicResponse(clinic))
}

// listClinicPositions returns the clinic's own positions in every status,
// unlike the public browse view.
func (s *Server) listClinicPositions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpReadOrg)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	clinicID, err := ownClinicID(account, scope)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	positions, err := s.positions.ListByClinic(ctx, clinicID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPositionResponses(positions))
}

func (s *Server) listClinicApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	scope, err := policy.Authorize(account, policy.OpReadOrg)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	clinicID, err := ownClinicID(account, scope)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	applications, err := s.applications.ListByClinic(ctx, clinicID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toApplicationResponses(applications))
}

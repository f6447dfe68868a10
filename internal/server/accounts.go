package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/medmatch/internal/auth"
	"github.com/wolfeidau/medmatch/internal/httperr"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/telemetry"
)

type accountResponse struct {
	AccountID uuid.UUID  `json:"account_id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      *string    `json:"role"`
	ClinicID  *uuid.UUID `json:"clinic_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toAccountResponse(account *models.Account) accountResponse {
	resp := accountResponse{
		AccountID: account.AccountID,
		Email:     account.Email,
		Name:      account.Name,
		ClinicID:  account.ClinicID,
		CreatedAt: account.CreatedAt,
	}
	if account.Role != nil {
		role := string(*account.Role)
		resp.Role = &role
	}
	return resp
}

// getAccount returns the caller's own account. This is one of the two
// actions open to accounts with no role yet.
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)
	if account == nil {
		respondError(ctx, w, httperr.New(httperr.KindUnauthenticated, "no account on request"))
		return
	}

	respondJSON(w, http.StatusOK, toAccountResponse(account))
}

type setRoleRequest struct {
	Role       string     `json:"role"`
	ClinicName *string    `json:"clinic_name,omitempty"`
	ClinicID   *uuid.UUID `json:"clinic_id,omitempty"`
}

// setAccountRole performs the one-time self-service role assignment. A
// clinic_admin caller names a new clinic which is created and linked; a
// clinic_member joins an existing clinic by ID. The underlying store write
// is conditional on no role being set, so a concurrent second call loses
// cleanly.
func (s *Server) setAccountRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)
	if account == nil {
		respondError(ctx, w, httperr.New(httperr.KindUnauthenticated, "no account on request"))
		return
	}

	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	role := models.Role(req.Role)
	switch role {
	case models.RoleStudent, models.RoleClinicAdmin, models.RoleClinicMember:
	case models.RoleAdmin:
		respondError(ctx, w, httperr.New(httperr.KindForbidden, "admin role cannot be self-assigned"))
		return
	default:
		respondError(ctx, w, httperr.Newf(httperr.KindValidation, "invalid role %q", req.Role))
		return
	}

	var clinicID *uuid.UUID
	var createdClinic *models.Clinic

	switch role {
	case models.RoleClinicAdmin:
		if req.ClinicName == nil || *req.ClinicName == "" {
			respondError(ctx, w, httperr.New(httperr.KindValidation, "clinic_name is required for clinic_admin"))
			return
		}

		id, err := uuid.NewV7()
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		now := time.Now()
		createdClinic = &models.Clinic{
			ClinicID:  id,
			Name:      *req.ClinicName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.clinics.Create(ctx, createdClinic); err != nil {
			respondError(ctx, w, err)
			return
		}
		clinicID = &createdClinic.ClinicID

	case models.RoleClinicMember:
		if req.ClinicID == nil {
			respondError(ctx, w, httperr.New(httperr.KindValidation, "clinic_id is required for clinic_member"))
			return
		}
		if _, err := s.clinics.Get(ctx, *req.ClinicID); err != nil {
			respondError(ctx, w, err)
			return
		}
		clinicID = req.ClinicID
	}

	err := s.accounts.SetRoleOnce(ctx, account.AccountID, role, clinicID)
	if err != nil {
		// The clinic was created for this assignment only; remove it when
		// the assignment loses.
		if createdClinic != nil {
			if cleanupErr := s.clinics.Delete(ctx, createdClinic.ClinicID); cleanupErr != nil {
				zerolog.Ctx(ctx).Error().Err(cleanupErr).
					Str("clinic_id", createdClinic.ClinicID.String()).
					Msg("Failed to remove clinic after role assignment loss")
			}
		}
		respondError(ctx, w, err)
		return
	}

	telemetry.GetMetrics().RoleSetsTotal.Add(ctx, 1)
	zerolog.Ctx(ctx).Info().
		Str("account_id", account.AccountID.String()).
		Str("role", string(role)).
		Msg("Role assigned")

	updated, err := s.accounts.Get(ctx, account.AccountID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toAccountResponse(updated))
}

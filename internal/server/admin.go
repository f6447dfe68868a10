package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/medmatch/internal/auth"
	"github.com/wolfeidau/medmatch/internal/httperr"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/policy"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	if _, err := policy.Authorize(account, policy.OpAdminAll); err != nil {
		respondError(ctx, w, err)
		return
	}

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	result := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		result = append(result, toAccountResponse(a))
	}
	respondJSON(w, http.StatusOK, result)
}

type setUserRoleRequest struct {
	Role     string     `json:"role"`
	ClinicID *uuid.UUID `json:"clinic_id,omitempty"`
}

// setUserRole is the admin override of a user's role. Unlike the
// self-service path it is not one-time, but clinic roles still require a
// real clinic.
func (s *Server) setUserRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	if _, err := policy.Authorize(account, policy.OpAdminAll); err != nil {
		respondError(ctx, w, err)
		return
	}

	accountID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req setUserRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if !models.ValidRole(req.Role) {
		respondError(ctx, w, httperr.Newf(httperr.KindValidation, "invalid role %q", req.Role))
		return
	}

	role := models.Role(req.Role)
	if role == models.RoleClinicAdmin || role == models.RoleClinicMember {
		if req.ClinicID == nil {
			respondError(ctx, w, httperr.New(httperr.KindValidation, "clinic_id is required for clinic roles"))
			return
		}
		if _, err := s.clinics.Get(ctx, *req.ClinicID); err != nil {
			respondError(ctx, w, err)
			return
		}
	} else {
		req.ClinicID = nil
	}

	if err := s.accounts.SetRole(ctx, accountID, role, req.ClinicID); err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	zerolog.Ctx(ctx).Info().
		Str("account_id", accountID.String()).
		Str("role", req.Role).
		Msg("Role overridden by admin")

	respondJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) promoteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	if _, err := policy.Authorize(account, policy.OpAdminAll); err != nil {
		respondError(ctx, w, err)
		return
	}

	accountID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := s.accounts.SetRole(ctx, accountID, models.RoleAdmin, nil); err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	zerolog.Ctx(ctx).Info().Str("account_id", accountID.String()).Msg("Account promoted to admin")

	respondJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := auth.AccountFromContext(ctx)

	if _, err := policy.Authorize(account, policy.OpAdminAll); err != nil {
		respondError(ctx, w, err)
		return
	}

	accountID, err := pathID(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if accountID == account.AccountID {
		respondError(ctx, w, httperr.New(httperr.KindValidation, "cannot delete your own account"))
		return
	}

	if err := s.accounts.Delete(ctx, accountID); err != nil {
		respondError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

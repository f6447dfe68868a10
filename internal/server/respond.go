package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/medmatch/internal/blob"
	"github.com/wolfeidau/medmatch/internal/httperr"
	"github.com/wolfeidau/medmatch/internal/policy"
	"github.com/wolfeidau/medmatch/internal/store"
	"github.com/wolfeidau/medmatch/internal/telemetry"
)

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps an error onto the API taxonomy and writes it. Store
// sentinel errors are translated here so handlers mostly just return what
// the store gave them.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr := translateError(err)

	switch apiErr.Kind {
	case httperr.KindInternal:
		zerolog.Ctx(ctx).Error().Err(err).Msg("Request failed")
	case httperr.KindForbidden:
		telemetry.GetMetrics().AuthzDenialsTotal.Add(ctx, 1)
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Request denied")
	default:
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Request rejected")
	}

	respondJSON(w, httperr.Status(apiErr.Kind), map[string]string{
		"error":   string(apiErr.Kind),
		"message": apiErr.Message,
	})
}

// translateError maps store and policy sentinels into the API taxonomy.
func translateError(err error) *httperr.Error {
	switch {
	case errors.Is(err, policy.ErrForbidden):
		return httperr.Wrap(httperr.KindForbidden, "operation not permitted", err)
	case errors.Is(err, store.ErrRoleAlreadySet):
		return httperr.Wrap(httperr.KindForbidden, "role already set", err)
	case errors.Is(err, store.ErrAccountNotFound):
		return httperr.Wrap(httperr.KindNotFound, "account not found", err)
	case errors.Is(err, store.ErrProfileNotFound):
		return httperr.Wrap(httperr.KindNotFound, "profile not found", err)
	case errors.Is(err, store.ErrClinicNotFound):
		return httperr.Wrap(httperr.KindNotFound, "clinic not found", err)
	case errors.Is(err, store.ErrPositionNotFound):
		return httperr.Wrap(httperr.KindNotFound, "position not found", err)
	case errors.Is(err, store.ErrApplicationNotFound):
		return httperr.Wrap(httperr.KindNotFound, "application not found", err)
	case errors.Is(err, store.ErrDocumentNotFound), errors.Is(err, blob.ErrBlobNotFound):
		return httperr.Wrap(httperr.KindNotFound, "document not found", err)
	case errors.Is(err, store.ErrDuplicateApplication):
		return httperr.Wrap(httperr.KindConflict, "application already exists for this position", err)
	case errors.Is(err, store.ErrProfileAlreadyExists):
		return httperr.Wrap(httperr.KindConflict, "profile already exists", err)
	case errors.Is(err, store.ErrApplicationNotPending):
		return httperr.Wrap(httperr.KindInvalidState, "application is no longer pending", err)
	}
	return httperr.From(err)
}

// isNotFound reports whether err is one of the store's not-found sentinels.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrAccountNotFound) ||
		errors.Is(err, store.ErrProfileNotFound) ||
		errors.Is(err, store.ErrClinicNotFound) ||
		errors.Is(err, store.ErrPositionNotFound) ||
		errors.Is(err, store.ErrApplicationNotFound) ||
		errors.Is(err, store.ErrDocumentNotFound)
}

// decodeJSON decodes a request body, rejecting malformed payloads as
// validation errors.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return httperr.Wrap(httperr.KindValidation, "malformed request body", err)
	}
	return nil
}

// pathID parses the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, httperr.Wrap(httperr.KindValidation, fmt.Sprintf("invalid id %q", r.PathValue("id")), err)
	}
	return id, nil
}

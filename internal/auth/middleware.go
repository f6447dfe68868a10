package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/medmatch/internal/httperr"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/telemetry"
)

type contextKey int

const accountContextKey contextKey = iota

// AccountFromContext extracts the authenticated account from the request
// context. Returns nil if no account is present.
func AccountFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountContextKey).(*models.Account)
	return account
}

// ContextWithAccount returns a context carrying the account. Exported for
// handler tests that bypass the HTTP middleware.
func ContextWithAccount(ctx context.Context, account *models.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// Middleware returns an HTTP middleware that verifies the bearer credential
// and resolves it to an account before the handler runs. Requests without a
// credential are rejected as unauthenticated; requests with a credential
// that fails signature, issuer or audience checks are rejected as invalid.
func Middleware(verifier *Verifier, resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString := extractBearerToken(r)
			if tokenString == "" {
				writeAuthError(w, httperr.New(httperr.KindUnauthenticated, "missing bearer credential"))
				return
			}

			identity, err := verifier.Verify(ctx, tokenString)
			if err != nil {
				telemetry.GetMetrics().AuthFailuresTotal.Add(ctx, 1)
				zerolog.Ctx(ctx).Warn().Err(err).Msg("Credential verification failed")
				writeAuthError(w, httperr.New(httperr.KindInvalidCredential, "credential rejected"))
				return
			}

			account, err := resolver.Resolve(ctx, identity)
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Str("subject", identity.Subject).Msg("Account resolution failed")
				writeAuthError(w, httperr.Internal(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithAccount(ctx, account)))
		})
	}
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func writeAuthError(w http.ResponseWriter, apiErr *httperr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httperr.Status(apiErr.Kind))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   string(apiErr.Kind),
		"message": apiErr.Message,
	})
}

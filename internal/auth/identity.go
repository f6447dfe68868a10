package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
	"github.com/wolfeidau/medmatch/internal/telemetry"
)

// Resolver maps a verified identity to a persisted account, creating one on
// first sight. A freshly created account has no role; every capability
// beyond self-read and the one-time role set stays locked until a role is
// assigned.
type Resolver struct {
	accounts store.AccountStore
}

// NewResolver creates a resolver over the given account store.
func NewResolver(accounts store.AccountStore) *Resolver {
	return &Resolver{accounts: accounts}
}

// Resolve finds the account for the identity's subject, creating it if this
// is the first authenticated contact.
func (r *Resolver) Resolve(ctx context.Context, identity *Identity) (*models.Account, error) {
	account, err := r.accounts.GetBySubject(ctx, identity.Subject)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrAccountNotFound) {
		return nil, fmt.Errorf("account lookup failed: %w", err)
	}

	accountID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account ID: %w", err)
	}

	now := time.Now()
	account = &models.Account{
		AccountID: accountID,
		Subject:   identity.Subject,
		Email:     identity.Email,
		Name:      identity.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = r.accounts.Create(ctx, account)
	if errors.Is(err, store.ErrAccountAlreadyExists) {
		// Lost a race with a concurrent first request for the same subject.
		return r.accounts.GetBySubject(ctx, identity.Subject)
	}
	if err != nil {
		return nil, fmt.Errorf("account creation failed: %w", err)
	}

	telemetry.GetMetrics().AccountsCreatedTotal.Add(ctx, 1)

	zerolog.Ctx(ctx).Info().
		Str("account_id", account.AccountID.String()).
		Str("subject", identity.Subject).
		Msg("Created account on first contact")

	return account, nil
}

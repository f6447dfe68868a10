package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
)

func newAccount(t *testing.T, subject string) *models.Account {
	t.Helper()
	accountID, err := uuid.NewV7()
	require.NoError(t, err)
	return &models.Account{
		AccountID: accountID,
		Subject:   subject,
		Email:     subject + "@example.com",
		Name:      "Test User",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestAccountStore_Create(t *testing.T) {
	t.Run("create new account", func(t *testing.T) {
		st := NewAccountStore()
		ctx := context.Background()

		err := st.Create(ctx, newAccount(t, "auth0|alice"))
		require.NoError(t, err)
	})

	t.Run("duplicate subject returns error", func(t *testing.T) {
		st := NewAccountStore()
		ctx := context.Background()

		require.NoError(t, st.Create(ctx, newAccount(t, "auth0|alice")))

		err := st.Create(ctx, newAccount(t, "auth0|alice"))
		require.ErrorIs(t, err, store.ErrAccountAlreadyExists)
	})
}

func TestAccountStore_GetBySubject(t *testing.T) {
	t.Run("get existing account", func(t *testing.T) {
		st := NewAccountStore()
		ctx := context.Background()

		account := newAccount(t, "auth0|alice")
		require.NoError(t, st.Create(ctx, account))

		retrieved, err := st.GetBySubject(ctx, "auth0|alice")
		require.NoError(t, err)
		require.Equal(t, account.AccountID, retrieved.AccountID)
		require.Nil(t, retrieved.Role)
	})

	t.Run("unknown subject returns error", func(t *testing.T) {
		st := NewAccountStore()
		ctx := context.Background()

		_, err := st.GetBySubject(ctx, "auth0|nobody")
		require.ErrorIs(t, err, store.ErrAccountNotFound)
	})
}

func TestAccountStore_SetRoleOnce(t *testing.T) {
	t.Run("first set succeeds", func(t *testing.T) {
		st := NewAccountStore()
		ctx := context.Background()

		account := newAccount(t, "auth0|alice")
		require.NoError(t, st.Create(ctx, account))

		err := st.SetRoleOnce(ctx, account.AccountID, models.RoleStudent, nil)
		require.NoError(t, err)

		retrieved, err := st.Get(ctx, account.AccountID)
		require.NoError(t, err)
		require.NotNil(t, retrieved.Role)
		require.Equal(t, models.RoleStudent, *retrieved.Role)
	})

	t.Run("second set is rejected and role unchanged", func(t *testing.T) {
		st := NewAccountStore()
		ctx := context.Background()

		account := newAccount(t, "auth0|alice")
		require.NoError(t, st.Create(ctx, account))
		require.NoError(t, st.SetRoleOnce(ctx, account.AccountID, models.RoleStudent, nil))

		err := st.SetRoleOnce(ctx, account.AccountID, models.RoleClinicAdmin, nil)
		require.ErrorIs(t, err, store.ErrRoleAlreadySet)

		retrieved, err := st.Get(ctx, account.AccountID)
		require.NoError(t, err)
		require.Equal(t, models.RoleStudent, *retrieved.Role)
	})

	t.Run("clinic role links the clinic", func(t *testing.T) {
		st := NewAccountStore()
		ctx := context.Background()

		account := newAccount(t, "auth0|bob")
		require.NoError(t, st.Create(ctx, account))

		clinicID := uuid.Must(uuid.NewV7())
		require.NoError(t, st.SetRoleOnce(ctx, account.AccountID, models.RoleClinicAdmin, &clinicID))

		retrieved, err := st.Get(ctx, account.AccountID)
		require.NoError(t, err)
		require.NotNil(t, retrieved.ClinicID)
		require.Equal(t, clinicID, *retrieved.ClinicID)
	})

	t.Run("unknown account returns error", func(t *testing.T) {
		st := NewAccountStore()
		ctx := context.Background()

		err := st.SetRoleOnce(ctx, uuid.Must(uuid.NewV7()), models.RoleStudent, nil)
		require.ErrorIs(t, err, store.ErrAccountNotFound)
	})
}

func TestAccountStore_SetRole(t *testing.T) {
	t.Run("admin path overrides existing role", func(t *testing.T) {
		st := NewAccountStore()
		ctx := context.Background()

		account := newAccount(t, "auth0|alice")
		require.NoError(t, st.Create(ctx, account))
		require.NoError(t, st.SetRoleOnce(ctx, account.AccountID, models.RoleStudent, nil))

		require.NoError(t, st.SetRole(ctx, account.AccountID, models.RoleAdmin, nil))

		retrieved, err := st.Get(ctx, account.AccountID)
		require.NoError(t, err)
		require.Equal(t, models.RoleAdmin, *retrieved.Role)
	})
}

func TestAccountStore_Delete(t *testing.T) {
	st := NewAccountStore()
	ctx := context.Background()

	account := newAccount(t, "auth0|alice")
	require.NoError(t, st.Create(ctx, account))
	require.NoError(t, st.Delete(ctx, account.AccountID))

	_, err := st.Get(ctx, account.AccountID)
	require.ErrorIs(t, err, store.ErrAccountNotFound)

	// subject is free again after deletion
	require.NoError(t, st.Create(ctx, newAccount(t, "auth0|alice")))
}

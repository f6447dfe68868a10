package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/medmatch/internal/models"
)

func accountWithRole(role models.Role, clinicID *uuid.UUID) *models.Account {
	return &models.Account{
		AccountID: uuid.Must(uuid.NewV7()),
		Subject:   "auth0|test",
		Role:      &role,
		ClinicID:  clinicID,
	}
}

func TestAuthorize_NullRole(t *testing.T) {
	account := &models.Account{AccountID: uuid.Must(uuid.NewV7())}

	for _, op := range []Operation{OpReadOwn, OpWriteOwn, OpReadOrg, OpWriteOrg, OpAdminAll} {
		t.Run(string(op), func(t *testing.T) {
			_, err := Authorize(account, op)
			require.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestAuthorize_Admin(t *testing.T) {
	account := accountWithRole(models.RoleAdmin, nil)

	for _, op := range []Operation{OpReadOwn, OpWriteOwn, OpReadOrg, OpWriteOrg, OpAdminAll} {
		t.Run(string(op), func(t *testing.T) {
			scope, err := Authorize(account, op)
			require.NoError(t, err)
			require.True(t, scope.Unrestricted)
		})
	}
}

func TestAuthorize_Student(t *testing.T) {
	account := accountWithRole(models.RoleStudent, nil)

	t.Run("own scope allowed", func(t *testing.T) {
		scope, err := Authorize(account, OpReadOwn)
		require.NoError(t, err)
		require.False(t, scope.Unrestricted)
		require.Equal(t, account.AccountID, scope.AccountID)

		_, err = Authorize(account, OpWriteOwn)
		require.NoError(t, err)
	})

	t.Run("org and admin scope denied", func(t *testing.T) {
		for _, op := range []Operation{OpReadOrg, OpWriteOrg, OpAdminAll} {
			_, err := Authorize(account, op)
			require.ErrorIs(t, err, ErrForbidden)
		}
	})
}

func TestAuthorize_ClinicAdmin(t *testing.T) {
	clinicID := uuid.Must(uuid.NewV7())
	account := accountWithRole(models.RoleClinicAdmin, &clinicID)

	t.Run("org scope carries the linked clinic", func(t *testing.T) {
		for _, op := range []Operation{OpReadOrg, OpWriteOrg} {
			scope, err := Authorize(account, op)
			require.NoError(t, err)
			require.Equal(t, clinicID, scope.ClinicID)
			require.False(t, scope.Unrestricted)
		}
	})

	t.Run("own and admin scope denied", func(t *testing.T) {
		for _, op := range []Operation{OpReadOwn, OpWriteOwn, OpAdminAll} {
			_, err := Authorize(account, op)
			require.ErrorIs(t, err, ErrForbidden)
		}
	})

	t.Run("missing clinic link denied", func(t *testing.T) {
		unlinked := accountWithRole(models.RoleClinicAdmin, nil)
		_, err := Authorize(unlinked, OpWriteOrg)
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAuthorize_ClinicMember(t *testing.T) {
	clinicID := uuid.Must(uuid.NewV7())
	account := accountWithRole(models.RoleClinicMember, &clinicID)

	t.Run("org read allowed", func(t *testing.T) {
		scope, err := Authorize(account, OpReadOrg)
		require.NoError(t, err)
		require.Equal(t, clinicID, scope.ClinicID)
	})

	t.Run("org write denied", func(t *testing.T) {
		_, err := Authorize(account, OpWriteOrg)
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAuthorize_NilAccount(t *testing.T) {
	_, err := Authorize(nil, OpReadOwn)
	require.ErrorIs(t, err, ErrForbidden)
}

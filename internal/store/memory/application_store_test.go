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

func newPosition(t *testing.T, clinicID uuid.UUID) *models.Position {
	t.Helper()
	return &models.Position{
		PositionID:          uuid.Must(uuid.NewV7()),
		ClinicID:            clinicID,
		Title:               "Cardiology Internship",
		Description:         "Six month rotation",
		Specialty:           "cardiology",
		DurationMonths:      6,
		StartDate:           time.Now().AddDate(0, 2, 0),
		ApplicationDeadline: time.Now().AddDate(0, 1, 0),
		Status:              models.PositionStatusActive,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
}

func newApplication(profileID, positionID uuid.UUID) *models.Application {
	cover := "Interested in cardiology"
	return &models.Application{
		ApplicationID: uuid.Must(uuid.NewV7()),
		ProfileID:     profileID,
		PositionID:    positionID,
		CoverLetter:   &cover,
		Status:        models.ApplicationStatusPending,
		AppliedAt:     time.Now(),
	}
}

func TestApplicationStore_Create(t *testing.T) {
	t.Run("create application", func(t *testing.T) {
		positions := NewPositionStore()
		st := NewApplicationStore(positions)
		ctx := context.Background()

		position := newPosition(t, uuid.Must(uuid.NewV7()))
		require.NoError(t, positions.Create(ctx, position))

		err := st.Create(ctx, newApplication(uuid.Must(uuid.NewV7()), position.PositionID))
		require.NoError(t, err)
	})

	t.Run("duplicate pair returns conflict", func(t *testing.T) {
		positions := NewPositionStore()
		st := NewApplicationStore(positions)
		ctx := context.Background()

		position := newPosition(t, uuid.Must(uuid.NewV7()))
		require.NoError(t, positions.Create(ctx, position))

		profileID := uuid.Must(uuid.NewV7())
		require.NoError(t, st.Create(ctx, newApplication(profileID, position.PositionID)))

		err := st.Create(ctx, newApplication(profileID, position.PositionID))
		require.ErrorIs(t, err, store.ErrDuplicateApplication)

		// exactly one application exists for the pair
		apps, err := st.ListByProfile(ctx, profileID)
		require.NoError(t, err)
		require.Len(t, apps, 1)
	})

	t.Run("missing position returns not found", func(t *testing.T) {
		st := NewApplicationStore(NewPositionStore())
		ctx := context.Background()

		err := st.Create(ctx, newApplication(uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())))
		require.ErrorIs(t, err, store.ErrPositionNotFound)
	})
}

func TestApplicationStore_UpdateCoverLetter(t *testing.T) {
	t.Run("pending application is editable by owner", func(t *testing.T) {
		positions := NewPositionStore()
		st := NewApplicationStore(positions)
		ctx := context.Background()

		position := newPosition(t, uuid.Must(uuid.NewV7()))
		require.NoError(t, positions.Create(ctx, position))

		profileID := uuid.Must(uuid.NewV7())
		app := newApplication(profileID, position.PositionID)
		require.NoError(t, st.Create(ctx, app))

		updated := "Revised letter"
		require.NoError(t, st.UpdateCoverLetter(ctx, app.ApplicationID, profileID, &updated))

		retrieved, err := st.Get(ctx, app.ApplicationID)
		require.NoError(t, err)
		require.Equal(t, updated, *retrieved.CoverLetter)
	})

	t.Run("other profile cannot edit", func(t *testing.T) {
		positions := NewPositionStore()
		st := NewApplicationStore(positions)
		ctx := context.Background()

		position := newPosition(t, uuid.Must(uuid.NewV7()))
		require.NoError(t, positions.Create(ctx, position))

		app := newApplication(uuid.Must(uuid.NewV7()), position.PositionID)
		require.NoError(t, st.Create(ctx, app))

		updated := "Hijacked"
		err := st.UpdateCoverLetter(ctx, app.ApplicationID, uuid.Must(uuid.NewV7()), &updated)
		require.ErrorIs(t, err, store.ErrApplicationNotFound)
	})

	t.Run("reviewed application is frozen", func(t *testing.T) {
		positions := NewPositionStore()
		st := NewApplicationStore(positions)
		ctx := context.Background()

		clinicID := uuid.Must(uuid.NewV7())
		position := newPosition(t, clinicID)
		require.NoError(t, positions.Create(ctx, position))

		profileID := uuid.Must(uuid.NewV7())
		app := newApplication(profileID, position.PositionID)
		require.NoError(t, st.Create(ctx, app))

		notes := "Strong candidate"
		require.NoError(t, st.SetStatus(ctx, app.ApplicationID, clinicID, models.ApplicationStatusAccepted, &notes, time.Now()))

		updated := "Too late"
		err := st.UpdateCoverLetter(ctx, app.ApplicationID, profileID, &updated)
		require.ErrorIs(t, err, store.ErrApplicationNotPending)

		err = st.DeletePending(ctx, app.ApplicationID, profileID)
		require.ErrorIs(t, err, store.ErrApplicationNotPending)

		retrieved, err := st.Get(ctx, app.ApplicationID)
		require.NoError(t, err)
		require.Equal(t, models.ApplicationStatusAccepted, retrieved.Status)
		require.Equal(t, "Interested in cardiology", *retrieved.CoverLetter)
	})
}

func TestApplicationStore_SetStatus(t *testing.T) {
	t.Run("clinic reviews its own application", func(t *testing.T) {
		positions := NewPositionStore()
		st := NewApplicationStore(positions)
		ctx := context.Background()

		clinicID := uuid.Must(uuid.NewV7())
		position := newPosition(t, clinicID)
		require.NoError(t, positions.Create(ctx, position))

		app := newApplication(uuid.Must(uuid.NewV7()), position.PositionID)
		require.NoError(t, st.Create(ctx, app))

		notes := "Strong candidate"
		require.NoError(t, st.SetStatus(ctx, app.ApplicationID, clinicID, models.ApplicationStatusAccepted, &notes, time.Now()))

		retrieved, err := st.Get(ctx, app.ApplicationID)
		require.NoError(t, err)
		require.Equal(t, models.ApplicationStatusAccepted, retrieved.Status)
		require.NotNil(t, retrieved.ReviewedAt)
		require.Equal(t, notes, *retrieved.Notes)
	})

	t.Run("other clinic cannot review", func(t *testing.T) {
		positions := NewPositionStore()
		st := NewApplicationStore(positions)
		ctx := context.Background()

		position := newPosition(t, uuid.Must(uuid.NewV7()))
		require.NoError(t, positions.Create(ctx, position))

		app := newApplication(uuid.Must(uuid.NewV7()), position.PositionID)
		require.NoError(t, st.Create(ctx, app))

		err := st.SetStatus(ctx, app.ApplicationID, uuid.Must(uuid.NewV7()), models.ApplicationStatusRejected, nil, time.Now())
		require.ErrorIs(t, err, store.ErrApplicationNotFound)

		retrieved, err := st.Get(ctx, app.ApplicationID)
		require.NoError(t, err)
		require.Equal(t, models.ApplicationStatusPending, retrieved.Status)
	})
}

func TestApplicationStore_ListByClinic(t *testing.T) {
	positions := NewPositionStore()
	st := NewApplicationStore(positions)
	ctx := context.Background()

	clinicA := uuid.Must(uuid.NewV7())
	clinicB := uuid.Must(uuid.NewV7())

	positionA := newPosition(t, clinicA)
	positionB := newPosition(t, clinicB)
	require.NoError(t, positions.Create(ctx, positionA))
	require.NoError(t, positions.Create(ctx, positionB))

	require.NoError(t, st.Create(ctx, newApplication(uuid.Must(uuid.NewV7()), positionA.PositionID)))
	require.NoError(t, st.Create(ctx, newApplication(uuid.Must(uuid.NewV7()), positionB.PositionID)))

	apps, err := st.ListByClinic(ctx, clinicA)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, positionA.PositionID, apps[0].PositionID)
}

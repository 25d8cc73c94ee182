package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickfolio-backend/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return now }

	state := &domain.WizardState{SessionID: "s-1", UserID: "u-1", Step: domain.StepContent, SeenHints: []string{"bento"}}
	require.NoError(t, store.Save(ctx, state))

	t.Run("returns a copy", func(t *testing.T) {
		got, err := store.Get(ctx, "s-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StepContent, got.Step)

		got.SeenHints[0] = "mutated"
		again, _ := store.Get(ctx, "s-1")
		assert.Equal(t, "bento", again.SeenHints[0])
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("expired session", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		_, err := store.Get(ctx, "s-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("sweep and delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.WizardState{SessionID: "s-2"}))
		require.NoError(t, store.Save(ctx, &domain.WizardState{SessionID: "s-3"}))
		now = now.Add(2 * time.Hour)
		require.NoError(t, store.Save(ctx, &domain.WizardState{SessionID: "s-4"}))

		assert.Equal(t, 2, store.Sweep())
		require.NoError(t, store.Delete(ctx, "s-4"))
		_, err := store.Get(ctx, "s-4")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

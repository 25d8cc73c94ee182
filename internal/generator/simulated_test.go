package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickfolio-backend/internal/domain"
)

func TestSimulated_Generate(t *testing.T) {
	g := NewSimulated(0)

	t.Run("designer content is complete", func(t *testing.T) {
		got, err := g.Generate(context.Background(), "designer")
		require.NoError(t, err)

		assert.Contains(t, got.About, "passionate designer")
		assert.Equal(t, "UI/UX Design, Wireframing, Prototyping, User Research, Figma, Adobe XD, HTML, CSS, JavaScript", got.Skills)
		assert.Contains(t, got.Experience, "Senior Designer at CreativeTech (2020-Present)")
		assert.Contains(t, got.Projects, "E-commerce Redesign - Improved conversion rates by 25%")
	})

	t.Run("every profession produces non-empty fields", func(t *testing.T) {
		for _, p := range domain.ValidProfessions() {
			got, err := g.Generate(context.Background(), string(p))
			require.NoError(t, err, p)
			assert.NotEmpty(t, got.About, p)
			assert.NotEmpty(t, got.Skills, p)
			assert.NotEmpty(t, got.Experience, p)
			assert.NotEmpty(t, got.Projects, p)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, _ := g.Generate(context.Background(), "writer")
		b, _ := g.Generate(context.Background(), "writer")
		assert.Equal(t, a, b)
	})

	t.Run("unknown profession falls back", func(t *testing.T) {
		got, err := g.Generate(context.Background(), "astronaut")
		require.NoError(t, err)
		assert.Contains(t, got.About, "passionate astronaut")
		assert.Equal(t, Content("other").Skills, got.Skills)
	})

	t.Run("empty profession", func(t *testing.T) {
		_, err := g.Generate(context.Background(), "  ")
		assert.ErrorIs(t, err, ErrEmptyProfession)
	})
}

func TestSimulated_HonoursCancellation(t *testing.T) {
	g := NewSimulated(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "designer")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

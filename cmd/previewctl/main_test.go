package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickfolio-backend/internal/domain"
)

func execute(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(bytes.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSampleThenRender(t *testing.T) {
	sample, err := execute(t, nil, "sample", "--profession", "designer", "--template", "creative", "--name", "Ada")
	require.NoError(t, err)

	var record domain.ContentRecord
	require.NoError(t, json.Unmarshal([]byte(sample), &record))
	assert.Equal(t, "Ada", record.Name)
	assert.NotEmpty(t, record.Skills)

	t.Run("html", func(t *testing.T) {
		page, err := execute(t, []byte(sample), "render", "--format", "html", "--template", "", "-")
		require.NoError(t, err)
		assert.Contains(t, page, "<!DOCTYPE html>")
		assert.Contains(t, page, "Ada")
	})

	t.Run("json with template override", func(t *testing.T) {
		out, err := execute(t, []byte(sample), "render", "--format", "json", "--template", "bento")
		require.NoError(t, err)
		assert.Contains(t, out, `"template_id": "bento"`)
	})

	t.Run("writes to a file", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "record.json")
		outPath := filepath.Join(dir, "page.html")
		require.NoError(t, os.WriteFile(in, []byte(sample), 0o600))

		_, err := execute(t, nil, "render", "--format", "html", "--template", "", "--output", outPath, in)
		require.NoError(t, err)
		page, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Contains(t, string(page), "Ada")
		renderFlags.output = ""
	})
}

func TestRenderRejectsBadInput(t *testing.T) {
	_, err := execute(t, []byte("{}"), "render", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")
	renderFlags.format = "html"

	_, err = execute(t, []byte("not json"), "render")
	assert.ErrorContains(t, err, "decode record")

	_, err = execute(t, nil, "sample", "--profession", "astronaut")
	assert.ErrorContains(t, err, "unknown profession")
	sampleFlags.profession = "developer"
}

func TestTemplatesCommand(t *testing.T) {
	out, err := execute(t, nil, "templates")
	require.NoError(t, err)
	for _, id := range []string{"minimalist", "professional", "creative", "bento"} {
		assert.Contains(t, out, id)
	}
}

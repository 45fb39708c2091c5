package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HISTORY_FILE_PATH", filepath.Join(dir, "history.json"))
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("REPORT_THEME_PATH", "")

	app := NewApp()
	require.NoError(t, app.Initialize(context.Background()))

	assert.NotNil(t, app.Checker)
	assert.NotNil(t, app.Builder)
	assert.Equal(t, filepath.Join(dir, "out"), app.OutputDir)

	entries, err := app.Checker.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInitialize_BadTheme(t *testing.T) {
	t.Setenv("REPORT_THEME_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	err := NewApp().Initialize(context.Background())
	assert.Error(t, err)
}

func TestInitialize_MissingEnvFile(t *testing.T) {
	err := NewApp().Initialize(context.Background(), filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetlive/caption-coach/internal/config"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "captioncoach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SettingsDefaultsWhenEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	settings, err := store.LoadSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRuntimeSettings(), settings)
}

func TestSQLiteStore_SettingsRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	settings := config.DefaultRuntimeSettings()
	settings.TargetLanguage = "ru"
	settings.Model = "gpt-4o"
	settings.CoachEnabled = false
	require.NoError(t, store.SaveSettings(ctx, settings))

	loaded, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)

	// Second save overwrites the single row.
	settings.TargetLanguage = "uk"
	require.NoError(t, store.SaveSettings(ctx, settings))
	loaded, err = store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "uk", loaded.TargetLanguage)
}

func TestSQLiteStore_SaveSettingsValidates(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	settings := config.DefaultRuntimeSettings()
	settings.TargetLanguage = "de"
	err := store.SaveSettings(context.Background(), settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported target_language")
}

func TestSQLiteStore_SetPanelVisible(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPanelVisible(ctx, false))
	settings, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.False(t, settings.PanelVisible)

	// Other fields keep their defaults.
	assert.True(t, settings.Enabled)
	assert.Equal(t, "uk", settings.TargetLanguage)

	require.NoError(t, store.SetPanelVisible(ctx, true))
	settings, err = store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.PanelVisible)
}

func TestSQLiteStore_ResumeContextRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	text, err := store.ResumeContext(ctx)
	require.NoError(t, err)
	assert.Empty(t, text)

	require.NoError(t, store.SaveResumeContext(ctx, "  Senior Go engineer, fintech background.  "))
	text, err = store.ResumeContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer, fintech background.", text)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "captioncoach.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	settings := config.DefaultRuntimeSettings()
	settings.Model = "gpt-4o"
	require.NoError(t, store.SaveSettings(ctx, settings))
	require.NoError(t, store.SaveResumeContext(ctx, "profile"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	loaded, err := reopened.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", loaded.Model)

	text, err := reopened.ResumeContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "profile", text)
}

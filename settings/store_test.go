package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/settings"
)

func TestLoadCreatesDefaultsOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	store := settings.NewStore(dir)
	assert.Equal(t, filepath.Join(dir, "global_settings.json"), store.Path())

	doc, err := store.Load()
	assert.NilError(t, err)
	assert.Equal(t, settings.Defaults(), doc)

	// First run persists the defaults so the next session finds them.
	assert.FileExists(t, store.Path())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	doc := settings.Defaults()
	doc.ApplyPreset(settings.QualityEpic)
	doc.Audio.MusicVolume = 0.5
	doc.Input.InvertYAxis = true
	doc.Input.MouseSensitivity = 2.5
	doc.LastPlayedScene = "earth"
	doc.LastSaveSlot = 2

	store := settings.NewStore(dir)
	assert.NilError(t, store.Save(doc))
	assert.Equal(t, doc, store.Document())

	// A fresh store over the same directory reads the same document.
	reopened := settings.NewStore(dir)
	loaded, err := reopened.Load()
	assert.NilError(t, err)
	assert.Equal(t, doc, loaded)
	assert.Equal(t, doc, reopened.Document())
}

func TestLoadReplacesUndecodableDocument(t *testing.T) {
	dir := t.TempDir()
	store := settings.NewStore(dir)
	assert.NilError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	doc, err := store.Load()
	assert.NilError(t, err)
	assert.Equal(t, settings.Defaults(), doc)

	// The broken file was rewritten, not left to fail again.
	reopened := settings.NewStore(dir)
	loaded, err := reopened.Load()
	assert.NilError(t, err)
	assert.Equal(t, settings.Defaults(), loaded)
}

func TestLoadClampsHandEditedValues(t *testing.T) {
	dir := t.TempDir()
	store := settings.NewStore(dir)
	edited := `{
		"graphics": {"quality": "epic", "shadow_quality": 9, "field_of_view": 90},
		"audio": {"master_volume": 5, "music_volume": 0.8},
		"input": {"mouse_sensitivity": 1}
	}`
	assert.NilError(t, os.WriteFile(store.Path(), []byte(edited), 0o644))

	doc, err := store.Load()
	assert.NilError(t, err)
	assert.Equal(t, settings.QualityEpic, doc.Graphics.Quality)
	assert.Equal(t, 3, doc.Graphics.ShadowQuality)
	assert.InDelta(t, 1.0, doc.Audio.MasterVolume, 1e-9)
	assert.InDelta(t, 0.8, doc.Audio.MusicVolume, 1e-9)

	// Fields the edit dropped come back as restored defaults where zero
	// makes no sense.
	assert.Equal(t, 1920, doc.Graphics.ResolutionWidth)
	assert.Equal(t, settings.WindowFullscreen, doc.Graphics.WindowMode)
	assert.InDelta(t, 1.0, doc.Input.ControllerSensitivity, 1e-9)
}

func TestSaveClampsBeforeWriting(t *testing.T) {
	store := settings.NewStore(t.TempDir())

	doc := settings.Defaults()
	doc.Audio.SFXVolume = 3.0
	assert.NilError(t, store.Save(doc))
	assert.InDelta(t, 1.0, store.Document().Audio.SFXVolume, 1e-9)
}

func TestDocumentBeforeLoadIsDefaults(t *testing.T) {
	store := settings.NewStore(t.TempDir())
	assert.Equal(t, settings.Defaults(), store.Document())
	assert.NoFileExists(t, store.Path())
}

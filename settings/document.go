// Package settings persists the player-facing settings document as JSON
// next to the world save data: graphics scalability, audio bus volumes,
// and input tuning. First run stamps defaults; later runs round-trip
// whatever the player left behind.
package settings

import "math"

// GraphicsQuality names a scalability preset.
type GraphicsQuality string

const (
	QualityLow       GraphicsQuality = "low"
	QualityMedium    GraphicsQuality = "medium"
	QualityHigh      GraphicsQuality = "high"
	QualityEpic      GraphicsQuality = "epic"
	QualityCinematic GraphicsQuality = "cinematic"

	// QualityCustom labels hand-set axis levels and never stamps them.
	QualityCustom GraphicsQuality = "custom"
)

// ScalabilityLevel maps a preset onto the 0-3 axis scale. Custom and
// unknown presets report false: their axes are whatever was set by hand.
func (q GraphicsQuality) ScalabilityLevel() (int, bool) {
	switch q {
	case QualityLow:
		return 0, true
	case QualityMedium:
		return 1, true
	case QualityHigh:
		return 2, true
	case QualityEpic, QualityCinematic:
		return 3, true
	}
	return 0, false
}

// WindowMode names how the game window is presented.
type WindowMode string

const (
	WindowFullscreen WindowMode = "fullscreen"
	WindowWindowed   WindowMode = "windowed"
	WindowBorderless WindowMode = "borderless"
)

// Graphics holds the display and scalability settings.
type Graphics struct {
	ResolutionWidth  int        `json:"resolution_width"`
	ResolutionHeight int        `json:"resolution_height"`
	WindowMode       WindowMode `json:"window_mode"`

	Quality GraphicsQuality `json:"quality"`

	VSync bool `json:"vsync"`
	// FrameRateLimit of zero means uncapped.
	FrameRateLimit int     `json:"frame_rate_limit"`
	FieldOfView    float64 `json:"field_of_view"`

	// Per-axis scalability levels on the 0-3 scale.
	ViewDistanceQuality int `json:"view_distance_quality"`
	AntiAliasingQuality int `json:"anti_aliasing_quality"`
	ShadowQuality       int `json:"shadow_quality"`
	PostProcessQuality  int `json:"post_process_quality"`
	TextureQuality      int `json:"texture_quality"`
	EffectsQuality      int `json:"effects_quality"`
	FoliageQuality      int `json:"foliage_quality"`
	ShadingQuality      int `json:"shading_quality"`
}

// Audio holds bus volumes in 0-1.
type Audio struct {
	MasterVolume   float64 `json:"master_volume"`
	MusicVolume    float64 `json:"music_volume"`
	SFXVolume      float64 `json:"sfx_volume"`
	DialogueVolume float64 `json:"dialogue_volume"`
	AmbientVolume  float64 `json:"ambient_volume"`
}

// Input holds pointer and controller tuning.
type Input struct {
	MouseSensitivity      float64 `json:"mouse_sensitivity"`
	InvertYAxis           bool    `json:"invert_y_axis"`
	ControllerSensitivity float64 `json:"controller_sensitivity"`
}

// Document is the whole persisted settings file.
type Document struct {
	Graphics Graphics `json:"graphics"`
	Audio    Audio    `json:"audio"`
	Input    Input    `json:"input"`

	LastPlayedScene string `json:"last_played_scene,omitempty"`
	LastSaveSlot    int    `json:"last_save_slot"`
}

// Defaults returns the first-run document: the high preset label with
// every axis at the top of the scale until a preset stamps them, standard
// bus volumes, and neutral input tuning.
func Defaults() Document {
	return Document{
		Graphics: Graphics{
			ResolutionWidth:  1920,
			ResolutionHeight: 1080,
			WindowMode:       WindowFullscreen,
			Quality:          QualityHigh,
			VSync:            true,
			FieldOfView:      90,

			ViewDistanceQuality: 3,
			AntiAliasingQuality: 3,
			ShadowQuality:       3,
			PostProcessQuality:  3,
			TextureQuality:      3,
			EffectsQuality:      3,
			FoliageQuality:      3,
			ShadingQuality:      3,
		},
		Audio: Audio{
			MasterVolume:   1.0,
			MusicVolume:    0.8,
			SFXVolume:      1.0,
			DialogueVolume: 1.0,
			AmbientVolume:  0.7,
		},
		Input: Input{
			MouseSensitivity:      1.0,
			ControllerSensitivity: 1.0,
		},
	}
}

// ApplyPreset records the preset and stamps its level across every axis.
// Cinematic pins the axes at the top of the scale; custom records the
// label and touches nothing.
func (d *Document) ApplyPreset(q GraphicsQuality) {
	d.Graphics.Quality = q
	if level, ok := q.ScalabilityLevel(); ok {
		d.Graphics.setAxisLevels(level)
	}
}

func (g *Graphics) setAxisLevels(level int) {
	g.ViewDistanceQuality = level
	g.AntiAliasingQuality = level
	g.ShadowQuality = level
	g.PostProcessQuality = level
	g.TextureQuality = level
	g.EffectsQuality = level
	g.FoliageQuality = level
	g.ShadingQuality = level
}

// ValidateAndClamp forces every field into its valid range, restoring
// defaults where a value makes no sense at all. Reports whether anything
// changed.
func (d *Document) ValidateAndClamp() bool {
	modified := false
	clampF := func(v *float64, min, max float64) {
		c := math.Min(math.Max(*v, min), max)
		if c != *v {
			*v = c
			modified = true
		}
	}
	clampAxis := func(v *int) {
		if *v < 0 {
			*v = 0
			modified = true
		} else if *v > 3 {
			*v = 3
			modified = true
		}
	}

	g := &d.Graphics
	if g.ResolutionWidth <= 0 || g.ResolutionHeight <= 0 {
		g.ResolutionWidth = 1920
		g.ResolutionHeight = 1080
		modified = true
	}
	switch g.WindowMode {
	case WindowFullscreen, WindowWindowed, WindowBorderless:
	default:
		g.WindowMode = WindowFullscreen
		modified = true
	}
	switch g.Quality {
	case QualityLow, QualityMedium, QualityHigh, QualityEpic, QualityCinematic, QualityCustom:
	default:
		// Unknown preset names keep their axes, as custom does.
		g.Quality = QualityCustom
		modified = true
	}
	if g.FrameRateLimit < 0 {
		g.FrameRateLimit = 0
		modified = true
	}
	if g.FieldOfView <= 0 {
		g.FieldOfView = 90
		modified = true
	}
	clampAxis(&g.ViewDistanceQuality)
	clampAxis(&g.AntiAliasingQuality)
	clampAxis(&g.ShadowQuality)
	clampAxis(&g.PostProcessQuality)
	clampAxis(&g.TextureQuality)
	clampAxis(&g.EffectsQuality)
	clampAxis(&g.FoliageQuality)
	clampAxis(&g.ShadingQuality)

	a := &d.Audio
	clampF(&a.MasterVolume, 0, 1)
	clampF(&a.MusicVolume, 0, 1)
	clampF(&a.SFXVolume, 0, 1)
	clampF(&a.DialogueVolume, 0, 1)
	clampF(&a.AmbientVolume, 0, 1)

	in := &d.Input
	if in.MouseSensitivity <= 0 {
		in.MouseSensitivity = 1.0
		modified = true
	}
	if in.ControllerSensitivity <= 0 {
		in.ControllerSensitivity = 1.0
		modified = true
	}

	if d.LastSaveSlot < 0 {
		d.LastSaveSlot = 0
		modified = true
	}

	return modified
}

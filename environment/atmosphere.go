// Package environment resolves the medium at world locations: a cheap
// altitude-based atmosphere field for the open world, box volumes that
// override it locally (caves, habitats, underwater, vacuum chambers), and
// drag/buoyancy helpers on the resolved context.
package environment

import (
	"math"

	"pkg.world.dev/terra/spec"
	"pkg.world.dev/terra/types"
)

// CosmicBackgroundK is the temperature reported above the atmosphere top.
const CosmicBackgroundK = 2.7

// AtmosphereConfig parameterizes the barometric model for one planet.
// All altitudes are cm-based world Z, thermodynamics in SI.
type AtmosphereConfig struct {
	DisplayName string `json:"display_name"`

	SeaLevelAltitudeCm   float64 `json:"sea_level_altitude"`
	SeaLevelPressurePa   float64 `json:"sea_level_pressure"`
	SeaLevelTemperatureK float64 `json:"sea_level_temperature"`
	SeaLevelDensity      float64 `json:"sea_level_density"`

	// TemperatureLapseK is the temperature drop per 100 m of altitude.
	TemperatureLapseK float64 `json:"temperature_lapse"`
	// PressureScaleHeightM is the altitude where pressure falls to 1/e.
	PressureScaleHeightM float64 `json:"pressure_scale_height"`

	AtmosphereTopCm        float64 `json:"atmosphere_top"`
	VacuumDensityThreshold float64 `json:"vacuum_density_threshold"`

	SpecificGasConstant float64 `json:"specific_gas_constant"`
	HeatCapacityRatio   float64 `json:"heat_capacity_ratio"`
	Breathable          bool    `json:"breathable"`

	// BaseWindCmS blows at sea level; wind strengthens with altitude and
	// picks up deterministic gusts.
	BaseWindCmS       types.Vec3 `json:"base_wind"`
	WindAltitudeScale float64    `json:"wind_altitude_scale"`
	WindGustStrength  float64    `json:"wind_gust_strength"`
}

// EarthAtmosphere is the standard sea-level Earth profile.
func EarthAtmosphere() AtmosphereConfig {
	return AtmosphereConfig{
		DisplayName:            "Earth Standard",
		SeaLevelPressurePa:     101325.0,
		SeaLevelTemperatureK:   288.15,
		SeaLevelDensity:        1.225,
		TemperatureLapseK:      0.65,
		PressureScaleHeightM:   8500.0,
		AtmosphereTopCm:        10000000.0,
		VacuumDensityThreshold: 0.00001,
		SpecificGasConstant:    287.05,
		HeatCapacityRatio:      1.4,
		Breathable:             true,
		WindAltitudeScale:      1.0,
		WindGustStrength:       0.1,
	}
}

// AtmosphereState is the computed atmosphere at one point.
type AtmosphereState struct {
	PressurePa   float64    `json:"pressure"`
	Density      float64    `json:"density"`
	TemperatureK float64    `json:"temperature"`
	SpeedOfSound float64    `json:"speed_of_sound"`
	WindCmS      types.Vec3 `json:"wind"`
	Humidity     float64    `json:"humidity"`
	Vacuum       bool       `json:"vacuum"`
	AltitudeCm   float64    `json:"altitude"`
}

// AtmosphereField evaluates the barometric profile. Stateless after
// construction and safe for concurrent queries.
type AtmosphereField struct {
	config AtmosphereConfig
}

func NewAtmosphereField(config AtmosphereConfig) *AtmosphereField {
	return &AtmosphereField{config: config}
}

func (f *AtmosphereField) Config() AtmosphereConfig {
	return f.config
}

// StateAt computes the full atmosphere state at a world location.
func (f *AtmosphereField) StateAt(location types.Vec3) AtmosphereState {
	altitudeCm := location.Z - f.config.SeaLevelAltitudeCm

	if altitudeCm >= f.config.AtmosphereTopCm {
		return AtmosphereState{
			TemperatureK: CosmicBackgroundK,
			Vacuum:       true,
			AltitudeCm:   altitudeCm,
		}
	}

	state := AtmosphereState{
		AltitudeCm:   altitudeCm,
		TemperatureK: f.TemperatureAt(altitudeCm),
		PressurePa:   f.PressureAt(altitudeCm),
		Density:      f.DensityAt(altitudeCm),
		SpeedOfSound: f.SpeedOfSoundAt(altitudeCm),
		WindCmS:      f.WindAt(location),
	}

	altitudeM := altitudeCm / 100.0
	state.Humidity = clamp(1.0-altitudeM/10000.0, 0, 1) * 0.5
	state.Vacuum = state.Density < f.config.VacuumDensityThreshold
	return state
}

// PressureAt applies the barometric formula P = P0*exp(-h/H).
func (f *AtmosphereField) PressureAt(altitudeCm float64) float64 {
	altitudeM := altitudeCm / 100.0
	if altitudeM <= 0 {
		return f.config.SeaLevelPressurePa
	}
	pressure := f.config.SeaLevelPressurePa * math.Exp(-altitudeM/f.config.PressureScaleHeightM)
	return math.Max(pressure, 0)
}

// TemperatureAt applies the linear lapse model, floored at the tropopause
// minimum of 180 K.
func (f *AtmosphereField) TemperatureAt(altitudeCm float64) float64 {
	altitudeM := altitudeCm / 100.0
	if altitudeM <= 0 {
		return f.config.SeaLevelTemperatureK
	}
	lapsePerMeter := f.config.TemperatureLapseK / 100.0
	return math.Max(f.config.SeaLevelTemperatureK-lapsePerMeter*altitudeM, 180.0)
}

// DensityAt derives density from pressure and temperature via the ideal
// gas law.
func (f *AtmosphereField) DensityAt(altitudeCm float64) float64 {
	if altitudeCm <= 0 {
		return f.config.SeaLevelDensity
	}
	temperature := f.TemperatureAt(altitudeCm)
	pressure := f.PressureAt(altitudeCm)
	return math.Max(pressure/(f.config.SpecificGasConstant*temperature), 0)
}

// SpeedOfSoundAt computes c = sqrt(gamma*R*T), zero below the vacuum
// density threshold.
func (f *AtmosphereField) SpeedOfSoundAt(altitudeCm float64) float64 {
	if f.DensityAt(altitudeCm) < f.config.VacuumDensityThreshold {
		return 0
	}
	temperature := f.TemperatureAt(altitudeCm)
	return math.Sqrt(f.config.HeatCapacityRatio * f.config.SpecificGasConstant * temperature)
}

// WindAt scales base wind with altitude and adds gust noise.
func (f *AtmosphereField) WindAt(location types.Vec3) types.Vec3 {
	altitudeCm := location.Z - f.config.SeaLevelAltitudeCm
	altitudeM := math.Max(altitudeCm/100.0, 0)

	multiplier := 1.0 + (altitudeM/1000.0)*f.config.WindAltitudeScale
	wind := f.config.BaseWindCmS.Scale(multiplier)

	if f.config.WindGustStrength > 0 {
		wind = wind.Add(f.gustNoise(location))
	}
	return wind
}

func (f *AtmosphereField) IsVacuumAt(altitudeCm float64) bool {
	return f.DensityAt(altitudeCm) < f.config.VacuumDensityThreshold
}

// ContextAt maps the atmosphere state onto a resolved environment context
// with default gravity and density-scaled sound attenuation.
func (f *AtmosphereField) ContextAt(location types.Vec3) spec.EnvironmentContext {
	state := f.StateAt(location)

	ctx := spec.EnvironmentContext{
		Density:      state.Density,
		PressurePa:   state.PressurePa,
		TemperatureK: state.TemperatureK,
		SpeedOfSound: state.SpeedOfSound,
		WindVelocity: state.WindCmS,
		Gravity:      types.Vec3{Z: -980.0},
		Valid:        true,
	}
	if state.Vacuum {
		ctx.SoundAttenuation = 0
	} else {
		ctx.SoundAttenuation = math.Sqrt(clamp(state.Density/1.225, 0, 1))
	}
	return ctx
}

// Sine-product noise keeps gusts spatially coherent and deterministic.
func (f *AtmosphereField) gustNoise(location types.Vec3) types.Vec3 {
	const scale = 0.001

	noiseX := math.Sin(location.X*scale) * math.Cos(location.Y*scale*1.3)
	noiseY := math.Sin(location.Y*scale*0.7) * math.Cos(location.X*scale)
	noiseZ := math.Sin((location.X + location.Y) * scale * 0.5)

	baseMagnitude := f.config.BaseWindCmS.Length()
	if baseMagnitude < 1.0 {
		baseMagnitude = 100.0
	}

	gust := types.Vec3{X: noiseX, Y: noiseY, Z: noiseZ * 0.3}
	return gust.Scale(baseMagnitude * f.config.WindGustStrength)
}

func clamp(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}

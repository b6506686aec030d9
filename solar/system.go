// Package solar provides cheap, deterministic astronomy for the world: sun
// direction for day/night and seasons, a simple lunar orbit and phase, and
// sidereal time for starfield rotation. Everything works in a canonical
// Earth-centered frame with X toward the vernal equinox and Z toward the
// north celestial pole, positions in kilometers.
//
// This is not an ephemeris. The models are low-precision closed forms,
// accurate to well under a degree, chosen so every query is O(1)
// trigonometry and safe to call every frame. The API is shaped so a
// higher-accuracy model could be swapped in without changing call sites.
package solar

import (
	"math"
	"sync"

	"pkg.world.dev/terra/types"
)

// DefaultGameEpochUnix anchors sim time zero to 2024-01-01 00:00:00 UTC for
// systems running in game-epoch mode.
const DefaultGameEpochUnix = 1704067200.0

const sunIlluminanceLux = 100000.0

// TimeSource supplies the current simulation time in seconds.
type TimeSource func() float64

// State is the consolidated solar output for rendering and physics.
type State struct {
	SunDir            types.Vec3 `json:"sun_dir"`
	SunIlluminanceLux float64    `json:"sun_illuminance_lux"`
	MoonDir           types.Vec3 `json:"moon_dir"`
	// MoonPhase is the illuminated fraction: 0 new, 1 full.
	MoonPhase       float64 `json:"moon_phase"`
	SiderealTimeRad float64 `json:"sidereal_time_rad"`
	ActiveBody      BodyID  `json:"active_body"`
}

type Option func(*System)

// WithTimeSource drives the system from a simulation clock instead of
// standing still at the epoch.
func WithTimeSource(source TimeSource) Option {
	return func(s *System) {
		s.source = source
	}
}

// WithGameEpoch anchors sim time zero to the given unix time, so fictional
// timelines keep real astronomy. Without this option sim time is
// interpreted as unix seconds directly.
func WithGameEpoch(unixSeconds float64) Option {
	return func(s *System) {
		s.epochUnix = unixSeconds
		s.useUnixTime = false
	}
}

// WithMoonOrbit overrides the lunar orbit tunables.
func WithMoonOrbit(distanceKm, periodSeconds, inclinationDeg float64) Option {
	return func(s *System) {
		s.moonDistanceKm = distanceKm
		s.moonPeriodS = periodSeconds
		s.moonInclinationDeg = inclinationDeg
	}
}

// System computes celestial state from simulation time. Results are cached
// per time value, so repeated queries between time steps cost a mutex and a
// comparison. Safe for concurrent use; query handlers read it while the
// world goroutine advances time.
type System struct {
	mu sync.Mutex

	source      TimeSource
	useUnixTime bool
	epochUnix   float64

	moonDistanceKm     float64
	moonPeriodS        float64
	moonInclinationDeg float64

	bodies map[BodyID]BodyDef

	cachedSimUnix float64
	cachedJD      float64
	cachedSunDir  types.Vec3
	cachedGMST    float64
	cachedMoonPos types.Vec3
	cachedMoonVel types.Vec3
}

func NewSystem(opts ...Option) *System {
	s := &System{
		useUnixTime:        true,
		epochUnix:          DefaultGameEpochUnix,
		moonDistanceKm:     384400.0,
		moonPeriodS:        27.321661 * 24 * 3600,
		moonInclinationDeg: 5.145,
		bodies:             defaultBodyDefs(),
		cachedSimUnix:      -1,
		cachedSunDir:       types.Vec3{X: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SimUnixSeconds returns simulation time as unix seconds regardless of how
// the time source is anchored. Without a time source the system stands
// still at the epoch.
func (s *System) SimUnixSeconds() float64 {
	if s.source == nil {
		return s.epochUnix
	}
	if s.useUnixTime {
		return s.source()
	}
	return s.epochUnix + s.source()
}

// Invalidate forces a recompute on the next query. Wire this to clock
// change notifications that move time without changing its value read, such
// as epoch swaps.
func (s *System) Invalidate() {
	s.mu.Lock()
	s.cachedSimUnix = -1
	s.mu.Unlock()
}

// BodyDef returns a body's immutable definition.
func (s *System) BodyDef(id BodyID) (BodyDef, bool) {
	def, ok := s.bodies[id]
	return def, ok
}

// BodyState returns a body's state in the canonical frame. Earth sits at
// the origin; the Moon follows its orbit. The Sun is placed along its
// direction at an arbitrary far distance as a visual proxy, since this
// model carries no AU scale.
func (s *System) BodyState(id BodyID) BodyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCache()

	switch id {
	case BodyEarth:
		return BodyState{}
	case BodyMoon:
		return BodyState{
			PositionKm:  s.cachedMoonPos,
			VelocityKmS: s.cachedMoonVel,
		}
	case BodySun:
		return BodyState{
			PositionKm: s.cachedSunDir.Scale(100000.0),
		}
	}
	return BodyState{}
}

// SunDir returns the unit direction from Earth to the Sun.
func (s *System) SunDir() types.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCache()
	return s.cachedSunDir
}

// MoonPhaseRad returns the lunar phase angle: 0 new, pi full.
func (s *System) MoonPhaseRad() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCache()
	return PhaseAngleRad(s.cachedMoonPos, s.cachedSunDir)
}

// MoonIllumination returns the illuminated fraction of the lunar disk.
func (s *System) MoonIllumination() float64 {
	return 0.5 * (1.0 - math.Cos(s.MoonPhaseRad()))
}

// GMSTRad returns the sidereal angle for starfield rotation.
func (s *System) GMSTRad() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCache()
	return s.cachedGMST
}

// JulianDate returns the Julian Date of the current simulation time.
func (s *System) JulianDate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCache()
	return s.cachedJD
}

// State returns the consolidated solar state.
func (s *System) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCache()

	return State{
		SunDir:            s.cachedSunDir,
		SunIlluminanceLux: sunIlluminanceLux,
		MoonDir:           s.cachedMoonPos.Normalized(),
		MoonPhase:         0.5 * (1.0 - math.Cos(PhaseAngleRad(s.cachedMoonPos, s.cachedSunDir))),
		SiderealTimeRad:   s.cachedGMST,
		ActiveBody:        BodyEarth,
	}
}

// ensureCache recomputes celestial state when simulation time has moved.
// Callers must hold mu.
func (s *System) ensureCache() {
	simUnix := s.SimUnixSeconds()
	if math.Abs(simUnix-s.cachedSimUnix) <= 1e-6 {
		return
	}

	s.cachedSimUnix = simUnix
	s.cachedJD = UnixToJulianDate(simUnix)
	s.cachedSunDir = SunDirJ2000(s.cachedJD)
	s.cachedGMST = GMSTRadFromJD(s.cachedJD)
	s.computeMoonState(simUnix)
}

// computeMoonState advances a simple circular inclined orbit: enough for
// the moon's sky position and phase behavior. Callers must hold mu.
func (s *System) computeMoonState(simUnixSeconds float64) {
	w := twoPi / math.Max(1.0, s.moonPeriodS)
	theta := wrapTwoPi(w * simUnixSeconds)

	r := s.moonDistanceKm
	inc := s.moonInclinationDeg * degToRad

	// Orbit in the X-Y plane, then incline about the X axis.
	x := r * math.Cos(theta)
	y0 := r * math.Sin(theta)
	s.cachedMoonPos = types.Vec3{
		X: x,
		Y: y0 * math.Cos(inc),
		Z: y0 * math.Sin(inc),
	}

	vx := -r * w * math.Sin(theta)
	vy0 := r * w * math.Cos(theta)
	s.cachedMoonVel = types.Vec3{
		X: vx,
		Y: vy0 * math.Cos(inc),
		Z: vy0 * math.Sin(inc),
	}
}

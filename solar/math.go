package solar

import (
	"math"

	"pkg.world.dev/terra/types"
)

const (
	twoPi    = 2 * math.Pi
	degToRad = math.Pi / 180

	// J2000 is the standard astronomical epoch, 2000-01-01 12:00 UTC.
	J2000 = 2451545.0

	unixEpochJD = 2440587.5

	// EarthSiderealDaySeconds is one full rotation of Earth against the
	// fixed stars, slightly shorter than the solar day.
	EarthSiderealDaySeconds = 86164.0905
)

func wrapTwoPi(rad float64) float64 {
	x := math.Mod(rad, twoPi)
	if x < 0 {
		x += twoPi
	}
	return x
}

// UnixToJulianDate converts unix seconds to a Julian Date.
func UnixToJulianDate(unixSeconds float64) float64 {
	return unixEpochJD + unixSeconds/86400.0
}

// SunDirJ2000 approximates the direction from Earth to the Sun as a unit
// vector in the Earth-centered equatorial frame: X toward the vernal
// equinox, Z toward the north celestial pole. Low-precision solar formulas
// in Julian centuries from J2000, good to well under a degree, which is
// plenty for lighting and season logic.
func SunDirJ2000(jd float64) types.Vec3 {
	t := (jd - J2000) / 36525.0
	l0 := wrapTwoPi(degToRad * (280.46646 + 36000.76983*t + 0.0003032*t*t))
	m := wrapTwoPi(degToRad * (357.52911 + 35999.05029*t - 0.0001537*t*t))

	// Equation of center.
	c := degToRad * ((1.914602-0.004817*t-0.000014*t*t)*math.Sin(m) +
		(0.019993-0.000101*t)*math.Sin(2*m) +
		0.000289*math.Sin(3*m))

	trueLong := l0 + c

	// Obliquity of the ecliptic. The Sun's apparent latitude is ~0 in this
	// model, so ecliptic longitude converts directly to an equatorial
	// direction.
	eps := degToRad * (23.439291 - 0.0130042*t)

	return types.Vec3{
		X: math.Cos(trueLong),
		Y: math.Cos(eps) * math.Sin(trueLong),
		Z: math.Sin(eps) * math.Sin(trueLong),
	}.Normalized()
}

// GMSTRadFromJD approximates Greenwich Mean Sidereal Time as an angle in
// [0, 2pi). Rotate a starfield by this around Earth's spin axis.
func GMSTRadFromJD(jd float64) float64 {
	d := jd - J2000
	hours := 18.697374558 + 24.06570982441908*d
	return wrapTwoPi(twoPi * math.Mod(hours/24.0, 1.0))
}

// ApproxGMSTRad advances sidereal time at sidereal rate from sim time zero:
// one full rotation per sidereal day. The minimum viable sidereal time for
// rotating a starfield correctly against solar time. A non-positive day
// length falls back to Earth's.
func ApproxGMSTRad(simTimeSeconds, siderealDaySeconds float64) float64 {
	if siderealDaySeconds <= 0 {
		siderealDaySeconds = EarthSiderealDaySeconds
	}
	phase := math.Mod(simTimeSeconds/siderealDaySeconds, 1.0)
	if phase < 0 {
		phase += 1.0
	}
	return phase * twoPi
}

// PhaseAngleRad returns the phase angle between a moon and the sun as seen
// from their planet: 0 means the moon sits near the sun direction (new),
// pi means opposite (full). Works for any planet and moon given
// planet-relative vectors.
func PhaseAngleRad(toMoon, toSun types.Vec3) float64 {
	a := toMoon.Normalized()
	b := toSun.Normalized()
	d := a.Dot(b)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}

// EquatorialDir converts right ascension (hours) and declination (degrees)
// to a unit direction in the equatorial frame.
func EquatorialDir(raHours, decDegrees float64) types.Vec3 {
	raRad := raHours * (math.Pi / 12.0)
	decRad := decDegrees * degToRad

	cosDec := math.Cos(decRad)
	return types.Vec3{
		X: cosDec * math.Cos(raRad),
		Y: cosDec * math.Sin(raRad),
		Z: math.Sin(decRad),
	}.Normalized()
}

// ParsecsToCentimeters converts star catalog distances to engine units.
func ParsecsToCentimeters(parsecs float64) float64 {
	const metersPerParsec = 3.085677581e16
	return parsecs * metersPerParsec * 100.0
}

// KilometersToCentimeters converts astronomical positions to engine units.
func KilometersToCentimeters(km float64) float64 {
	return km * 1000.0 * 100.0
}

// MagToIntensity maps apparent magnitude to render intensity with the
// standard photometric relation 10^(-0.4*mag), scaled by exposure and
// clamped for stability.
func MagToIntensity(apparentMag, exposure float64) float64 {
	i := math.Pow(10, -0.4*apparentMag) * exposure
	if i < 0 {
		return 0
	}
	if i > 100000 {
		return 100000
	}
	return i
}

package sky

import (
	"pkg.world.dev/terra/types"
)

const (
	// DefaultSphereRadiusCm places stars on a 10 km celestial sphere.
	DefaultSphereRadiusCm = 1000000.0
	// DefaultMaxVisibleMagnitude culls stars dimmer than the naked eye limit.
	DefaultMaxVisibleMagnitude = 6.0
)

// Point is one star prepared for rendering: an absolute position on the
// celestial sphere plus brightness and color inputs.
type Point struct {
	PositionCm types.Vec3 `json:"position_cm"`
	Mag        float64    `json:"mag"`
	Color      Color      `json:"color"`
}

// Visible returns the stars at or brighter than maxMag. Magnitude runs
// backwards: lower is brighter, so the cut keeps Mag <= maxMag.
func (c *Catalog) Visible(maxMag float64) []Star {
	stars := c.Stars()
	visible := make([]Star, 0, len(stars))
	for _, star := range stars {
		if star.Mag > maxMag {
			continue
		}
		visible = append(visible, star)
	}
	return visible
}

// Starfield culls by magnitude and projects the survivors onto a sphere of
// the given radius, coloring each by its B-V index.
func (c *Catalog) Starfield(radiusCm, maxMag float64) []Point {
	visible := c.Visible(maxMag)
	points := make([]Point, 0, len(visible))
	for _, star := range visible {
		points = append(points, Point{
			PositionCm: star.Dir.Scale(radiusCm),
			Mag:        star.Mag,
			Color:      ColorFromBV(star.ColorIndex),
		})
	}
	return points
}

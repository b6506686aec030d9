// Package sky loads the HYG-derived star catalog and turns it into
// render-ready starfield data: unit directions on the celestial sphere,
// apparent magnitudes, and colors classified from the B-V index.
package sky

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/solar"
	"pkg.world.dev/terra/types"
)

const (
	// DefaultMaxStars caps catalog size so a bad file cannot explode memory.
	DefaultMaxStars = 5000
	// DefaultDistanceParsecs stands in when the distance column is absent.
	DefaultDistanceParsecs = 1000.0
)

// Star is one catalog entry. Dir is a unit vector in the equatorial J2000
// frame; rotating the whole field by sidereal time puts it in world space.
type Star struct {
	ID              int        `json:"id"`
	Name            string     `json:"name,omitempty"`
	ProperName      string     `json:"proper_name,omitempty"`
	BayerFlamsteed  string     `json:"bayer_flamsteed,omitempty"`
	Dir             types.Vec3 `json:"dir"`
	Mag             float64    `json:"mag"`
	ColorIndex      float64    `json:"color_index"`
	DistanceParsecs float64    `json:"distance_parsecs"`
	SpectralType    string     `json:"spectral_type,omitempty"`
	Constellation   string     `json:"constellation,omitempty"`
}

// Catalog lazily loads stars from a CSV file. Loading is idempotent; once
// loaded the star slice is read-only and safe to share across goroutines.
type Catalog struct {
	mu       sync.Mutex
	path     string
	maxStars int
	stars    []Star
	loaded   bool
}

type Option func(*Catalog)

// WithMaxStars overrides the catalog size cap.
func WithMaxStars(n int) Option {
	return func(c *Catalog) {
		c.maxStars = n
	}
}

func NewCatalog(path string, opts ...Option) *Catalog {
	c := &Catalog{
		path:     path,
		maxStars: DefaultMaxStars,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureLoaded loads the catalog on first call and is a no-op afterwards.
func (c *Catalog) EnsureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded && len(c.stars) > 0 {
		return nil
	}
	return c.load()
}

// Reload drops the cached stars and loads the file again.
func (c *Catalog) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stars = nil
	c.loaded = false
	return c.load()
}

func (c *Catalog) IsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded && len(c.stars) > 0
}

// Stars returns the loaded catalog. Callers must not mutate the slice.
func (c *Catalog) Stars() []Star {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stars
}

func (c *Catalog) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stars)
}

// Column layout per the catalog generator:
// 0:id 1:name 2:proper 3:bf 4:ra 5:dec 6:mag 7:ci 8:dist 9:x 10:y 11:z 12:spect 13:con
func (c *Catalog) load() error {
	f, err := os.Open(c.path)
	if err != nil {
		return eris.Wrapf(err, "failed to open star catalog %q", c.path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return eris.Wrapf(err, "failed to read star catalog header from %q", c.path)
	}
	if !headerLooksRight(header) {
		log.Warn().
			Str("path", c.path).
			Msg("star catalog header unexpected, parsing positionally anyway")
	}

	stars := make([]Star, 0, c.maxStars)
	for len(stars) < c.maxStars {
		cols, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip the malformed line and keep going.
			continue
		}
		if len(cols) < 8 {
			continue
		}

		raHours := atof(cols[4])
		decDeg := atof(cols[5])
		mag := atof(cols[6])
		if !isFinite(raHours) || !isFinite(decDeg) || !isFinite(mag) {
			continue
		}

		dir := solar.EquatorialDir(raHours, decDeg)
		if dir.IsNearlyZero(1e-8) {
			continue
		}

		star := Star{
			ID:              atoi(cols[0]),
			Name:            cols[1],
			ProperName:      cols[2],
			BayerFlamsteed:  cols[3],
			Dir:             dir,
			Mag:             mag,
			ColorIndex:      atof(cols[7]),
			DistanceParsecs: DefaultDistanceParsecs,
		}
		if len(cols) > 8 {
			star.DistanceParsecs = atof(cols[8])
		}
		if len(cols) > 12 {
			star.SpectralType = cols[12]
		}
		if len(cols) > 13 {
			star.Constellation = cols[13]
		}
		stars = append(stars, star)
	}

	if len(stars) == 0 {
		return eris.Errorf("star catalog %q contains no usable stars", c.path)
	}

	c.stars = stars
	c.loaded = true
	log.Info().
		Str("path", c.path).
		Int("stars", len(stars)).
		Msg("loaded star catalog")
	return nil
}

func headerLooksRight(header []string) bool {
	want := map[string]bool{"ra": false, "dec": false, "mag": false, "ci": false}
	for _, col := range header {
		name := strings.TrimSpace(strings.ToLower(col))
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for _, seen := range want {
		if !seen {
			return false
		}
	}
	return true
}

// atof and atoi mirror permissive C-style parsing: garbage yields zero
// instead of failing the whole row.
func atof(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func atoi(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

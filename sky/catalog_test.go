package sky_test

import (
	"os"
	"path/filepath"
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/sky"
	"pkg.world.dev/terra/solar"
)

const catalogHeader = "id,name,proper,bf,ra,dec,mag,ci,dist,x,y,z,spect,con\n"

const brightStars = catalogHeader +
	"32349,HR 2491,Sirius,Alp CMa,6.752481,-16.716116,-1.44,0.009,2.6371,0,0,0,A1V,CMa\n" +
	"91262,HR 7001,Vega,Alp Lyr,18.615639,38.783692,0.03,-0.001,7.6787,0,0,0,A0V,Lyr\n" +
	"27989,HR 2061,Betelgeuse,Alp Ori,5.919529,7.407064,0.45,1.85,152.6718,0,0,0,M2Ib,Ori\n" +
	"11767,HR 424,Polaris,Alp UMi,2.530301,89.264109,1.97,0.636,132.6259,0,0,0,F7Ib,UMi\n"

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "starmap.csv")
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCatalogLoadsStars(t *testing.T) {
	catalog := sky.NewCatalog(writeCatalog(t, brightStars))
	assert.False(t, catalog.IsLoaded())

	assert.NilError(t, catalog.EnsureLoaded())
	assert.True(t, catalog.IsLoaded())
	assert.Equal(t, 4, catalog.Count())

	sirius := catalog.Stars()[0]
	assert.Equal(t, 32349, sirius.ID)
	assert.Equal(t, "Sirius", sirius.ProperName)
	assert.Equal(t, "Alp CMa", sirius.BayerFlamsteed)
	assert.Equal(t, "A1V", sirius.SpectralType)
	assert.Equal(t, "CMa", sirius.Constellation)
	assert.InDelta(t, 2.6371, sirius.DistanceParsecs, 1e-9)
	assert.InDelta(t, 1.0, sirius.Dir.Length(), 1e-9)
	assert.DeepEqual(t, solar.EquatorialDir(6.752481, -16.716116), sirius.Dir)

	polaris := catalog.Stars()[3]
	assert.True(t, polaris.Dir.Z > 0.999, "Polaris sits at the celestial pole")

	// Loading again is a no-op.
	assert.NilError(t, catalog.EnsureLoaded())
	assert.Equal(t, 4, catalog.Count())
}

func TestCatalogMissingFile(t *testing.T) {
	catalog := sky.NewCatalog(filepath.Join(t.TempDir(), "nope.csv"))
	err := catalog.EnsureLoaded()
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, catalog.IsLoaded())
}

func TestCatalogWithoutDataRows(t *testing.T) {
	catalog := sky.NewCatalog(writeCatalog(t, catalogHeader))
	assert.ErrorContains(t, catalog.EnsureLoaded(), "contains no usable stars")
}

func TestCatalogSkipsUnusableRows(t *testing.T) {
	content := catalogHeader +
		"1,short,row,here,6.0\n" +
		"2,bad,ra,value,nan,10.0,3.0,0.5\n" +
		"3,HR 3,,,12.0,45.0,4.0,0.3,50.0,0,0,0,G2V,And\n"
	catalog := sky.NewCatalog(writeCatalog(t, content))

	assert.NilError(t, catalog.EnsureLoaded())
	assert.Equal(t, 1, catalog.Count())
	assert.Equal(t, 3, catalog.Stars()[0].ID)
}

func TestCatalogDistanceDefaultsWhenColumnMissing(t *testing.T) {
	content := catalogHeader +
		"7,HR 7,,,1.0,2.0,3.0,0.4\n"
	catalog := sky.NewCatalog(writeCatalog(t, content))

	assert.NilError(t, catalog.EnsureLoaded())
	star := catalog.Stars()[0]
	assert.Equal(t, sky.DefaultDistanceParsecs, star.DistanceParsecs)
	assert.Equal(t, "", star.SpectralType)
	assert.Equal(t, "", star.Constellation)
}

func TestCatalogCapsAtMaxStars(t *testing.T) {
	catalog := sky.NewCatalog(writeCatalog(t, brightStars), sky.WithMaxStars(2))

	assert.NilError(t, catalog.EnsureLoaded())
	assert.Equal(t, 2, catalog.Count())
	assert.Equal(t, "Sirius", catalog.Stars()[0].ProperName)
	assert.Equal(t, "Vega", catalog.Stars()[1].ProperName)
}

func TestCatalogReload(t *testing.T) {
	path := writeCatalog(t, brightStars)
	catalog := sky.NewCatalog(path)
	assert.NilError(t, catalog.EnsureLoaded())
	assert.Equal(t, 4, catalog.Count())

	smaller := catalogHeader +
		"5,HR 5,,,3.0,3.0,3.0,0.3,10.0,0,0,0,K0III,Cas\n"
	assert.NilError(t, os.WriteFile(path, []byte(smaller), 0o644))

	assert.NilError(t, catalog.Reload())
	assert.Equal(t, 1, catalog.Count())
	assert.Equal(t, 5, catalog.Stars()[0].ID)
}

func TestColorFromBV(t *testing.T) {
	testCases := []struct {
		name string
		bv   float64
		want sky.Color
	}{
		{"O hot blue", -0.33, sky.Color{R: 0.61, G: 0.73, B: 1.00}},
		{"B blue-white at band edge", -0.20, sky.Color{R: 0.78, G: 0.87, B: 1.00}},
		{"A white at band edge", 0.00, sky.Color{R: 0.96, G: 0.97, B: 1.00}},
		{"F yellow-white", 0.45, sky.Color{R: 1.00, G: 0.98, B: 0.92}},
		{"G sunlike", 0.65, sky.Color{R: 1.00, G: 0.93, B: 0.74}},
		{"K orange", 1.0, sky.Color{R: 1.00, G: 0.82, B: 0.56}},
		{"M red at band edge", 1.20, sky.Color{R: 1.00, G: 0.65, B: 0.38}},
		{"M deep red", 1.85, sky.Color{R: 1.00, G: 0.65, B: 0.38}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sky.ColorFromBV(tc.bv))
		})
	}
}

func TestVisibleCullsByMagnitude(t *testing.T) {
	content := brightStars +
		"99,HD 99,,,4.0,4.0,7.2,0.5,800.0,0,0,0,K5V,Psc\n"
	catalog := sky.NewCatalog(writeCatalog(t, content))
	assert.NilError(t, catalog.EnsureLoaded())
	assert.Equal(t, 5, catalog.Count())

	assert.Len(t, catalog.Visible(sky.DefaultMaxVisibleMagnitude), 4)
	assert.Len(t, catalog.Visible(1.0), 2)
	assert.Len(t, catalog.Visible(-2.0), 0)
}

func TestStarfieldScalesAndColors(t *testing.T) {
	catalog := sky.NewCatalog(writeCatalog(t, brightStars))
	assert.NilError(t, catalog.EnsureLoaded())

	points := catalog.Starfield(sky.DefaultSphereRadiusCm, sky.DefaultMaxVisibleMagnitude)
	assert.Len(t, points, 4)
	for _, p := range points {
		assert.InDelta(t, sky.DefaultSphereRadiusCm, p.PositionCm.Length(), 1e-3)
	}

	// Sirius is an A star, Betelgeuse an M star.
	assert.Equal(t, sky.Color{R: 0.96, G: 0.97, B: 1.00}, points[0].Color)
	assert.Equal(t, sky.Color{R: 1.00, G: 0.65, B: 0.38}, points[2].Color)
}

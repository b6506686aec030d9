package specpack

import (
	"crypto/sha1"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/spec"
)

// document is the on-disk pack shape. Spec entries stay raw until parsing
// so absent fields keep their defaults.
type document struct {
	PackID       string            `json:"pack_id"`
	Version      int               `json:"version"`
	EngineCompat string            `json:"engine_compat"`
	SpecTypes    []string          `json:"spec_types"`
	SurfaceSpecs []json.RawMessage `json:"surface_specs"`
	MediumSpecs  []json.RawMessage `json:"medium_specs"`
	BiomeSpecs   []json.RawMessage `json:"biome_specs"`
}

// LoadResult reports what one pack file contributed.
type LoadResult struct {
	Path         string   `json:"path"`
	Manifest     Manifest `json:"manifest"`
	SurfaceSpecs int      `json:"surface_specs"`
	MediumSpecs  int      `json:"medium_specs"`
	BiomeSpecs   int      `json:"biome_specs"`
}

// Loader parses spec pack files and registers their contents. Manifests are
// cached per path so repeated hash queries avoid re-reading the file.
type Loader struct {
	registry *spec.Registry

	mu        sync.Mutex
	manifests map[string]Manifest
}

func NewLoader(registry *spec.Registry) *Loader {
	return &Loader{
		registry:  registry,
		manifests: map[string]Manifest{},
	}
}

// LoadPack reads, parses, and registers one pack file. Individual entries
// that cannot be parsed or lack an id are skipped with a warning; the pack
// as a whole fails only on unreadable files or malformed JSON.
func (l *Loader) LoadPack(path string) (LoadResult, error) {
	result := LoadResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return result, eris.Wrapf(err, "failed to read spec pack %q", path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return result, eris.Wrapf(err, "failed to parse spec pack %q", path)
	}

	result.Manifest = l.buildManifest(doc, data)
	result.SurfaceSpecs = l.parseSurfaceSpecs(path, doc.SurfaceSpecs)
	result.MediumSpecs = l.parseMediumSpecs(path, doc.MediumSpecs)
	result.BiomeSpecs = l.parseBiomeSpecs(path, doc.BiomeSpecs)

	l.mu.Lock()
	l.manifests[path] = result.Manifest
	l.mu.Unlock()

	log.Info().
		Str("pack", path).
		Int("surface_specs", result.SurfaceSpecs).
		Int("medium_specs", result.MediumSpecs).
		Int("biome_specs", result.BiomeSpecs).
		Msg("loaded spec pack")

	return result, nil
}

// LoadDirectory loads every .json pack under dir recursively, skipping
// manifest files. Packs that fail to load are logged and skipped; load
// order is lexical, so later packs override earlier specs by id.
func (l *Loader) LoadDirectory(dir string) ([]LoadResult, error) {
	var results []LoadResult
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		if strings.Contains(strings.ToLower(path), "manifest") {
			return nil
		}
		result, err := l.LoadPack(path)
		if err != nil {
			log.Warn().Err(err).Str("pack", path).Msg("skipping unloadable spec pack")
			return nil
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return results, eris.Wrapf(err, "failed to walk spec pack directory %q", dir)
	}
	return results, nil
}

// Validate checks pack structure without registering anything: required
// identity fields must be present and spec lists must be arrays.
func (l *Loader) Validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "cannot read spec pack %q", path)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrapf(err, "invalid JSON in spec pack %q", path)
	}

	if _, ok := raw["pack_id"]; !ok {
		return eris.Errorf("spec pack %q missing required field: pack_id", path)
	}
	if _, ok := raw["version"]; !ok {
		return eris.Errorf("spec pack %q missing required field: version", path)
	}

	for _, field := range []string{"surface_specs", "medium_specs", "biome_specs"} {
		entry, ok := raw[field]
		if !ok {
			continue
		}
		var list []json.RawMessage
		if err := json.Unmarshal(entry, &list); err != nil {
			return eris.Errorf("spec pack %q: %s must be an array", path, field)
		}
	}
	return nil
}

// ContentHash returns the SHA-1 fingerprint of the pack file as stored in
// save manifests.
func (l *Loader) ContentHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "cannot read spec pack %q", path)
	}
	return fmt.Sprintf("%X", sha1.Sum(data)), nil
}

// Manifest returns the cached manifest for a previously loaded pack.
func (l *Loader) Manifest(path string) (Manifest, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.manifests[path]
	return m, ok
}

func (l *Loader) buildManifest(doc document, data []byte) Manifest {
	compat := doc.EngineCompat
	if compat == "" {
		compat = DefaultEngineCompat
	}
	return Manifest{
		PackID:       doc.PackID,
		Version:      doc.Version,
		ContentHash:  fmt.Sprintf("%X", sha1.Sum(data)),
		EngineCompat: compat,
		Timestamp:    time.Now().UTC(),
		SpecTypes:    doc.SpecTypes,
	}
}

func (l *Loader) parseSurfaceSpecs(path string, entries []json.RawMessage) int {
	count := 0
	for _, raw := range entries {
		s := spec.DefaultSurface()
		if err := json.Unmarshal(raw, &s); err != nil {
			log.Warn().Err(err).Str("pack", path).Msg("skipping malformed surface spec")
			continue
		}
		if !s.ID.IsValid() {
			log.Warn().Str("pack", path).Msg("skipping surface spec missing id")
			continue
		}
		if err := l.registry.RegisterSurface(s); err != nil {
			log.Warn().Err(err).Str("pack", path).Msg("skipping unregisterable surface spec")
			continue
		}
		count++
	}
	return count
}

func (l *Loader) parseMediumSpecs(path string, entries []json.RawMessage) int {
	count := 0
	for _, raw := range entries {
		m := spec.DefaultMedium()
		if err := json.Unmarshal(raw, &m); err != nil {
			log.Warn().Err(err).Str("pack", path).Msg("skipping malformed medium spec")
			continue
		}
		if !m.ID.IsValid() {
			log.Warn().Str("pack", path).Msg("skipping medium spec missing id")
			continue
		}
		if err := l.registry.RegisterMedium(m); err != nil {
			log.Warn().Err(err).Str("pack", path).Msg("skipping unregisterable medium spec")
			continue
		}
		count++
	}
	return count
}

func (l *Loader) parseBiomeSpecs(path string, entries []json.RawMessage) int {
	count := 0
	for _, raw := range entries {
		b := spec.DefaultBiome()
		if err := json.Unmarshal(raw, &b); err != nil {
			log.Warn().Err(err).Str("pack", path).Msg("skipping malformed biome spec")
			continue
		}
		if !b.ID.IsValid() {
			log.Warn().Str("pack", path).Msg("skipping biome spec missing id")
			continue
		}
		if err := l.registry.RegisterBiome(b); err != nil {
			log.Warn().Err(err).Str("pack", path).Msg("skipping unregisterable biome spec")
			continue
		}
		count++
	}
	return count
}

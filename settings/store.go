package settings

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/codec"
)

const settingsFileName = "global_settings.json"

// Store owns the on-disk settings document. One instance per save
// directory; safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  Document
}

// NewStore returns a store persisting under dir, next to the world save
// data. The in-memory document holds the defaults until Load runs.
func NewStore(dir string) *Store {
	return &Store{
		path: filepath.Join(dir, settingsFileName),
		doc:  Defaults(),
	}
}

// Path returns the document's on-disk location.
func (s *Store) Path() string { return s.path }

// Load reads the settings document. A missing file stamps and persists
// the defaults, and an undecodable one is replaced the same way, so
// settings never block a world from starting. Out-of-range values from
// hand-edited files are clamped.
func (s *Store) Load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", s.path).Msg("no settings document, creating defaults")
			return s.reset()
		}
		return Document{}, eris.Wrapf(err, "failed to read settings %q", s.path)
	}

	doc, err := codec.Decode[Document](data)
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("undecodable settings document, replacing with defaults")
		return s.reset()
	}

	if doc.ValidateAndClamp() {
		log.Warn().Str("path", s.path).Msg("clamped out-of-range settings values")
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return doc, nil
}

// Save clamps and persists the document, keeping it as the current one.
func (s *Store) Save(doc Document) error {
	if doc.ValidateAndClamp() {
		log.Warn().Str("path", s.path).Msg("clamped out-of-range settings values")
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return s.write(doc)
}

// Document returns the current in-memory document.
func (s *Store) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *Store) reset() (Document, error) {
	doc := Defaults()
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return doc, s.write(doc)
}

func (s *Store) write(doc Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return eris.Wrapf(err, "failed to create settings directory %q", filepath.Dir(s.path))
	}
	data, err := codec.EncodeIndent(doc)
	if err != nil {
		return eris.Wrap(err, "failed to encode settings document")
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return eris.Wrapf(err, "failed to write settings %q", s.path)
	}
	return nil
}

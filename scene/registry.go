// Package scene tracks the named scenes a world can present and which one
// is active. Loading here is bookkeeping: the registry validates the name,
// records the switch, and tells its observer; streaming the content is the
// presenting client's business.
package scene

import (
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

// MenuSceneName is reported to observers when the world returns to the
// menu. The menu is not a loadable scene: with it up, nothing counts as
// loaded.
const MenuSceneName = "main_menu"

const defaultMenuPath = "/content/maps/main_menu"

var (
	ErrUnknownScene = eris.New("scene is not registered")
	ErrInvalidScene = eris.New("scene name and path must not be empty")
)

// Registry maps scene names to content paths and tracks the active scene.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	paths    map[string]string
	current  string
	menuPath string
	onChange func(name, path string)
}

// NewRegistry returns a registry seeded with the shipped scenes.
func NewRegistry() *Registry {
	return &Registry{
		paths: map[string]string{
			"story_entry": "/content/maps/story_entry",
			"earth":       "/content/maps/earth",
			"moon":        "/content/maps/moon",
		},
		menuPath: defaultMenuPath,
	}
}

// Register adds or replaces a scene.
func (r *Registry) Register(name, path string) error {
	if name == "" || path == "" {
		return eris.Wrapf(ErrInvalidScene, "register scene %q", name)
	}
	r.mu.Lock()
	r.paths[name] = path
	r.mu.Unlock()
	log.Debug().Str("scene", name).Str("path", path).Msg("registered scene")
	return nil
}

// SetMenuPath overrides where observers are pointed on unload.
func (r *Registry) SetMenuPath(path string) {
	r.mu.Lock()
	r.menuPath = path
	r.mu.Unlock()
}

func (r *Registry) MenuPath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.menuPath
}

// SetOnChange installs the observer notified of scene switches. The hook
// runs outside the registry lock.
func (r *Registry) SetOnChange(fn func(name, path string)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Scenes returns the registered names in sorted order.
func (r *Registry) Scenes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.paths))
	for name := range r.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns a scene's content path.
func (r *Registry) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.paths[name]
	return path, ok
}

// Current returns the active scene name, empty when the menu is up.
func (r *Registry) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Registry) IsLoaded() bool {
	return r.Current() != ""
}

// Load makes name the active scene and returns its content path. Unknown
// names are errors and leave the active scene alone.
func (r *Registry) Load(name string) (string, error) {
	r.mu.Lock()
	path, ok := r.paths[name]
	if !ok {
		r.mu.Unlock()
		return "", eris.Wrapf(ErrUnknownScene, "load scene %q", name)
	}
	r.current = name
	fn := r.onChange
	r.mu.Unlock()

	log.Info().Str("scene", name).Str("path", path).Msg("scene loaded")
	if fn != nil {
		fn(name, path)
	}
	return path, nil
}

// Unload clears the active scene and points observers back at the menu.
// With nothing loaded it only logs.
func (r *Registry) Unload() {
	r.mu.Lock()
	if r.current == "" {
		r.mu.Unlock()
		log.Warn().Msg("no scene loaded, nothing to unload")
		return
	}
	name := r.current
	r.current = ""
	menuPath := r.menuPath
	fn := r.onChange
	r.mu.Unlock()

	log.Info().Str("scene", name).Msg("scene unloaded, returning to menu")
	if fn != nil {
		fn(MenuSceneName, menuPath)
	}
}

package theme

import (
	"slices"
	"sync"
)

// Default is the palette used until SetTheme picks another.
const Default = "tokyonight"

var registry = struct {
	mu      sync.RWMutex
	themes  map[string]Palette
	current string
}{themes: make(map[string]Palette), current: Default}

// Register adds or replaces a named palette.
func Register(name string, p Palette) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.themes[name] = p
}

// SetTheme switches to a registered palette. It reports false for unknown
// names and leaves the current palette in place.
func SetTheme(name string) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.themes[name]; !ok {
		return false
	}
	registry.current = name
	return true
}

// Current returns the active palette.
func Current() Palette {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.themes[registry.current]
}

// CurrentName returns the active palette's name.
func CurrentName() string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.current
}

// Available lists registered palette names in sorted order.
func Available() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return availableLocked()
}

func availableLocked() []string {
	names := make([]string, 0, len(registry.themes))
	for name := range registry.themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Cycle switches to the next palette in sorted order and returns its name.
func Cycle() string {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	names := availableLocked()
	if len(names) == 0 {
		return ""
	}
	idx := slices.Index(names, registry.current)
	registry.current = names[(idx+1)%len(names)]
	return registry.current
}

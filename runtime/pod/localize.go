package pod

import "sync"

// Localizer resolves a localized string for a key within a pod.
// def is already defaulted to key when the caller gave no default.
type Localizer interface {
	Localize(pod, key, def string) string
}

// PassThrough is the default Localizer; it always returns def.
type PassThrough struct{}

// Localize returns def
func (PassThrough) Localize(pod, key, def string) string {
	return def
}

// MapLocalizer serves per-pod key/value bundles, falling back to def.
type MapLocalizer struct {
	mu      sync.RWMutex
	bundles map[string]map[string]string
}

// NewMapLocalizer creates an empty MapLocalizer
func NewMapLocalizer() *MapLocalizer {
	return &MapLocalizer{
		bundles: make(map[string]map[string]string),
	}
}

// Set merges entries into the bundle of a pod
func (m *MapLocalizer) Set(pod string, entries map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bundle, ok := m.bundles[pod]
	if !ok {
		bundle = make(map[string]string, len(entries))
		m.bundles[pod] = bundle
	}
	for k, v := range entries {
		bundle[k] = v
	}
}

// Localize looks key up in the pod bundle
func (m *MapLocalizer) Localize(pod, key, def string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := m.bundles[pod][key]; ok {
		return v
	}
	return def
}

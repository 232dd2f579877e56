package pod

import (
	"sync"

	"go.uber.org/zap"
)

// Registry is an append-only table of pods.
// Create one with NewRegistry and inject it where resolution is needed;
// Default exists for code that cannot be handed an instance.
type Registry struct {
	mu    sync.RWMutex
	pods  map[string]*Pod
	order []*Pod

	opts options

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		pods:      make(map[string]*Pod),
		opts:      o,
		listeners: make(map[int]Listener),
	}
	for _, l := range o.listeners {
		r.Subscribe(l)
	}
	return r
}

// Add creates a pod and registers it under name.
// Registering an existing name returns ErrDuplicatePod and leaves the
// existing pod untouched.
func (r *Registry) Add(name string) (*Pod, error) {
	if !validatePodName(name) {
		r.opts.logger.Warn("rejected pod name", zap.String("pod", name))
		return nil, newError(ErrInvalidName, name)
	}

	r.mu.Lock()
	if _, exists := r.pods[name]; exists {
		r.mu.Unlock()
		r.opts.logger.Warn("duplicate pod", zap.String("pod", name))
		return nil, newError(ErrDuplicatePod, name)
	}
	p := newPod(name, r.opts, r.emit)
	r.pods[name] = p
	r.order = append(r.order, p)
	r.mu.Unlock()

	r.opts.logger.Debug("pod added", zap.String("pod", name))
	r.emit(Event{Kind: PodAdded, Pod: name})
	return p, nil
}

// Find looks up a pod by name.
// A checked lookup of a missing name returns ErrUnknownPod;
// an unchecked one returns (nil, nil).
func (r *Registry) Find(name string, checked bool) (*Pod, error) {
	if p, ok := r.Lookup(name); ok {
		return p, nil
	}
	if checked {
		return nil, newError(ErrUnknownPod, name)
	}
	return nil, nil
}

// Lookup is the comma-ok form of an unchecked Find
func (r *Registry) Lookup(name string) (*Pod, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pods[name]
	return p, ok
}

// FindType resolves a qualified name "<pod>::<type>".
// A malformed name is ErrInvalidName when checked.
func (r *Registry) FindType(qname string, checked bool) (Type, error) {
	podName, name, ok := SplitQName(qname)
	if !ok {
		if checked {
			return nil, newError(ErrInvalidName, qname)
		}
		return nil, nil
	}

	p, err := r.Find(podName, checked)
	if p == nil {
		return nil, err
	}
	return p.FindType(name, checked)
}

// List returns all pods in registration order.
// Callers must not depend on the order; the slice is a copy.
func (r *Registry) List() []*Pod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pods := make([]*Pod, len(r.order))
	copy(pods, r.order)
	return pods
}

// Len returns the number of registered pods
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Subscribe adds a listener and returns a function that removes it
func (r *Registry) Subscribe(l Listener) (unsubscribe func()) {
	r.listenersMu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.listenersMu.Lock()
			delete(r.listeners, id)
			r.listenersMu.Unlock()
		})
	}
}

// emit runs outside of the registration lock so listeners may query the registry
func (r *Registry) emit(e Event) {
	r.listenersMu.RLock()
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.listenersMu.RUnlock()

	for _, l := range listeners {
		l.OnRegister(e)
	}
}

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// ResetDefault discards the process-wide registry (used for testing).
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = nil
}

package pod

import (
	"sync"

	"go.uber.org/zap"
)

// Pod is a named module owning a set of uniquely named types.
type Pod struct {
	name string

	mu    sync.RWMutex
	types map[string]Type
	order []Type

	newType   TypeConstructor
	localizer Localizer
	logger    *zap.Logger

	// notify is set when the pod was created by a Registry
	notify func(Event)
}

// NewPod creates an empty pod. It is not registered anywhere;
// use Registry.Add to create a registered pod.
func NewPod(name string) *Pod {
	return newPod(name, defaultOptions(), nil)
}

func newPod(name string, opts options, notify func(Event)) *Pod {
	return &Pod{
		name:      name,
		types:     make(map[string]Type),
		newType:   opts.newType,
		localizer: opts.localizer,
		logger:    opts.logger.With(zap.String("pod", name)),
		notify:    notify,
	}
}

// Name returns the pod name
func (p *Pod) Name() string {
	return p.name
}

// String returns the pod name
func (p *Pod) String() string {
	return p.name
}

// AddType registers a type under its simple name and returns it.
// base is the qualified name of the base type and may be empty.
func (p *Pod) AddType(name, base string) (Type, error) {
	qname := QName(p.name, name)
	if name == "" {
		p.logger.Warn("rejected type name", zap.String("type", name))
		return nil, newError(ErrInvalidName, qname)
	}

	t, err := p.insertType(name, qname, base)
	if err != nil {
		p.logger.Warn("type not added", zap.String("qname", qname), zap.Error(err))
		return nil, err
	}

	p.logger.Debug("type added", zap.String("qname", qname), zap.String("base", base))
	if p.notify != nil {
		p.notify(Event{Kind: TypeAdded, Pod: p.name, Type: t})
	}
	return t, nil
}

// insertType builds and stores the type under the write lock. The lock is
// released even if the constructor panics, and nothing is stored unless the
// constructor returned a type.
func (p *Pod) insertType(name, qname, base string) (Type, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.types[name]; exists {
		return nil, newError(ErrDuplicateType, qname)
	}
	t := p.newType(qname, base)
	if t == nil {
		return nil, newError(ErrNilType, qname)
	}
	p.types[name] = t
	p.order = append(p.order, t)
	return t, nil
}

// FindType looks up a type by its pod-relative simple name.
// A checked lookup of a missing name returns ErrUnknownType;
// an unchecked one returns (nil, nil).
func (p *Pod) FindType(name string, checked bool) (Type, error) {
	if t, ok := p.LookupType(name); ok {
		return t, nil
	}
	if checked {
		return nil, newError(ErrUnknownType, QName(p.name, name))
	}
	return nil, nil
}

// LookupType is the comma-ok form of an unchecked FindType
func (p *Pod) LookupType(name string) (Type, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.types[name]
	return t, ok
}

// Types returns the pod's types in registration order.
// The returned slice is a copy.
func (p *Pod) Types() []Type {
	p.mu.RLock()
	defer p.mu.RUnlock()
	types := make([]Type, len(p.order))
	copy(types, p.order)
	return types
}

// Len returns the number of registered types
func (p *Pod) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order)
}

// Localize resolves a localized string for key. Without a localization bundle
// it returns def when given and key otherwise.
func (p *Pod) Localize(key string, def ...string) string {
	d := key
	if len(def) > 0 {
		d = def[0]
	}
	return p.localizer.Localize(p.name, key, d)
}

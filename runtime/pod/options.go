package pod

import "go.uber.org/zap"

type options struct {
	newType   TypeConstructor
	localizer Localizer
	logger    *zap.Logger
	listeners []Listener
}

func defaultOptions() options {
	return options{
		newType:   NewType,
		localizer: PassThrough{},
		logger:    zap.NewNop(),
	}
}

// Option configures a Registry
type Option func(*options)

// WithTypeConstructor replaces NewType as the constructor for registered types
func WithTypeConstructor(fn TypeConstructor) Option {
	return func(o *options) {
		if fn != nil {
			o.newType = fn
		}
	}
}

// WithLocalizer sets the Localizer used by Pod.Localize
func WithLocalizer(l Localizer) Option {
	return func(o *options) {
		if l != nil {
			o.localizer = l
		}
	}
}

// WithLogger sets the logger for registration events
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithListener adds a listener that is notified of every registration
func WithListener(l Listener) Option {
	return func(o *options) {
		if l != nil {
			o.listeners = append(o.listeners, l)
		}
	}
}

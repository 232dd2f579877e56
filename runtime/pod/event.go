package pod

// EventKind identifies what was registered
type EventKind int

const (
	PodAdded EventKind = iota + 1
	TypeAdded
)

// String returns the string representation of the event kind
func (k EventKind) String() string {
	switch k {
	case PodAdded:
		return "pod_added"
	case TypeAdded:
		return "type_added"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is delivered to listeners after a successful registration.
// Type is nil for PodAdded.
type Event struct {
	Kind EventKind
	Pod  string
	Type Type
}

// Listener observes registrations
type Listener interface {
	OnRegister(Event)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Event)

// OnRegister calls f(e)
func (f ListenerFunc) OnRegister(e Event) {
	f(e)
}

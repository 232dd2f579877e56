package pod

// Type is the runtime descriptor stored in a pod.
// The registry only relies on its qualified name and base reference;
// base resolution belongs to the type system.
type Type interface {
	// QName returns "<pod>::<name>".
	QName() string
	// Name returns the pod-relative simple name.
	Name() string
	// Pod returns the owning pod name.
	Pod() string
	// Base returns the qualified name of the base type, or "" for none.
	Base() string
}

// TypeConstructor creates a Type for a qualified name and base qualified name.
type TypeConstructor func(qname, base string) Type

// NewType is the default TypeConstructor.
func NewType(qname, base string) Type {
	podName, name, _ := SplitQName(qname)
	return &basicType{
		qname: qname,
		pod:   podName,
		name:  name,
		base:  base,
	}
}

type basicType struct {
	qname string
	pod   string
	name  string
	base  string
}

func (t *basicType) QName() string  { return t.qname }
func (t *basicType) Name() string   { return t.name }
func (t *basicType) Pod() string    { return t.pod }
func (t *basicType) Base() string   { return t.base }
func (t *basicType) String() string { return t.qname }

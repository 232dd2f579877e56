package pod

import "strings"

// Separator joins a pod name and a type name into a qualified name.
const Separator = "::"

// QName builds the qualified name of a type.
func QName(pod, name string) string {
	return pod + Separator + name
}

// SplitQName splits a qualified name on the first "::".
// ok is false when either side is empty or the separator is missing.
func SplitQName(qname string) (pod, name string, ok bool) {
	idx := strings.Index(qname, Separator)
	if idx <= 0 {
		return "", "", false
	}
	pod = qname[:idx]
	name = qname[idx+len(Separator):]
	if name == "" {
		return "", "", false
	}
	return pod, name, true
}

// validatePodName rejects pod names that would make qualified names
// ambiguous. Type names may contain "::" since SplitQName splits on the
// first separator.
func validatePodName(name string) bool {
	return name != "" && !strings.Contains(name, Separator)
}

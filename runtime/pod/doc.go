// Package pod implements the runtime module registry.
//
// # Overview
//
// A Registry is a table of named pods. Each Pod owns a set of named types and
// every type is addressed globally by its qualified name:
//
//	<PodName>::<TypeName>
//
// Both levels are append-only. A name is registered at most once and is never
// removed or replaced, so the only registration failure is a duplicate.
//
// # Initialization
//
// Pods and types are registered during start-up, before the registry is used
// for resolution:
//
//	reg := pod.NewRegistry(pod.WithLogger(logger))
//
//	geom, err := reg.Add("geom")
//	if err != nil {
//		return err
//	}
//	if _, err := geom.AddType("Point", ""); err != nil {
//		return err
//	}
//	if _, err := geom.AddType("Circle", "geom::Point"); err != nil {
//		return err
//	}
//
// # Lookup
//
// Every lookup takes a checked flag. A checked lookup of a missing name returns
// ErrUnknownPod or ErrUnknownType. An unchecked lookup returns a nil value and
// a nil error:
//
//	circle, err := geom.FindType("Circle", true)
//	maybe, _ := reg.Find("missing", false) // maybe == nil
//
// Pod.FindType is keyed by the pod-relative simple name. To resolve a
// qualified name use Registry.FindType, which splits on the first "::".
//
// # Errors
//
// Failures are returned as *Error values carrying a stable code:
//
//   - R001 ErrDuplicatePod
//   - R002 ErrDuplicateType
//   - R003 ErrUnknownPod
//   - R004 ErrUnknownType
//   - R005 ErrInvalidName
//   - R006 ErrNilType
//
// Use errors.Is with the sentinel values to classify them. A failed
// registration leaves the registry exactly as it was.
//
// # Concurrency
//
// Registry and Pod are safe for concurrent use. Registration is exclusive;
// lookups may run in parallel with each other.
package pod

package manifest

import (
	"errors"
	"fmt"

	"github.com/conduit-lang/podreg/runtime/pod"
)

// MergeResult reports what Merge changed
type MergeResult struct {
	PodsAdded  []string
	TypesAdded []string
	// Conflicts lists declarations that disagree with what is registered.
	// The registry keeps the registered entry.
	Conflicts []string
}

// Changed reports whether anything was registered
func (r MergeResult) Changed() bool {
	return len(r.PodsAdded) > 0 || len(r.TypesAdded) > 0
}

// Merge registers the pods and types of m that reg does not have yet.
// Registries are append-only, so declarations missing from m stay registered
// and a type redeclared with another base is reported as a conflict.
// loc, when not nil, receives the locale sections of m.
func Merge(reg *pod.Registry, m *Manifest, loc *pod.MapLocalizer) (MergeResult, error) {
	var res MergeResult

	for i, ps := range m.Pods {
		p, ok := reg.Lookup(ps.Name)
		if !ok {
			added, err := reg.Add(ps.Name)
			switch {
			case err == nil:
				p = added
				res.PodsAdded = append(res.PodsAdded, ps.Name)
			case errors.Is(err, pod.ErrDuplicatePod):
				// registered concurrently
				p, _ = reg.Lookup(ps.Name)
			default:
				return res, fmt.Errorf("pods[%d]: %w", i, err)
			}
		}
		if loc != nil && len(ps.Locale) > 0 {
			loc.Set(ps.Name, ps.Locale)
		}

		for j, ts := range ps.Types {
			if existing, ok := p.LookupType(ts.Name); ok {
				if existing.Base() != ts.Base {
					res.Conflicts = append(res.Conflicts, fmt.Sprintf(
						"%s: declared base %q, registered base %q", existing.QName(), ts.Base, existing.Base()))
				}
				continue
			}

			t, err := p.AddType(ts.Name, ts.Base)
			if errors.Is(err, pod.ErrDuplicateType) {
				continue
			}
			if err != nil {
				return res, fmt.Errorf("pods[%d].types[%d]: %w", i, j, err)
			}
			res.TypesAdded = append(res.TypesAdded, t.QName())
		}
	}

	return res, nil
}

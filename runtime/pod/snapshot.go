package pod

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a serialisable copy of a registry, pods and types in
// registration order.
type Snapshot struct {
	ID      string        `json:"id"`
	Created time.Time     `json:"created"`
	Pods    []PodSnapshot `json:"pods"`
}

// PodSnapshot is one pod in a Snapshot
type PodSnapshot struct {
	Name  string         `json:"name"`
	Types []TypeSnapshot `json:"types"`
}

// TypeSnapshot is one type in a PodSnapshot
type TypeSnapshot struct {
	Name  string `json:"name"`
	QName string `json:"qname"`
	Base  string `json:"base,omitempty"`
}

// TypeCount returns the number of types across all pods
func (s Snapshot) TypeCount() int {
	n := 0
	for _, p := range s.Pods {
		n += len(p.Types)
	}
	return n
}

// Snapshot captures the current registry contents
func (r *Registry) Snapshot() Snapshot {
	pods := r.List()
	snap := Snapshot{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		Pods:    make([]PodSnapshot, 0, len(pods)),
	}
	for _, p := range pods {
		snap.Pods = append(snap.Pods, p.snapshot())
	}
	return snap
}

func (p *Pod) snapshot() PodSnapshot {
	types := p.Types()
	ps := PodSnapshot{
		Name:  p.name,
		Types: make([]TypeSnapshot, 0, len(types)),
	}
	for _, t := range types {
		ps.Types = append(ps.Types, TypeSnapshot{
			Name:  t.Name(),
			QName: t.QName(),
			Base:  t.Base(),
		})
	}
	return ps
}

// Restore registers every pod and type in snap, in order.
// It stops at the first failure; entries registered before the failure stay.
func (r *Registry) Restore(snap Snapshot) error {
	for _, ps := range snap.Pods {
		p, err := r.Add(ps.Name)
		if err != nil {
			return fmt.Errorf("restore pod %q: %w", ps.Name, err)
		}
		for _, ts := range ps.Types {
			if _, err := p.AddType(ts.Name, ts.Base); err != nil {
				return fmt.Errorf("restore type %q: %w", QName(ps.Name, ts.Name), err)
			}
		}
	}
	return nil
}

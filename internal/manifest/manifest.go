// Package manifest loads pod declarations from YAML and applies them to a
// registry during start-up.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/podreg/runtime/pod"
)

// Manifest declares pods and their types
type Manifest struct {
	Pods []PodSpec `yaml:"pods"`
}

// PodSpec declares one pod
type PodSpec struct {
	Name   string            `yaml:"name"`
	Locale map[string]string `yaml:"locale,omitempty"`
	Types  []TypeSpec        `yaml:"types,omitempty"`
}

// TypeSpec declares one type; Base is a qualified name and may be empty
type TypeSpec struct {
	Name string `yaml:"name"`
	Base string `yaml:"base,omitempty"`
}

// LoadFile parses a manifest from a YAML file.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse parses a manifest from YAML bytes. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &m, nil
}

// Localizer builds a localizer from the pods' locale sections
func (m *Manifest) Localizer() *pod.MapLocalizer {
	loc := pod.NewMapLocalizer()
	for _, ps := range m.Pods {
		if len(ps.Locale) > 0 {
			loc.Set(ps.Name, ps.Locale)
		}
	}
	return loc
}

// TypeCount returns the number of declared types
func (m *Manifest) TypeCount() int {
	n := 0
	for _, ps := range m.Pods {
		n += len(ps.Types)
	}
	return n
}

// Apply registers every declared pod and type in declaration order.
// It stops at the first registry error; the returned error wraps it and
// names the offending manifest entry.
func Apply(reg *pod.Registry, m *Manifest) error {
	for i, ps := range m.Pods {
		p, err := reg.Add(ps.Name)
		if err != nil {
			return fmt.Errorf("pods[%d]: %w", i, err)
		}
		for j, ts := range ps.Types {
			if _, err := p.AddType(ts.Name, ts.Base); err != nil {
				return fmt.Errorf("pods[%d].types[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

// FromSnapshot converts a registry snapshot into a manifest
func FromSnapshot(snap pod.Snapshot) *Manifest {
	m := &Manifest{Pods: make([]PodSpec, 0, len(snap.Pods))}
	for _, ps := range snap.Pods {
		spec := PodSpec{Name: ps.Name}
		for _, ts := range ps.Types {
			spec.Types = append(spec.Types, TypeSpec{Name: ts.Name, Base: ts.Base})
		}
		m.Pods = append(m.Pods, spec)
	}
	return m
}

// Marshal encodes the manifest as YAML
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

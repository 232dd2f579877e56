package ui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/conduit-lang/podreg/runtime/pod"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "pod not found",
				Problem: "Cannot find pod 'geom'.",
			},
			contains: []string{"❌", "POD NOT FOUND", "Cannot find pod 'geom'."},
		},
		{
			name: "error with code",
			opts: ErrorOptions{
				Code:    "R003",
				Context: "pod not found",
				Problem: "Cannot find pod 'geom'.",
			},
			contains: []string{"❌ [R003] POD NOT FOUND"},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Problem:     "Cannot find type 'Pint'.",
				Suggestions: []string{"Point", "Print"},
			},
			contains: []string{"Did you mean: Point, Print?"},
		},
		{
			name: "error with help commands",
			opts: ErrorOptions{
				Problem:      "broken",
				HelpCommands: []string{"See all pods: podreg list"},
			},
			contains: []string{"→ See all pods: podreg list"},
		},
		{
			name: "warning message",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Problem: "Store is empty",
			},
			contains: []string{"⚠️", "Store is empty"},
		},
		{
			name: "info message",
			opts: ErrorOptions{
				Level:   ErrorLevelInfo,
				Problem: "Loaded 3 pods",
			},
			contains: []string{"ℹ️", "Loaded 3 pods"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			result := FormatError(tt.opts)
			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("FormatError() output missing %q\nGot:\n%s", expected, result)
				}
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	WriteError(&buf, ErrorOptions{Problem: "boom", NoColor: true})

	if buf.String() != "❌ boom\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "manifest ok", true)

	if buf.String() != "✓ manifest ok\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func registryErr(t *testing.T, fn func(*pod.Registry) error) error {
	t.Helper()
	reg := pod.NewRegistry()
	geom, err := reg.Add("geom")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := geom.AddType("Point", ""); err != nil {
		t.Fatal(err)
	}
	return fn(reg)
}

func TestRegistryError(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(*pod.Registry) error
		contains []string
	}{
		{
			name: "unknown pod",
			fn: func(r *pod.Registry) error {
				_, err := r.Find("geo", true)
				return err
			},
			contains: []string{"[R003] POD NOT FOUND", "Cannot find pod 'geo'.", "podreg list"},
		},
		{
			name: "unknown type",
			fn: func(r *pod.Registry) error {
				_, err := r.FindType("geom::Pint", true)
				return err
			},
			contains: []string{"[R004] TYPE NOT FOUND", "Cannot find type 'Pint' in pod 'geom'.", "podreg list geom"},
		},
		{
			name: "duplicate pod",
			fn: func(r *pod.Registry) error {
				_, err := r.Add("geom")
				return err
			},
			contains: []string{"[R001] DUPLICATE POD"},
		},
		{
			name: "duplicate type",
			fn: func(r *pod.Registry) error {
				p, _ := r.Find("geom", true)
				_, err := p.AddType("Point", "")
				return err
			},
			contains: []string{"[R002] DUPLICATE TYPE", "'geom::Point'"},
		},
		{
			name: "invalid name",
			fn: func(r *pod.Registry) error {
				_, err := r.FindType("Point", true)
				return err
			},
			contains: []string{"[R005] INVALID NAME", "Pod::Type"},
		},
		{
			name: "wrapped keeps context",
			fn: func(r *pod.Registry) error {
				_, err := r.Add("geom")
				return fmt.Errorf("pods[1]: %w", err)
			},
			contains: []string{"DUPLICATE POD", "pods[1]: R001"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RegistryError(registryErr(t, tt.fn), nil, true)
			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("RegistryError() output missing %q\nGot:\n%s", expected, result)
				}
			}
		})
	}
}

func TestRegistryErrorPlain(t *testing.T) {
	result := RegistryError(errors.New("disk full"), []string{"x"}, true)

	if !strings.Contains(result, "❌ disk full") {
		t.Errorf("unexpected output %q", result)
	}
	if !strings.Contains(result, "Did you mean: x?") {
		t.Errorf("suggestions missing from %q", result)
	}
}

func TestConfigErrorAndWarning(t *testing.T) {
	if out := ConfigError("bad port", true); !strings.Contains(out, "CONFIGURATION ERROR") {
		t.Errorf("unexpected config error %q", out)
	}
	if out := Warning("empty store", true); !strings.HasPrefix(out, "⚠️ empty store") {
		t.Errorf("unexpected warning %q", out)
	}
}

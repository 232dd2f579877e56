package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/podreg/internal/cli/config"
	"github.com/conduit-lang/podreg/internal/cli/ui"
	"github.com/conduit-lang/podreg/internal/logging"
	"github.com/conduit-lang/podreg/internal/manifest"
	"github.com/conduit-lang/podreg/runtime/pod"
)

// reportedError marks an error whose formatted message was already written
// to stderr, so Execute does not print it again.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// report writes a formatted registry error and returns it marked as reported
func report(cmd *cobra.Command, err error, suggestions []string) error {
	fmt.Fprint(cmd.ErrOrStderr(), ui.RegistryError(err, suggestions, noColor))
	return &reportedError{err: err}
}

// app holds what every command needs after flag parsing
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	// localizer is set by loadRegistry from the manifest's locale sections
	localizer *pod.MapLocalizer
}

func loadApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if manifestPath != "" {
		cfg.Manifest = manifestPath
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger}, nil
}

// loadRegistry builds a registry from the configured manifest
func (a *app) loadRegistry(opts ...pod.Option) (*pod.Registry, *manifest.Manifest, error) {
	m, err := manifest.LoadFile(a.cfg.Manifest)
	if err != nil {
		return nil, nil, err
	}

	a.localizer = m.Localizer()
	opts = append([]pod.Option{
		pod.WithLogger(a.logger),
		pod.WithLocalizer(a.localizer),
	}, opts...)
	reg := pod.NewRegistry(opts...)

	if err := manifest.Apply(reg, m); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", a.cfg.Manifest, err)
	}

	a.logger.Debug("manifest applied",
		zap.String("manifest", a.cfg.Manifest),
		zap.Int("pods", reg.Len()),
		zap.Int("types", m.TypeCount()),
	)
	return reg, m, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func podNames(reg *pod.Registry) []string {
	pods := reg.List()
	names := make([]string, len(pods))
	for i, p := range pods {
		names[i] = p.Name()
	}
	return names
}

func typeNames(p *pod.Pod) []string {
	types := p.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
	}
	return names
}

// suggestionsFor proposes near matches for a failed lookup
func suggestionsFor(reg *pod.Registry, err error) []string {
	var regErr *pod.Error
	if !errors.As(err, &regErr) {
		return nil
	}

	switch regErr.Kind {
	case pod.ErrUnknownPod:
		return ui.FindSimilar(regErr.Name, podNames(reg), nil)
	case pod.ErrUnknownType:
		podName, typeName, _ := pod.SplitQName(regErr.Name)
		if p, ok := reg.Lookup(podName); ok {
			return ui.FindSimilar(typeName, typeNames(p), nil)
		}
	}
	return nil
}

package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/podreg/internal/cli/ui"
	"github.com/conduit-lang/podreg/internal/manifest"
	"github.com/conduit-lang/podreg/internal/store"
	"github.com/conduit-lang/podreg/runtime/pod"
)

var (
	exportTo     string
	exportOutput string
	importOutput string
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the manifest's registry as a snapshot",
		Long: `Build the registry from the manifest and write a snapshot of it.

Targets:
  store - replace the snapshot in the configured store (default)
  yaml  - write a manifest
  json  - write the snapshot as JSON

Examples:
  podreg export
  podreg export --to json --output snapshot.json`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportTo, "to", "store", "Export target: store, yaml or json")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file for yaml/json (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	reg, _, err := a.loadRegistry()
	if err != nil {
		return err
	}
	snap := reg.Snapshot()

	switch exportTo {
	case "store":
		s, err := store.Open(cmd.Context(), a.cfg.Store, a.logger)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Save(cmd.Context(), snap); err != nil {
			return err
		}
		ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("exported %d pods (%d types) to %s store as %s",
			len(snap.Pods), snap.TypeCount(), a.cfg.Store.Driver, snap.ID), noColor)
		return nil

	case "yaml":
		data, err := manifest.FromSnapshot(snap).Marshal()
		if err != nil {
			return err
		}
		return writeOutput(cmd, exportOutput, data)

	case "json":
		return withOutput(cmd, exportOutput, func(w io.Writer) error {
			return writeJSON(w, snap)
		})

	default:
		return fmt.Errorf("unsupported export target: %s (supported: store, yaml, json)", exportTo)
	}
}

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the stored snapshot into a registry",
		Long: `Restore the snapshot from the configured store into an empty registry and
list the result. With --output the restored registry is written as a manifest.

Examples:
  podreg import
  podreg import --output pods.yaml`,
		Args: cobra.NoArgs,
		RunE: runImport,
	}

	cmd.Flags().StringVarP(&importOutput, "output", "o", "", "Write the restored registry as a manifest")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	s, err := store.Open(cmd.Context(), a.cfg.Store, a.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.Load(cmd.Context())
	if errors.Is(err, store.ErrNoSnapshot) {
		fmt.Fprint(cmd.ErrOrStderr(), ui.Warning("the store holds no snapshot; run podreg export first", noColor))
		return err
	}
	if err != nil {
		return err
	}

	reg := pod.NewRegistry(pod.WithLogger(a.logger))
	if err := reg.Restore(snap); err != nil {
		return report(cmd, err, nil)
	}

	if importOutput != "" {
		data, err := manifest.FromSnapshot(reg.Snapshot()).Marshal()
		if err != nil {
			return err
		}
		if err := writeOutput(cmd, importOutput, data); err != nil {
			return err
		}
		ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("wrote %d pods to %s", reg.Len(), importOutput), noColor)
		return nil
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), snap)
	}

	out := cmd.OutOrStdout()
	kv := ui.NewKeyValueTable(out, noColor)
	kv.AddRow("snapshot", snap.ID)
	kv.AddRow("created", snap.Created.Format("2006-01-02 15:04:05 MST"))
	kv.Render()
	fmt.Fprintln(out)

	table := ui.NewTable(out, []string{"POD", "TYPES"}, &ui.TableOptions{NoColor: noColor})
	for _, p := range reg.List() {
		table.AddRow(p.Name(), strconv.Itoa(p.Len()))
	}
	table.Render()
	return nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	return withOutput(cmd, path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// withOutput runs fn against path, or against stdout when path is empty
func withOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

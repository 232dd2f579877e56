package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/podreg/internal/cli/ui"
	"github.com/conduit-lang/podreg/runtime/pod"
)

var checkStrict bool

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [manifest]",
		Short: "Validate a pod manifest",
		Long: `Load a manifest into an empty registry and report the first registration
error. Base types that do not resolve to a registered type are reported as
warnings, or as errors with --strict.

Examples:
  podreg check pods.yaml
  podreg check --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().BoolVar(&checkStrict, "strict", false, "Treat unresolved base types as errors")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		a.cfg.Manifest = args[0]
	}

	reg, m, err := a.loadRegistry()
	if err != nil {
		if pod.Code(err) != "" {
			return report(cmd, err, nil)
		}
		return err
	}

	unresolved := unresolvedBases(reg)
	for _, t := range unresolved {
		fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(
			fmt.Sprintf("%s: base type %s is not registered", t.QName(), t.Base()), noColor))
	}
	if checkStrict && len(unresolved) > 0 {
		return fmt.Errorf("%d unresolved base type(s)", len(unresolved))
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"manifest":   a.cfg.Manifest,
			"pods":       reg.Len(),
			"types":      m.TypeCount(),
			"unresolved": len(unresolved),
		})
	}

	ui.WriteSuccess(cmd.OutOrStdout(),
		fmt.Sprintf("%s: %d pods, %d types", a.cfg.Manifest, reg.Len(), m.TypeCount()), noColor)
	return nil
}

// unresolvedBases lists types whose base qualified name is not registered
func unresolvedBases(reg *pod.Registry) []pod.Type {
	var result []pod.Type
	for _, p := range reg.List() {
		for _, t := range p.Types() {
			if t.Base() == "" {
				continue
			}
			if base, _ := reg.FindType(t.Base(), false); base == nil {
				result = append(result, t)
			}
		}
	}
	return result
}

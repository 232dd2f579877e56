package commands

import (
	"github.com/spf13/cobra"

	"github.com/conduit-lang/podreg/internal/cli/ui"
)

// NewResolveCommand creates the resolve command
func NewResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <Pod::Type>",
		Short: "Resolve a qualified type name",
		Long: `Resolve a qualified name against the manifest's registry. Unknown pods and
types are reported with the closest registered names.

Examples:
  podreg resolve geom::Circle
  podreg resolve geom::Circle --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runResolve,
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	reg, _, err := a.loadRegistry()
	if err != nil {
		return err
	}

	t, err := reg.FindType(args[0], true)
	if err != nil {
		return report(cmd, err, suggestionsFor(reg, err))
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), newTypeSummary(t))
	}

	table := ui.NewKeyValueTable(cmd.OutOrStdout(), noColor)
	table.AddRow("qname", t.QName())
	table.AddRow("pod", t.Pod())
	table.AddRow("name", t.Name())
	if t.Base() != "" {
		table.AddRow("base", t.Base())
	}
	table.Render()
	return nil
}

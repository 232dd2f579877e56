package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/podreg/internal/cli/ui"
	"github.com/conduit-lang/podreg/runtime/pod"
)

// PodSummary is one row of "podreg list"
type PodSummary struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Types int    `json:"types"`
}

// TypeSummary describes one type
type TypeSummary struct {
	Name  string `json:"name"`
	QName string `json:"qname"`
	Base  string `json:"base,omitempty"`
}

func newTypeSummary(t pod.Type) TypeSummary {
	return TypeSummary{Name: t.Name(), QName: t.QName(), Base: t.Base()}
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [pod]",
		Short: "List pods, or the types of one pod",
		Long: `Without arguments, list every pod declared by the manifest with its type
count. With a pod name, list that pod's types.

Examples:
  podreg list
  podreg list geom --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	reg, _, err := a.loadRegistry()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return listTypes(cmd, reg, args[0])
	}

	pods := reg.List()
	summaries := make([]PodSummary, 0, len(pods))
	for _, p := range pods {
		summaries = append(summaries, PodSummary{
			Name:  p.Name(),
			Title: p.Localize("title", ""),
			Types: p.Len(),
		})
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), summaries)
	}

	table := ui.NewTable(cmd.OutOrStdout(), []string{"POD", "TYPES", "TITLE"}, &ui.TableOptions{NoColor: noColor})
	for _, s := range summaries {
		table.AddRow(s.Name, strconv.Itoa(s.Types), s.Title)
	}
	table.Render()
	return nil
}

func listTypes(cmd *cobra.Command, reg *pod.Registry, name string) error {
	p, err := reg.Find(name, true)
	if err != nil {
		return report(cmd, err, suggestionsFor(reg, err))
	}

	types := p.Types()
	summaries := make([]TypeSummary, 0, len(types))
	for _, t := range types {
		summaries = append(summaries, newTypeSummary(t))
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), summaries)
	}

	out := cmd.OutOrStdout()
	ui.Header(out, p.Localize("title", p.String()), noColor)
	table := ui.NewTable(out, []string{"NAME", "QNAME", "BASE"}, &ui.TableOptions{NoColor: noColor})
	for _, s := range summaries {
		table.AddRow(s.Name, s.QName, s.Base)
	}
	table.Render()
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/printer"
	"github.com/bascanada/proposalviewer/pkg/proposal"
	"github.com/bascanada/proposalviewer/pkg/server"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Show how a filter expression is parsed",
	Long: `Parse a filter expression and print its canonical form and tree without
reading any document. Malformed input is never rejected: the tree shows how
it was read.

Examples:
  proposalviewer explain -q 'a OR b AND NOT c'
  proposalviewer explain -q 'experience:5-10' --kind team`,
	PreRun: onCommandStart,
	Args:   cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := proposal.ParseKind(kindName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// The config only matters for legacyRange, a missing one is fine
		var filterOpts []filter.Option
		if cfg, _, err := loadConfig(configPath); err == nil {
			filterOpts = server.FilterOptions(cfg)
		}

		if err := RunExplain(os.Stdout, kind, filterText, printerOptions(cmd), filterOpts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// RunExplain prints the parsed form of text for the records of kind.
func RunExplain(w io.Writer, kind proposal.RecordKind, text string, opts printer.Options, filterOpts ...filter.Option) error {
	p, err := printer.New(w, opts)
	if err != nil {
		return err
	}
	return p.Filter(proposal.Explain(kind, text, filterOpts...))
}

var fieldsCmd = &cobra.Command{
	Use:       "fields [projects|team]",
	Short:     "List the fields a filter expression can use",
	PreRun:    onCommandStart,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(proposal.KindProjects), string(proposal.KindTeam)},
	Run: func(cmd *cobra.Command, args []string) {
		kinds := []proposal.RecordKind{proposal.KindProjects, proposal.KindTeam}
		if len(args) == 1 {
			kind, err := proposal.ParseKind(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			kinds = []proposal.RecordKind{kind}
		}

		if err := RunFields(os.Stdout, kinds, printerOptions(cmd)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// RunFields prints the field registry of each kind.
func RunFields(w io.Writer, kinds []proposal.RecordKind, opts printer.Options) error {
	p, err := printer.New(w, opts)
	if err != nil {
		return err
	}

	if opts.Format == printer.FormatJSON {
		out := map[proposal.RecordKind][]proposal.FieldInfo{}
		for _, kind := range kinds {
			out[kind] = proposal.FieldsOf(kind)
		}
		return p.JSON(out)
	}

	for i, kind := range kinds {
		if len(kinds) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s:\n", kind)
		}
		if err := p.Fields(proposal.FieldsOf(kind)); err != nil {
			return err
		}
	}
	return nil
}

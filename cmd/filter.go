package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/log"
	"github.com/bascanada/proposalviewer/pkg/printer"
	"github.com/bascanada/proposalviewer/pkg/proposal"
	"github.com/bascanada/proposalviewer/pkg/server"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter the projects or team members of a document",
	Long: `Filter the records of a document with a filter expression.

Terms are combined with AND, OR and NOT (AND binds tighter than OR) and can be
grouped with parentheses. A term is either a bare word searched in every text
field or field:value with an optional operator (>, >=, <, <=). Range capable
fields accept min-max.

Examples:
  proposalviewer filter projects -d acme-2024 -q 'entity:hospital AND year:2024'
  proposalviewer filter projects -q '(UK OR USA) AND value:>1000000' --json
  proposalviewer filter team -q 'title:architect AND experience:5-10'
  proposalviewer filter team -q 'revit' --format '{{.Name}}: {{Years .YearsExperience}}'`,
	PersistentPreRun: onCommandStart,
}

var filterProjectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project", "p"},
	Short:   "Filter the projects of a document",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runFilterCommand(cmd, proposal.KindProjects)
	},
}

var filterTeamCmd = &cobra.Command{
	Use:     "team",
	Aliases: []string{"members", "t"},
	Short:   "Filter the team members of a document",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runFilterCommand(cmd, proposal.KindTeam)
	},
}

func runFilterCommand(cmd *cobra.Command, kind proposal.RecordKind) {
	doc, cfg, err := loadDocument(cmd.Context(), documentName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := RunFilter(os.Stdout, doc, kind, filterText, printerOptions(cmd), server.FilterOptions(cfg)...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// RunFilter filters the records of kind in doc and prints the matches.
func RunFilter(w io.Writer, doc *proposal.Document, kind proposal.RecordKind, text string, opts printer.Options, filterOpts ...filter.Option) error {
	p, err := printer.New(w, opts)
	if err != nil {
		return err
	}

	log.Debug("filtering %s of %s with %q", kind, doc.Name, text)

	if kind == proposal.KindTeam {
		members := proposal.FilterTeamMembers(doc.Team, text, filterOpts...)
		log.Info("%d/%d team members matched %q", len(members), len(doc.Team), text)
		return p.Team(nonNil(members), len(doc.Team))
	}

	projects := proposal.FilterProjects(doc.Projects, text, filterOpts...)
	log.Info("%d/%d projects matched %q", len(projects), len(doc.Projects), text)
	return p.Projects(nonNil(projects), len(doc.Projects))
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	httpPkg "github.com/bascanada/proposalviewer/pkg/http"
	"github.com/bascanada/proposalviewer/pkg/log"
	"github.com/bascanada/proposalviewer/pkg/printer"
	"github.com/bascanada/proposalviewer/pkg/proposal"
)

var (
	// document selection
	documentName string

	// filter expression
	filterText string
	kindName   string

	// output
	jsonOutput  bool
	template    string
	colorOutput bool

	logger log.MyLoggerOptions

	debugHttp bool
)

func onCommandStart(cmd *cobra.Command, args []string) {
	if err := log.ConfigureMyLogger(&logger); err != nil {
		fmt.Printf("failed to configure logger: %v\n", err)
	}
	// enable HTTP debug logs when requested
	httpPkg.SetDebug(debugHttp)
}

// printerOptions builds the printer options from the output flags. Color is
// only forced when --color was given explicitly.
func printerOptions(cmd *cobra.Command) printer.Options {
	opts := printer.Options{Format: printer.FormatTable, Template: template}
	if jsonOutput {
		opts.Format = printer.FormatJSON
	}
	if cmd.Flags().Changed("color") {
		enabled := colorOutput
		opts.Color = &enabled
	}
	return opts
}

// completeDocuments suggests document names from the configured sources.
func completeDocuments(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, _, err := loadConfig(cfgPath)
	if err != nil {
		// Cobra will report the error to the user's shell.
		return nil, cobra.ShellCompDirectiveError
	}

	catalog, err := openCatalog(cmd.Context(), cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer catalog.Close()

	docs, err := catalog.ListDocuments(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var suggestions []string
	for _, doc := range docs {
		// Format: "value\tdescription"
		suggestions = append(suggestions, fmt.Sprintf("%s\t%s", doc.Name, doc.Title))
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

func completeKinds(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(proposal.KindProjects) + "\tproject records",
		string(proposal.KindTeam) + "\tteam members",
	}, cobra.ShellCompDirectiveNoFileComp
}

// addDocumentFlag registers -d/--document with completion on cmd.
func addDocumentFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&documentName, "document", "d", "", "Document to read, defaults to the current document (see 'use')")
	_ = cmd.RegisterFlagCompletionFunc("document", completeDocuments)
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&filterText, "query", "q", "", "Filter expression, e.g. 'entity:hospital AND year:>=2023'")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output records as JSON")
	cmd.PersistentFlags().StringVar(&template, "format", "", "Go template executed for each record, e.g. '{{.Name}} ({{.Year}})'")
}

func init() {
	addDocumentFlag(filterCmd)
	addFilterFlags(filterCmd)
	addOutputFlags(filterCmd)

	addFilterFlags(explainCmd)
	explainCmd.Flags().StringVarP(&kindName, "kind", "k", "projects", "Record kind whose fields decide range parsing (projects or team)")
	_ = explainCmd.RegisterFlagCompletionFunc("kind", completeKinds)
	explainCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the parsed filter as JSON")

	fieldsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output fields as JSON")

	filterCmd.AddCommand(filterProjectsCmd)
	filterCmd.AddCommand(filterTeamCmd)
}

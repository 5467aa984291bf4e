package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bascanada/proposalviewer/pkg/config"
	"github.com/bascanada/proposalviewer/pkg/printer"
	"github.com/bascanada/proposalviewer/pkg/source"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs", "ls"},
	Short:   "List the documents of every configured source",
	PreRun:  onCommandStart,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, err := loadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		catalog, err := openCatalog(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()

		current := ""
		if state, err := config.LoadState(); err == nil {
			current = state.CurrentDocument
		}

		if err := RunDocuments(cmd.Context(), os.Stdout, catalog, current, printerOptions(cmd)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// RunDocuments prints the documents of src, marking current.
func RunDocuments(ctx context.Context, w io.Writer, src source.Source, current string, opts printer.Options) error {
	docs, err := src.ListDocuments(ctx)
	if err != nil {
		return err
	}

	p, err := printer.New(w, opts)
	if err != nil {
		return err
	}
	return p.Documents(docs, current)
}

var useDocumentCmd = &cobra.Command{
	Use:               "use [document]",
	Short:             "Set the current document used when -d is omitted",
	PreRun:            onCommandStart,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeDocuments,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, err := loadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		catalog, err := openCatalog(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()

		name, err := resolveDocument(cmd.Context(), catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		state := &config.State{CurrentDocument: name}
		if err := config.SaveState(state); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving state: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Switched to document \"%s\".\n", name)
	},
}

func init() {
	documentsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output documents as JSON")

	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(useDocumentCmd)
}

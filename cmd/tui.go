// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bascanada/proposalviewer/pkg/proposal"
	"github.com/bascanada/proposalviewer/pkg/server"
	"github.com/bascanada/proposalviewer/pkg/source"
	"github.com/bascanada/proposalviewer/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"ui"},
	Short:   "Launch interactive TUI for filtering a document",
	Long: `Launch an interactive Terminal User Interface for filtering the projects and
team members of a document.

The TUI provides:
  - Filtering on every keystroke, with field name completion on tab
  - Projects and Team tabs (shift+tab, or tab with nothing to complete)
  - Vim-style navigation (j/k) once enter moved focus to the list
  - y copies the selected record as JSON, r reloads the document

Examples:
  # Launch TUI on the current document
  proposalviewer tui

  # Launch TUI on a specific document with an initial filter
  proposalviewer tui -d acme-2024 -q "entity:hospital AND year:>=2023"`,
	PreRun: onCommandStart,
	Args:   cobra.NoArgs,
	Run:    runTUI,
}

func runTUI(cmd *cobra.Command, args []string) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintln(os.Stderr, "Tip: Run 'proposalviewer configure' to set up a configuration.")
		os.Exit(1)
	}

	catalog, err := openCatalog(cmd.Context(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer catalog.Close()

	name, err := resolveDocument(cmd.Context(), catalog, documentName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Use: proposalviewer tui -d <document>")
		os.Exit(1)
	}

	model := tui.New(nil, documentLoader(catalog, name), server.FilterOptions(cfg)...)
	if filterText != "" {
		model.SearchBar.SetValue(filterText)
	}

	// Create the bubbletea program
	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	// Check if there was an error
	if m, ok := finalModel.(tui.Model); ok && m.Err != nil {
		fmt.Fprintf(os.Stderr, "Document '%s' had error: %v\n", name, m.Err)
	}
}

// documentLoader reads name fresh from catalog on every call, so a reload
// in the TUI sees changes to the underlying files.
func documentLoader(catalog *source.Catalog, name string) tui.Loader {
	return func(ctx context.Context) (*proposal.Document, error) {
		catalog.Invalidate()
		return catalog.GetDocument(ctx, name)
	}
}

func init() {
	addDocumentFlag(tuiCmd)
	addFilterFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

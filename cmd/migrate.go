package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bascanada/proposalviewer/pkg/config"
	"github.com/bascanada/proposalviewer/pkg/source"
)

var (
	sourceName string
	fromSource string
	toSource   string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations to the SQL sources",
	Long: `Apply pending schema migrations to every sqlite and postgres source of the
config, or only to the source named with --source.`,
	PreRun: onCommandStart,
	Args:   cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		catalog := mustOpenCatalog(cmd)
		defer catalog.Close()

		if err := RunMigrate(cmd.Context(), os.Stdout, catalog, sourceName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// RunMigrate migrates the SQL sources of catalog, or only the named one.
func RunMigrate(ctx context.Context, w io.Writer, catalog *source.Catalog, only string) error {
	sqlSources := catalog.SQLSources()
	if only != "" {
		src, ok := sqlSources[only]
		if !ok {
			return fmt.Errorf("%w: '%s' is not a sql source", config.ErrUnknownSource, only)
		}
		sqlSources = map[string]*source.SQLSource{only: src}
	}
	if len(sqlSources) == 0 {
		fmt.Fprintln(w, "no sql sources configured")
		return nil
	}

	names := make([]string, 0, len(sqlSources))
	for name := range sqlSources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		version, err := sqlSources[name].Migrate(ctx)
		if err != nil {
			return fmt.Errorf("source '%s': %w", name, err)
		}
		fmt.Fprintf(w, "%s: schema version %d\n", name, version)
	}
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import [document]",
	Short: "Copy a document into a SQL source",
	Long: `Copy a document read from any configured source into a sqlite or postgres
source, replacing the stored copy.

Example:
  proposalviewer import acme-2024 --from local --to archive`,
	PreRun:            onCommandStart,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeDocuments,
	Run: func(cmd *cobra.Command, args []string) {
		catalog := mustOpenCatalog(cmd)
		defer catalog.Close()

		if err := RunImport(cmd.Context(), os.Stdout, catalog, args[0], fromSource, toSource); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// RunImport reads name from the from source (any source when empty) and
// stores it in the to SQL source.
func RunImport(ctx context.Context, w io.Writer, catalog *source.Catalog, name, from, to string) error {
	target, ok := catalog.SQLSources()[to]
	if !ok {
		return fmt.Errorf("%w: '%s' is not a sql source", config.ErrUnknownSource, to)
	}

	var reader source.Source = catalog
	if from != "" {
		if reader, ok = catalog.Source(from); !ok {
			return fmt.Errorf("%w: %s", config.ErrUnknownSource, from)
		}
	}

	doc, err := reader.GetDocument(ctx, name)
	if err != nil {
		return err
	}
	if _, err := target.Migrate(ctx); err != nil {
		return err
	}
	if err := target.Import(ctx, doc); err != nil {
		return fmt.Errorf("failed to import %s: %w", name, err)
	}
	catalog.Invalidate()

	fmt.Fprintf(w, "imported %s into %s (%d projects, %d team members)\n", doc.Name, to, len(doc.Projects), len(doc.Team))
	return nil
}

func mustOpenCatalog(cmd *cobra.Command) *source.Catalog {
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
	return catalog
}

func init() {
	migrateCmd.Flags().StringVarP(&sourceName, "source", "s", "", "Only migrate this source")

	importCmd.Flags().StringVar(&fromSource, "from", "", "Source to read the document from (default: any source)")
	importCmd.Flags().StringVar(&toSource, "to", "", "SQL source to store the document in")
	_ = importCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
}

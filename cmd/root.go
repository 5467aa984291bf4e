// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bascanada/proposalviewer/pkg/config"
)

var (
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "proposalviewer",
	Short: "Browse and filter the projects and team members of proposal documents",
	Long: `proposalviewer reads proposal documents from files, SQLite, PostgreSQL or a
remote API and filters their projects and team members with a small query
language:

  entity:hospital AND year:>=2023 AND NOT commercial
  (UK OR USA) AND value:>1000000
  title:architect AND experience:5-10`,
	PreRun: onCommandStart,
	Run: func(cmd *cobra.Command, args []string) {
		// Check if config exists before showing generic help
		path := config.ResolvePath(configPath)
		if _, err := os.Stat(path); path != "" && os.IsNotExist(err) {
			fmt.Println("Welcome to proposalviewer!")
			fmt.Println("\nNo configuration found.")
			fmt.Println("   Run 'proposalviewer configure' to get started with an interactive setup wizard.")
			fmt.Println("   Or run 'proposalviewer init' to write an example configuration.")
			fmt.Println("\nOr use 'proposalviewer --help' to see all available options.")
			return
		}
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (yaml or json), defaults to $PROPOSALVIEWER_CONFIG or ~/.proposalviewer/config.yaml")
	rootCmd.PersistentFlags().StringVar(&logger.Path, "logging-path", "", "file to output logs of the application")
	rootCmd.PersistentFlags().StringVar(&logger.Level, "logging-level", "", "logging level to output INFO WARN ERROR DEBUG TRACE")
	rootCmd.PersistentFlags().BoolVar(&logger.Stdout, "logging-stdout", false, "output application log in the stdout")
	rootCmd.PersistentFlags().BoolVar(&colorOutput, "color", false, "force colored output on or off (default: detect the terminal)")
	rootCmd.PersistentFlags().BoolVar(&debugHttp, "debug-http", false, "enable HTTP debug logs (prints request bodies and masked headers)")

	// Register completion for --logging-level flag
	_ = rootCmd.RegisterFlagCompletionFunc("logging-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(versionCommand)
	rootCmd.AddCommand(serverCmd)
}

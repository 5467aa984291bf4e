package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sha1ver is set at build time with -ldflags "-X github.com/bascanada/proposalviewer/cmd.sha1ver=..."
var sha1ver = "develop"

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(sha1ver)
	},
}

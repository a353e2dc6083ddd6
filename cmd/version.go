package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ingestor/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ingestor version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ingestor %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

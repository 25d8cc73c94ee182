// Command previewctl renders portfolio previews offline, without a database
// or a running API. Useful for template work and for diffing renders.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"quickfolio-backend/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "previewctl",
	Short:         "Render Quickfolio portfolio previews from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(sampleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Error("previewctl failed", "error", err)
		os.Exit(1)
	}
}

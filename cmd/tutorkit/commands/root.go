// Package commands provides the CLI commands for tutorkit.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "tutorkit",
	Short: "tutorkit - LLM tutoring workspace server",
	Long: `tutorkit runs a file-based tutoring workspace: a language model
drives structured lesson documents per session and streams its responses
and tool activity to clients over SSE.

Run 'tutorkit serve' to start the server.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.SetVersionTemplate(fmt.Sprintf("tutorkit %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

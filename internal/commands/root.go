// Package commands defines the bankstream CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/bankstream/bankstream/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "bankstream",
		Short:   "Streaming bank statement extraction",
		Long:    "bankstream turns bank statement PDFs into a live transaction table,\nstreaming records out of the model as they are extracted.",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

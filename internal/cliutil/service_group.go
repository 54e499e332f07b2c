package cliutil

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewServiceGroupCommand creates a parent command that groups scenarios and
// prints help when run on its own.
func NewServiceGroupCommand(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  fmt.Sprintf("%s.\n\nEach subcommand runs one %s scenario against the configured endpoint.", short, use),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

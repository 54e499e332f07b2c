package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
	"github.com/towardsthecloud/blobctl/internal/service/blob"
	"github.com/towardsthecloud/blobctl/internal/version"
)

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	opts := &cliutil.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "blobctl",
		Short: "Drive blob storage scenarios against S3-compatible services",
		Long:  "blobctl runs container and blob scenarios (paged listing, directory transfers, conditional writes, request hooks and retry policies) against S3 or an S3-compatible endpoint.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := cliutil.ValidOutputFormats[opts.OutputFormat]; !ok {
				return fmt.Errorf("invalid --output %q (valid: %s)", opts.OutputFormat, validOutputFormatList())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.ShowVersion {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), version.Detailed()); err != nil {
					return err
				}
				return nil
			}
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	cliutil.AddPersistentFlags(rootCmd, opts)

	rootCmd.AddCommand(newCompletionCommand())
	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(blob.NewCommand())

	applyCommandHelpDefaults(rootCmd)

	return rootCmd
}

func validOutputFormatList() string {
	formats := make([]string, 0, len(cliutil.ValidOutputFormats))
	for format := range cliutil.ValidOutputFormats {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return strings.Join(formats, ", ")
}

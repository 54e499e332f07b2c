package cliutil

import "github.com/spf13/cobra"

// NewTestRootCommand wraps a service command under a minimal root that has all
// persistent flags, suitable for use in service-package tests.
func NewTestRootCommand(serviceCmd *cobra.Command) *cobra.Command {
	root := &cobra.Command{
		Use:          "blobctl",
		SilenceUsage: true,
	}

	AddPersistentFlags(root, &GlobalOptions{})
	root.AddCommand(serviceCmd)

	return root
}

// AddPersistentFlags registers the global flags on root, bound to opts.
func AddPersistentFlags(root *cobra.Command, opts *GlobalOptions) {
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.Profile, "profile", "p", "", "AWS CLI profile name")
	flags.StringVarP(&opts.Region, "region", "r", "", "AWS region override")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "Preview changes without executing")
	flags.StringVarP(&opts.OutputFormat, "output", "o", "table", "Output format: table, json, text, yaml")
	flags.BoolVar(&opts.NoConfirm, "no-confirm", false, "Skip confirmation prompts")
	flags.BoolVar(&opts.ShowVersion, "version", false, "Print build metadata and exit")
	flags.StringVar(&opts.ConfigPath, "config", "", "Path to a blobctl YAML config file (default $BLOBCTL_CONFIG)")
	flags.StringVar(&opts.Endpoint, "endpoint", "", "S3-compatible endpoint URL, e.g. http://localhost:4566")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
}

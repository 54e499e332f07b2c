package cliutil

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/towardsthecloud/blobctl/internal/config"
	"github.com/towardsthecloud/blobctl/internal/confirm"
	"github.com/towardsthecloud/blobctl/internal/logging"
	"github.com/towardsthecloud/blobctl/internal/output"
)

// GlobalOptions holds the persistent flags shared by all commands.
type GlobalOptions struct {
	Profile      string
	Region       string
	DryRun       bool
	OutputFormat string
	NoConfirm    bool
	ShowVersion  bool
	ConfigPath   string
	Endpoint     string
	LogLevel     string
}

// ValidOutputFormats enumerates the allowed --output values.
var ValidOutputFormats = map[string]struct{}{
	"table": {},
	"json":  {},
	"text":  {},
	"yaml":  {},
}

// CommandRuntime bundles the parsed options, effective configuration,
// formatter, prompter and logger for a single command invocation.
type CommandRuntime struct {
	Options   GlobalOptions
	Config    config.Config
	Formatter output.Formatter
	Prompter  confirm.Prompter
	Logger    zerolog.Logger
}

// NewCommandRuntime extracts global options from the cobra command, loads the
// config file and builds a CommandRuntime. The logger is attached to the
// command context so zerolog.Ctx(cmd.Context()) returns it.
func NewCommandRuntime(cmd *cobra.Command) (CommandRuntime, error) {
	opts, err := GlobalOptionsFromCommand(cmd)
	if err != nil {
		return CommandRuntime{}, err
	}

	formatter, err := output.NewFormatter(opts.OutputFormat)
	if err != nil {
		return CommandRuntime{}, err
	}

	cfg, err := config.Load(config.Path(opts.ConfigPath))
	if err != nil {
		return CommandRuntime{}, err
	}
	applyOverrides(&cfg, opts)

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return CommandRuntime{}, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx))

	return CommandRuntime{
		Options:   opts,
		Config:    cfg,
		Formatter: formatter,
		Prompter:  confirm.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
		Logger:    logger,
	}, nil
}

// applyOverrides lets explicit flags win over config file values.
func applyOverrides(cfg *config.Config, opts GlobalOptions) {
	if opts.Profile != "" {
		cfg.Profile = opts.Profile
	}
	if opts.Region != "" {
		cfg.Region = opts.Region
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
}

// GlobalOptionsFromCommand reads persistent flags from the root command.
func GlobalOptionsFromCommand(cmd *cobra.Command) (GlobalOptions, error) {
	flags := cmd.Root().PersistentFlags()

	var opts GlobalOptions
	stringFlags := []struct {
		name   string
		target *string
	}{
		{name: "profile", target: &opts.Profile},
		{name: "region", target: &opts.Region},
		{name: "output", target: &opts.OutputFormat},
		{name: "config", target: &opts.ConfigPath},
		{name: "endpoint", target: &opts.Endpoint},
		{name: "log-level", target: &opts.LogLevel},
	}
	for _, flag := range stringFlags {
		value, err := flags.GetString(flag.name)
		if err != nil {
			return GlobalOptions{}, fmt.Errorf("read --%s: %w", flag.name, err)
		}
		*flag.target = value
	}

	boolFlags := []struct {
		name   string
		target *bool
	}{
		{name: "dry-run", target: &opts.DryRun},
		{name: "no-confirm", target: &opts.NoConfirm},
		{name: "version", target: &opts.ShowVersion},
	}
	for _, flag := range boolFlags {
		value, err := flags.GetBool(flag.name)
		if err != nil {
			return GlobalOptions{}, fmt.Errorf("read --%s: %w", flag.name, err)
		}
		*flag.target = value
	}

	return opts, nil
}

// WriteDataset formats a tabular dataset to the command's output.
func WriteDataset(cmd *cobra.Command, runtime CommandRuntime, headers []string, rows [][]string) error {
	return runtime.Formatter.Format(cmd.OutOrStdout(), output.Dataset{Headers: headers, Rows: rows})
}

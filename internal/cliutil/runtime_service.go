package cliutil

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"
	"github.com/towardsthecloud/blobctl/internal/config"
)

// NewServiceRuntime creates a CommandRuntime, loads an AWS config from the
// effective settings, and instantiates a typed service client in a single call.
func NewServiceRuntime[T any](
	cmd *cobra.Command,
	loadConfig func(ctx context.Context, cfg config.Config) (awssdk.Config, error),
	newClient func(runtime CommandRuntime, cfg awssdk.Config) (T, error),
) (CommandRuntime, awssdk.Config, T, error) {
	var zeroClient T

	runtime, err := NewCommandRuntime(cmd)
	if err != nil {
		return CommandRuntime{}, awssdk.Config{}, zeroClient, err
	}

	cfg, err := loadConfig(cmd.Context(), runtime.Config)
	if err != nil {
		return CommandRuntime{}, awssdk.Config{}, zeroClient, fmt.Errorf("load AWS config: %w", err)
	}

	client, err := newClient(runtime, cfg)
	if err != nil {
		return CommandRuntime{}, awssdk.Config{}, zeroClient, fmt.Errorf("create client: %w", err)
	}

	return runtime, cfg, client, nil
}

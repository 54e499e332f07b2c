package blob

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/blob"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
	"github.com/towardsthecloud/blobctl/internal/config"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

func newRetryPolicyCommand() *cobra.Command {
	var container string
	var retryCount int
	var retryInterval time.Duration

	cmd := &cobra.Command{
		Use:   "retry-policy",
		Short: "Run container requests under a policy that retries while a container is being deleted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRetryPolicy(cmd, container, retryCount, retryInterval)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&container, "container", "", "Container name (defaults to a generated customretrypolicysample-* name)")
	cmd.Flags().IntVar(&retryCount, "retry-count", 5, "Maximum retries per request")
	cmd.Flags().DurationVar(&retryInterval, "retry-interval", 5*time.Second, "Base delay between retries; each retry adds 2s")

	return cmd
}

func runRetryPolicy(cmd *cobra.Command, container string, retryCount int, retryInterval time.Duration) error {
	if retryCount < 0 {
		return fmt.Errorf("--retry-count must be >= 0")
	}
	if retryInterval < 0 {
		return fmt.Errorf("--retry-interval must be >= 0")
	}
	container = scenarioContainer(container, "customretrypolicysample")

	factory := clientFactory(clientOptions{retry: &config.Retry{
		Mode:     blobaws.RetryModeContainerBeingDeleted,
		Count:    retryCount,
		Interval: retryInterval,
	}})
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, factory)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	created, err := client.CreateContainerIfNotExists(ctx, container)
	if err != nil {
		return fmt.Errorf("create container: %s", blobaws.FormatUserError(err))
	}
	logger.Info().Str("container", container).Bool("created", created).Msg("created the container")
	rows := [][]string{{"create", container, string(blob.LocationPrimary), createdAction(created)}}

	props, err := client.ContainerProperties(ctx, container, pager.SecondaryThenPrimary)
	if err != nil {
		return fmt.Errorf("fetch container properties: %s", blobaws.FormatUserError(err))
	}
	logger.Info().Str("container", container).Str("location", string(props.Location)).Msg("downloaded container properties")
	rows = append(rows, []string{"properties", container, string(props.Location), props.Region})

	if _, err := client.DeleteContainerIfExists(ctx, container); err != nil {
		return fmt.Errorf("delete container: %s", blobaws.FormatUserError(err))
	}
	logger.Info().Str("container", container).Msg("deleted the container")
	rows = append(rows, []string{"delete", container, string(blob.LocationPrimary), cliutil.ActionDeleted})

	return cliutil.WriteDataset(cmd, runtime, []string{"step", "container", "location", "result"}, rows)
}

func createdAction(created bool) string {
	if created {
		return "created"
	}
	return "exists"
}

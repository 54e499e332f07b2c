package blob

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/blob"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
	"github.com/towardsthecloud/blobctl/internal/config"
)

var loadAWSConfig = func(ctx context.Context, settings config.Config) (awssdk.Config, error) {
	var extra []func(*awsconfig.LoadOptions) error
	if settings.Credentials.AccessKeyID != "" {
		extra = append(extra, blobaws.WithStaticCredentials(settings.Credentials.AccessKeyID, settings.Credentials.SecretAccessKey))
	}
	return blobaws.LoadAWSConfigWithContext(ctx, settings.Profile, settings.Region, extra...)
}

var newAPI = func(cfg awssdk.Config, settings blobaws.ClientSettings) blob.API {
	return blobaws.NewS3Client(cfg, settings)
}

var newClient = clientFactory(clientOptions{})

// clientOptions adjusts the client built for a single command.
type clientOptions struct {
	hooks *blobaws.Hooks
	retry *config.Retry
}

func clientFactory(opts clientOptions) func(cliutil.CommandRuntime, awssdk.Config) (*blob.Client, error) {
	return func(runtime cliutil.CommandRuntime, cfg awssdk.Config) (*blob.Client, error) {
		settings := runtime.Config
		retry := settings.Retry
		if opts.retry != nil {
			retry = *opts.retry
		}

		logger := runtime.Logger
		retryer, err := blobaws.NewRetryer(retry.Mode, retry.Count, retry.Interval, &logger)
		if err != nil {
			return nil, err
		}

		primary := blobaws.ClientSettings{
			Endpoint:  settings.Endpoint,
			PathStyle: settings.PathStyle,
			Retryer:   retryer,
			Hooks:     opts.hooks,
		}
		clientOpts := []blob.Option{blob.WithRegion(cfg.Region)}
		if settings.Secondary.Enabled() {
			secondary := primary
			secondary.Region = settings.Secondary.Region
			if settings.Secondary.Endpoint != "" {
				secondary.Endpoint = settings.Secondary.Endpoint
			}
			clientOpts = append(clientOpts, blob.WithSecondary(newAPI(cfg, secondary)))
		}

		return blob.NewClient(newAPI(cfg, primary), clientOpts...), nil
	}
}

// NewCommand returns the blob service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("blob", "Run blob storage scenarios")
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newContinuationCommand())
	cmd.AddCommand(newUploadDirCommand())
	cmd.AddCommand(newDownloadCommand())
	cmd.AddCommand(newAccessConditionCommand())
	cmd.AddCommand(newEventsCommand())
	cmd.AddCommand(newRetryPolicyCommand())
	cmd.AddCommand(newDeleteContainerCommand())
	cmd.AddCommand(newPropertiesCommand())
	return cmd
}

func addContainerFlag(cmd *cobra.Command, container *string) {
	cmd.Flags().StringVar(container, "container", "", "Container (bucket) name")
}

package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// LoadAWSConfig loads SDK configuration using optional profile and region overrides.
func LoadAWSConfig(profile, region string) (awssdk.Config, error) {
	return LoadAWSConfigWithContext(context.Background(), profile, region)
}

// LoadAWSConfigWithContext loads SDK configuration with the provided context.
func LoadAWSConfigWithContext(
	ctx context.Context,
	profile, region string,
	extraOpts ...func(*config.LoadOptions) error,
) (awssdk.Config, error) {
	opts := make([]func(*config.LoadOptions) error, 0, 2+len(extraOpts))
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	opts = append(opts, extraOpts...)

	return config.LoadDefaultConfig(ctx, opts...)
}

// WithStaticCredentials pins an access key pair, for emulators such as
// LocalStack or MinIO that do not read the shared credentials file.
func WithStaticCredentials(accessKeyID, secretAccessKey string) func(*config.LoadOptions) error {
	return config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
	)
}

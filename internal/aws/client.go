package aws

import (
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientSettings controls how S3 clients are built from a loaded config.
type ClientSettings struct {
	// Endpoint targets an S3-compatible service instead of AWS. Setting it
	// switches to path-style addressing.
	Endpoint  string
	PathStyle bool
	Region    string
	Retryer   func() awssdk.Retryer
	Hooks     *Hooks
}

// NewS3Client builds an S3 client from cfg and settings.
func NewS3Client(cfg awssdk.Config, settings ClientSettings, extra ...func(*s3.Options)) *s3.Client {
	return s3.NewFromConfig(cfg, append(settings.S3Options(), extra...)...)
}

// S3Options renders settings as S3 client option functions.
func (s ClientSettings) S3Options() []func(*s3.Options) {
	opts := []func(*s3.Options){
		func(o *s3.Options) {
			if s.Endpoint != "" {
				o.BaseEndpoint = awssdk.String(s.Endpoint)
				o.UsePathStyle = true
			}
			if s.PathStyle {
				o.UsePathStyle = true
			}
			if s.Region != "" {
				o.Region = s.Region
			}
			if s.Retryer != nil {
				o.Retryer = s.Retryer()
			}
		},
	}
	if s.Hooks != nil {
		opts = append(opts, s.Hooks.S3Option())
	}
	return opts
}

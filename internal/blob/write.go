package blob

import (
	"context"
	"fmt"
	"io"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Match holds optional preconditions for a write. IfNoneMatch accepts only "*",
// which writes when the blob does not exist yet; S3 answers any other value
// with 501 NotImplemented. IfMatch takes an ETag.
type Match struct {
	IfMatch     string
	IfNoneMatch string
}

type WriteOptions struct {
	Metadata    map[string]string
	ContentType string
	Match       Match
}

type WriteResult struct {
	Name      string
	ETag      string
	VersionID string
}

// CreateOrOverwrite uploads body as blob name in container. A failed
// precondition surfaces as an error that aws.IsPreconditionFailed reports.
func (c *Client) CreateOrOverwrite(ctx context.Context, container, name string, body io.ReadSeeker, opts WriteOptions) (WriteResult, error) {
	input := &s3.PutObjectInput{
		Bucket: awssdk.String(container),
		Key:    awssdk.String(name),
		Body:   body,
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = opts.Metadata
	}
	if opts.ContentType != "" {
		input.ContentType = awssdk.String(opts.ContentType)
	}
	if opts.Match.IfMatch != "" {
		input.IfMatch = awssdk.String(opts.Match.IfMatch)
	}
	if opts.Match.IfNoneMatch != "" {
		input.IfNoneMatch = awssdk.String(opts.Match.IfNoneMatch)
	}

	out, err := c.primary.PutObject(ctx, input)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write blob %s/%s: %w", container, name, err)
	}

	return WriteResult{
		Name:      name,
		ETag:      awssdk.ToString(out.ETag),
		VersionID: awssdk.ToString(out.VersionId),
	}, nil
}

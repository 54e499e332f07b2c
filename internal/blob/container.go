package blob

import (
	"context"
	"errors"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

const (
	defaultRegion   = "us-east-1"
	deleteBatchSize = 1000
)

// ContainerProperties describes a container as reported by the location that
// answered.
type ContainerProperties struct {
	Name     string
	Region   string
	Location Location
}

// CreateContainerIfNotExists creates container and reports whether it was
// created by this call. A container already owned by the caller is not an
// error.
func (c *Client) CreateContainerIfNotExists(ctx context.Context, container string) (bool, error) {
	input := &s3.CreateBucketInput{Bucket: awssdk.String(container)}
	if c.region != "" && c.region != defaultRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(c.region),
		}
	}

	_, err := c.primary.CreateBucket(ctx, input)
	if err != nil {
		if hasCode(err, "BucketAlreadyOwnedByYou") {
			return false, nil
		}
		return false, fmt.Errorf("create container %s: %w", container, err)
	}

	zerolog.Ctx(ctx).Debug().Str("container", container).Msg("container created")
	return true, nil
}

// DeleteContainerIfExists removes every blob, version and delete marker in
// container, then the container itself. It reports false when the container
// did not exist.
func (c *Client) DeleteContainerIfExists(ctx context.Context, container string) (bool, error) {
	if err := c.emptyContainer(ctx, container); err != nil {
		if hasCode(err, "NoSuchBucket") {
			return false, nil
		}
		return false, err
	}

	if _, err := c.primary.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: awssdk.String(container)}); err != nil {
		if hasCode(err, "NoSuchBucket") {
			return false, nil
		}
		return false, fmt.Errorf("delete container %s: %w", container, err)
	}

	zerolog.Ctx(ctx).Debug().Str("container", container).Msg("container deleted")
	return true, nil
}

// ContainerProperties fetches the container's properties through the
// locations allowed by mode.
func (c *Client) ContainerProperties(ctx context.Context, container string, mode pager.LocationMode) (ContainerProperties, error) {
	var props ContainerProperties

	err := c.route(ctx, mode, func(api API, location Location) error {
		out, err := api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: awssdk.String(container)})
		if err != nil {
			return fmt.Errorf("get properties of container %s: %w", container, err)
		}
		props = ContainerProperties{
			Name:     container,
			Region:   awssdk.ToString(out.BucketRegion),
			Location: location,
		}
		return nil
	})
	if err != nil {
		return ContainerProperties{}, err
	}

	return props, nil
}

func (c *Client) emptyContainer(ctx context.Context, container string) error {
	cursor, err := pager.NewCursor(c.Items(container, ""), pager.Options{MaxResults: deleteBatchSize})
	if err != nil {
		return err
	}

	for cursor.More() {
		items, _, err := cursor.Next(ctx)
		if err != nil {
			return err
		}

		batch := make([]s3types.ObjectIdentifier, 0, len(items))
		for _, item := range items {
			batch = append(batch, s3types.ObjectIdentifier{Key: awssdk.String(item.Name)})
		}
		if err := c.deleteBatch(ctx, container, batch); err != nil {
			return err
		}
	}

	return c.deleteVersions(ctx, container)
}

// deleteVersions pages with two markers (key and version id), which the
// single-token pager does not model.
func (c *Client) deleteVersions(ctx context.Context, container string) error {
	var keyMarker, versionIDMarker *string
	for {
		page, err := c.primary.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{
			Bucket:          awssdk.String(container),
			KeyMarker:       keyMarker,
			VersionIdMarker: versionIDMarker,
		})
		if err != nil {
			if hasCode(err, "NotImplemented") {
				return nil
			}
			return fmt.Errorf("list blob versions in %s: %w", container, err)
		}

		batch := make([]s3types.ObjectIdentifier, 0, len(page.Versions)+len(page.DeleteMarkers))
		for _, version := range page.Versions {
			if version.Key == nil {
				continue
			}
			batch = append(batch, s3types.ObjectIdentifier{Key: version.Key, VersionId: version.VersionId})
		}
		for _, marker := range page.DeleteMarkers {
			if marker.Key == nil {
				continue
			}
			batch = append(batch, s3types.ObjectIdentifier{Key: marker.Key, VersionId: marker.VersionId})
		}
		if err := c.deleteBatch(ctx, container, batch); err != nil {
			return err
		}

		if awssdk.ToString(page.NextKeyMarker) == "" && awssdk.ToString(page.NextVersionIdMarker) == "" {
			return nil
		}
		keyMarker = page.NextKeyMarker
		versionIDMarker = page.NextVersionIdMarker
	}
}

func (c *Client) deleteBatch(ctx context.Context, container string, objects []s3types.ObjectIdentifier) error {
	if len(objects) == 0 {
		return nil
	}

	out, err := c.primary.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: awssdk.String(container),
		Delete: &s3types.Delete{
			Objects: objects,
			Quiet:   awssdk.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("delete blobs from %s: %w", container, err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("delete blobs from %s: %d failed, first %s: %s (%s)",
			container, len(out.Errors), awssdk.ToString(first.Key), awssdk.ToString(first.Message), awssdk.ToString(first.Code))
	}

	return nil
}

func hasCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}

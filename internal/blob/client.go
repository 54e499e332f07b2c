// Package blob implements container and blob operations on top of the S3 API.
// Containers are buckets and blobs are objects.
package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

// API is the subset of the S3 client used by Client.
type API interface {
	CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(context.Context, *s3.DeleteBucketInput, ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	DeleteObjects(context.Context, *s3.DeleteObjectsInput, ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectVersions(context.Context, *s3.ListObjectVersionsInput, ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
	ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ErrNoSecondary is returned when a request must go to a secondary location
// and none is configured.
var ErrNoSecondary = errors.New("no secondary location configured")

// Location names the endpoint that served a request.
type Location string

const (
	LocationPrimary   Location = "primary"
	LocationSecondary Location = "secondary"
)

// Item is one blob in a listing.
type Item struct {
	Name         string
	Size         int64
	LastModified time.Time
	ETag         string
	StorageClass string
	ContentType  string
	Owner        string
	Metadata     map[string]string
}

// Client runs blob operations against a primary and an optional secondary
// location.
type Client struct {
	primary   API
	secondary API
	region    string
}

// Option configures a Client.
type Option func(*Client)

// WithSecondary sets the client used for secondary reads.
func WithSecondary(api API) Option {
	return func(c *Client) {
		c.secondary = api
	}
}

// WithRegion sets the region new containers are created in.
func WithRegion(region string) Option {
	return func(c *Client) {
		c.region = region
	}
}

func NewClient(primary API, opts ...Option) *Client {
	c := &Client{primary: primary}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) HasSecondary() bool {
	return c.secondary != nil
}

func (c *Client) Region() string {
	return c.region
}

func (c *Client) api(location Location) API {
	if location == LocationSecondary {
		return c.secondary
	}
	return c.primary
}

// locations returns the endpoints to try for mode, in order. The *Then*
// modes degrade to the primary alone when no secondary is configured.
func (c *Client) locations(mode pager.LocationMode) ([]Location, error) {
	switch mode {
	case "", pager.PrimaryOnly:
		return []Location{LocationPrimary}, nil
	case pager.SecondaryOnly:
		if !c.HasSecondary() {
			return nil, ErrNoSecondary
		}
		return []Location{LocationSecondary}, nil
	case pager.PrimaryThenSecondary:
		if !c.HasSecondary() {
			return []Location{LocationPrimary}, nil
		}
		return []Location{LocationPrimary, LocationSecondary}, nil
	case pager.SecondaryThenPrimary:
		if !c.HasSecondary() {
			return []Location{LocationPrimary}, nil
		}
		return []Location{LocationSecondary, LocationPrimary}, nil
	default:
		return nil, fmt.Errorf("%w: unknown location mode %q", pager.ErrInvalidArgument, mode)
	}
}

// routeTo runs call against a single location. Continuation tokens are only
// valid on the endpoint that issued them, so follow-up pages never fail over.
func (c *Client) routeTo(location Location, call func(API, Location) error) error {
	switch location {
	case LocationPrimary:
	case LocationSecondary:
		if !c.HasSecondary() {
			return ErrNoSecondary
		}
	default:
		return fmt.Errorf("%w: unknown location %q", pager.ErrInvalidArgument, location)
	}
	return call(c.api(location), location)
}

// route runs call against each location allowed by mode until one succeeds.
// The error of the last attempted location is returned.
func (c *Client) route(ctx context.Context, mode pager.LocationMode, call func(API, Location) error) error {
	order, err := c.locations(mode)
	if err != nil {
		return err
	}

	for i, location := range order {
		err = call(c.api(location), location)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || i == len(order)-1 {
			break
		}
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("location", string(location)).
			Str("next", string(order[i+1])).
			Msg("request failed, trying next location")
	}

	return err
}

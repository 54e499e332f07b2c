package blob

import (
	"context"
	"fmt"
	"math"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

type itemSource struct {
	client    *Client
	container string
	prefix    string
}

// Items returns a page source over the blobs in container whose names start
// with prefix. Each FetchPage issues one ListObjectsV2 call, plus one
// HeadObject per entry when metadata is requested. The location mode only
// picks the endpoint for the first page; later pages stay on the endpoint
// that issued the continuation token.
func (c *Client) Items(container, prefix string) pager.Source[Item] {
	return &itemSource{client: c, container: container, prefix: prefix}
}

func (s *itemSource) FetchPage(ctx context.Context, token pager.Token, opts pager.Options) (pager.Page[Item], error) {
	var page pager.Page[Item]

	fetch := func(api API, location Location) error {
		input := &s3.ListObjectsV2Input{
			Bucket:            awssdk.String(s.container),
			MaxKeys:           awssdk.Int32(int32(min(opts.MaxResults, math.MaxInt32))),
			ContinuationToken: token.Ptr(),
		}
		if strings.TrimSpace(s.prefix) != "" {
			input.Prefix = awssdk.String(s.prefix)
		}
		if opts.Has(pager.IncludeOwner) {
			input.FetchOwner = awssdk.Bool(true)
		}

		out, err := api.ListObjectsV2(ctx, input)
		if err != nil {
			return fmt.Errorf("list blobs in %s: %w", s.container, err)
		}

		entries := make([]Item, 0, len(out.Contents))
		for _, object := range out.Contents {
			item := itemFromObject(object)
			if opts.Has(pager.IncludeMetadata) {
				if err := s.fillMetadata(ctx, api, &item); err != nil {
					return err
				}
			}
			entries = append(entries, item)
		}

		next := pager.TokenFromPtr(out.NextContinuationToken).WithOrigin(string(location))
		page = pager.Page[Item]{Entries: entries, Next: next}
		return nil
	}

	var err error
	if origin := token.Origin(); !token.Absent() && origin != "" {
		err = s.client.routeTo(Location(origin), fetch)
	} else {
		err = s.client.route(ctx, opts.Mode(), fetch)
	}
	if err != nil {
		return pager.Page[Item]{}, err
	}

	return page, nil
}

func (s *itemSource) fillMetadata(ctx context.Context, api API, item *Item) error {
	head, err := api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: awssdk.String(s.container),
		Key:    awssdk.String(item.Name),
	})
	if err != nil {
		return fmt.Errorf("read metadata of %s: %w", item.Name, err)
	}

	item.Metadata = head.Metadata
	item.ContentType = awssdk.ToString(head.ContentType)
	return nil
}

func itemFromObject(object s3types.Object) Item {
	item := Item{
		Name:         awssdk.ToString(object.Key),
		Size:         awssdk.ToInt64(object.Size),
		ETag:         awssdk.ToString(object.ETag),
		StorageClass: string(object.StorageClass),
	}
	if object.LastModified != nil {
		item.LastModified = object.LastModified.UTC()
	}
	if object.Owner != nil {
		item.Owner = awssdk.ToString(object.Owner.DisplayName)
		if item.Owner == "" {
			item.Owner = awssdk.ToString(object.Owner.ID)
		}
	}
	return item
}

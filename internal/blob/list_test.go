package blob

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/towardsthecloud/blobctl/internal/blob/blobtest"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

func TestItemsFetchPageMapsListing(t *testing.T) {
	modified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	var seen *s3.ListObjectsV2Input
	api := &mockClient{
		listObjectsV2Fn: func(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			seen = in
			return &s3.ListObjectsV2Output{
				Contents: []s3types.Object{
					{
						Key:          awssdk.String("logs/a.txt"),
						Size:         awssdk.Int64(42),
						ETag:         awssdk.String(`"etag-a"`),
						LastModified: &modified,
						StorageClass: s3types.ObjectStorageClassStandardIa,
						Owner:        &s3types.Owner{ID: awssdk.String("owner-id")},
					},
				},
				NextContinuationToken: awssdk.String("next-1"),
			}, nil
		},
	}

	source := NewClient(api).Items("samples", "logs/")
	opts := pager.Options{MaxResults: 10, Include: []pager.Include{pager.IncludeOwner}}
	page, err := source.FetchPage(context.Background(), pager.NewToken("prev"), opts)
	require.NoError(t, err)

	assert.Equal(t, "samples", awssdk.ToString(seen.Bucket))
	assert.Equal(t, "logs/", awssdk.ToString(seen.Prefix))
	assert.Equal(t, int32(10), awssdk.ToInt32(seen.MaxKeys))
	assert.Equal(t, "prev", awssdk.ToString(seen.ContinuationToken))
	assert.True(t, awssdk.ToBool(seen.FetchOwner))

	require.Len(t, page.Entries, 1)
	assert.Equal(t, Item{
		Name:         "logs/a.txt",
		Size:         42,
		ETag:         `"etag-a"`,
		LastModified: modified.UTC(),
		StorageClass: "STANDARD_IA",
		Owner:        "owner-id",
	}, page.Entries[0])
	assert.Equal(t, pager.NewToken("next-1").WithOrigin(string(LocationPrimary)), page.Next)
	assert.Equal(t, "primary", page.Next.Origin())
}

func TestItemsFirstPageSendsNoToken(t *testing.T) {
	api := &mockClient{
		listObjectsV2Fn: func(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			assert.Nil(t, in.ContinuationToken)
			assert.Nil(t, in.Prefix)
			assert.Nil(t, in.FetchOwner)
			return &s3.ListObjectsV2Output{}, nil
		},
	}

	page, err := NewClient(api).Items("samples", "").FetchPage(context.Background(), pager.Token{}, pager.Options{MaxResults: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.True(t, page.Next.Absent())
}

func TestItemsIncludeMetadataHeadsEachBlob(t *testing.T) {
	store := blobtest.NewStore("samples")
	store.Put("samples", "a", "1", map[string]string{"hello": "world"})
	store.Put("samples", "b", "2", map[string]string{"hello": "there"})

	items, err := pager.CollectAll(context.Background(), NewClient(store).Items("samples", ""), pager.Options{
		MaxResults: 10,
		Include:    []pager.Include{pager.IncludeMetadata},
	})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, map[string]string{"hello": "world"}, items[0].Metadata)
	assert.Equal(t, map[string]string{"hello": "there"}, items[1].Metadata)
	assert.Equal(t, 2, store.Calls("HeadObject"))
}

func TestItemsMetadataFailureFailsPage(t *testing.T) {
	api := &mockClient{
		listObjectsV2Fn: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{Contents: []s3types.Object{{Key: awssdk.String("a")}}}, nil
		},
		headObjectFn: func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return nil, errors.New("head failed")
		},
	}

	_, err := NewClient(api).Items("samples", "").FetchPage(context.Background(), pager.Token{}, pager.Options{
		MaxResults: 1,
		Include:    []pager.Include{pager.IncludeMetadata},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read metadata of a: head failed")
}

func TestCollectAllOverStoreFollowsEveryPage(t *testing.T) {
	store := blobtest.NewStore("samples")
	for i := range 51 {
		store.Put("samples", fmt.Sprintf("blob-%03d", i), "x", nil)
	}

	items, err := pager.CollectAll(context.Background(), NewClient(store).Items("samples", ""), pager.Options{MaxResults: 10})
	require.NoError(t, err)

	require.Len(t, items, 51)
	assert.Equal(t, 6, store.Calls("ListObjectsV2"))
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("blob-%03d", i), item.Name)
	}
}

func TestCollectAllWrapsListingFailure(t *testing.T) {
	store := blobtest.NewStore()
	_, err := pager.CollectAll(context.Background(), NewClient(store).Items("missing", ""), pager.Options{MaxResults: 10})

	var listingErr *pager.ListingError
	require.ErrorAs(t, err, &listingErr)
	assert.Equal(t, 1, listingErr.Page)
	assert.True(t, hasCode(err, "NoSuchBucket"))
}

func TestLocationRouting(t *testing.T) {
	failing := func(name string, calls *[]string) *mockClient {
		return &mockClient{
			listObjectsV2Fn: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
				*calls = append(*calls, name)
				return nil, fmt.Errorf("%s unavailable", name)
			},
		}
	}
	serving := func(name string, calls *[]string) *mockClient {
		return &mockClient{
			listObjectsV2Fn: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
				*calls = append(*calls, name)
				return &s3.ListObjectsV2Output{Contents: []s3types.Object{{Key: awssdk.String(name)}}}, nil
			},
		}
	}

	tests := []struct {
		name          string
		mode          pager.LocationMode
		primaryFails  bool
		secondaryFail bool
		wantCalls     []string
		wantItem      string
		wantErr       string
	}{
		{name: "primary only", mode: pager.PrimaryOnly, wantCalls: []string{"primary"}, wantItem: "primary"},
		{name: "default is primary", mode: "", wantCalls: []string{"primary"}, wantItem: "primary"},
		{name: "primary only does not fail over", mode: pager.PrimaryOnly, primaryFails: true, wantCalls: []string{"primary"}, wantErr: "primary unavailable"},
		{name: "secondary only", mode: pager.SecondaryOnly, wantCalls: []string{"secondary"}, wantItem: "secondary"},
		{name: "primary then secondary fails over", mode: pager.PrimaryThenSecondary, primaryFails: true, wantCalls: []string{"primary", "secondary"}, wantItem: "secondary"},
		{name: "secondary then primary prefers secondary", mode: pager.SecondaryThenPrimary, wantCalls: []string{"secondary"}, wantItem: "secondary"},
		{name: "secondary then primary fails over", mode: pager.SecondaryThenPrimary, secondaryFail: true, wantCalls: []string{"secondary", "primary"}, wantItem: "primary"},
		{name: "both fail returns last error", mode: pager.PrimaryThenSecondary, primaryFails: true, secondaryFail: true, wantCalls: []string{"primary", "secondary"}, wantErr: "secondary unavailable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls []string
			var primary, secondary API = serving("primary", &calls), serving("secondary", &calls)
			if tc.primaryFails {
				primary = failing("primary", &calls)
			}
			if tc.secondaryFail {
				secondary = failing("secondary", &calls)
			}

			client := NewClient(primary, WithSecondary(secondary))
			page, err := client.Items("samples", "").FetchPage(context.Background(), pager.Token{}, pager.Options{MaxResults: 1, LocationMode: tc.mode})

			assert.Equal(t, tc.wantCalls, calls)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, page.Entries, 1)
			assert.Equal(t, tc.wantItem, page.Entries[0].Name)
		})
	}
}

func TestContinuationStaysOnIssuingLocation(t *testing.T) {
	paged := func(name string, calls *[]string, tokens *[]string, failSecondPage bool) *mockClient {
		return &mockClient{
			listObjectsV2Fn: func(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
				*calls = append(*calls, name)
				*tokens = append(*tokens, awssdk.ToString(in.ContinuationToken))
				if in.ContinuationToken == nil {
					return &s3.ListObjectsV2Output{
						Contents:              []s3types.Object{{Key: awssdk.String(name + "-1")}},
						NextContinuationToken: awssdk.String(name + "-token"),
					}, nil
				}
				if failSecondPage {
					return nil, fmt.Errorf("%s unavailable", name)
				}
				return &s3.ListObjectsV2Output{Contents: []s3types.Object{{Key: awssdk.String(name + "-2")}}}, nil
			},
		}
	}

	tests := []struct {
		name           string
		mode           pager.LocationMode
		failSecondPage bool
		wantCalls      []string
		wantTokens     []string
		wantItems      []string
		wantErr        string
	}{
		{
			name:       "primary then secondary keeps paging the primary",
			mode:       pager.PrimaryThenSecondary,
			wantCalls:  []string{"primary", "primary"},
			wantTokens: []string{"", "primary-token"},
			wantItems:  []string{"primary-1", "primary-2"},
		},
		{
			name:           "failure after the first page does not fail over",
			mode:           pager.PrimaryThenSecondary,
			failSecondPage: true,
			wantCalls:      []string{"primary", "primary"},
			wantTokens:     []string{"", "primary-token"},
			wantErr:        "primary unavailable",
		},
		{
			name:       "secondary then primary keeps paging the secondary",
			mode:       pager.SecondaryThenPrimary,
			wantCalls:  []string{"secondary", "secondary"},
			wantTokens: []string{"", "secondary-token"},
			wantItems:  []string{"secondary-1", "secondary-2"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls, tokens []string
			primary := paged("primary", &calls, &tokens, tc.failSecondPage)
			secondary := paged("secondary", &calls, &tokens, tc.failSecondPage)

			client := NewClient(primary, WithSecondary(secondary))
			items, err := pager.CollectAll(context.Background(), client.Items("samples", ""), pager.Options{MaxResults: 1, LocationMode: tc.mode})

			assert.Equal(t, tc.wantCalls, calls)
			assert.Equal(t, tc.wantTokens, tokens)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				assert.Nil(t, items)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.Name)
			}
			assert.Equal(t, tc.wantItems, names)
		})
	}
}

func TestSecondaryTokenWithoutSecondary(t *testing.T) {
	var calls int
	api := &mockClient{
		listObjectsV2Fn: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			calls++
			return &s3.ListObjectsV2Output{}, nil
		},
	}

	token := pager.NewToken("saved").WithOrigin(string(LocationSecondary))
	_, err := NewClient(api).Items("samples", "").FetchPage(context.Background(), token, pager.Options{MaxResults: 1, LocationMode: pager.PrimaryThenSecondary})
	require.ErrorIs(t, err, ErrNoSecondary)
	assert.Zero(t, calls)
}

func TestLocationRoutingWithoutSecondary(t *testing.T) {
	var calls []string
	api := &mockClient{
		listObjectsV2Fn: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			calls = append(calls, "primary")
			return &s3.ListObjectsV2Output{}, nil
		},
	}
	client := NewClient(api)
	assert.False(t, client.HasSecondary())

	_, err := client.Items("samples", "").FetchPage(context.Background(), pager.Token{}, pager.Options{MaxResults: 1, LocationMode: pager.SecondaryOnly})
	require.ErrorIs(t, err, ErrNoSecondary)
	assert.Empty(t, calls)

	_, err = client.Items("samples", "").FetchPage(context.Background(), pager.Token{}, pager.Options{MaxResults: 1, LocationMode: pager.SecondaryThenPrimary})
	require.NoError(t, err)
	assert.Equal(t, []string{"primary"}, calls)
}

func TestLocationRoutingStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	primary := &mockClient{
		listObjectsV2Fn: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			calls++
			cancel()
			return nil, context.Canceled
		},
	}
	secondary := &mockClient{
		listObjectsV2Fn: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			calls++
			return &s3.ListObjectsV2Output{}, nil
		},
	}

	_, err := NewClient(primary, WithSecondary(secondary)).Items("samples", "").FetchPage(ctx, pager.Token{}, pager.Options{MaxResults: 1, LocationMode: pager.PrimaryThenSecondary})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

package blob

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/blob/blobtest"
)

func TestCreateOrOverwriteConditions(t *testing.T) {
	store := blobtest.NewStore("samples")
	client := NewClient(store)
	ctx := context.Background()

	first, err := client.CreateOrOverwrite(ctx, "samples", "doc.txt", strings.NewReader("v1"), WriteOptions{
		Metadata:    map[string]string{"hello": "world"},
		ContentType: "text/plain",
		Match:       Match{IfNoneMatch: "*"},
	})
	require.NoError(t, err)
	assert.Equal(t, "doc.txt", first.Name)
	assert.NotEmpty(t, first.ETag)
	assert.Equal(t, "text/plain", object(t, store, "samples", "doc.txt").ContentType)

	_, err = client.CreateOrOverwrite(ctx, "samples", "doc.txt", strings.NewReader("v2"), WriteOptions{Match: Match{IfNoneMatch: "*"}})
	require.Error(t, err)
	assert.True(t, blobaws.IsPreconditionFailed(err))
	classified := blobaws.ClassifyError(err)
	assert.Equal(t, http.StatusPreconditionFailed, classified.StatusCode)
	assert.Equal(t, "PreconditionFailed", classified.Code)

	second, err := client.CreateOrOverwrite(ctx, "samples", "doc.txt", strings.NewReader("v2"), WriteOptions{Match: Match{IfMatch: first.ETag}})
	require.NoError(t, err)
	assert.NotEqual(t, first.ETag, second.ETag)

	_, err = client.CreateOrOverwrite(ctx, "samples", "doc.txt", strings.NewReader("v3"), WriteOptions{Match: Match{IfMatch: first.ETag}})
	assert.True(t, blobaws.IsPreconditionFailed(err))

	_, err = client.CreateOrOverwrite(ctx, "samples", "doc.txt", strings.NewReader("v3"), WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "v3", string(object(t, store, "samples", "doc.txt").Data))
}

func TestCreateOrOverwriteRejectsETagIfNoneMatch(t *testing.T) {
	store := blobtest.NewStore("samples")
	client := NewClient(store)
	ctx := context.Background()

	first, err := client.CreateOrOverwrite(ctx, "samples", "doc.txt", strings.NewReader("v1"), WriteOptions{})
	require.NoError(t, err)

	_, err = client.CreateOrOverwrite(ctx, "samples", "doc.txt", strings.NewReader("v2"), WriteOptions{Match: Match{IfNoneMatch: first.ETag}})
	require.Error(t, err)
	assert.False(t, blobaws.IsPreconditionFailed(err))
	classified := blobaws.ClassifyError(err)
	assert.Equal(t, http.StatusNotImplemented, classified.StatusCode)
	assert.Equal(t, "NotImplemented", classified.Code)
	assert.Equal(t, "v1", string(object(t, store, "samples", "doc.txt").Data))
}

func TestCreateOrOverwriteWrapsErrors(t *testing.T) {
	_, err := NewClient(blobtest.NewStore()).CreateOrOverwrite(context.Background(), "missing", "a", strings.NewReader("x"), WriteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write blob missing/a")
	assert.True(t, blobaws.IsKind(err, blobaws.ErrorKindNotFound))
}

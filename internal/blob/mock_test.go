package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"github.com/towardsthecloud/blobctl/internal/blob/blobtest"
)

type mockClient struct {
	createBucketFn       func(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	deleteBucketFn       func(context.Context, *s3.DeleteBucketInput, ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	deleteObjectsFn      func(context.Context, *s3.DeleteObjectsInput, ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	getObjectFn          func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	headBucketFn         func(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	headObjectFn         func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	listObjectVersionsFn func(context.Context, *s3.ListObjectVersionsInput, ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
	listObjectsV2Fn      func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	putObjectFn          func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func (m *mockClient) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	if m.createBucketFn == nil {
		return nil, errors.New("CreateBucket not mocked")
	}
	return m.createBucketFn(ctx, in, optFns...)
}

func (m *mockClient) DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	if m.deleteBucketFn == nil {
		return nil, errors.New("DeleteBucket not mocked")
	}
	return m.deleteBucketFn(ctx, in, optFns...)
}

func (m *mockClient) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if m.deleteObjectsFn == nil {
		return nil, errors.New("DeleteObjects not mocked")
	}
	return m.deleteObjectsFn(ctx, in, optFns...)
}

func (m *mockClient) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getObjectFn == nil {
		return nil, errors.New("GetObject not mocked")
	}
	return m.getObjectFn(ctx, in, optFns...)
}

func (m *mockClient) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if m.headBucketFn == nil {
		return nil, errors.New("HeadBucket not mocked")
	}
	return m.headBucketFn(ctx, in, optFns...)
}

func (m *mockClient) HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if m.headObjectFn == nil {
		return nil, errors.New("HeadObject not mocked")
	}
	return m.headObjectFn(ctx, in, optFns...)
}

func (m *mockClient) ListObjectVersions(ctx context.Context, in *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
	if m.listObjectVersionsFn == nil {
		return nil, errors.New("ListObjectVersions not mocked")
	}
	return m.listObjectVersionsFn(ctx, in, optFns...)
}

func (m *mockClient) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listObjectsV2Fn == nil {
		return nil, errors.New("ListObjectsV2 not mocked")
	}
	return m.listObjectsV2Fn(ctx, in, optFns...)
}

func (m *mockClient) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putObjectFn == nil {
		return nil, errors.New("PutObject not mocked")
	}
	return m.putObjectFn(ctx, in, optFns...)
}

func object(t *testing.T, store *blobtest.Store, bucket, key string) blobtest.Object {
	t.Helper()
	stored, ok := store.Get(bucket, key)
	require.True(t, ok, "missing %s/%s", bucket, key)
	return stored
}

// Package blobtest provides an in-memory bucket store that satisfies the S3
// operations used by the blob package.
package blobtest

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// Modified is the last-modified time reported for every stored object.
var Modified = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Object is a stored blob.
type Object struct {
	Data        []byte
	ETag        string
	ContentType string
	Metadata    map[string]string
}

// Store is an in-memory bucket store. Continuation tokens are the last key of
// the previous page. It is safe for concurrent use.
type Store struct {
	// Region is reported by HeadBucket. Defaults to us-east-1.
	Region string
	// OnCall, when set, is invoked with the operation name before every call.
	// It must not call back into the store.
	OnCall func(ctx context.Context, operation string)

	mu       sync.Mutex
	buckets  map[string]map[string]Object
	failures map[string]error
	calls    map[string]int
}

// NewStore returns a store holding the named empty buckets.
func NewStore(buckets ...string) *Store {
	store := &Store{
		buckets:  make(map[string]map[string]Object),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
	for _, bucket := range buckets {
		store.buckets[bucket] = make(map[string]Object)
	}
	return store
}

// Put stores data under bucket/key, creating the bucket if needed.
func (m *Store) Put(bucket, key, data string, metadata map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string]Object)
	}
	m.buckets[bucket][key] = newObject([]byte(data), "", metadata)
}

// Keys returns the sorted keys of bucket.
func (m *Store) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.buckets[bucket]))
	for key := range m.buckets[bucket] {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the object stored under bucket/key.
func (m *Store) Get(bucket, key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	object, ok := m.buckets[bucket][key]
	return object, ok
}

// HasBucket reports whether bucket exists.
func (m *Store) HasBucket(bucket string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.buckets[bucket]
	return ok
}

// FailOn makes every call to operation return err until cleared with a nil err.
func (m *Store) FailOn(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, operation)
		return
	}
	m.failures[operation] = err
}

// Calls returns how many times operation was invoked.
func (m *Store) Calls(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[operation]
}

// NoSuchBucket returns the error S3 reports for a missing bucket.
func NoSuchBucket(bucket string) error {
	return &s3types.NoSuchBucket{Message: awssdk.String("The specified bucket does not exist: " + bucket)}
}

// StatusError returns an API error carried by an HTTP response with status.
func StatusError(status int, code, message string) error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
			Err:      &smithy.GenericAPIError{Code: code, Message: message},
		},
		RequestID: "req-test",
	}
}

func newObject(data []byte, contentType string, metadata map[string]string) Object {
	return Object{
		Data:        data,
		ETag:        fmt.Sprintf("%q", fmt.Sprintf("%x", md5.Sum(data))),
		ContentType: contentType,
		Metadata:    metadata,
	}
}

// enter records the call and returns the injected failure, if any. The caller
// must hold m.mu.
func (m *Store) enter(ctx context.Context, operation string) error {
	m.calls[operation]++
	if m.OnCall != nil {
		m.OnCall(ctx, operation)
	}
	return m.failures[operation]
}

func (m *Store) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "CreateBucket"); err != nil {
		return nil, err
	}
	name := awssdk.ToString(in.Bucket)
	if _, ok := m.buckets[name]; ok {
		return nil, &s3types.BucketAlreadyOwnedByYou{Message: awssdk.String("already owned")}
	}
	m.buckets[name] = make(map[string]Object)
	return &s3.CreateBucketOutput{}, nil
}

func (m *Store) DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput, _ ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "DeleteBucket"); err != nil {
		return nil, err
	}
	name := awssdk.ToString(in.Bucket)
	objects, ok := m.buckets[name]
	if !ok {
		return nil, NoSuchBucket(name)
	}
	if len(objects) > 0 {
		return nil, StatusError(http.StatusConflict, "BucketNotEmpty", "The bucket you tried to delete is not empty")
	}
	delete(m.buckets, name)
	return &s3.DeleteBucketOutput{}, nil
}

func (m *Store) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "DeleteObjects"); err != nil {
		return nil, err
	}
	name := awssdk.ToString(in.Bucket)
	objects, ok := m.buckets[name]
	if !ok {
		return nil, NoSuchBucket(name)
	}
	for _, id := range in.Delete.Objects {
		delete(objects, awssdk.ToString(id.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (m *Store) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "GetObject"); err != nil {
		return nil, err
	}
	object, err := m.lookup(awssdk.ToString(in.Bucket), awssdk.ToString(in.Key))
	if err != nil {
		return nil, err
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(string(object.Data))),
		ContentLength: awssdk.Int64(int64(len(object.Data))),
		ETag:          awssdk.String(object.ETag),
	}, nil
}

func (m *Store) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "HeadBucket"); err != nil {
		return nil, err
	}
	name := awssdk.ToString(in.Bucket)
	if _, ok := m.buckets[name]; !ok {
		return nil, StatusError(http.StatusNotFound, "NotFound", "Not Found")
	}
	region := m.Region
	if region == "" {
		region = "us-east-1"
	}
	return &s3.HeadBucketOutput{BucketRegion: awssdk.String(region)}, nil
}

func (m *Store) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "HeadObject"); err != nil {
		return nil, err
	}
	object, err := m.lookup(awssdk.ToString(in.Bucket), awssdk.ToString(in.Key))
	if err != nil {
		return nil, err
	}
	return &s3.HeadObjectOutput{
		Metadata:    object.Metadata,
		ContentType: awssdk.String(object.ContentType),
		ETag:        awssdk.String(object.ETag),
	}, nil
}

func (m *Store) ListObjectVersions(ctx context.Context, in *s3.ListObjectVersionsInput, _ ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "ListObjectVersions"); err != nil {
		return nil, err
	}
	if _, ok := m.buckets[awssdk.ToString(in.Bucket)]; !ok {
		return nil, NoSuchBucket(awssdk.ToString(in.Bucket))
	}
	return &s3.ListObjectVersionsOutput{}, nil
}

func (m *Store) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "ListObjectsV2"); err != nil {
		return nil, err
	}

	name := awssdk.ToString(in.Bucket)
	objects, ok := m.buckets[name]
	if !ok {
		return nil, NoSuchBucket(name)
	}

	keys := make([]string, 0, len(objects))
	for key := range objects {
		if strings.HasPrefix(key, awssdk.ToString(in.Prefix)) && key > awssdk.ToString(in.ContinuationToken) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	limit := int(awssdk.ToInt32(in.MaxKeys))
	if limit <= 0 {
		limit = 1000
	}
	out := &s3.ListObjectsV2Output{}
	if len(keys) > limit {
		keys = keys[:limit]
		out.NextContinuationToken = awssdk.String(keys[len(keys)-1])
		out.IsTruncated = awssdk.Bool(true)
	}
	for _, key := range keys {
		object := objects[key]
		out.Contents = append(out.Contents, s3types.Object{
			Key:          awssdk.String(key),
			Size:         awssdk.Int64(int64(len(object.Data))),
			ETag:         awssdk.String(object.ETag),
			LastModified: awssdk.Time(Modified),
			StorageClass: s3types.ObjectStorageClassStandard,
		})
	}
	out.KeyCount = awssdk.Int32(int32(len(out.Contents)))
	return out, nil
}

func (m *Store) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "PutObject"); err != nil {
		return nil, err
	}
	name := awssdk.ToString(in.Bucket)
	objects, ok := m.buckets[name]
	if !ok {
		return nil, NoSuchBucket(name)
	}

	key := awssdk.ToString(in.Key)
	current, exists := objects[key]
	ifNoneMatch := awssdk.ToString(in.IfNoneMatch)
	ifMatch := awssdk.ToString(in.IfMatch)
	switch {
	case ifNoneMatch != "" && ifNoneMatch != "*":
		return nil, StatusError(http.StatusNotImplemented, "NotImplemented", "A header you provided implies functionality that is not implemented")
	case ifNoneMatch == "*" && exists,
		ifMatch != "" && (!exists || ifMatch != current.ETag):
		return nil, StatusError(http.StatusPreconditionFailed, "PreconditionFailed", "At least one of the pre-conditions you specified did not hold")
	}

	object := newObject(data, awssdk.ToString(in.ContentType), in.Metadata)
	objects[key] = object
	return &s3.PutObjectOutput{ETag: awssdk.String(object.ETag)}, nil
}

func (m *Store) lookup(bucket, key string) (Object, error) {
	objects, ok := m.buckets[bucket]
	if !ok {
		return Object{}, NoSuchBucket(bucket)
	}
	object, ok := objects[key]
	if !ok {
		return Object{}, &s3types.NoSuchKey{Message: awssdk.String("The specified key does not exist.")}
	}
	return object, nil
}

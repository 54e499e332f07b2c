//go:build integration

package aws_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/blob"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

func TestLocalStackBlobScenarios(t *testing.T) {
	ctx := context.Background()
	endpoint := strings.TrimSpace(os.Getenv("AWS_ENDPOINT_URL"))
	if endpoint == "" {
		t.Skip("AWS_ENDPOINT_URL not set; skipping LocalStack integration tests")
	}

	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	cfg, err := blobaws.LoadAWSConfigWithContext(
		ctx,
		"",
		"us-east-1",
		blobaws.WithStaticCredentials("test", "test"),
	)
	if err != nil {
		t.Fatalf("LoadAWSConfigWithContext() error = %v", err)
	}

	api := blobaws.NewS3Client(cfg, blobaws.ClientSettings{Endpoint: endpoint, PathStyle: true})
	client := blob.NewClient(api, blob.WithRegion(cfg.Region))
	container := fmt.Sprintf("blobctl-int-%d", time.Now().UnixNano())

	created, err := client.CreateContainerIfNotExists(ctx, container)
	if err != nil {
		t.Fatalf("CreateContainerIfNotExists() error = %v", err)
	}
	if !created {
		t.Fatalf("expected container %s to be created", container)
	}
	t.Cleanup(func() {
		if _, err := client.DeleteContainerIfExists(context.Background(), container); err != nil {
			t.Errorf("DeleteContainerIfExists() error = %v", err)
		}
	})

	t.Run("paged listing returns every blob", func(t *testing.T) {
		for i := range 5 {
			name := fmt.Sprintf("page/blob%d", i)
			if _, err := client.CreateOrOverwrite(ctx, container, name, strings.NewReader("ok"), blob.WriteOptions{
				Metadata: map[string]string{"hello": "world"},
			}); err != nil {
				t.Fatalf("CreateOrOverwrite(%s) error = %v", name, err)
			}
		}

		items, err := pager.CollectAll(ctx, client.Items(container, "page/"), pager.Options{
			MaxResults: 2,
			Include:    []pager.Include{pager.IncludeMetadata},
		})
		if err != nil {
			t.Fatalf("CollectAll() error = %v", err)
		}
		if len(items) != 5 {
			t.Fatalf("expected 5 blobs, got %d", len(items))
		}
		if items[0].Metadata["hello"] != "world" {
			t.Fatalf("expected metadata hello=world, got %v", items[0].Metadata)
		}
	})

	t.Run("conditional overwrite is rejected", func(t *testing.T) {
		if _, err := client.CreateOrOverwrite(ctx, container, "accesscondition.txt", strings.NewReader("hello"), blob.WriteOptions{}); err != nil {
			t.Fatalf("CreateOrOverwrite() error = %v", err)
		}

		_, err = client.CreateOrOverwrite(ctx, container, "accesscondition.txt", strings.NewReader("new hello"), blob.WriteOptions{
			Match: blob.Match{IfNoneMatch: "*"},
		})
		if !blobaws.IsPreconditionFailed(err) {
			t.Fatalf("expected a precondition failure, got %v", err)
		}
	})
}

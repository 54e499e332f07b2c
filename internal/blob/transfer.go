package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"github.com/towardsthecloud/blobctl/internal/localfs"
	"github.com/towardsthecloud/blobctl/internal/pager"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 4
	defaultPageSize    = 1000
)

type TransferOptions struct {
	Concurrency int
	// Metadata is attached to every uploaded blob.
	Metadata map[string]string
	// PageSize bounds each listing page when downloading.
	PageSize int
}

func (o TransferOptions) concurrency() int {
	if o.Concurrency <= 0 {
		return defaultConcurrency
	}
	return o.Concurrency
}

func (o TransferOptions) pageSize() int {
	if o.PageSize <= 0 {
		return defaultPageSize
	}
	return o.PageSize
}

// TransferResult reports one file moved by UploadDirectory or
// DownloadContainer. Err holds a per-item failure.
type TransferResult struct {
	Name        string
	Path        string
	Size        int64
	ContentType string
	ETag        string
	Skipped     bool
	Err         error
}

// UploadDirectory uploads every regular file below root. Blob names are the
// slash separated paths relative to root. Results follow walk order.
func (c *Client) UploadDirectory(ctx context.Context, container string, fsys billy.Filesystem, root string, opts TransferOptions) ([]TransferResult, error) {
	entries, err := localfs.Walk(fsys, root)
	if err != nil {
		return nil, err
	}

	results := make([]TransferResult, len(entries))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.concurrency())

	for i, entry := range entries {
		results[i] = TransferResult{Name: entry.Rel, Path: entry.Path, Size: entry.Size}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i].ContentType, results[i].ETag, results[i].Err = c.uploadFile(groupCtx, container, fsys, entry, opts)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, fmt.Errorf("upload %s: %w", root, err)
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("upload %s: %w", root, err)
	}

	return results, nil
}

func (c *Client) uploadFile(ctx context.Context, container string, fsys billy.Filesystem, entry localfs.Entry, opts TransferOptions) (string, string, error) {
	file, err := fsys.Open(entry.Path)
	if err != nil {
		return "", "", fmt.Errorf("open %s: %w", entry.Path, err)
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", "", fmt.Errorf("detect content type of %s: %w", entry.Path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind %s: %w", entry.Path, err)
	}

	result, err := c.CreateOrOverwrite(ctx, container, entry.Rel, file, WriteOptions{
		Metadata:    opts.Metadata,
		ContentType: detected.String(),
	})
	if err != nil {
		return detected.String(), "", err
	}

	zerolog.Ctx(ctx).Debug().
		Str("blob", entry.Rel).
		Int64("size", entry.Size).
		Str("content_type", detected.String()).
		Msg("uploaded file")
	return detected.String(), result.ETag, nil
}

// DownloadContainer writes every blob under prefix into dest, creating dest
// when missing. The listing follows continuation tokens to the end before
// any download starts. Names that would land outside dest fail per item.
func (c *Client) DownloadContainer(ctx context.Context, container, prefix string, fsys billy.Filesystem, dest string, opts TransferOptions) ([]TransferResult, error) {
	if err := fsys.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dest, err)
	}

	items, err := pager.CollectAll(ctx, c.Items(container, prefix), pager.Options{MaxResults: opts.pageSize()})
	if err != nil {
		return nil, err
	}

	results := make([]TransferResult, len(items))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.concurrency())

	for i, item := range items {
		results[i] = TransferResult{Name: item.Name, Size: item.Size, ETag: item.ETag}
		if strings.HasSuffix(item.Name, "/") {
			results[i].Skipped = true
			continue
		}

		target, err := localfs.Join(dest, item.Name)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Path = target

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i].Size, results[i].Err = c.downloadBlob(groupCtx, container, item.Name, fsys, target)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, fmt.Errorf("download %s: %w", container, err)
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("download %s: %w", container, err)
	}

	return results, nil
}

func (c *Client) downloadBlob(ctx context.Context, container, name string, fsys billy.Filesystem, target string) (int64, error) {
	out, err := c.primary.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(container),
		Key:    awssdk.String(name),
	})
	if err != nil {
		return 0, fmt.Errorf("read blob %s: %w", name, err)
	}
	defer out.Body.Close()

	written, err := localfs.WriteFile(fsys, target, out.Body)
	if err != nil {
		return written, err
	}

	zerolog.Ctx(ctx).Debug().Str("blob", name).Str("path", target).Int64("size", written).Msg("downloaded blob")
	return written, nil
}

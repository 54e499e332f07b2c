package blob

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/blob"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
	"github.com/towardsthecloud/blobctl/internal/localfs"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

// openLocal resolves a local directory flag to a filesystem and root.
var openLocal = localfs.OS

func newUploadDirCommand() *cobra.Command {
	var container, source string
	var concurrency int
	var metadata []string

	cmd := &cobra.Command{
		Use:   "upload-dir",
		Short: "Upload every file below a local directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUploadDir(cmd, container, source, concurrency, metadata)
		},
		SilenceUsage: true,
	}
	addContainerFlag(cmd, &container)
	cmd.Flags().StringVar(&source, "source", "", "Local directory to upload")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel uploads (defaults to transfer.concurrency)")
	cmd.Flags().StringArrayVar(&metadata, "metadata", nil, "Metadata attached to every blob in KEY=VALUE form (repeatable)")

	return cmd
}

func runUploadDir(cmd *cobra.Command, container, source string, concurrency int, rawMetadata []string) error {
	if err := requireContainer(container); err != nil {
		return err
	}
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("--source is required")
	}
	if concurrency < 0 {
		return fmt.Errorf("--concurrency must be >= 0")
	}
	metadata, err := cliutil.ParseMetadata(rawMetadata)
	if err != nil {
		return err
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	fsys, root, err := openLocal(source)
	if err != nil {
		return err
	}

	headers := []string{"name", "path", "size_bytes", "content_type", "etag", "action"}
	if runtime.Options.DryRun {
		return writeUploadPlan(cmd, runtime, headers, fsys, root)
	}

	created, err := client.CreateContainerIfNotExists(ctx, container)
	if err != nil {
		return fmt.Errorf("create container: %s", blobaws.FormatUserError(err))
	}
	zerolog.Ctx(ctx).Info().Str("container", container).Bool("created", created).Msg("container ready")

	results, err := client.UploadDirectory(ctx, container, fsys, root, blob.TransferOptions{
		Concurrency: transferConcurrency(runtime, concurrency),
		Metadata:    metadata,
	})
	if err != nil && results == nil {
		return err
	}

	rows := make([][]string, 0, len(results))
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
		rows = append(rows, []string{
			result.Name,
			result.Path,
			fmt.Sprintf("%d", result.Size),
			result.ContentType,
			result.ETag,
			transferAction(result, "uploaded"),
		})
	}
	zerolog.Ctx(ctx).Info().Int("files", len(results)).Int("failed", failed).Msg("upload finished")

	if writeErr := cliutil.WriteDataset(cmd, runtime, headers, rows); writeErr != nil {
		return writeErr
	}
	return err
}

func writeUploadPlan(cmd *cobra.Command, runtime cliutil.CommandRuntime, headers []string, fsys billy.Filesystem, root string) error {
	entries, err := localfs.Walk(fsys, root)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{entry.Rel, entry.Path, fmt.Sprintf("%d", entry.Size), "", "", "would-upload"})
	}
	return cliutil.WriteDataset(cmd, runtime, headers, rows)
}

func newDownloadCommand() *cobra.Command {
	var container, dest, prefix string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download every blob in a container to a local directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDownload(cmd, container, dest, prefix, concurrency)
		},
		SilenceUsage: true,
	}
	addContainerFlag(cmd, &container)
	cmd.Flags().StringVar(&dest, "dest", "", "Local destination directory (created when missing)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only download blobs whose name starts with this prefix")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel downloads (defaults to transfer.concurrency)")

	return cmd
}

func runDownload(cmd *cobra.Command, container, dest, prefix string, concurrency int) error {
	if err := requireContainer(container); err != nil {
		return err
	}
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("--dest is required")
	}
	if concurrency < 0 {
		return fmt.Errorf("--concurrency must be >= 0")
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	fsys, root, err := openLocal(dest)
	if err != nil {
		return err
	}

	headers := []string{"name", "path", "size_bytes", "action"}
	if runtime.Options.DryRun {
		return writeDownloadPlan(cmd, runtime, headers, client, container, prefix, root)
	}

	results, err := client.DownloadContainer(ctx, container, prefix, fsys, root, blob.TransferOptions{
		Concurrency: transferConcurrency(runtime, concurrency),
		PageSize:    runtime.Config.Listing.PageSize,
	})
	if err != nil && results == nil {
		return fmt.Errorf("download blobs: %s", blobaws.FormatUserError(err))
	}

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			result.Name,
			result.Path,
			fmt.Sprintf("%d", result.Size),
			transferAction(result, "downloaded"),
		})
	}
	zerolog.Ctx(ctx).Info().Str("container", container).Int("blobs", len(results)).Msg("download finished")

	if writeErr := cliutil.WriteDataset(cmd, runtime, headers, rows); writeErr != nil {
		return writeErr
	}
	return err
}

func writeDownloadPlan(cmd *cobra.Command, runtime cliutil.CommandRuntime, headers []string, client *blob.Client, container, prefix, root string) error {
	items, err := pager.CollectAll(cmd.Context(), client.Items(container, prefix), pager.Options{
		MaxResults: runtime.Config.Listing.PageSize,
	})
	if err != nil {
		return fmt.Errorf("list blobs: %s", blobaws.FormatUserError(err))
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		if strings.HasSuffix(item.Name, "/") {
			rows = append(rows, []string{item.Name, "", fmt.Sprintf("%d", item.Size), cliutil.SkippedActionMessage("folder marker")})
			continue
		}
		target, joinErr := localfs.Join(root, item.Name)
		if joinErr != nil {
			rows = append(rows, []string{item.Name, "", fmt.Sprintf("%d", item.Size), cliutil.FailedAction(joinErr)})
			continue
		}
		rows = append(rows, []string{item.Name, target, fmt.Sprintf("%d", item.Size), "would-download"})
	}
	return cliutil.WriteDataset(cmd, runtime, headers, rows)
}

func transferConcurrency(runtime cliutil.CommandRuntime, flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return runtime.Config.Transfer.Concurrency
}

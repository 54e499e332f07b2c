package blob

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/blob"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

const continuationBlobPrefix = "contsample"

func newContinuationCommand() *cobra.Command {
	var container string
	var numBlobs, pageSize int
	var keepContainer bool

	cmd := &cobra.Command{
		Use:   "continuation",
		Short: "Create blobs and page through them with continuation tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runContinuation(cmd, container, numBlobs, pageSize, keepContainer)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&container, "container", "", "Container name (defaults to a generated paginationsample-* name)")
	cmd.Flags().IntVar(&numBlobs, "num-blobs", 51, "Number of blobs to create")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "Maximum blobs per listing page")
	cmd.Flags().BoolVar(&keepContainer, "keep-container", false, "Keep the container after the listing")

	return cmd
}

func runContinuation(cmd *cobra.Command, container string, numBlobs, pageSize int, keepContainer bool) error {
	if numBlobs < 0 {
		return fmt.Errorf("--num-blobs must be >= 0")
	}
	if pageSize <= 0 {
		return fmt.Errorf("--page-size must be > 0")
	}
	container = scenarioContainer(container, "paginationsample")

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	if _, err := client.CreateContainerIfNotExists(ctx, container); err != nil {
		return fmt.Errorf("create container: %s", blobaws.FormatUserError(err))
	}
	logger.Info().Str("container", container).Msg("created the container")

	metadata := map[string]string{"hello": "world"}
	for i := 0; i < numBlobs; i++ {
		name := fmt.Sprintf("%s%d", continuationBlobPrefix, i)
		body := strings.NewReader(fmt.Sprintf("blob%d", i))
		if _, err := client.CreateOrOverwrite(ctx, container, name, body, blob.WriteOptions{Metadata: metadata}); err != nil {
			return fmt.Errorf("create blob %s: %s", name, blobaws.FormatUserError(err))
		}
	}
	logger.Info().Int("blobs", numBlobs).Msg("created blobs")

	cursor, err := pager.NewCursor(client.Items(container, continuationBlobPrefix), pager.Options{
		MaxResults:   pageSize,
		Include:      []pager.Include{pager.IncludeMetadata},
		LocationMode: pager.PrimaryThenSecondary,
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0)
	total := 0
	for cursor.More() {
		entries, next, err := cursor.Next(ctx)
		if err != nil {
			return fmt.Errorf("list blobs: %s", blobaws.FormatUserError(err))
		}
		total += len(entries)
		logger.Info().Int("page", cursor.Pages()).Int("blobs", len(entries)).Msg("received a page of results")

		first, last := "", ""
		if len(entries) > 0 {
			first, last = entries[0].Name, entries[len(entries)-1].Name
		}
		rows = append(rows, []string{
			container,
			fmt.Sprintf("%d", cursor.Pages()),
			fmt.Sprintf("%d", len(entries)),
			first,
			last,
			fmt.Sprintf("%t", !next.Absent()),
		})
	}
	logger.Info().Int("blobs", total).Int("pages", cursor.Pages()).Msg("completed listing")

	if !keepContainer {
		if _, err := client.DeleteContainerIfExists(ctx, container); err != nil {
			return fmt.Errorf("delete container: %s", blobaws.FormatUserError(err))
		}
		logger.Info().Str("container", container).Msg("deleted the container")
	}

	return cliutil.WriteDataset(cmd, runtime, []string{"container", "page", "blobs", "first", "last", "has_more"}, rows)
}

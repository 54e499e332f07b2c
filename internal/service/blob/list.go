package blob

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

func newListCommand() *cobra.Command {
	var container, prefix, locationMode string
	var pageSize int
	var include []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every blob in a container, following continuation tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, container, prefix, pageSize, include, locationMode)
		},
		SilenceUsage: true,
	}
	addContainerFlag(cmd, &container)
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list blobs whose name starts with this prefix")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Maximum blobs per listing page (defaults to listing.page_size)")
	addIncludeFlag(cmd, &include)
	addLocationModeFlag(cmd, &locationMode, "primary-only, secondary-only, primary-then-secondary or secondary-then-primary")

	return cmd
}

func runList(cmd *cobra.Command, container, prefix string, pageSize int, include []string, locationMode string) error {
	if err := requireContainer(container); err != nil {
		return err
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	opts, err := listingOptions(cmd, runtime, pageSize, include, locationMode)
	if err != nil {
		return err
	}

	items, err := pager.CollectAll(cmd.Context(), client.Items(container, prefix), opts)
	if err != nil {
		return fmt.Errorf("list blobs: %s", blobaws.FormatUserError(err))
	}
	zerolog.Ctx(cmd.Context()).Info().Str("container", container).Int("blobs", len(items)).Msg("listing complete")

	headers := []string{"name", "size_bytes", "last_modified", "etag", "storage_class"}
	withMetadata := opts.Has(pager.IncludeMetadata)
	withOwner := opts.Has(pager.IncludeOwner)
	if withMetadata {
		headers = append(headers, "content_type", "metadata")
	}
	if withOwner {
		headers = append(headers, "owner")
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := []string{
			item.Name,
			fmt.Sprintf("%d", item.Size),
			formatTime(item.LastModified),
			item.ETag,
			item.StorageClass,
		}
		if withMetadata {
			row = append(row, item.ContentType, formatMetadata(item.Metadata))
		}
		if withOwner {
			row = append(row, item.Owner)
		}
		rows = append(rows, row)
	}

	return cliutil.WriteDataset(cmd, runtime, headers, rows)
}

package blob

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/blob"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

func newDeleteContainerCommand() *cobra.Command {
	var container string

	cmd := &cobra.Command{
		Use:   "delete-container",
		Short: "Delete a container with all of its blobs, versions and delete markers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeleteContainer(cmd, container)
		},
		SilenceUsage: true,
	}
	addContainerFlag(cmd, &container)

	return cmd
}

func runDeleteContainer(cmd *cobra.Command, container string) error {
	if err := requireContainer(container); err != nil {
		return err
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, 1)
	var footprint *cliutil.Footprint
	props, err := client.ContainerProperties(cmd.Context(), container, pager.PrimaryOnly)
	switch {
	case err == nil:
		footprint, err = containerFootprint(cmd, client, container, runtime.Config.Listing.PageSize)
		if err != nil {
			return fmt.Errorf("list container %s: %s", container, blobaws.FormatUserError(err))
		}
		action := cliutil.ActionWouldDelete
		if !runtime.Options.DryRun {
			action = cliutil.ActionPending
		}
		rows = append(rows, []string{props.Name, props.Region, strconv.Itoa(footprint.Blobs), footprint.Size(), action})
	case blobaws.IsKind(err, blobaws.ErrorKindNotFound):
	default:
		return fmt.Errorf("get container %s: %s", container, blobaws.FormatUserError(err))
	}

	return cliutil.RunDestructiveActionPlan(cmd, runtime, cliutil.DestructiveActionPlan{
		Headers:       []string{"container", "region", "blobs", "size", "action"},
		Rows:          rows,
		ActionColumn:  4,
		ConfirmPrompt: fmt.Sprintf("Delete container %s and every blob in it", container),
		Footprint:     footprint,
		Execute: func(rowIndex int) string {
			deleted, deleteErr := client.DeleteContainerIfExists(cmd.Context(), rows[rowIndex][0])
			if deleteErr != nil {
				return cliutil.FailedActionMessage(blobaws.FormatUserError(deleteErr))
			}
			if !deleted {
				return cliutil.SkippedActionMessage("not found")
			}
			return cliutil.ActionDeleted
		},
	})
}

// containerFootprint totals the current blobs of container on the primary.
// Versions and delete markers are removed too but are not counted.
func containerFootprint(cmd *cobra.Command, client *blob.Client, container string, pageSize int) (*cliutil.Footprint, error) {
	items, err := pager.CollectAll(cmd.Context(), client.Items(container, ""), pager.Options{
		MaxResults:   pageSize,
		LocationMode: pager.PrimaryOnly,
	})
	if err != nil {
		return nil, err
	}

	footprint := &cliutil.Footprint{}
	for _, item := range items {
		footprint.Add(item.Size)
	}
	return footprint, nil
}

func newPropertiesCommand() *cobra.Command {
	var container, locationMode string

	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Fetch container properties through the location routing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProperties(cmd, container, locationMode)
		},
		SilenceUsage: true,
	}
	addContainerFlag(cmd, &container)
	addLocationModeFlag(cmd, &locationMode, "primary-only, secondary-only, primary-then-secondary or secondary-then-primary (defaults to listing.location_mode)")

	return cmd
}

func runProperties(cmd *cobra.Command, container, locationMode string) error {
	if err := requireContainer(container); err != nil {
		return err
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	mode := pager.LocationMode(runtime.Config.Listing.LocationMode)
	if cmd.Flags().Changed("location-mode") {
		mode, err = pager.ParseLocationMode(locationMode)
		if err != nil {
			return err
		}
	}

	props, err := client.ContainerProperties(cmd.Context(), container, mode)
	if err != nil {
		return fmt.Errorf("get container %s: %s", container, blobaws.FormatUserError(err))
	}

	return cliutil.WriteDataset(cmd, runtime, []string{"container", "region", "location"}, [][]string{
		{props.Name, props.Region, string(props.Location)},
	})
}

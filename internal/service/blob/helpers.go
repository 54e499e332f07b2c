package blob

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/towardsthecloud/blobctl/internal/blob"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
	"github.com/towardsthecloud/blobctl/internal/pager"
)

func requireContainer(container string) error {
	if strings.TrimSpace(container) == "" {
		return fmt.Errorf("--container is required")
	}
	return nil
}

// scenarioContainer returns name, or a unique name built from prefix when
// name is blank. Bucket names are global, so fixed sample names collide.
func scenarioContainer(name, prefix string) string {
	if strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// listingOptions starts from the configured listing section and applies the
// flags that were set on cmd.
func listingOptions(cmd *cobra.Command, runtime cliutil.CommandRuntime, pageSize int, include []string, locationMode string) (pager.Options, error) {
	opts, err := runtime.Config.ListingOptions()
	if err != nil {
		return pager.Options{}, err
	}

	if cmd.Flags().Changed("page-size") {
		opts.MaxResults = pageSize
	}
	if cmd.Flags().Changed("include") {
		opts.Include = pager.ParseInclude(include)
	}
	if cmd.Flags().Changed("location-mode") {
		mode, err := pager.ParseLocationMode(locationMode)
		if err != nil {
			return pager.Options{}, err
		}
		opts.LocationMode = mode
	}

	if err := opts.Validate(); err != nil {
		return pager.Options{}, err
	}
	return opts, nil
}

var locationModes = []string{
	string(pager.PrimaryOnly),
	string(pager.SecondaryOnly),
	string(pager.PrimaryThenSecondary),
	string(pager.SecondaryThenPrimary),
}

func addLocationModeFlag(cmd *cobra.Command, target *string, usage string) {
	cmd.Flags().StringVar(target, "location-mode", "", usage)
	_ = cmd.RegisterFlagCompletionFunc("location-mode", cobra.FixedCompletions(locationModes, cobra.ShellCompDirectiveNoFileComp))
}

func addIncludeFlag(cmd *cobra.Command, target *[]string) {
	cmd.Flags().StringSliceVar(target, "include", nil, "Optional fields to populate: metadata, owner")
	_ = cmd.RegisterFlagCompletionFunc("include", cobra.FixedCompletions(
		[]string{string(pager.IncludeMetadata), string(pager.IncludeOwner)},
		cobra.ShellCompDirectiveNoFileComp,
	))
}

func formatMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return ""
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+metadata[key])
	}
	return strings.Join(pairs, ",")
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func transferAction(result blob.TransferResult, done string) string {
	switch {
	case result.Err != nil:
		return cliutil.FailedAction(result.Err)
	case result.Skipped:
		return cliutil.SkippedActionMessage("folder marker")
	default:
		return done
	}
}

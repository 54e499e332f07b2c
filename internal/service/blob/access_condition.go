package blob

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/blob"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
)

func newAccessConditionCommand() *cobra.Command {
	var container, blobName string

	cmd := &cobra.Command{
		Use:   "access-condition",
		Short: "Overwrite a blob with an If-None-Match condition and expect it to be rejected",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAccessCondition(cmd, container, blobName)
		},
		SilenceUsage: true,
	}
	addContainerFlag(cmd, &container)
	cmd.Flags().StringVar(&blobName, "blob", "accesscondition.txt", "Blob name to create and overwrite")

	return cmd
}

func runAccessCondition(cmd *cobra.Command, container, blobName string) error {
	if err := requireContainer(container); err != nil {
		return err
	}
	if strings.TrimSpace(blobName) == "" {
		return fmt.Errorf("--blob is required")
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	if _, err := client.CreateContainerIfNotExists(ctx, container); err != nil {
		return fmt.Errorf("create container: %s", blobaws.FormatUserError(err))
	}

	created, err := client.CreateOrOverwrite(ctx, container, blobName, strings.NewReader("hello"), blob.WriteOptions{ContentType: "text/plain"})
	if err != nil {
		return fmt.Errorf("create blob: %s", blobaws.FormatUserError(err))
	}
	logger.Info().Str("blob", created.Name).Str("etag", created.ETag).Msg("created the blob")

	rows := [][]string{{blobName, "create", "", created.ETag, "created"}}

	// The blob exists, so a create-only write must be refused.
	const overwriteCondition = "if-none-match=*"

	_, err = client.CreateOrOverwrite(ctx, container, blobName, strings.NewReader("new hello"), blob.WriteOptions{
		ContentType: "text/plain",
		Match:       blob.Match{IfNoneMatch: "*"},
	})
	switch {
	case err == nil:
		rows = append(rows, []string{blobName, "overwrite", overwriteCondition, "", cliutil.FailedActionMessage("blob was incorrectly updated")})
		if writeErr := cliutil.WriteDataset(cmd, runtime, accessConditionHeaders, rows); writeErr != nil {
			return writeErr
		}
		return fmt.Errorf("conditional overwrite of %s succeeded, expected a precondition failure", blobName)
	case blobaws.IsPreconditionFailed(err):
		classified := blobaws.ClassifyError(err)
		logger.Info().
			Int("status", classified.StatusCode).
			Str("code", classified.Code).
			Msg("conditional overwrite rejected as expected")
		rows = append(rows, []string{blobName, "overwrite", overwriteCondition, "", string(classified.Kind)})
	default:
		return fmt.Errorf("conditional overwrite: %s", blobaws.FormatUserError(err))
	}

	return cliutil.WriteDataset(cmd, runtime, accessConditionHeaders, rows)
}

var accessConditionHeaders = []string{"blob", "request", "condition", "etag", "result"}

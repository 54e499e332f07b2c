package blob

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	blobaws "github.com/towardsthecloud/blobctl/internal/aws"
	"github.com/towardsthecloud/blobctl/internal/cliutil"
)

// ClientRequestIDHeader is set on every request sent by the events scenario.
const ClientRequestIDHeader = "x-blobctl-client-request-id"

func newEventsCommand() *cobra.Command {
	var container string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Create and delete a container with request and response hooks registered",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvents(cmd, container)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&container, "container", "", "Container name (defaults to a generated sendingrequestevent-* name)")

	return cmd
}

// eventLog records hook invocations as dataset rows.
type eventLog struct {
	mu   sync.Mutex
	rows [][]string
}

func (l *eventLog) add(row ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, row)
}

func (l *eventLog) hooks() *blobaws.Hooks {
	return &blobaws.Hooks{
		OnSendingRequest: func(ctx context.Context, req *blobaws.RequestContext) {
			id := uuid.NewString()
			req.Header.Set(ClientRequestIDHeader, id)
			zerolog.Ctx(ctx).Info().
				Str("operation", req.Operation).
				Str("method", req.Method).
				Str("client_request_id", id).
				Msg("sending request event handler called")
			l.add(req.Operation, "sending-request", "", id)
		},
		OnReceivedResponse: func(ctx context.Context, resp blobaws.ResponseContext) {
			zerolog.Ctx(ctx).Info().
				Str("operation", resp.Operation).
				Int("status", resp.StatusCode).
				Str("request_id", resp.RequestID).
				Msg("received response event handler called")
			l.add(resp.Operation, "received-response", fmt.Sprintf("%d", resp.StatusCode), resp.RequestID)
		},
	}
}

func runEvents(cmd *cobra.Command, container string) error {
	container = scenarioContainer(container, "sendingrequestevent")

	events := &eventLog{}
	factory := clientFactory(clientOptions{hooks: events.hooks()})
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, factory)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	if _, err := client.CreateContainerIfNotExists(ctx, container); err != nil {
		return fmt.Errorf("create container: %s", blobaws.FormatUserError(err))
	}
	logger.Info().Str("container", container).Msg("created the container")

	if _, err := client.DeleteContainerIfExists(ctx, container); err != nil {
		return fmt.Errorf("delete container: %s", blobaws.FormatUserError(err))
	}
	logger.Info().Str("container", container).Msg("deleted the container")

	return cliutil.WriteDataset(cmd, runtime, []string{"operation", "event", "status", "id"}, events.rows)
}

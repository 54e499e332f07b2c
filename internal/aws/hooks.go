package aws

import (
	"context"
	"fmt"
	"net/http"

	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

const (
	sendingRequestHookID   = "blobctl:SendingRequestHook"
	receivedResponseHookID = "blobctl:ReceivedResponseHook"
)

// RequestContext describes an outgoing HTTP request. Header is the live
// header set of the request; changes are sent on the wire.
type RequestContext struct {
	Operation string
	Method    string
	URL       string
	Header    http.Header
}

// ResponseContext describes a received HTTP response. Header is a copy.
type ResponseContext struct {
	Operation  string
	StatusCode int
	Header     http.Header
	RequestID  string
}

// Hooks are invoked once per physical HTTP exchange, so a request retried
// three times fires each hook three times.
type Hooks struct {
	OnSendingRequest   func(ctx context.Context, req *RequestContext)
	OnReceivedResponse func(ctx context.Context, resp ResponseContext)
}

// S3Option registers the hooks on an S3 client.
func (h Hooks) S3Option() func(*s3.Options) {
	return func(o *s3.Options) {
		o.APIOptions = append(o.APIOptions, h.Register)
	}
}

// Register adds the hook middlewares to an operation stack.
func (h Hooks) Register(stack *middleware.Stack) error {
	if h.OnSendingRequest != nil {
		// Finalize runs inside the retry loop. Headers added here are not part
		// of the SigV4 signature, so they must not use the x-amz- prefix.
		mw := middleware.FinalizeMiddlewareFunc(sendingRequestHookID, h.handleFinalize)
		if err := stack.Finalize.Add(mw, middleware.After); err != nil {
			return fmt.Errorf("register sending request hook: %w", err)
		}
	}

	if h.OnReceivedResponse != nil {
		mw := middleware.DeserializeMiddlewareFunc(receivedResponseHookID, h.handleDeserialize)
		if err := stack.Deserialize.Add(mw, middleware.After); err != nil {
			return fmt.Errorf("register received response hook: %w", err)
		}
	}

	return nil
}

func (h Hooks) handleFinalize(
	ctx context.Context,
	in middleware.FinalizeInput,
	next middleware.FinalizeHandler,
) (middleware.FinalizeOutput, middleware.Metadata, error) {
	if req, ok := in.Request.(*smithyhttp.Request); ok {
		h.OnSendingRequest(ctx, &RequestContext{
			Operation: awsmiddleware.GetOperationName(ctx),
			Method:    req.Method,
			URL:       req.URL.String(),
			Header:    req.Header,
		})
	}
	return next.HandleFinalize(ctx, in)
}

func (h Hooks) handleDeserialize(
	ctx context.Context,
	in middleware.DeserializeInput,
	next middleware.DeserializeHandler,
) (middleware.DeserializeOutput, middleware.Metadata, error) {
	out, metadata, err := next.HandleDeserialize(ctx, in)

	if resp, ok := out.RawResponse.(*smithyhttp.Response); ok && resp != nil {
		h.OnReceivedResponse(ctx, ResponseContext{
			Operation:  awsmiddleware.GetOperationName(ctx),
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			RequestID:  resp.Header.Get("X-Amz-Request-Id"),
		})
	}

	return out, metadata, err
}

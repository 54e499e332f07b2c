package aws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/rs/zerolog"
)

// Retry modes accepted by NewRetryer.
const (
	RetryModeDefault               = ""
	RetryModeExponential           = "exponential"
	RetryModeFixed                 = "fixed"
	RetryModeContainerBeingDeleted = "container-being-deleted"
	RetryModeNone                  = "none"
)

const beingDeletedBackoffStep = 2 * time.Second

// RetryDecision is the outcome of a ShouldRetry predicate.
type RetryDecision struct {
	Retryable bool
	Delay     time.Duration
}

// ShouldRetryFunc decides whether a failed attempt is retried. statusCode is
// 0 when no HTTP response was received. retries is the number of retries
// already performed for the request.
type ShouldRetryFunc func(statusCode, retries int) RetryDecision

// RetryPolicy is an aws.Retryer driven by a ShouldRetry predicate.
type RetryPolicy struct {
	RetryCount    int
	RetryInterval time.Duration
	ShouldRetry   ShouldRetryFunc
	Logger        *zerolog.Logger
}

var errNotRetryable = errors.New("retry policy declined the request")

// ContainerBeingDeletedPolicy retries server errors and 409 conflicts, which
// the service returns while a container with the same name is still being
// deleted. Any other status of 300 or above fails immediately.
func ContainerBeingDeletedPolicy(retryCount int, retryInterval time.Duration) *RetryPolicy {
	policy := &RetryPolicy{
		RetryCount:    retryCount,
		RetryInterval: retryInterval,
	}
	policy.ShouldRetry = func(statusCode, retries int) RetryDecision {
		if statusCode >= 300 && statusCode != http.StatusConflict && statusCode != http.StatusInternalServerError {
			return RetryDecision{}
		}
		return RetryDecision{
			Retryable: retries < policy.RetryCount,
			Delay:     policy.RetryInterval + beingDeletedBackoffStep*time.Duration(retries),
		}
	}
	return policy
}

// NewRetryer returns a constructor for the retryer named by mode, or nil for
// the SDK default.
func NewRetryer(mode string, retryCount int, retryInterval time.Duration, logger *zerolog.Logger) (func() awssdk.Retryer, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case RetryModeDefault:
		return nil, nil
	case RetryModeExponential:
		return func() awssdk.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = retryCount + 1
				if retryInterval > 0 {
					o.MaxBackoff = retryInterval
				}
			})
		}, nil
	case RetryModeFixed:
		return func() awssdk.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = retryCount + 1
				o.Backoff = fixedBackoff(retryInterval)
			})
		}, nil
	case RetryModeContainerBeingDeleted:
		return func() awssdk.Retryer {
			policy := ContainerBeingDeletedPolicy(retryCount, retryInterval)
			policy.Logger = logger
			return policy
		}, nil
	case RetryModeNone:
		return func() awssdk.Retryer { return awssdk.NopRetryer{} }, nil
	default:
		return nil, fmt.Errorf("unsupported retry mode %q (valid: exponential, fixed, container-being-deleted, none)", mode)
	}
}

type fixedBackoff time.Duration

func (b fixedBackoff) BackoffDelay(int, error) (time.Duration, error) {
	return time.Duration(b), nil
}

// IsErrorRetryable asks the predicate whether the status is retryable at all;
// the attempt budget is enforced through MaxAttempts and RetryDelay.
func (p *RetryPolicy) IsErrorRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.ShouldRetry == nil {
		return false
	}
	return p.ShouldRetry(HTTPStatusCode(err), 0).Retryable
}

func (p *RetryPolicy) MaxAttempts() int {
	return p.RetryCount + 1
}

// RetryDelay is called with the 1-based number of the attempt that just failed.
func (p *RetryPolicy) RetryDelay(attempt int, err error) (time.Duration, error) {
	status := HTTPStatusCode(err)
	decision := RetryDecision{}
	if p.ShouldRetry != nil {
		decision = p.ShouldRetry(status, attempt-1)
	}

	p.logger().Info().
		Time("at", time.Now().UTC()).
		Int("status", status).
		Int("attempt", attempt).
		Bool("retryable", decision.Retryable).
		Dur("delay", decision.Delay).
		Msg("request attempt failed")

	if !decision.Retryable {
		return 0, fmt.Errorf("%w after attempt %d (HTTP %d)", errNotRetryable, attempt, status)
	}
	return decision.Delay, nil
}

func (p *RetryPolicy) GetRetryToken(context.Context, error) (func(error) error, error) {
	return releaseNoop, nil
}

func (p *RetryPolicy) GetInitialToken() func(error) error {
	return releaseNoop
}

func (p *RetryPolicy) GetAttemptToken(context.Context) (func(error) error, error) {
	return releaseNoop, nil
}

func (p *RetryPolicy) logger() *zerolog.Logger {
	if p.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return p.Logger
}

func releaseNoop(error) error {
	return nil
}

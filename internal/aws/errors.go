package aws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrorKind is a normalized category for storage service failures.
type ErrorKind string

const (
	ErrorKindAccessDenied       ErrorKind = "access_denied"
	ErrorKindNotFound           ErrorKind = "not_found"
	ErrorKindThrottled          ErrorKind = "throttled"
	ErrorKindValidation         ErrorKind = "validation"
	ErrorKindTimeout            ErrorKind = "timeout"
	ErrorKindPreconditionFailed ErrorKind = "precondition_failed"
	ErrorKindConflict           ErrorKind = "conflict"
	ErrorKindUnknown            ErrorKind = "unknown"
)

// ClassifiedError wraps an error with a normalized category, the service
// error code and the HTTP status of the response that carried it.
type ClassifiedError struct {
	Kind       ErrorKind
	Code       string
	StatusCode int
	RequestID  string
	Message    string
	Err        error
}

func (e ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e ClassifiedError) Unwrap() error {
	return e.Err
}

type httpStatusCarrier interface {
	HTTPStatusCode() int
}

type requestIDCarrier interface {
	ServiceRequestID() string
}

// ClassifyError maps context and smithy API errors into normalized categories.
func ClassifyError(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{Kind: ErrorKindUnknown}
	}

	var classified ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassifiedError{
			Kind:    ErrorKindTimeout,
			Code:    "Timeout",
			Message: "request timed out before the storage service returned a response",
			Err:     err,
		}
	}

	status := HTTPStatusCode(err)
	requestID := ""
	var withID requestIDCarrier
	if errors.As(err, &withID) {
		requestID = withID.ServiceRequestID()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		message := apiErr.ErrorMessage()
		kind := classifyByCode(code)
		if kind == ErrorKindUnknown {
			kind = classifyByStatus(status)
		}
		if message == "" {
			message = err.Error()
		}

		return ClassifiedError{
			Kind:       kind,
			Code:       code,
			StatusCode: status,
			RequestID:  requestID,
			Message:    message,
			Err:        err,
		}
	}

	return ClassifiedError{
		Kind:       classifyByStatus(status),
		Code:       "UnknownError",
		StatusCode: status,
		RequestID:  requestID,
		Message:    err.Error(),
		Err:        err,
	}
}

// HTTPStatusCode returns the status of the HTTP response behind err, or 0
// when the failure happened before a response arrived.
func HTTPStatusCode(err error) int {
	var carrier httpStatusCarrier
	if errors.As(err, &carrier) {
		return carrier.HTTPStatusCode()
	}
	return 0
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind ErrorKind) bool {
	if err == nil {
		return false
	}
	return ClassifyError(err).Kind == kind
}

// IsPreconditionFailed reports whether a conditional request was rejected.
func IsPreconditionFailed(err error) bool {
	return IsKind(err, ErrorKindPreconditionFailed)
}

// FormatUserError returns a human-friendly storage error string.
func FormatUserError(err error) string {
	classified := ClassifyError(err)
	switch {
	case classified.Code != "" && classified.StatusCode != 0:
		return fmt.Sprintf("%s (%s, HTTP %d)", classified.Message, classified.Code, classified.StatusCode)
	case classified.Code != "":
		return fmt.Sprintf("%s (%s)", classified.Message, classified.Code)
	default:
		return classified.Message
	}
}

func classifyByCode(code string) ErrorKind {
	lower := strings.ToLower(code)
	switch {
	case strings.Contains(lower, "accessdenied"), strings.Contains(lower, "unauthorized"):
		return ErrorKindAccessDenied
	case strings.Contains(lower, "notfound"), strings.Contains(lower, "nosuch"):
		return ErrorKindNotFound
	case strings.Contains(lower, "throttl"), strings.Contains(lower, "toomanyrequests"), strings.Contains(lower, "slowdown"):
		return ErrorKindThrottled
	case strings.Contains(lower, "preconditionfailed"), strings.Contains(lower, "conditionnotmet"):
		return ErrorKindPreconditionFailed
	case strings.Contains(lower, "conflict"), strings.Contains(lower, "operationaborted"), strings.Contains(lower, "beingdeleted"):
		return ErrorKindConflict
	case strings.Contains(lower, "validation"), strings.Contains(lower, "invalid"):
		return ErrorKindValidation
	default:
		return ErrorKindUnknown
	}
}

func classifyByStatus(status int) ErrorKind {
	switch status {
	case http.StatusForbidden, http.StatusUnauthorized:
		return ErrorKindAccessDenied
	case http.StatusNotFound:
		return ErrorKindNotFound
	case http.StatusPreconditionFailed:
		return ErrorKindPreconditionFailed
	case http.StatusConflict:
		return ErrorKindConflict
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return ErrorKindThrottled
	case http.StatusBadRequest:
		return ErrorKindValidation
	default:
		return ErrorKindUnknown
	}
}

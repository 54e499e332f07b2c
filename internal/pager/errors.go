package pager

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned before any fetch when options are malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCancelled is returned when the context is done before a page fetch.
	ErrCancelled = errors.New("listing cancelled")

	// ErrRepeatedToken is wrapped by ListingError when a source hands out a
	// continuation token it already issued during the same listing.
	ErrRepeatedToken = errors.New("source returned a continuation token twice")

	// ErrExhausted is returned by Cursor.Next after the last page.
	ErrExhausted = errors.New("no more pages")
)

// ListingError wraps a failure surfaced while fetching a page.
type ListingError struct {
	Page int
	Err  error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("list page %d: %v", e.Page, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

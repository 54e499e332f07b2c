package pager

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// Page holds one bounded page of entries and the marker for the next one.
type Page[T any] struct {
	Entries []T
	Next    Token
}

// Source fetches one page of entries starting at token. An absent Next on
// the returned page signals the end of the listing, never an error.
type Source[T any] interface {
	FetchPage(ctx context.Context, token Token, opts Options) (Page[T], error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc[T any] func(ctx context.Context, token Token, opts Options) (Page[T], error)

func (f SourceFunc[T]) FetchPage(ctx context.Context, token Token, opts Options) (Page[T], error) {
	return f(ctx, token, opts)
}

// CollectAll walks every page of src and returns the entries in source order.
// Pages are fetched strictly one after another. On failure the partial
// accumulation is discarded.
func CollectAll[T any](ctx context.Context, src Source[T], opts Options) ([]T, error) {
	cursor, err := NewCursor(src, opts)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0)
	for cursor.More() {
		entries, _, err := cursor.Next(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, entries...)
	}

	return slices.Clip(items), nil
}

// Cursor fetches pages one at a time, exposing the continuation token after
// each page so callers can persist progress and resume later.
type Cursor[T any] struct {
	src   Source[T]
	opts  Options
	token Token
	done  bool
	pages int
	// seen holds the marker of every token issued during this walk. Markers
	// are compared for equality only, never parsed. The origin tag is ignored.
	// A set catches A, B, A cycles that a previous-token check would miss.
	seen map[string]struct{}
}

// NewCursor returns a cursor positioned before the first page.
func NewCursor[T any](src Source[T], opts Options) (*Cursor[T], error) {
	return Resume(src, opts, Token{})
}

// Resume returns a cursor whose next fetch uses a previously saved token.
func Resume[T any](src Source[T], opts Options, token Token) (*Cursor[T], error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidArgument)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c := &Cursor[T]{
		src:   src,
		opts:  opts,
		token: token,
		seen:  make(map[string]struct{}),
	}
	if !token.Absent() {
		c.seen[token.value] = struct{}{}
	}
	return c, nil
}

// More reports whether another page may be requested.
func (c *Cursor[T]) More() bool {
	return !c.done
}

// Pages returns the number of pages fetched successfully so far.
func (c *Cursor[T]) Pages() int {
	return c.pages
}

// Token returns the token the next fetch will send.
func (c *Cursor[T]) Token() Token {
	return c.token
}

// Next fetches the next page and returns its entries together with the token
// for the page after it (absent on the last page). A failed fetch leaves the
// cursor where it was, so Next may be called again.
func (c *Cursor[T]) Next(ctx context.Context) ([]T, Token, error) {
	if c.done {
		return nil, Token{}, ErrExhausted
	}

	page := c.pages + 1
	if err := ctx.Err(); err != nil {
		return nil, Token{}, fmt.Errorf("%w before page %d: %w", ErrCancelled, page, err)
	}

	result, err := c.src.FetchPage(ctx, c.token, c.opts)
	if err != nil {
		return nil, Token{}, &ListingError{Page: page, Err: err}
	}
	c.pages = page

	zerolog.Ctx(ctx).Debug().
		Int("page", page).
		Int("entries", len(result.Entries)).
		Bool("more", !result.Next.Absent()).
		Msg("received page")

	if result.Next.Absent() {
		c.done = true
		c.token = Token{}
		return result.Entries, Token{}, nil
	}

	if _, repeated := c.seen[result.Next.value]; repeated {
		c.done = true
		return nil, Token{}, &ListingError{Page: page, Err: ErrRepeatedToken}
	}
	c.seen[result.Next.value] = struct{}{}
	c.token = result.Next

	return result.Entries, result.Next, nil
}

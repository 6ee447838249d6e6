package aot

import (
	"context"
	"fmt"
)

// PageIterator walks a paginated listing by following next links, starting
// from an already fetched first page.
//
//	it := aot.NewPageIterator(ctx, client, first)
//	for it.Next() {
//		page := it.Page()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
type PageIterator struct {
	ctx      context.Context
	follower PageFollower
	current  *Envelope
	maxPages int
	pages    int
	started  bool
	done     bool
	err      error
}

// PageOption configures a PageIterator.
type PageOption func(*PageIterator)

// WithMaxPages stops the walk after n pages. Reaching the limit while more
// pages exist is reported as ErrMaxPagesReached. n <= 0 means unlimited.
func WithMaxPages(n int) PageOption {
	return func(it *PageIterator) {
		it.maxPages = n
	}
}

// NewPageIterator creates an iterator whose first page is first.
func NewPageIterator(ctx context.Context, follower PageFollower, first *Envelope, opts ...PageOption) *PageIterator {
	it := &PageIterator{
		ctx:      ctx,
		follower: follower,
		current:  first,
	}

	for _, opt := range opts {
		opt(it)
	}

	return it
}

// Next advances to the next page and reports whether one is available.
func (it *PageIterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}

	if !it.started {
		it.started = true
		if it.current == nil {
			it.done = true

			return false
		}

		it.pages = 1

		return true
	}

	if it.current.Next() == "" {
		it.done = true

		return false
	}

	if it.maxPages > 0 && it.pages >= it.maxPages {
		it.err = fmt.Errorf("%w (%d)", ErrMaxPagesReached, it.maxPages)

		return false
	}

	next, err := it.follower.GetNextPage(it.ctx, it.current)
	if err != nil {
		it.err = fmt.Errorf("fetching page %d: %w", it.pages+1, err)

		return false
	}

	if next == nil {
		it.done = true

		return false
	}

	it.current = next
	it.pages++

	return true
}

// Page returns the current page.
func (it *PageIterator) Page() *Envelope {
	return it.current
}

// Pages returns how many pages have been yielded so far.
func (it *PageIterator) Pages() int {
	return it.pages
}

// Err returns the error that stopped the walk, if any.
func (it *PageIterator) Err() error {
	return it.err
}

// Walk calls fn for every page reachable from first.
func Walk(ctx context.Context, follower PageFollower, first *Envelope, fn func(*Envelope) error, opts ...PageOption) error {
	it := NewPageIterator(ctx, follower, first, opts...)
	for it.Next() {
		err := fn(it.Page())
		if err != nil {
			return err
		}
	}

	return it.Err()
}

// CollectAll decodes and concatenates the data arrays of every page reachable
// from first. On error the items gathered so far are returned with it.
func CollectAll[T any](ctx context.Context, follower PageFollower, first *Envelope, opts ...PageOption) ([]T, error) {
	var all []T

	err := Walk(ctx, follower, first, func(page *Envelope) error {
		items, err := DecodeList[T](page)
		if err != nil {
			return err
		}

		all = append(all, items...)

		return nil
	}, opts...)

	return all, err
}

package revmetrics

import (
	"context"
	"iter"
)

// Page is one page of a cursor-paginated listing.
type Page[T any] struct {
	Items []T

	// NextCursor is the cursor for the following page. Ignored when
	// HasMore is false.
	NextCursor string

	// HasMore signals that the provider holds further pages.
	HasMore bool
}

// PageFunc fetches one page of a listing. An empty cursor requests the
// first page; limit bounds the page size.
type PageFunc[T any] func(ctx context.Context, cursor string, limit int64) (Page[T], error)

// Pages flattens a cursor-paginated listing into an item stream,
// fetching pages until the provider signals no further pages. There is
// no cap on the page count: totals must see the entire collection.
// An empty first page yields nothing and no error.
func Pages[T any](ctx context.Context, fetch PageFunc[T], limit int64) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		cursor := ""
		for {
			page, err := fetch(ctx, cursor, limit)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
			if !page.HasMore {
				return
			}
			cursor = page.NextCursor
		}
	}
}

// Collect accumulates a full stream into a slice.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var items []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CollectWhile accumulates items until keep reports false for one of
// them, then stops without consuming the rest of the stream. The early
// stop is only sound because listings are ordered newest-first: once
// one item falls outside a time window, all later items do too.
func CollectWhile[T any](seq iter.Seq2[T, error], keep func(T) bool) ([]T, error) {
	var items []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		if !keep(item) {
			return items, nil
		}
		items = append(items, item)
	}
	return items, nil
}

// Count consumes a full stream and returns the number of items.
func Count[T any](seq iter.Seq2[T, error]) (int, error) {
	n := 0
	for _, err := range seq {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

package fabric

import (
	"context"

	"github.com/fivetwenty-io/fabric/internal/constants"
)

// PaginationClient fetches one page of a listing. List endpoints return a
// continuation token with each page; passing it back retrieves the next one.
type PaginationClient[T any] interface {
	ListWithPath(ctx context.Context, path string, params *QueryParams) (*ListResponse[T], error)
}

// PaginationOptions tunes eager and streaming page aggregation.
type PaginationOptions struct {
	// PageSize is the maxResults requested per page. Zero lets the server
	// choose.
	PageSize int

	// MaxPages caps how many pages are fetched. Zero applies a generous
	// default so a server that keeps returning tokens cannot loop forever.
	MaxPages int

	// MaxItems truncates the aggregated result. Zero means unlimited.
	MaxItems int
}

// PaginationIterator walks a listing one item at a time, fetching pages
// lazily as the caller advances. Iteration is single-use: once the listing is
// exhausted the iterator stays empty rather than restarting. A failed page
// fetch does not poison the sequence: the cursor only advances on success,
// so the caller may retry Next after a transient error and resume from the
// same page.
type PaginationIterator[T any] struct {
	ctx     context.Context
	client  PaginationClient[T]
	path    string
	params  *QueryParams
	buffer  []T
	index   int
	token   string
	started bool
	done    bool
	pending error
}

// NewPaginationIterator creates an iterator over the listing at path. No
// request is issued until the iterator is first advanced.
func NewPaginationIterator[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams) *PaginationIterator[T] {
	return &PaginationIterator[T]{
		ctx:    ctx,
		client: client,
		path:   path,
		params: params.Clone(),
	}
}

// fetch retrieves the next page. The continuation token only advances on
// success, so a failed fetch can be retried by calling Next again.
func (it *PaginationIterator[T]) fetch() error {
	params := it.params.Clone()
	params.WithContinuationToken(it.token)

	page, err := it.client.ListWithPath(it.ctx, it.path, params)
	if err != nil {
		return err
	}

	it.started = true
	it.buffer = page.Value
	it.index = 0
	it.token = page.ContinuationToken
	it.done = page.ContinuationToken == ""

	return nil
}

// ensure advances to the next non-empty page if the buffer is drained.
func (it *PaginationIterator[T]) ensure() (bool, error) {
	for it.index >= len(it.buffer) {
		if it.started && it.done {
			return false, nil
		}

		err := it.fetch()
		if err != nil {
			return false, err
		}
	}

	return true, nil
}

// HasNext reports whether another item is available. A fetch failure also
// reports true; the subsequent Next call returns the error.
func (it *PaginationIterator[T]) HasNext() bool {
	if it.pending != nil {
		return true
	}

	more, err := it.ensure()
	if err != nil {
		it.pending = err

		return true
	}

	return more
}

// Next returns the next item. It returns ErrNoMoreItems once the listing is
// exhausted; fetch failures are returned unchanged and do not consume the
// listing.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	if it.pending != nil {
		err := it.pending
		it.pending = nil

		return zero, err
	}

	more, err := it.ensure()
	if err != nil {
		return zero, err
	}

	if !more {
		return zero, ErrNoMoreItems
	}

	item := it.buffer[it.index]
	it.index++

	return item, nil
}

// All drains the remaining items into a slice.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ForEach applies fn to each remaining item. A non-nil error from fn stops
// the iteration and is returned.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// FetchAllPages eagerly aggregates a listing into one slice, following
// continuation tokens until the server stops returning them or a limit from
// options applies.
func FetchAllPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) ([]T, error) {
	maxPages := constants.MaxPages
	maxItems := 0
	pageParams := params.Clone()

	if options != nil {
		if options.MaxPages > 0 {
			maxPages = options.MaxPages
		}

		if options.PageSize > 0 {
			pageParams.WithMaxResults(options.PageSize)
		}

		maxItems = options.MaxItems
	}

	var items []T

	token := ""

	for page := 0; page < maxPages; page++ {
		pageParams.WithContinuationToken(token)

		resp, err := client.ListWithPath(ctx, path, pageParams)
		if err != nil {
			return nil, err
		}

		items = append(items, resp.Value...)
		if maxItems > 0 && len(items) >= maxItems {
			return items[:maxItems], nil
		}

		token = resp.ContinuationToken
		if token == "" {
			break
		}
	}

	return items, nil
}

// PageResult carries one streamed page or the error that ended the stream.
type PageResult[T any] struct {
	Items []T
	Err   error
}

// StreamPages fetches pages in the background and delivers them on the
// returned channel. The channel is closed after the final page, after an
// error, or when ctx is canceled; an error ends the stream after being
// delivered.
func StreamPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) <-chan PageResult[T] {
	results := make(chan PageResult[T], constants.StreamBufferSize)

	maxPages := constants.MaxPages
	pageParams := params.Clone()

	if options != nil {
		if options.MaxPages > 0 {
			maxPages = options.MaxPages
		}

		if options.PageSize > 0 {
			pageParams.WithMaxResults(options.PageSize)
		}
	}

	go func() {
		defer close(results)

		token := ""

		for page := 0; page < maxPages; page++ {
			pageParams.WithContinuationToken(token)

			resp, err := client.ListWithPath(ctx, path, pageParams)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			select {
			case results <- PageResult[T]{Items: resp.Value}:
			case <-ctx.Done():
				return
			}

			token = resp.ContinuationToken
			if token == "" {
				return
			}
		}
	}()

	return results
}

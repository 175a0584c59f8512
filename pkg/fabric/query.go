package fabric

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams represents query parameters accepted by list endpoints.
type QueryParams struct {
	// ContinuationToken resumes a listing from a previous page.
	ContinuationToken string

	// MaxResults caps the number of items per page. Zero lets the
	// server choose.
	MaxResults int

	// Type filters item listings by item type.
	Type string

	// Recursive includes nested folders where a listing supports it.
	Recursive *bool

	// Filters holds additional endpoint-specific parameters; values
	// for one key are comma-joined.
	Filters map[string][]string
}

// NewQueryParams creates an empty set of query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// WithContinuationToken sets the continuation token.
func (q *QueryParams) WithContinuationToken(token string) *QueryParams {
	q.ContinuationToken = token

	return q
}

// WithMaxResults sets the page size.
func (q *QueryParams) WithMaxResults(n int) *QueryParams {
	q.MaxResults = n

	return q
}

// WithType sets the item type filter.
func (q *QueryParams) WithType(itemType string) *QueryParams {
	q.Type = itemType

	return q
}

// WithRecursive sets the recursive flag.
func (q *QueryParams) WithRecursive(recursive bool) *QueryParams {
	q.Recursive = &recursive

	return q
}

// WithFilter appends values to an endpoint-specific parameter.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// Clone returns a deep copy, so page fetches can vary the continuation
// token without mutating the caller's parameters.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := *q
	clone.Filters = make(map[string][]string, len(q.Filters))

	for key, values := range q.Filters {
		clone.Filters[key] = append([]string(nil), values...)
	}

	if q.Recursive != nil {
		recursive := *q.Recursive
		clone.Recursive = &recursive
	}

	return &clone
}

// ToValues converts the parameters to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.ContinuationToken != "" {
		values.Set("continuationToken", q.ContinuationToken)
	}

	if q.MaxResults > 0 {
		values.Set("maxResults", strconv.Itoa(q.MaxResults))
	}

	if q.Type != "" {
		values.Set("type", q.Type)
	}

	if q.Recursive != nil {
		values.Set("recursive", strconv.FormatBool(*q.Recursive))
	}

	for key, vals := range q.Filters {
		if len(vals) > 0 {
			values.Set(key, strings.Join(vals, ","))
		}
	}

	return values
}

package search

import (
	"github.com/inkfold/inkfold/internal/searchapi"
)

// Accumulator owns the ordered hit sequence for the current committed query
// together with its pagination state. It is not internally synchronized;
// the controller serializes all access under its own lock.
type Accumulator struct {
	query       string
	hits        []searchapi.Hit
	currentPage int
	hasMore     bool
	isFetching  bool
}

// Reset discards all accumulated state and binds to a new committed query.
func (a *Accumulator) Reset(query string) {
	a.query = query
	a.hits = nil
	a.currentPage = 0
	a.hasMore = true
	a.isFetching = false
}

// BeginFetch marks a page request as in flight. At most one request may be
// in flight per committed query.
func (a *Accumulator) BeginFetch() {
	a.isFetching = true
}

// Append reconciles one fetched page. A response whose originating query no
// longer matches the bound query is discarded silently; this comparison, not
// transport-level cancellation, is what keeps stale responses out of the
// visible list. It reports whether the page was applied.
func (a *Accumulator) Append(hits []searchapi.Hit, requestedQuery string, requestedPage, reportedTotalPages int) bool {
	if requestedQuery != a.query {
		return false
	}
	if requestedPage == 1 {
		a.hits = append([]searchapi.Hit(nil), hits...)
	} else {
		a.hits = append(a.hits, hits...)
	}
	a.hasMore = len(hits) > 0 && requestedPage < reportedTotalPages
	a.currentPage = requestedPage
	a.isFetching = false
	return true
}

// Fail halts pagination for the bound query after a failed fetch. It reports
// whether the failure belonged to the bound query.
func (a *Accumulator) Fail(requestedQuery string) bool {
	if requestedQuery != a.query {
		return false
	}
	a.isFetching = false
	a.hasMore = false
	return true
}

func (a *Accumulator) Hits() []searchapi.Hit { return a.hits }

func (a *Accumulator) CurrentPage() int { return a.currentPage }

func (a *Accumulator) HasMore() bool { return a.hasMore }

func (a *Accumulator) IsFetching() bool { return a.isFetching }

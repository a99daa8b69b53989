package search

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkfold/inkfold/internal/searchapi"
)

type fetchCall struct {
	query string
	page  int
}

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []fetchCall
	respond func(query string, page int) (*searchapi.Page, error)
}

func (f *fakeFetcher) FetchPage(ctx context.Context, query string, page int) (*searchapi.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{query: query, page: page})
	fn := f.respond
	f.mu.Unlock()
	return fn(query, page)
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// rustResponder serves the canonical three page result set: 24 hits split
// 10, 10 and 4.
func rustResponder(query string, page int) (*searchapi.Page, error) {
	sizes := map[int]int{1: 10, 2: 10, 3: 4}
	n, ok := sizes[page]
	if !ok {
		return nil, fmt.Errorf("unexpected page %d", page)
	}
	return &searchapi.Page{
		TotalHits:   24,
		TotalPages:  3,
		CurrentPage: page,
		Results:     makeHits(fmt.Sprintf("%s-p%d", query, page), n),
	}, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestController(t *testing.T, fetcher searchapi.Fetcher, rawURL string) (*Controller, *URLLocation) {
	t.Helper()
	loc := NewURLLocation(mustParse(t, rawURL))
	c := NewController(fetcher, loc,
		WithDebounceInterval(10*time.Millisecond),
		WithLogger(quietLogger()),
	)
	t.Cleanup(c.Close)
	return c, loc
}

func waitFor(t *testing.T, c *Controller, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := c.Snapshot()
		if cond(snap) {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s; last snapshot: %+v", what, c.Snapshot())
	return Snapshot{}
}

func TestController_TypeThroughToExhaustion(t *testing.T) {
	fetcher := &fakeFetcher{respond: rustResponder}
	c, loc := newTestController(t, fetcher, "https://inkfold.dev/")

	// Intermediate keystrokes are absorbed by the debounce window
	c.OnQueryChange("r")
	c.OnQueryChange("ru")
	c.OnQueryChange("rus")
	c.OnQueryChange("rust")

	snap := waitFor(t, c, "page 1", func(s Snapshot) bool {
		return s.State == StateReady && len(s.Results) == 10
	})
	assert.Equal(t, "rust", snap.Query)
	assert.True(t, snap.HasMore)
	assert.Equal(t, "rust", loc.Read())
	assert.Equal(t, 1, fetcher.callCount())

	c.LoadMore()
	waitFor(t, c, "page 2", func(s Snapshot) bool {
		return s.State == StateReady && len(s.Results) == 20
	})

	c.LoadMore()
	snap = waitFor(t, c, "page 3", func(s Snapshot) bool {
		return s.State == StateExhausted && len(s.Results) == 24
	})
	assert.False(t, snap.HasMore)
	assert.NoError(t, snap.Err)

	// Order follows fetch order
	assert.Equal(t, "rust-p1-0", snap.Results[0].ID)
	assert.Equal(t, "rust-p3-3", snap.Results[23].ID)

	// Further triggers are no-ops once exhausted
	c.LoadMore()
	c.LoadMore()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 3, fetcher.callCount())
}

func TestController_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fakeFetcher{}
	fetcher.respond = func(query string, page int) (*searchapi.Page, error) {
		if query == "slow" {
			<-release
			return &searchapi.Page{
				TotalHits:   1,
				TotalPages:  1,
				CurrentPage: 1,
				Results:     makeHits("slow", 1),
			}, nil
		}
		return &searchapi.Page{
			TotalHits:   2,
			TotalPages:  1,
			CurrentPage: 1,
			Results:     makeHits("fast", 2),
		}, nil
	}

	c, _ := newTestController(t, fetcher, "https://inkfold.dev/")

	c.OnQueryChange("slow")
	waitFor(t, c, "slow fetch to start", func(s Snapshot) bool {
		return fetcher.callCount() == 1
	})

	c.OnQueryChange("fast")
	snap := waitFor(t, c, "fast results", func(s Snapshot) bool {
		return s.Query == "fast" && s.State == StateExhausted && len(s.Results) == 2
	})
	assert.Equal(t, "fast-0", snap.Results[0].ID)

	// The slow response lands after the query changed and must be dropped
	close(release)
	time.Sleep(50 * time.Millisecond)

	snap = c.Snapshot()
	assert.Equal(t, "fast", snap.Query)
	require.Len(t, snap.Results, 2)
	assert.Equal(t, "fast-0", snap.Results[0].ID)
}

func TestController_FetchErrorSurfacesAndExhausts(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(query string, page int) (*searchapi.Page, error) {
		return nil, &searchapi.ServerError{StatusCode: 502}
	}}
	c, _ := newTestController(t, fetcher, "https://inkfold.dev/")

	c.OnQueryChange("rust")
	snap := waitFor(t, c, "failure", func(s Snapshot) bool {
		return s.State == StateExhausted
	})

	assert.Error(t, snap.Err)
	assert.False(t, snap.HasMore)
	assert.Empty(t, snap.Results)

	// Failure halts pagination entirely
	c.LoadMore()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestController_FailureOnLaterPageKeepsEarlierHits(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.respond = func(query string, page int) (*searchapi.Page, error) {
		if page > 1 {
			return nil, &searchapi.NetworkError{Err: fmt.Errorf("connection reset")}
		}
		return rustResponder(query, page)
	}

	c, _ := newTestController(t, fetcher, "https://inkfold.dev/")

	c.OnQueryChange("rust")
	waitFor(t, c, "page 1", func(s Snapshot) bool {
		return s.State == StateReady && len(s.Results) == 10
	})

	c.LoadMore()
	snap := waitFor(t, c, "page 2 failure", func(s Snapshot) bool {
		return s.State == StateExhausted
	})

	assert.Error(t, snap.Err)
	assert.Len(t, snap.Results, 10)
	assert.False(t, snap.HasMore)
}

func TestController_EmptyCommitGoesIdle(t *testing.T) {
	fetcher := &fakeFetcher{respond: rustResponder}
	c, loc := newTestController(t, fetcher, "https://inkfold.dev/")

	c.OnQueryChange("rust")
	waitFor(t, c, "results", func(s Snapshot) bool {
		return s.State == StateReady
	})

	c.OnQueryChange("")
	snap := waitFor(t, c, "idle", func(s Snapshot) bool {
		return s.State == StateIdle
	})

	assert.Empty(t, snap.Results)
	assert.Equal(t, "", loc.Read())
	// Clearing the input never issues a fetch
	assert.Equal(t, 1, fetcher.callCount())
}

func TestController_StartCommitsLocationQuery(t *testing.T) {
	fetcher := &fakeFetcher{respond: rustResponder}
	c, _ := newTestController(t, fetcher, "https://inkfold.dev/?query=rust")

	c.Start()

	snap := waitFor(t, c, "restored search", func(s Snapshot) bool {
		return s.State == StateReady && len(s.Results) == 10
	})
	assert.Equal(t, "rust", snap.Query)
}

func TestController_StartWithoutQueryStaysIdle(t *testing.T) {
	fetcher := &fakeFetcher{respond: rustResponder}
	c, _ := newTestController(t, fetcher, "https://inkfold.dev/")

	c.Start()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestController_RefreshFollowsExternalLocationChange(t *testing.T) {
	fetcher := &fakeFetcher{respond: rustResponder}
	c, loc := newTestController(t, fetcher, "https://inkfold.dev/")

	c.OnQueryChange("rust")
	waitFor(t, c, "first query", func(s Snapshot) bool {
		return s.State == StateReady
	})

	// Simulates a link click that rewrites the address outside the controller
	loc.Write("go")
	c.Refresh()

	snap := waitFor(t, c, "refreshed query", func(s Snapshot) bool {
		return s.Query == "go" && s.State == StateReady
	})
	assert.Equal(t, 10, len(snap.Results))
}

func TestController_RecommittingSameQueryRefetches(t *testing.T) {
	fetcher := &fakeFetcher{respond: rustResponder}
	c, _ := newTestController(t, fetcher, "https://inkfold.dev/")

	c.OnQueryChange("rust")
	waitFor(t, c, "first fetch", func(s Snapshot) bool {
		return s.State == StateReady
	})

	c.OnQueryChange("rust")
	waitFor(t, c, "refetch", func(s Snapshot) bool {
		return fetcher.callCount() == 2 && s.State == StateReady
	})
	assert.Len(t, c.Snapshot().Results, 10)
}

func TestController_SingleInFlightPageFetch(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fakeFetcher{}
	fetcher.respond = func(query string, page int) (*searchapi.Page, error) {
		if page == 2 {
			<-release
		}
		return rustResponder(query, page)
	}

	c, _ := newTestController(t, fetcher, "https://inkfold.dev/")

	c.OnQueryChange("rust")
	waitFor(t, c, "page 1", func(s Snapshot) bool {
		return s.State == StateReady
	})

	c.LoadMore()
	waitFor(t, c, "page 2 in flight", func(s Snapshot) bool {
		return s.IsLoadingMore
	})

	// Repeated sentinel triggers while a page is in flight are dropped
	c.LoadMore()
	c.LoadMore()
	c.LoadMore()

	close(release)
	waitFor(t, c, "page 2 applied", func(s Snapshot) bool {
		return len(s.Results) == 20
	})
	assert.Equal(t, 2, fetcher.callCount())
}

func TestController_ToggleOpen(t *testing.T) {
	fetcher := &fakeFetcher{respond: rustResponder}
	c, _ := newTestController(t, fetcher, "https://inkfold.dev/")

	assert.False(t, c.Snapshot().IsOpen)
	c.ToggleOpen()
	assert.True(t, c.Snapshot().IsOpen)
	c.ToggleOpen()
	assert.False(t, c.Snapshot().IsOpen)
}

func TestController_NotifyFiresOnTransitions(t *testing.T) {
	fetcher := &fakeFetcher{respond: rustResponder}
	loc := NewURLLocation(mustParse(t, "https://inkfold.dev/"))

	var mu sync.Mutex
	notified := 0
	c := NewController(fetcher, loc,
		WithDebounceInterval(10*time.Millisecond),
		WithLogger(quietLogger()),
		WithNotify(func() {
			mu.Lock()
			notified++
			mu.Unlock()
		}),
	)
	defer c.Close()

	c.OnQueryChange("rust")
	waitFor(t, c, "results", func(s Snapshot) bool {
		return s.State == StateReady
	})

	mu.Lock()
	defer mu.Unlock()
	// At least the commit and the applied page notify the view
	assert.GreaterOrEqual(t, notified, 2)
}

package search

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inkfold/inkfold/internal/searchapi"
	"github.com/inkfold/inkfold/pkg/utils"
)

// State of the controller for the current committed query.
type State int

const (
	// StateIdle means no committed query is active.
	StateIdle State = iota
	// StateLoading means page 1 for a freshly committed query is in flight.
	StateLoading
	// StateReady means page 1 resolved and more pages may exist.
	StateReady
	// StateLoadingMore means a follow-up page is in flight.
	StateLoadingMore
	// StateExhausted means no further page will be fetched for this query,
	// either because the server reported the last page or a fetch failed.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLoadingMore:
		return "loading_more"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	Query         string
	State         State
	Results       []searchapi.Hit
	IsOpen        bool
	IsLoadingMore bool
	HasMore       bool
	Err           error
}

// Option customises a Controller during construction.
type Option func(*Controller)

// WithDebounceInterval overrides the keystroke quiet window.
func WithDebounceInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounceInterval = d
		}
	}
}

// WithLogger overrides the process-wide default logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotify registers a callback invoked after every observable state
// change, from whichever goroutine produced it. The view layer typically
// uses it to schedule a re-render.
func WithNotify(fn func()) Option {
	return func(c *Controller) {
		c.notify = fn
	}
}

// Controller wires the debouncer, location, accumulator and fetcher into the
// incremental search state machine. A committed query change invalidates
// every fetch issued under the previous query: outcomes are reconciled by
// comparing the originating query against the committed one, never by
// relying on the transport being cancellable.
type Controller struct {
	mu        sync.Mutex
	fetcher   searchapi.Fetcher
	location  Location
	debouncer *Debouncer
	sentinel  Sentinel
	acc       Accumulator

	committed string
	state     State
	open      bool
	lastErr   error

	notify           func()
	logger           *logrus.Logger
	debounceInterval time.Duration

	ctx      context.Context
	cancelFn context.CancelFunc
}

func NewController(fetcher searchapi.Fetcher, location Location, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		fetcher:          fetcher,
		location:         location,
		state:            StateIdle,
		logger:           utils.GetLogger(),
		debounceInterval: DefaultDebounceInterval,
		ctx:              ctx,
		cancelFn:         cancel,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.debouncer = NewDebouncer(c.debounceInterval, c.commit)
	return c
}

// Start reads the location and, when it carries a query, commits it
// immediately without waiting out a debounce window.
func (c *Controller) Start() {
	if query := c.location.Read(); query != "" {
		c.commit(query)
	}
}

// OnQueryChange feeds one raw input value (typically a keystroke's worth of
// text) into the debouncer.
func (c *Controller) OnQueryChange(raw string) {
	c.debouncer.Input(raw)
}

// ToggleOpen flips the expanded state of the search panel.
func (c *Controller) ToggleOpen() {
	c.mu.Lock()
	c.open = !c.open
	c.mu.Unlock()
	c.notifyView()
}

// Refresh re-derives the committed query from the location. Call it when the
// query parameter changes outside this controller, e.g. through a link click
// elsewhere in the application.
func (c *Controller) Refresh() {
	query := c.location.Read()
	c.mu.Lock()
	same := query == c.committed
	c.mu.Unlock()
	if !same {
		c.commit(query)
	}
}

// LoadMore requests the next page. It is the sentinel's entry point and is
// safe to call on every trigger: the in-flight gate and the exhaustion flag
// turn extra calls into no-ops.
func (c *Controller) LoadMore() {
	c.mu.Lock()
	if c.state != StateReady || !c.acc.HasMore() || c.acc.IsFetching() {
		c.mu.Unlock()
		return
	}
	query := c.committed
	page := c.acc.CurrentPage() + 1
	c.state = StateLoadingMore
	c.acc.BeginFetch()
	c.mu.Unlock()

	c.notifyView()
	go c.fetch(query, page)
}

// Sentinel returns the rebindable infinite-scroll observation slot.
func (c *Controller) Sentinel() *Sentinel {
	return &c.sentinel
}

// Snapshot returns a copy of the state the presentation layer renders.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	hits := make([]searchapi.Hit, len(c.acc.Hits()))
	copy(hits, c.acc.Hits())
	return Snapshot{
		Query:         c.committed,
		State:         c.state,
		Results:       hits,
		IsOpen:        c.open,
		IsLoadingMore: c.state == StateLoadingMore,
		HasMore:       c.acc.HasMore(),
		Err:           c.lastErr,
	}
}

// Close stops the debounce timer, disconnects the sentinel and cancels the
// context under which fetches run. Responses arriving afterwards are
// discarded by the usual reconciliation path.
func (c *Controller) Close() {
	c.debouncer.Stop()
	c.sentinel.Disconnect()
	c.cancelFn()
}

// commit installs a new committed query: accumulated results are discarded,
// the location is rewritten, and page 1 is requested for non-empty queries.
// The reference behavior refetches even when the committed value is
// unchanged; there is deliberately no response cache on this path.
func (c *Controller) commit(query string) {
	c.mu.Lock()
	c.committed = query
	c.lastErr = nil
	c.acc.Reset(query)
	c.location.Write(query)

	if query == "" {
		c.state = StateIdle
		c.mu.Unlock()
		c.notifyView()
		return
	}

	c.state = StateLoading
	c.acc.BeginFetch()
	c.mu.Unlock()

	c.logger.WithField("query", query).Debug("Committed search query")
	c.notifyView()
	go c.fetch(query, 1)
}

func (c *Controller) fetch(query string, page int) {
	result, err := c.fetcher.FetchPage(c.ctx, query, page)

	c.mu.Lock()
	if query != c.committed {
		c.mu.Unlock()
		c.logger.WithFields(logrus.Fields{
			"query": query,
			"page":  page,
		}).Debug("Discarding stale search response")
		return
	}

	if err != nil {
		c.acc.Fail(query)
		c.lastErr = err
		c.state = StateExhausted
		c.mu.Unlock()

		c.logger.WithError(err).WithFields(logrus.Fields{
			"query": query,
			"page":  page,
		}).Warn("Search fetch failed")
		c.notifyView()
		return
	}

	c.acc.Append(result.Results, query, page, result.TotalPages)
	if c.acc.HasMore() {
		c.state = StateReady
	} else {
		c.state = StateExhausted
	}
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"query":       query,
		"page":        page,
		"hits":        len(result.Results),
		"total_pages": result.TotalPages,
	}).Debug("Search page applied")
	c.notifyView()
}

func (c *Controller) notifyView() {
	if c.notify != nil {
		c.notify()
	}
}

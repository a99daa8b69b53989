package search

import (
	"net/url"
	"sync"
)

const queryParam = "query"

// Location mirrors the committed query into a navigable address and reads it
// back when the controller (re)initializes. Write has replace semantics:
// keystroke-driven updates must never pile up navigation history entries.
// Absence of the parameter and an empty value both mean "no search".
type Location interface {
	Write(query string)
	Read() string
}

// URLLocation synchronizes the query parameter of a shared *url.URL in
// place, so the address stays shareable while a search is active.
type URLLocation struct {
	mu sync.Mutex
	u  *url.URL
}

func NewURLLocation(u *url.URL) *URLLocation {
	return &URLLocation{u: u}
}

func (l *URLLocation) Write(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	values := l.u.Query()
	if query == "" {
		values.Del(queryParam)
	} else {
		values.Set(queryParam, query)
	}
	l.u.RawQuery = values.Encode()
}

func (l *URLLocation) Read() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.u.Query().Get(queryParam)
}

// String returns the current address, including any active query.
func (l *URLLocation) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.u.String()
}

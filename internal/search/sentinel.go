package search

import "sync"

// Sentinel holds the single live infinite-scroll observation. When the view
// layer re-renders and the watched element is replaced, Rebind tears down
// the previous observation before installing the next one, so an orphaned
// observer can never deliver a duplicate trigger.
type Sentinel struct {
	mu     sync.Mutex
	cancel func()
}

// Rebind installs a new observation. observe must start watching and return
// its cancel function.
func (s *Sentinel) Rebind(observe func() (cancel func())) {
	s.mu.Lock()
	prev := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if prev != nil {
		prev()
	}

	cancel := observe()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
}

// Disconnect tears down the current observation, if any.
func (s *Sentinel) Disconnect() {
	s.mu.Lock()
	prev := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
}

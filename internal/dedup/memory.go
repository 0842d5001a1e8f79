package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Entries expire after the
// configured window; a janitor goroutine sweeps expired entries so
// long-running processes do not grow without bound. Dedup state is
// lost on restart, which only widens the at-least-once window.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	window  time.Duration
	done    chan struct{}
	once    sync.Once

	// now is swappable for expiry tests
	now func() time.Time
}

// NewMemoryStore creates an in-memory dedup store. A window of 0
// uses DefaultWindow.
func NewMemoryStore(window time.Duration) *MemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	s := &MemoryStore{
		entries: make(map[string]time.Time),
		window:  window,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) Seen(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.entries[id]
	if !ok {
		return false, nil
	}
	if s.now().After(expiry) {
		delete(s.entries, id)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Mark(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = s.now().Add(s.window)
	return nil
}

// Close stops the janitor goroutine.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) janitor() {
	interval := s.window / 10
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, expiry := range s.entries {
		if now.After(expiry) {
			delete(s.entries, id)
		}
	}
}

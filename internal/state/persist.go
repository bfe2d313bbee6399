package state

import (
	"encoding/json"
	"fmt"
	"time"
)

// persistKey names the cache entry holding the serialized tree.
const persistKey = "boardState"

// Load restores the previous session's tree from the cache. A missing or
// unreadable snapshot leaves the tree empty; corruption is not fatal, the
// next fetch rebuilds state from the server.
func (s *Store) Load() error {
	if s.cache == nil {
		return nil
	}
	raw, ok, err := s.cache.Get(persistKey)
	if err != nil {
		return fmt.Errorf("load cached state: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}
	var tree Tree
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		s.logf("discarding corrupt cached state: %v", err)
		return nil
	}
	tree.sanitize()
	s.mu.Lock()
	s.tree = tree
	s.mu.Unlock()
	return nil
}

// markDirtyLocked schedules a debounced flush. Rapid successive mutations
// (typing, drag feedback) coalesce into one write; the timer resets on
// each call so the persisted snapshot converges within flushDelay of the
// last mutation. Callers must hold s.mu.
func (s *Store) markDirtyLocked() {
	if s.cache == nil || s.closed {
		return
	}
	if s.timer == nil {
		s.timer = newFlushTimer(s)
		return
	}
	s.timer.Reset(s.flushDelay)
}

func newFlushTimer(s *Store) *time.Timer {
	return time.AfterFunc(s.flushDelay, s.onFlushTimer)
}

func (s *Store) onFlushTimer() {
	if err := s.FlushNow(); err != nil {
		s.logf("state flush failed: %v", err)
	}
}

// FlushNow writes the current tree to the cache immediately.
func (s *Store) FlushNow() error {
	if s.cache == nil {
		return nil
	}
	s.mu.Lock()
	snapshot := s.tree.Clone()
	s.mu.Unlock()

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.cache.Set(persistKey, string(encoded)); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// Close stops the flush timer and performs a final flush so no confirmed
// state is lost on shutdown.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.FlushNow()
}

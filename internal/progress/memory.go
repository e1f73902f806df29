package progress

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps progress for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	totals  Stats
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry), now: time.Now}
}

func (m *MemoryStore) Record(_ context.Context, puzzleID string, solved bool) error {
	id, err := validID(puzzleID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, seen := m.entries[id]
	if !seen {
		e.PuzzleID = id
		m.totals.Puzzles++
	}
	e.Attempts++
	m.totals.Attempts++
	if solved {
		if !e.Solved {
			m.totals.Solved++
		}
		e.Solved = true
	} else {
		e.Failures++
		m.totals.Failures++
	}
	e.LastPlayed = m.now().UTC().Truncate(time.Second)
	m.entries[id] = e
	return nil
}

func (m *MemoryStore) Get(_ context.Context, puzzleID string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[strings.TrimSpace(puzzleID)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, puzzleID)
	}
	return e, nil
}

func (m *MemoryStore) Stats(context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totals, nil
}

func (m *MemoryStore) Close() error { return nil }

package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/pingmore/internal/domain"
)

// Store is a fixed-size ring of the most recent results.
type Store struct {
	mu      sync.RWMutex
	results []domain.Result
	next    int // slot for the next Append
	full    bool
	lastID  int64
}

func New(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{results: make([]domain.Result, capacity)}
}

func (m *Store) Append(ctx context.Context, r *domain.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	r.ID = m.lastID
	m.results[m.next] = *r
	m.next = (m.next + 1) % len(m.results)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *Store) Recent(ctx context.Context, limit int) ([]domain.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.next
	if m.full {
		n = len(m.results)
	}
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Result, 0, n)
	for i := 1; i <= n; i++ {
		idx := (m.next - i + len(m.results)) % len(m.results)
		out = append(out, m.results[idx])
	}
	return out, nil
}

func (m *Store) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.results)
	m.next = 0
	m.full = false
	return nil
}

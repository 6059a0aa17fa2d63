package session

import (
	"context"
	"sync"
	"time"

	"telemarketing_backend/internal/imports/ingest"
)

type memoryEntry struct {
	preview   *Preview
	expiresAt time.Time
}

// MemoryStore is a process-local Store used when Redis is not configured
// and by the command-line importer.
type MemoryStore struct {
	mu       sync.Mutex
	previews map[Key]memoryEntry
	locks    map[Key]time.Time
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		previews: make(map[Key]memoryEntry),
		locks:    make(map[Key]time.Time),
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, preview *Preview, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *preview
	copied.Leads = append([]ingest.CanonicalLead(nil), preview.Leads...)
	s.previews[preview.Key()] = memoryEntry{preview: &copied, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key Key) (*Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.previews[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		delete(s.previews, key)
		return nil, ErrNotFound
	}
	copied := *entry.preview
	return &copied, nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.previews, key)
	return nil
}

func (s *MemoryStore) Acquire(_ context.Context, key Key, ttl time.Duration) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, held := s.locks[key]; held && s.now().Before(until) {
		return nil, ErrBusy
	}
	until := s.now().Add(ttl)
	s.locks[key] = until

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if current, ok := s.locks[key]; ok && current.Equal(until) {
				delete(s.locks, key)
			}
		})
	}, nil
}

package storage

import (
	"sort"
	"sync"

	"cc-insights-go/internal/registry"
	"cc-insights-go/internal/types"
)

// MemoryStorage is an in-process store used for local runs and tests.
type MemoryStorage struct {
	mu          sync.RWMutex
	registry    map[string]registry.Entry
	enrichments map[string]types.EnrichmentRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		registry:    make(map[string]registry.Entry),
		enrichments: make(map[string]types.EnrichmentRecord),
	}
}

func (s *MemoryStorage) UpsertRegistry(entry *registry.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[entry.ConversationID] = *entry
	return nil
}

func (s *MemoryStorage) GetRegistry(conversationID string) (*registry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.registry[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	out := e
	return &out, nil
}

func (s *MemoryStorage) ListRegistry(status registry.Status, limit int) ([]*registry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*registry.Entry
	for _, e := range s.registry {
		if status != "" && e.Status != status {
			continue
		}
		entry := e
		out = append(out, &entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ConversationID < out[j].ConversationID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) InsertEnrichment(rec types.EnrichmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrichments[rec.ConversationID] = rec
	return nil
}

func (s *MemoryStorage) GetEnrichment(conversationID string) (types.EnrichmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.enrichments[conversationID]
	if !ok {
		return types.EnrichmentRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStorage) ListEnrichments(limit int) ([]types.EnrichmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.EnrichmentRecord
	for _, rec := range s.enrichments {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ConversationID < out[j].ConversationID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) Close() error { return nil }

package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/hillchart/pkg/errors"
)

// MemoryStore keeps charts in process memory. Documents are copied in and
// out so callers cannot alias stored markers.
type MemoryStore struct {
	mu     sync.RWMutex
	charts map[string]Document
	saves  int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{charts: make(map[string]Document)}
}

func (s *MemoryStore) Name() string { return BackendMemory }

func (s *MemoryStore) Load(ctx context.Context, chart string) (Document, error) {
	if err := errors.ValidateChartName(chart); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.charts[chart]
	if !ok {
		return Document{}, notFound(chart)
	}
	doc.Markers = slices.Clone(doc.Markers)
	return doc, nil
}

func (s *MemoryStore) Save(ctx context.Context, chart string, doc Document) error {
	if err := errors.ValidateChartName(chart); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.Markers = slices.Clone(doc.Markers)
	s.charts[chart] = doc
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MemoryStore) Close() error { return nil }

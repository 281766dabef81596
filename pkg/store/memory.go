package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

// Memory is an in-memory [Store]. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[artifact.Coordinate]*artifact.Record
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{records: make(map[artifact.Coordinate]*artifact.Record)}
}

func (m *Memory) Get(_ context.Context, c artifact.Coordinate) (*artifact.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[c]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (m *Memory) Exists(_ context.Context, c artifact.Coordinate) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[c]
	return ok, nil
}

func (m *Memory) Upsert(_ context.Context, rec *artifact.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Coordinate] = merge(m.records[rec.Coordinate], rec)
	return nil
}

func (m *Memory) MarkChild(_ context.Context, parent, child artifact.Coordinate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[parent]; ok {
		r.AddChildren(child)
		return false, nil
	}
	m.records[parent] = artifact.NewPlaceholder(parent, child)
	return true, nil
}

func (m *Memory) Records(_ context.Context, status artifact.Status) ([]*artifact.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*artifact.Record, 0, len(m.records))
	for _, r := range m.records {
		if status == "" || r.Status == status {
			out = append(out, r.Clone())
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) Close(context.Context) error { return nil }

// Len returns the number of records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func sortRecords(recs []*artifact.Record) {
	slices.SortFunc(recs, func(a, b *artifact.Record) int {
		return strings.Compare(a.Coordinate.String(), b.Coordinate.String())
	})
}

var _ Store = (*Memory)(nil)

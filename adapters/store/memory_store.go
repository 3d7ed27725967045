package store

import (
	"context"
	"sync"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/ports"
)

// MemoryStore is an in-memory implementation of the LedgerStore interface
type MemoryStore struct {
	records   map[string]*core.Record
	connected string
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.LedgerStore {
	return &MemoryStore{
		records: make(map[string]*core.Record),
	}
}

// Record returns the record stored for address, or the empty record
func (s *MemoryStore) Record(ctx context.Context, address string) (*core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[address]
	if !exists {
		return core.NewRecord(), nil
	}
	return record.Clone(), nil
}

// PutRecord replaces the record stored for address
func (s *MemoryStore) PutRecord(ctx context.Context, address string, record *core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[address] = record.Clone()
	return nil
}

// ConnectedAddress returns the persisted session-restore address
func (s *MemoryStore) ConnectedAddress(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.connected, nil
}

// SetConnectedAddress persists the session-restore address; empty clears it
func (s *MemoryStore) SetConnectedAddress(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = address
	return nil
}

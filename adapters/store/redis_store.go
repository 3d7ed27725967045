package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/ports"
)

// RedisStore is a Redis implementation of the LedgerStore interface.
// Records are stored as JSON, one key per lowercase address, plus one
// scalar key for the connected address.
type RedisStore struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client, log *zap.Logger) ports.LedgerStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		prefix: "gmstreak:",
		log:    log,
	}
}

func (s *RedisStore) recordKey(address string) string {
	return s.prefix + "record:" + address
}

func (s *RedisStore) connectedKey() string {
	return s.prefix + "connected"
}

// Record returns the record stored for address. A missing key yields the
// empty record; so does a corrupt one, which is logged and overwritten by
// the next commit rather than crashing the app over malformed state.
func (s *RedisStore) Record(ctx context.Context, address string) (*core.Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.NewRecord(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		s.log.Warn("discarding corrupt record", zap.String("address", address), zap.Error(err))
		return core.NewRecord(), nil
	}
	return record, nil
}

// PutRecord replaces the record stored for address
func (s *RedisStore) PutRecord(ctx context.Context, address string, record *core.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	if err := s.client.Set(ctx, s.recordKey(address), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	return nil
}

// ConnectedAddress returns the persisted session-restore address
func (s *RedisStore) ConnectedAddress(ctx context.Context) (string, error) {
	address, err := s.client.Get(ctx, s.connectedKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load connected address: %w", err)
	}
	return address, nil
}

// SetConnectedAddress persists the session-restore address; empty clears it
func (s *RedisStore) SetConnectedAddress(ctx context.Context, address string) error {
	if address == "" {
		if err := s.client.Del(ctx, s.connectedKey()).Err(); err != nil {
			return fmt.Errorf("failed to clear connected address: %w", err)
		}
		return nil
	}

	if err := s.client.Set(ctx, s.connectedKey(), address, 0).Err(); err != nil {
		return fmt.Errorf("failed to store connected address: %w", err)
	}
	return nil
}

// decodeRecord parses a stored record and checks the shape the ledger
// relies on: every signature belongs to a known date and vice versa.
func decodeRecord(data []byte) (*core.Record, error) {
	var record core.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStorageCorrupt, err)
	}
	if record.Dates == nil {
		record.Dates = []string{}
	}
	if record.Signatures == nil {
		record.Signatures = map[string]string{}
	}
	if len(record.Signatures) != len(record.Dates) {
		return nil, fmt.Errorf("%w: %d dates, %d signatures", core.ErrStorageCorrupt, len(record.Dates), len(record.Signatures))
	}
	for _, day := range record.Dates {
		if _, ok := record.Signatures[day]; !ok {
			return nil, fmt.Errorf("%w: no signature for %s", core.ErrStorageCorrupt, day)
		}
	}
	return &record, nil
}

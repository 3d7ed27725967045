package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/gmstreak/core"
)

func TestMemoryStoreRecordRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	record := core.NewRecord()
	require.NoError(t, record.Commit("2025-06-15", "sig", "2025-06-15"))
	require.NoError(t, s.PutRecord(ctx, "0xabc", record))

	loaded, err := s.Record(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, record, loaded)
}

func TestMemoryStoreUnknownAddress(t *testing.T) {
	s := NewMemoryStore()

	record, err := s.Record(context.Background(), "0xmissing")
	require.NoError(t, err)
	assert.Empty(t, record.Dates)
	assert.Equal(t, 0, record.Total)
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	record := core.NewRecord()
	require.NoError(t, record.Commit("2025-06-15", "sig", "2025-06-15"))
	require.NoError(t, s.PutRecord(ctx, "0xabc", record))

	// Mutating a loaded copy must not leak back into the store.
	loaded, err := s.Record(ctx, "0xabc")
	require.NoError(t, err)
	require.NoError(t, loaded.Commit("2025-06-16", "sig-2", "2025-06-16"))

	fresh, err := s.Record(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Total)
}

func TestMemoryStoreConnectedAddress(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	address, err := s.ConnectedAddress(ctx)
	require.NoError(t, err)
	assert.Empty(t, address)

	require.NoError(t, s.SetConnectedAddress(ctx, "0xabc"))
	address, err = s.ConnectedAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", address)

	require.NoError(t, s.SetConnectedAddress(ctx, ""))
	address, err = s.ConnectedAddress(ctx)
	require.NoError(t, err)
	assert.Empty(t, address)
}

package ports

import (
	"context"

	"github.com/layer-3/gmstreak/core"
)

// LedgerStore persists per-address check-in records plus the connected
// address scalar used for session restore. Access is whole-record
// read-modify-write; concurrent writers for the same address are
// last-write-wins by design (single-user, single-device expected use).
type LedgerStore interface {
	// Record returns the record for a lowercase address. A missing or
	// undecodable entry yields the empty record, never an error.
	Record(ctx context.Context, address string) (*core.Record, error)

	// PutRecord replaces the record stored for a lowercase address.
	PutRecord(ctx context.Context, address string, record *core.Record) error

	// ConnectedAddress returns the persisted session-restore address, or
	// empty when no wallet is connected.
	ConnectedAddress(ctx context.Context) (string, error)

	// SetConnectedAddress persists the session-restore address; empty
	// clears it.
	SetConnectedAddress(ctx context.Context, address string) error
}

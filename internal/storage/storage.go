package storage

import (
	"context"

	"github.com/dshills/filescout-mcp/pkg/types"
)

// Store defines the persistence operations shared by the database and its
// transactions
type Store interface {
	// Settings slot operations
	GetSlot(ctx context.Context, number int) (*types.SettingSlot, error)
	PutSlot(ctx context.Context, slot *types.SettingSlot) error
	ListSlots(ctx context.Context) ([]*types.SettingSlot, error)

	// Search history operations
	RecordRun(ctx context.Context, run types.SearchRun) error
	ListRuns(ctx context.Context, limit int) ([]types.SearchRun, error)
	PruneRuns(ctx context.Context, keep int) (int64, error)
}

// Storage defines the interface for persisting settings slots and search
// history
type Storage interface {
	Store

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

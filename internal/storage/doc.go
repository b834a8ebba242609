// Package storage provides SQLite-based persistence for settings presets
// and search history.
//
// The storage layer manages:
//   - Five numbered settings slots, each holding a named SearchSettings
//     preset encoded as JSON
//   - A history of finished search runs (keyword, root, options, timing,
//     result counts and final status)
//
// # Database Schema
//
// Tables:
//   - schema_version: Applied migrations (semantic versions)
//   - settings_slots: Slot number, display name, JSON settings
//   - search_runs: One row per finished search
//
// Timestamps are stored as Unix milliseconds so both drivers read them
// back identically.
//
// # Drivers
//
// The default build uses modernc.org/sqlite (pure Go). Building with the
// sqlite_cgo tag switches to github.com/mattn/go-sqlite3. DriverName and
// BuildMode report which one is compiled in.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.filescout/filescout.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	slot, err := db.GetSlot(ctx, 1)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // slot was never saved
//	}
//
// # Transactions
//
// Use transactions for atomic operations:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	for n := 1; n <= types.SlotCount; n++ {
//	    slot := types.EmptySlot(n)
//	    if err := tx.PutSlot(ctx, &slot); err != nil {
//	        return err
//	    }
//	}
//
//	return tx.Commit()
package storage

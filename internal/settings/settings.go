// Package settings manages the five numbered search presets.
//
// Each slot holds a display name and a SearchSettings value. Slots that were
// never saved, or were cleared, hold the default preset. The service sits on
// top of storage.Storage; slot numbers outside 1..types.SlotCount are
// rejected with ErrInvalidSlot.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/filescout-mcp/internal/storage"
	"github.com/dshills/filescout-mcp/pkg/types"
)

// ErrInvalidSlot is returned for slot numbers outside 1..types.SlotCount
var ErrInvalidSlot = errors.New("invalid settings slot")

// Service reads and writes settings slots
type Service struct {
	store  storage.Storage
	logger *slog.Logger
}

// New creates a Service
func New(store storage.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

func checkSlot(number int) error {
	if number < 1 || number > types.SlotCount {
		return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidSlot, number, types.SlotCount)
	}
	return nil
}

// Ensure seeds every missing slot with the default preset
func (s *Service) Ensure(ctx context.Context) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seeded := 0
	for n := 1; n <= types.SlotCount; n++ {
		_, err := tx.GetSlot(ctx, n)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		slot := types.EmptySlot(n)
		if err := tx.PutSlot(ctx, &slot); err != nil {
			return err
		}
		seeded++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if seeded > 0 {
		s.logger.Debug("seeded settings slots", "count", seeded)
	}
	return nil
}

// Get returns slot number. A slot that was never saved reads as empty.
func (s *Service) Get(ctx context.Context, number int) (types.SettingSlot, error) {
	if err := checkSlot(number); err != nil {
		return types.SettingSlot{}, err
	}
	slot, err := s.store.GetSlot(ctx, number)
	if errors.Is(err, storage.ErrNotFound) {
		return types.EmptySlot(number), nil
	}
	if err != nil {
		return types.SettingSlot{}, err
	}
	return *slot, nil
}

// List returns all slots in number order
func (s *Service) List(ctx context.Context) ([]types.SettingSlot, error) {
	stored, err := s.store.ListSlots(ctx)
	if err != nil {
		return nil, err
	}

	slots := make([]types.SettingSlot, types.SlotCount)
	for i := range slots {
		slots[i] = types.EmptySlot(i + 1)
	}
	for _, slot := range stored {
		if checkSlot(slot.Number) != nil {
			continue
		}
		slots[slot.Number-1] = *slot
	}
	return slots, nil
}

// Save replaces the name and preset of slot number. The preset must
// convert to valid search options.
func (s *Service) Save(ctx context.Context, number int, name string, val types.SearchSettings) (types.SettingSlot, error) {
	if err := checkSlot(number); err != nil {
		return types.SettingSlot{}, err
	}

	val.SearchOptions = val.SearchOptions.Normalize()
	if val.FileMaxUnit == "" {
		val.FileMaxUnit = types.DefaultSizeUnit
	}
	if val.FileMinUnit == "" {
		val.FileMinUnit = types.DefaultSizeUnit
	}
	opts, err := val.ToOptions()
	if err != nil {
		return types.SettingSlot{}, err
	}
	if err := opts.Validate(); err != nil {
		return types.SettingSlot{}, err
	}

	slot := types.SettingSlot{Number: number, Name: name, Val: val}
	if err := s.store.PutSlot(ctx, &slot); err != nil {
		return types.SettingSlot{}, err
	}
	s.logger.Info("saved settings slot", "slot", number, "name", name)
	return slot, nil
}

// Clear resets slot number to the default preset
func (s *Service) Clear(ctx context.Context, number int) (types.SettingSlot, error) {
	if err := checkSlot(number); err != nil {
		return types.SettingSlot{}, err
	}
	slot := types.EmptySlot(number)
	if err := s.store.PutSlot(ctx, &slot); err != nil {
		return types.SettingSlot{}, err
	}
	s.logger.Info("cleared settings slot", "slot", number)
	return slot, nil
}

// Options returns the search options stored in slot number
func (s *Service) Options(ctx context.Context, number int) (types.SearchOptions, error) {
	slot, err := s.Get(ctx, number)
	if err != nil {
		return types.SearchOptions{}, err
	}
	return slot.Val.ToOptions()
}

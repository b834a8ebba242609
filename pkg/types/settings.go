package types

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// SlotCount is the number of settings slots
const SlotCount = 5

// DefaultSizeUnit is the unit of raw size values when none is given
const DefaultSizeUnit = "B"

// SearchSettings is a saved options preset. Besides the options it keeps
// the size bounds as entered by the user: a raw value and a unit each.
type SearchSettings struct {
	SearchOptions `yaml:",inline"`

	FileMaxRawVal uint64 `json:"fileMaxRawVal" yaml:"file_max_raw_val"`
	FileMinRawVal uint64 `json:"fileMinRawVal" yaml:"file_min_raw_val"`
	FileMaxUnit   string `json:"fileMaxUnit" yaml:"file_max_unit"`
	FileMinUnit   string `json:"fileMinUnit" yaml:"file_min_unit"`
}

// DefaultSearchSettings returns the preset stored in an empty slot
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		SearchOptions: DefaultSearchOptions(),
		FileMaxUnit:   DefaultSizeUnit,
		FileMinUnit:   DefaultSizeUnit,
	}
}

// ToOptions returns the search options of the preset. When a raw size is
// set it replaces the corresponding byte bound, converted with its unit.
func (s SearchSettings) ToOptions() (SearchOptions, error) {
	opts := s.SearchOptions.Normalize()

	if s.FileMaxRawVal > 0 {
		n, err := ParseSize(s.FileMaxRawVal, s.FileMaxUnit)
		if err != nil {
			return SearchOptions{}, err
		}
		opts.SizeMax = n
	}
	if s.FileMinRawVal > 0 {
		n, err := ParseSize(s.FileMinRawVal, s.FileMinUnit)
		if err != nil {
			return SearchOptions{}, err
		}
		opts.SizeMin = n
	}
	return opts, nil
}

// ParseSize converts a value and unit such as (10, "MB") to bytes. Units
// follow go-humanize: KB is 1000 bytes, KiB 1024. An empty unit means bytes.
func ParseSize(value uint64, unit string) (uint64, error) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = DefaultSizeUnit
	}
	n, err := humanize.ParseBytes(fmt.Sprintf("%d %s", value, unit))
	if err != nil {
		return 0, fmt.Errorf("%w: size %d %s: %v", ErrInvalidOptions, value, unit, err)
	}
	return n, nil
}

// SettingSlot is one numbered preset
type SettingSlot struct {
	Number int            `json:"number" yaml:"number"`
	Name   string         `json:"name" yaml:"name"`
	Val    SearchSettings `json:"val" yaml:"val"`
}

// EmptySlot returns slot number n holding the default preset
func EmptySlot(n int) SettingSlot {
	return SettingSlot{
		Number: n,
		Val:    DefaultSearchSettings(),
	}
}

// IsEmpty reports whether the slot holds the default preset and no name
func (s SettingSlot) IsEmpty() bool {
	return s.Name == "" && s.Val == DefaultSearchSettings()
}

package matcher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Threshold names as they appear in the thresholds file
const (
	NameDamerauLevenshtein = "Damerau-Levenshtein"
	NameJaccard            = "Jaccard-Similarity"
)

// Default thresholds
const (
	DefaultDamerauLevenshtein = 2.0
	DefaultJaccard            = 0.5
)

// Thresholds holds the cut-offs of the fuzzy strategies
type Thresholds struct {
	DamerauLevenshtein float64 // Maximum edit distance that still matches
	Jaccard            float64 // Minimum similarity that still matches
}

// DefaultThresholds returns the built-in thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		DamerauLevenshtein: DefaultDamerauLevenshtein,
		Jaccard:            DefaultJaccard,
	}
}

// thresholdEntry is one record of the thresholds file
type thresholdEntry struct {
	Name      string  `yaml:"name"`
	Threshold float64 `yaml:"threshold"`
}

// LoadThresholds reads the thresholds file at path. The file is a list of
// {name, threshold} records; YAML is a superset of JSON so the JSON form is
// accepted as well. Names missing from the file keep their defaults. When
// the file cannot be read or parsed the defaults are returned together with
// the error.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	var entries []thresholdEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return DefaultThresholds(), fmt.Errorf("failed to parse thresholds file: %w", err)
	}

	for _, e := range entries {
		switch e.Name {
		case NameDamerauLevenshtein:
			t.DamerauLevenshtein = e.Threshold
		case NameJaccard:
			t.Jaccard = e.Threshold
		}
	}
	return t, nil
}

// WriteDefaultThresholds creates the thresholds file with the built-in
// values when it does not exist yet
func WriteDefaultThresholds(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	entries := []thresholdEntry{
		{Name: NameDamerauLevenshtein, Threshold: DefaultDamerauLevenshtein},
		{Name: NameJaccard, Threshold: DefaultJaccard},
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode thresholds: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write thresholds file: %w", err)
	}
	return nil
}

// Package searchlog writes a JSON activity record for each logged search.
//
// Every record goes to its own file named after the local start time of the
// run, for example logs/2024-03-10_14-02-59_log.json. Runs that start within
// the same second get a numeric suffix instead of overwriting each other.
package searchlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dshills/filescout-mcp/pkg/types"
)

// TimestampLayout names log files
const TimestampLayout = "2006-01-02_15-04-05"

const fileSuffix = "_log.json"

// Record is one logged search
type Record struct {
	Keyword      string              `json:"keyword"`
	Options      types.SearchOptions `json:"options"`
	Directory    string              `json:"directory"`
	StartTime    time.Time           `json:"start_time"`
	EndTime      time.Time           `json:"end_time"`
	Duration     float64             `json:"duration"` // seconds
	Results      []string            `json:"results"`
	ResultsCount int                 `json:"results_count"`
}

// NewRecord builds a record, deriving duration and count
func NewRecord(keyword string, opts types.SearchOptions, dir string, start, end time.Time, results []string) Record {
	if results == nil {
		results = []string{}
	}
	return Record{
		Keyword:      keyword,
		Options:      opts,
		Directory:    dir,
		StartTime:    start,
		EndTime:      end,
		Duration:     end.Sub(start).Seconds(),
		Results:      results,
		ResultsCount: len(results),
	}
}

// Writer stores records under a directory
type Writer struct {
	dir string
}

// NewWriter returns a writer for dir. The directory is created on first
// write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the log directory
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores rec and returns the file path
func (w *Writer) Write(rec Record) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode search log: %w", err)
	}

	base := rec.StartTime.Local().Format(TimestampLayout)
	for i := 0; ; i++ {
		name := base + fileSuffix
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", base, i, fileSuffix)
		}
		path := filepath.Join(w.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create search log: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write search log: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close search log: %w", err)
		}
		return path, nil
	}
}

// List returns the log files in the directory, oldest first
func (w *Writer) List() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list search logs: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fileSuffix) {
			files = append(files, filepath.Join(w.dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Read loads the record stored at path
func Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read search log: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse search log: %w", err)
	}
	return rec, nil
}

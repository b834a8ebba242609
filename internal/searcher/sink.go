package searcher

import (
	"sync"
	"time"

	"github.com/dshills/filescout-mcp/pkg/types"
)

// Sink receives the events of one search run. Calls for one run are never
// concurrent.
type Sink interface {
	// Result delivers a match; each path is delivered at most once per run
	Result(item types.FileItem)

	// ProcessInfo announces the process token once the run is registered
	ProcessInfo(info types.ProcessInfo)

	// Elapsed reports the run duration when the run ends
	Elapsed(d time.Duration)

	// Failed reports a fatal error that ended the run
	Failed(err error)
}

// NopSink discards every event
type NopSink struct{}

func (NopSink) Result(types.FileItem)         {}
func (NopSink) ProcessInfo(types.ProcessInfo) {}
func (NopSink) Elapsed(time.Duration)         {}
func (NopSink) Failed(error)                  {}

// RecordingSink keeps every event in memory
type RecordingSink struct {
	mu      sync.Mutex
	results []types.FileItem
	infos   []types.ProcessInfo
	elapsed []time.Duration
	errs    []error
}

func (s *RecordingSink) Result(item types.FileItem) {
	s.mu.Lock()
	s.results = append(s.results, item)
	s.mu.Unlock()
}

func (s *RecordingSink) ProcessInfo(info types.ProcessInfo) {
	s.mu.Lock()
	s.infos = append(s.infos, info)
	s.mu.Unlock()
}

func (s *RecordingSink) Elapsed(d time.Duration) {
	s.mu.Lock()
	s.elapsed = append(s.elapsed, d)
	s.mu.Unlock()
}

func (s *RecordingSink) Failed(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// Results returns the delivered matches
func (s *RecordingSink) Results() []types.FileItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.FileItem(nil), s.results...)
}

// ProcessInfos returns the announced process infos
func (s *RecordingSink) ProcessInfos() []types.ProcessInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.ProcessInfo(nil), s.infos...)
}

// ElapsedTimes returns the reported durations
func (s *RecordingSink) ElapsedTimes() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.elapsed...)
}

// Errors returns the reported failures
func (s *RecordingSink) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

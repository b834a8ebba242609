package types

import "time"

// RunStatus is the terminal state of a search run
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
	RunFailed    RunStatus = "failed"
)

// SearchRun summarises one finished search
type SearchRun struct {
	ID          int64         `json:"id,omitempty"`
	ProcessID   string        `json:"process_id"`
	Keyword     string        `json:"keyword"`
	Directory   string        `json:"directory"`
	Options     SearchOptions `json:"options"`
	StartedAt   time.Time     `json:"started_at"`
	EndedAt     time.Time     `json:"ended_at"`
	ResultCount int           `json:"result_count"`
	CacheHits   int           `json:"cache_hits"`
	Status      RunStatus     `json:"status"`
	Error       string        `json:"error,omitempty"`
}

// Duration returns the wall-clock duration of the run
func (r SearchRun) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

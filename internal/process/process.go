// Package process tracks in-flight searches.
//
// A Process moves from running to exactly one of cancelled or completed.
// Cancelling a completed process has no effect, and completion never marks
// a process cancelled. The Registry maps opaque tokens to live processes so
// a search can be cancelled by token from another request.
package process

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/filescout-mcp/pkg/types"
)

// Process is the cancellable state of one search
type Process struct {
	id      string
	started time.Time

	cancelMu  sync.Mutex
	cancelled bool

	completeMu sync.Mutex
	completed  bool
}

// New creates a running process with a random token
func New() *Process {
	return &Process{
		id:      uuid.NewString(),
		started: time.Now(),
	}
}

// ID returns the process token
func (p *Process) ID() string {
	return p.id
}

// Started returns the creation time
func (p *Process) Started() time.Time {
	return p.started
}

// Cancel requests cancellation. It reports false and leaves the process
// untouched when the process already completed.
func (p *Process) Cancel() bool {
	p.completeMu.Lock()
	defer p.completeMu.Unlock()
	if p.completed {
		return false
	}

	p.cancelMu.Lock()
	p.cancelled = true
	p.cancelMu.Unlock()
	return true
}

// MarkCompleted records that the search finished
func (p *Process) MarkCompleted() {
	p.completeMu.Lock()
	p.completed = true
	p.completeMu.Unlock()
}

// IsCancelled reports whether cancellation was requested
func (p *Process) IsCancelled() bool {
	p.cancelMu.Lock()
	defer p.cancelMu.Unlock()
	return p.cancelled
}

// IsCompleted reports whether the search finished
func (p *Process) IsCompleted() bool {
	p.completeMu.Lock()
	defer p.completeMu.Unlock()
	return p.completed
}

// Info returns a serialisable snapshot
func (p *Process) Info() types.ProcessInfo {
	return types.ProcessInfo{
		ID:          p.id,
		IsCancelled: p.IsCancelled(),
	}
}

// Registry maps tokens to live processes
type Registry struct {
	mu        sync.Mutex
	processes map[string]*Process
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		processes: make(map[string]*Process),
	}
}

// Register adds p under its token
func (r *Registry) Register(p *Process) {
	r.mu.Lock()
	r.processes[p.ID()] = p
	r.mu.Unlock()
}

// Lookup returns the process registered under id
func (r *Registry) Lookup(id string) (*Process, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.processes[id]
	return p, ok
}

// Unregister removes id; unknown ids are ignored
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.processes, id)
	r.mu.Unlock()
}

// Cancel cancels the process registered under id
func (r *Registry) Cancel(id string) error {
	p, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrProcessNotFound, id)
	}
	p.Cancel()
	return nil
}

// CancelAll cancels every registered process
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.processes {
		p.Cancel()
	}
}

// Active returns snapshots of all registered processes, oldest first
func (r *Registry) Active() []types.ProcessInfo {
	r.mu.Lock()
	procs := make([]*Process, 0, len(r.processes))
	for _, p := range r.processes {
		procs = append(procs, p)
	}
	r.mu.Unlock()

	sort.Slice(procs, func(i, j int) bool {
		return procs[i].started.Before(procs[j].started)
	})

	infos := make([]types.ProcessInfo, len(procs))
	for i, p := range procs {
		infos[i] = p.Info()
	}
	return infos
}

// Len returns the number of registered processes
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.processes)
}

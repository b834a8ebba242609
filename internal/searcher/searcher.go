package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dshills/filescout-mcp/internal/cache"
	"github.com/dshills/filescout-mcp/internal/filter"
	"github.com/dshills/filescout-mcp/internal/matcher"
	"github.com/dshills/filescout-mcp/internal/owner"
	"github.com/dshills/filescout-mcp/internal/process"
	"github.com/dshills/filescout-mcp/internal/searchlog"
	"github.com/dshills/filescout-mcp/internal/walker"
	"github.com/dshills/filescout-mcp/pkg/types"
)

// Engine defaults
const (
	DefaultChannelCapacity = 100
	DefaultPollInterval    = 100 * time.Millisecond
)

// History records finished runs
type History interface {
	RecordRun(ctx context.Context, run types.SearchRun) error
}

// Config contains the collaborators and limits of an Engine
type Config struct {
	Cache          *cache.Cache      // nil disables result caching
	Registry       *process.Registry // created when nil
	Walker         *walker.Walker    // created with defaults when nil
	Owners         owner.Resolver    // nil makes every owner-filtered entry excluded
	ThresholdsPath string            // fuzzy thresholds file, re-read per search
	ActivityLog    *searchlog.Writer // nil disables activity logs
	History        History           // nil disables run history
	Logger         *slog.Logger

	ChannelCapacity int           // Buffered results between walker and drain (default: 100)
	PollInterval    time.Duration // Cancellation poll period (default: 100ms)
	MaxContentBytes int64         // Content search size limit (default: matcher.DefaultMaxContentBytes)
}

// Request describes a search
type Request struct {
	Keyword   string
	Directory string
	Options   types.SearchOptions
}

// Outcome is the final state of a run
type Outcome struct {
	ProcessID string
	Results   []types.FileItem // Everything delivered to the sink, cached entries first
	Found     []string         // Paths produced by the walk itself
	CacheHits int              // Number of results served from the cache
	Cancelled bool
	Elapsed   time.Duration
}

// Run is a started search
type Run struct {
	process *process.Process
	done    chan struct{}
	outcome Outcome
	err     error
}

// ID returns the process token of the run
func (r *Run) ID() string {
	return r.process.ID()
}

// Info returns the current process snapshot
func (r *Run) Info() types.ProcessInfo {
	return r.process.Info()
}

// Done is closed when the run has finished
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes and returns its outcome. A fatal walk
// error is returned together with the partial outcome.
func (r *Run) Wait() (Outcome, error) {
	<-r.done
	return r.outcome, r.err
}

// Engine runs cancellable, streaming searches
type Engine struct {
	cfg      Config
	registry *process.Registry
	walker   *walker.Walker
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	runs   sync.WaitGroup

	closeOnce sync.Once
}

// New creates an Engine
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = process.NewRegistry()
	}
	if cfg.Walker == nil {
		cfg.Walker = walker.New(walker.Config{Logger: cfg.Logger})
	}
	if cfg.ChannelCapacity <= 0 {
		cfg.ChannelCapacity = DefaultChannelCapacity
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxContentBytes <= 0 {
		cfg.MaxContentBytes = matcher.DefaultMaxContentBytes
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:      cfg,
		registry: cfg.Registry,
		walker:   cfg.Walker,
		logger:   cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Registry returns the process registry used by the engine
func (e *Engine) Registry() *process.Registry {
	return e.registry
}

// Start validates req, serves cached results, registers a new process and
// starts the walk in the background. It returns as soon as the process is
// registered; matches stream to sink. Validation and pattern errors are
// returned here, before any walking happens.
func (e *Engine) Start(ctx context.Context, req Request, sink Sink) (*Run, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, fmt.Errorf("engine closed: %w", err)
	}
	if sink == nil {
		sink = NopSink{}
	}
	if req.Keyword == "" {
		return nil, types.ErrEmptyKeyword
	}

	opts := req.Options.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	root, err := canonicalRoot(req.Directory)
	if err != nil {
		return nil, err
	}

	thresholds, err := matcher.LoadThresholds(e.cfg.ThresholdsPath)
	if err != nil {
		e.logger.Warn("using default fuzzy thresholds", slog.String("error", err.Error()))
	}
	strategy, err := matcher.New(req.Keyword, opts, thresholds, matcher.Config{MaxContentBytes: e.cfg.MaxContentBytes})
	if err != nil {
		return nil, err
	}

	var flt *filter.Filter
	if opts.CustomPropertyUse {
		flt = filter.New(opts, e.cfg.Owners)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	state := &runState{
		seen: make(map[string]struct{}),
	}
	e.serveCached(req.Keyword, opts, root, state, sink)

	proc := process.New()
	e.registry.Register(proc)
	sink.ProcessInfo(proc.Info())

	e.logger.Info("search started",
		slog.String("id", proc.ID()),
		slog.String("keyword", req.Keyword),
		slog.String("directory", root),
		slog.String("method", opts.CustomSchMethod.String()),
		slog.Int("cached", len(state.delivered)))

	run := &Run{
		process: proc,
		done:    make(chan struct{}),
	}

	params := walker.Params{
		Process:        proc,
		Filter:         flt,
		Strategy:       strategy,
		FollowSymlinks: opts.CustomSymbolicChk,
	}

	e.runs.Add(1)
	go func() {
		defer e.runs.Done()
		defer close(run.done)
		e.execute(run, req.Keyword, opts, root, started, params, state, sink)
	}()

	return run, nil
}

// runState is owned by the goroutine executing a run
type runState struct {
	seen      map[string]struct{}
	delivered []types.FileItem
	cacheHits int
	found     []string
	foundSet  map[string]struct{}
}

// deliver forwards item unless its path was already delivered
func (s *runState) deliver(item types.FileItem, sink Sink) {
	if _, ok := s.seen[item.Path]; ok {
		return
	}
	s.seen[item.Path] = struct{}{}
	s.delivered = append(s.delivered, item)
	sink.Result(item)
}

// record notes a path produced by the walk
func (s *runState) record(path string) {
	if s.foundSet == nil {
		s.foundSet = make(map[string]struct{})
	}
	if _, ok := s.foundSet[path]; ok {
		return
	}
	s.foundSet[path] = struct{}{}
	s.found = append(s.found, path)
}

// serveCached delivers the still-valid paths of a cached result set. Stale
// paths are dropped from what is served; the stored entry is untouched.
func (e *Engine) serveCached(keyword string, opts types.SearchOptions, root string, state *runState, sink Sink) {
	if e.cfg.Cache == nil {
		return
	}
	paths, ok, err := e.cfg.Cache.Lookup(keyword, opts)
	if err != nil {
		e.logger.Warn("cache lookup failed", slog.String("error", err.Error()))
		return
	}
	if !ok {
		return
	}

	for _, path := range paths {
		if !isUnder(path, root) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !opts.InScope(info.IsDir()) {
			continue
		}
		state.deliver(types.NewFileItem(path), sink)
		state.cacheHits++
	}
}

// execute drives the walk and finishes the run
func (e *Engine) execute(run *Run, keyword string, opts types.SearchOptions, root string, started time.Time,
	params walker.Params, state *runState, sink Sink) {
	proc := run.process

	walkCtx, cancelWalk := context.WithCancel(e.ctx)
	defer cancelWalk()

	results := make(chan types.FileItem, e.cfg.ChannelCapacity)
	params.Results = results

	walkErr := make(chan error, 1)
	go func() {
		walkErr <- e.walker.Walk(walkCtx, root, opts.ThreadPoolSize(0), params)
		close(results)
	}()

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	// Once cancelled, buffered matches are drained so the walker can unwind
	// but are no longer delivered
	stopped := false
	for results != nil {
		select {
		case item, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if stopped || proc.IsCancelled() {
				stopped = true
				cancelWalk()
				continue
			}
			state.record(item.Path)
			state.deliver(item, sink)
		case <-ticker.C:
			if proc.IsCancelled() {
				stopped = true
				cancelWalk()
			}
		}
	}
	err := <-walkErr

	proc.MarkCompleted()
	e.registry.Unregister(proc.ID())

	cancelled := proc.IsCancelled() || e.ctx.Err() != nil
	if cancelled {
		err = nil
	}
	elapsed := time.Since(started)
	ended := started.Add(elapsed)

	run.outcome = Outcome{
		ProcessID: proc.ID(),
		Results:   state.delivered,
		Found:     state.found,
		CacheHits: state.cacheHits,
		Cancelled: cancelled,
		Elapsed:   elapsed,
	}
	run.err = err

	status := types.RunCompleted
	switch {
	case err != nil:
		status = types.RunFailed
		e.logger.Error("search failed", slog.String("id", proc.ID()), slog.String("error", err.Error()))
		sink.Failed(err)
	case cancelled:
		status = types.RunCancelled
		e.logger.Info("search cancelled", slog.String("id", proc.ID()), slog.Int("results", len(state.delivered)))
	default:
		e.logger.Info("search completed",
			slog.String("id", proc.ID()),
			slog.Int("results", len(state.delivered)),
			slog.Duration("elapsed", elapsed))
		if e.cfg.Cache != nil {
			if cerr := e.cfg.Cache.Update(keyword, opts, state.found); cerr != nil {
				e.logger.Warn("cache update failed", slog.String("error", cerr.Error()))
			}
		}
	}

	sink.Elapsed(elapsed)

	if opts.CustomLogUse && e.cfg.ActivityLog != nil {
		rec := searchlog.NewRecord(keyword, opts, root, started, ended, state.found)
		if path, lerr := e.cfg.ActivityLog.Write(rec); lerr != nil {
			e.logger.Warn("failed to write search log", slog.String("error", lerr.Error()))
		} else {
			e.logger.Debug("search log written", slog.String("path", path))
		}
	}

	if e.cfg.History != nil {
		entry := types.SearchRun{
			ProcessID:   proc.ID(),
			Keyword:     keyword,
			Directory:   root,
			Options:     opts,
			StartedAt:   started,
			EndedAt:     ended,
			ResultCount: len(state.delivered),
			CacheHits:   state.cacheHits,
			Status:      status,
		}
		if err != nil {
			entry.Error = err.Error()
		}
		// History outlives the engine context so shutdown runs are recorded
		if herr := e.cfg.History.RecordRun(context.WithoutCancel(e.ctx), entry); herr != nil {
			e.logger.Warn("failed to record search history", slog.String("error", herr.Error()))
		}
	}
}

// Cancel requests cancellation of the run registered under id
func (e *Engine) Cancel(id string) error {
	if err := e.registry.Cancel(id); err != nil {
		return err
	}
	e.logger.Info("search cancellation requested", slog.String("id", id))
	return nil
}

// Active returns the processes currently running
func (e *Engine) Active() []types.ProcessInfo {
	return e.registry.Active()
}

// Close cancels every running search and waits for them to finish
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.registry.CancelAll()
		e.cancel()
	})
	e.runs.Wait()
	return nil
}

// canonicalRoot resolves dir to an absolute, symlink-free directory path
func canonicalRoot(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: empty path", types.ErrDirectoryNotFound)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", types.ErrDirectoryNotFound, dir)
		}
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrDirectoryNotFound, dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", types.ErrNotDirectory, dir)
	}
	return resolved, nil
}

// isUnder reports whether path lies inside root (or is root)
func isUnder(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

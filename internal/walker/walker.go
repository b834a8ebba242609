package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/dshills/filescout-mcp/internal/filter"
	"github.com/dshills/filescout-mcp/internal/fsmeta"
	"github.com/dshills/filescout-mcp/internal/matcher"
	"github.com/dshills/filescout-mcp/pkg/types"
)

// Default walker limits
const (
	DefaultMaxConcurrentScans = 16
	DefaultYieldEvery         = 64
)

// Canceller is the cancellation flag a walk polls
type Canceller interface {
	IsCancelled() bool
}

// Config contains configuration for a Walker
type Config struct {
	MaxConcurrentScans int // Directories scanned at once (default: 16)
	YieldEvery         int // Entries between scheduler yields (default: 64)
	Logger             *slog.Logger
}

// Params describes one walk
type Params struct {
	Process        Canceller
	Filter         *filter.Filter // nil disables property filtering
	Strategy       matcher.Strategy
	FollowSymlinks bool
	Results        chan<- types.FileItem
}

// Walker traverses directory trees concurrently
type Walker struct {
	maxScans   int
	yieldEvery int
	logger     *slog.Logger
}

// New creates a Walker
func New(cfg Config) *Walker {
	if cfg.MaxConcurrentScans <= 0 {
		cfg.MaxConcurrentScans = DefaultMaxConcurrentScans
	}
	if cfg.YieldEvery <= 0 {
		cfg.YieldEvery = DefaultYieldEvery
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Walker{
		maxScans:   cfg.MaxConcurrentScans,
		yieldEvery: cfg.YieldEvery,
		logger:     cfg.Logger,
	}
}

// walk is the state shared by the tasks of one traversal
type walk struct {
	*Walker
	params  Params
	sem     *semaphore.Weighted
	group   *errgroup.Group
	ctx     context.Context
	entries atomic.Int64

	visitedMu sync.Mutex
	visited   map[string]struct{}
}

// Walk traverses root and sends every matching entry on params.Results. It
// returns once every spawned directory task has finished. A cancelled walk
// returns nil; the first fatal error aborts the remaining tasks and is
// returned.
//
// scans overrides the configured concurrency bound when positive.
func (w *Walker) Walk(ctx context.Context, root string, scans int, params Params) error {
	if params.Strategy == nil {
		return errors.New("walker: strategy is required")
	}
	if params.Results == nil {
		return errors.New("walker: results channel is required")
	}
	if scans <= 0 {
		scans = w.maxScans
	}

	g, gctx := errgroup.WithContext(ctx)
	wk := &walk{
		Walker:  w,
		params:  params,
		sem:     semaphore.NewWeighted(int64(scans)),
		group:   g,
		ctx:     gctx,
		visited: make(map[string]struct{}),
	}
	wk.markVisited(root)
	wk.spawn(root)

	return g.Wait()
}

func (wk *walk) cancelled() bool {
	if wk.ctx.Err() != nil {
		return true
	}
	return wk.params.Process != nil && wk.params.Process.IsCancelled()
}

// spawn schedules dir as its own task. Permission errors from the subtree
// never fail the walk.
func (wk *walk) spawn(dir string) {
	wk.group.Go(func() error {
		err := wk.scan(dir)
		if err != nil && errors.Is(err, fs.ErrPermission) {
			wk.logger.Debug("skipping directory", slog.String("path", dir), slog.String("error", err.Error()))
			return nil
		}
		return err
	})
}

// scan lists one directory and processes its entries. The semaphore is
// held for the duration of the scan and released before returning; child
// directories run as independent tasks, so no task waits on another while
// holding a slot.
func (wk *walk) scan(dir string) error {
	if wk.cancelled() {
		return nil
	}
	if err := wk.sem.Acquire(wk.ctx, 1); err != nil {
		return nil
	}
	defer wk.sem.Release(1)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			wk.logger.Debug("directory not readable", slog.String("path", dir), slog.String("error", err.Error()))
			return nil
		}
		// Partial listings are still processed below; only a failure
		// without entries is fatal.
		if len(entries) == 0 {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		wk.logger.Warn("partial directory listing", slog.String("path", dir), slog.String("error", err.Error()))
	}

	for _, entry := range entries {
		if wk.cancelled() {
			return nil
		}
		if n := wk.entries.Add(1); n%int64(wk.yieldEvery) == 0 {
			runtime.Gosched()
		}

		if err := wk.visit(filepath.Join(dir, entry.Name()), entry); err != nil {
			return err
		}
	}
	return nil
}

// visit applies symlink policy, metadata filter and strategy to one entry
func (wk *walk) visit(path string, entry fs.DirEntry) error {
	if entry.Type()&fs.ModeSymlink != 0 && !wk.params.FollowSymlinks {
		return nil
	}

	meta, err := fsmeta.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			wk.logger.Debug("skipping entry", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		return fmt.Errorf("failed to read metadata of %s: %w", path, err)
	}

	excluded := false
	if wk.params.Filter != nil {
		var reason filter.Reason
		excluded, reason = wk.params.Filter.Exclude(meta)
		if excluded {
			wk.logger.Debug("entry filtered", slog.String("path", path), slog.String("reason", string(reason)))
		}
	}

	if !excluded {
		item, ok, err := wk.params.Strategy.Match(wk.ctx, path, meta.Info)
		if err != nil {
			if wk.ctx.Err() != nil {
				return nil
			}
			return err
		}
		if ok {
			select {
			case wk.params.Results <- item:
			case <-wk.ctx.Done():
				return nil
			}
		}
	}

	if meta.IsDir() && wk.enter(path) {
		wk.spawn(path)
	}
	return nil
}

// enter reports whether a directory should be descended. When symlinks are
// followed each resolved directory is descended once so link cycles end.
func (wk *walk) enter(path string) bool {
	if !wk.params.FollowSymlinks {
		return true
	}
	return wk.markVisited(path)
}

// markVisited records the resolved form of dir and reports whether it was
// new
func (wk *walk) markVisited(dir string) bool {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	wk.visitedMu.Lock()
	defer wk.visitedMu.Unlock()
	if _, ok := wk.visited[dir]; ok {
		return false
	}
	wk.visited[dir] = struct{}{}
	return true
}

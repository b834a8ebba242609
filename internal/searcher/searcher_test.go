package searcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/filescout-mcp/internal/cache"
	"github.com/dshills/filescout-mcp/internal/matcher"
	"github.com/dshills/filescout-mcp/internal/searchlog"
	"github.com/dshills/filescout-mcp/pkg/types"
)

// sampleTree creates root/a.txt (10 bytes), root/b.txt (1000 bytes) and
// root/sub/c.txt (10 bytes)
func sampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), make([]byte, 10), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), make([]byte, 1000), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "c.txt"), make([]byte, 10), 0644))
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	return resolved
}

type memHistory struct {
	mu   sync.Mutex
	runs []types.SearchRun
}

func (h *memHistory) RecordRun(_ context.Context, run types.SearchRun) error {
	h.mu.Lock()
	h.runs = append(h.runs, run)
	h.mu.Unlock()
	return nil
}

func (h *memHistory) all() []types.SearchRun {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]types.SearchRun(nil), h.runs...)
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Cache == nil {
		cfg.Cache = cache.Open(filepath.Join(t.TempDir(), "search_cache.json"), cache.DefaultCapacity)
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Millisecond
	}
	e := New(cfg)
	t.Cleanup(func() { e.Close() })
	return e
}

func paths(items []types.FileItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Path)
	}
	sort.Strings(out)
	return out
}

func TestStart_SizeFilterExample(t *testing.T) {
	root := sampleTree(t)
	e := newEngine(t, Config{})

	opts := types.DefaultSearchOptions()
	opts.CustomPropertyUse = true
	opts.CustomFileSizeUse = true
	opts.SizeMax = 100

	sink := &RecordingSink{}
	run, err := e.Start(context.Background(), Request{Keyword: "a", Directory: root, Options: opts}, sink)
	require.NoError(t, err)

	outcome, err := run.Wait()
	require.NoError(t, err)
	assert.False(t, outcome.Cancelled)
	assert.Equal(t, []string{filepath.Join(root, "a.txt")}, paths(outcome.Results))
	assert.Equal(t, paths(outcome.Results), paths(sink.Results()))

	require.Len(t, sink.ProcessInfos(), 1)
	assert.Equal(t, run.ID(), sink.ProcessInfos()[0].ID)
	assert.Len(t, sink.ElapsedTimes(), 1)
	assert.Empty(t, sink.Errors())
}

func TestStart_FilesOnlyExample(t *testing.T) {
	root := sampleTree(t)
	e := newEngine(t, Config{})

	opts := types.DefaultSearchOptions()
	opts.SearchScope = types.ScopeFilesOnly

	run, err := e.Start(context.Background(), Request{Keyword: "c", Directory: root, Options: opts}, nil)
	require.NoError(t, err)
	outcome, err := run.Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "sub", "c.txt")}, paths(outcome.Results))
}

func TestStart_Validation(t *testing.T) {
	root := sampleTree(t)
	file := filepath.Join(root, "a.txt")
	e := newEngine(t, Config{})

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"empty keyword", Request{Directory: root, Options: types.DefaultSearchOptions()}, types.ErrEmptyKeyword},
		{"missing directory", Request{Keyword: "a", Directory: filepath.Join(root, "nope")}, types.ErrDirectoryNotFound},
		{"file as directory", Request{Keyword: "a", Directory: file}, types.ErrNotDirectory},
		{"bad scope", Request{Keyword: "a", Directory: root, Options: types.SearchOptions{SearchScope: "7"}}, types.ErrInvalidOptions},
		{"bad regex", Request{Keyword: "(", Directory: root, Options: types.SearchOptions{CustomSchMethod: types.MethodRegex}}, matcher.ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := e.Start(context.Background(), tt.req, nil)
			assert.Nil(t, run)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, e.Active(), "rejected requests never register a process")
}

func TestStart_CacheHitAndDedup(t *testing.T) {
	root := sampleTree(t)
	c := cache.Open(filepath.Join(t.TempDir(), "c.json"), cache.DefaultCapacity)
	e := newEngine(t, Config{Cache: c})
	req := Request{Keyword: "a", Directory: root, Options: types.DefaultSearchOptions()}

	first, err := e.Start(context.Background(), req, nil)
	require.NoError(t, err)
	out1, err := first.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, out1.CacheHits)

	sink := &RecordingSink{}
	second, err := e.Start(context.Background(), req, sink)
	require.NoError(t, err)
	out2, err := second.Wait()
	require.NoError(t, err)

	assert.Equal(t, len(out1.Results), out2.CacheHits)
	assert.Equal(t, paths(out1.Results), paths(sink.Results()), "cached and walked paths are delivered once")

	entries, err := c.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(2), entries[0].Hit)
}

func TestStart_StaleCachePathsNotServed(t *testing.T) {
	root := sampleTree(t)
	c := cache.Open(filepath.Join(t.TempDir(), "c.json"), cache.DefaultCapacity)
	opts := types.DefaultSearchOptions()
	outside := t.TempDir()

	require.NoError(t, c.Update("zzz", opts, []string{
		filepath.Join(root, "gone.txt"),
		filepath.Join(outside, "zzz.txt"),
	}))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "zzz.txt"), nil, 0644))

	e := newEngine(t, Config{Cache: c})
	sink := &RecordingSink{}
	run, err := e.Start(context.Background(), Request{Keyword: "zzz", Directory: root, Options: opts}, sink)
	require.NoError(t, err)
	out, err := run.Wait()
	require.NoError(t, err)

	assert.Empty(t, sink.Results())
	assert.Equal(t, 0, out.CacheHits)
}

func TestStart_CachedPathsRespectScope(t *testing.T) {
	root := sampleTree(t)
	c := cache.Open(filepath.Join(t.TempDir(), "c.json"), cache.DefaultCapacity)
	opts := types.DefaultSearchOptions()
	opts.SearchScope = types.ScopeDirsOnly
	// A corrupt entry pointing at a file under a dirs-only key
	require.NoError(t, c.Update("a", opts, []string{filepath.Join(root, "a.txt")}))

	e := newEngine(t, Config{Cache: c})
	sink := &RecordingSink{}
	run, err := e.Start(context.Background(), Request{Keyword: "a", Directory: root, Options: opts}, sink)
	require.NoError(t, err)
	_, err = run.Wait()
	require.NoError(t, err)
	assert.Empty(t, sink.Results())
}

// blockingSink stalls the first result until released
type blockingSink struct {
	RecordingSink
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func (s *blockingSink) Result(item types.FileItem) {
	s.once.Do(func() {
		close(s.reached)
		<-s.release
	})
	s.RecordingSink.Result(item)
}

func TestCancel(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 50; i++ {
		dir := filepath.Join(root, "d", string(rune('a'+i%26)), string(rune('a'+i/26)))
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "match.txt"), nil, 0644))
	}

	c := cache.Open(filepath.Join(t.TempDir(), "c.json"), cache.DefaultCapacity)
	history := &memHistory{}
	e := newEngine(t, Config{Cache: c, History: history})

	sink := &blockingSink{reached: make(chan struct{}), release: make(chan struct{})}
	run, err := e.Start(context.Background(), Request{Keyword: "match", Directory: root, Options: types.DefaultSearchOptions()}, sink)
	require.NoError(t, err)

	<-sink.reached
	active := e.Active()
	require.Len(t, active, 1)
	assert.Equal(t, run.ID(), active[0].ID)

	require.NoError(t, e.Cancel(run.ID()))
	close(sink.release)

	outcome, err := run.Wait()
	require.NoError(t, err)
	assert.True(t, outcome.Cancelled)
	assert.Empty(t, e.Active())

	entries, err := c.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries, "cancelled runs do not update the cache")

	runs := history.all()
	require.Len(t, runs, 1)
	assert.Equal(t, types.RunCancelled, runs[0].Status)

	err = e.Cancel(run.ID())
	assert.ErrorIs(t, err, types.ErrProcessNotFound, "finished runs are unregistered")
}

func TestCancel_StopsDeliveringBufferedResults(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 400; i++ {
		name := fmt.Sprintf("match-%03d.txt", i)
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0644))
	}

	e := newEngine(t, Config{})
	sink := &blockingSink{reached: make(chan struct{}), release: make(chan struct{})}
	run, err := e.Start(context.Background(), Request{Keyword: "match", Directory: root, Options: types.DefaultSearchOptions()}, sink)
	require.NoError(t, err)

	// The first result blocks the drain while the walker fills the channel
	<-sink.reached
	require.NoError(t, e.Cancel(run.ID()))
	time.Sleep(10 * e.cfg.PollInterval)
	close(sink.release)

	outcome, err := run.Wait()
	require.NoError(t, err)
	assert.True(t, outcome.Cancelled)
	assert.Len(t, sink.Results(), 1, "only the result in flight at cancellation is delivered")
	assert.Len(t, outcome.Results, 1)
}

func TestActivityLogAndHistory(t *testing.T) {
	root := sampleTree(t)
	logs := searchlog.NewWriter(filepath.Join(t.TempDir(), "logs"))
	history := &memHistory{}
	e := newEngine(t, Config{ActivityLog: logs, History: history})

	opts := types.DefaultSearchOptions()
	opts.CustomLogUse = true
	opts.SearchScope = types.ScopeFilesOnly
	run, err := e.Start(context.Background(), Request{Keyword: "b", Directory: root, Options: opts}, nil)
	require.NoError(t, err)
	_, err = run.Wait()
	require.NoError(t, err)

	files, err := logs.List()
	require.NoError(t, err)
	require.Len(t, files, 1)

	rec, err := searchlog.Read(files[0])
	require.NoError(t, err)
	assert.Equal(t, "b", rec.Keyword)
	assert.Equal(t, root, rec.Directory)
	assert.Equal(t, []string{filepath.Join(root, "b.txt")}, rec.Results)
	assert.Equal(t, 1, rec.ResultsCount)

	runs := history.all()
	require.Len(t, runs, 1)
	assert.Equal(t, types.RunCompleted, runs[0].Status)
	assert.Equal(t, 1, runs[0].ResultCount)
	assert.Equal(t, run.ID(), runs[0].ProcessID)
}

func TestActivityLogDisabledByOption(t *testing.T) {
	root := sampleTree(t)
	logs := searchlog.NewWriter(filepath.Join(t.TempDir(), "logs"))
	e := newEngine(t, Config{ActivityLog: logs})

	run, err := e.Start(context.Background(), Request{Keyword: "b", Directory: root, Options: types.DefaultSearchOptions()}, nil)
	require.NoError(t, err)
	_, err = run.Wait()
	require.NoError(t, err)

	files, err := logs.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFuzzyThresholdsFromFile(t *testing.T) {
	root := sampleTree(t)
	thresholds := filepath.Join(t.TempDir(), "fuzzy_properties.yaml")
	require.NoError(t, os.WriteFile(thresholds, []byte("- name: Damerau-Levenshtein\n  threshold: 0\n"), 0644))

	opts := types.DefaultSearchOptions()
	opts.CustomSchMethod = types.MethodDamerauLevenshtein
	opts.SearchScope = types.ScopeFilesOnly

	e := newEngine(t, Config{ThresholdsPath: thresholds})
	run, err := e.Start(context.Background(), Request{Keyword: "a.tx", Directory: root, Options: opts}, nil)
	require.NoError(t, err)
	out, err := run.Wait()
	require.NoError(t, err)
	assert.Empty(t, out.Results, "threshold 0 requires an exact name")

	e2 := newEngine(t, Config{})
	run, err = e2.Start(context.Background(), Request{Keyword: "a.tx", Directory: root, Options: opts}, nil)
	require.NoError(t, err)
	out, err = run.Wait()
	require.NoError(t, err)
	assert.Contains(t, paths(out.Results), filepath.Join(root, "a.txt"))
}

func TestClose(t *testing.T) {
	root := sampleTree(t)
	e := New(Config{})
	run, err := e.Start(context.Background(), Request{Keyword: "a", Directory: root, Options: types.DefaultSearchOptions()}, nil)
	require.NoError(t, err)

	require.NoError(t, e.Close())
	select {
	case <-run.Done():
	default:
		t.Fatal("Close must wait for running searches")
	}

	_, err = e.Start(context.Background(), Request{Keyword: "a", Directory: root}, nil)
	assert.Error(t, err)
}

func TestIsUnder(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "data", "root")
	assert.True(t, isUnder(filepath.Join(root, "a.txt"), root))
	assert.True(t, isUnder(root, root))
	assert.True(t, isUnder(filepath.Join(root, "..data", "x"), root))
	assert.False(t, isUnder(filepath.Join(root, "..", "other"), root))
	assert.False(t, isUnder(filepath.Join(string(filepath.Separator), "data", "rootx"), root))
}

func TestStart_ContextAlreadyCancelled(t *testing.T) {
	root := sampleTree(t)
	e := newEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Start(ctx, Request{Keyword: "a", Directory: root}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

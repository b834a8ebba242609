package process

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/filescout-mcp/pkg/types"
)

func TestProcess_Cancel(t *testing.T) {
	p := New()
	assert.NotEmpty(t, p.ID())
	assert.False(t, p.IsCancelled())

	assert.True(t, p.Cancel())
	assert.True(t, p.IsCancelled())
	assert.Equal(t, types.ProcessInfo{ID: p.ID(), IsCancelled: true}, p.Info())
}

func TestProcess_CancelAfterCompleteIsNoop(t *testing.T) {
	p := New()
	p.MarkCompleted()

	assert.False(t, p.Cancel())
	assert.False(t, p.IsCancelled())
	assert.True(t, p.IsCompleted())
}

func TestProcess_CompleteDoesNotCancel(t *testing.T) {
	p := New()
	p.MarkCompleted()
	assert.False(t, p.IsCancelled())
}

func TestProcess_UniqueTokens(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New().ID()
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	p := New()
	r.Register(p)

	got, ok := r.Lookup(p.ID())
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Cancel(p.ID()))
	assert.True(t, p.IsCancelled())

	r.Unregister(p.ID())
	_, ok = r.Lookup(p.ID())
	assert.False(t, ok)

	// Unregistering twice is harmless
	r.Unregister(p.ID())
}

func TestRegistry_CancelUnknown(t *testing.T) {
	r := NewRegistry()
	err := r.Cancel("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrProcessNotFound)
	assert.Contains(t, err.Error(), "process not found")
}

func TestRegistry_ActiveAndCancelAll(t *testing.T) {
	r := NewRegistry()
	a, b := New(), New()
	r.Register(a)
	r.Register(b)

	active := r.Active()
	require.Len(t, active, 2)

	r.CancelAll()
	for _, info := range r.Active() {
		assert.True(t, info.IsCancelled)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := New()
			r.Register(p)
			_ = r.Cancel(p.ID())
			r.Active()
			r.Unregister(p.ID())
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}

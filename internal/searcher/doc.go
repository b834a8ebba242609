// Package searcher runs cancellable, streaming file-system searches.
//
// The Engine ties the search components together: it validates a request,
// serves matching results from the result cache, registers a process for
// the run and walks the tree in the background while matches stream to a
// Sink.
//
// # Basic Usage
//
//	engine := searcher.New(searcher.Config{
//	    Cache:    cache.Open(cachePath, cache.DefaultCapacity),
//	    Registry: process.NewRegistry(),
//	})
//	defer engine.Close()
//
//	run, err := engine.Start(ctx, searcher.Request{
//	    Keyword:   "report",
//	    Directory: "/home/me/docs",
//	    Options:   types.DefaultSearchOptions(),
//	}, sink)
//	if err != nil {
//	    return err // bad options, missing directory, invalid regex
//	}
//
//	outcome, err := run.Wait()
//
// Start returns as soon as the run is registered. The token in run.ID() can
// be passed to Engine.Cancel from any goroutine.
//
// # Run Lifecycle
//
//	Start
//	  ├─ validate options and directory, build strategy
//	  ├─ serve cached paths (still existing, under root, in scope)
//	  ├─ register process, Sink.ProcessInfo
//	  └─ go execute
//	       ├─ walker → channel → dedup → Sink.Result
//	       ├─ poll ticker: cancelled process cancels the walk
//	       ├─ mark completed, unregister
//	       ├─ cache update (completed runs only)
//	       ├─ Sink.Elapsed
//	       ├─ activity log (when enabled)
//	       └─ history record
//
// # Delivery Guarantees
//
// Each path reaches the sink at most once per run; cached paths are seeded
// into the same seen-set as walk results. There is no ordering guarantee
// between subtrees.
//
// # Cancellation
//
// Cancellation is cooperative. The walker checks the process flag before
// each directory and entry, and the run loop cancels the walk context at the
// next poll tick. Results already delivered stay delivered; a cancelled run
// does not update the cache.
//
// # Caching
//
// The cache stores the paths found by the walk, keyed by keyword and the
// complete options value. Cached paths that no longer exist, moved outside
// the search root or fall out of scope are skipped when served but remain
// stored until the next completed run for the same key replaces them.
package searcher

// Package walker performs the concurrent directory traversal of a search.
//
// # Traversal
//
// Every directory is scanned by its own task in an errgroup. Scans are
// bounded by a weighted semaphore: a task holds one slot while it lists its
// directory and evaluates the entries, and releases it before returning.
// Subdirectories are scheduled as new tasks rather than visited inline, so a
// task never holds a slot while waiting for another task.
//
//	Walk(root)
//	  └─ scan(root)            acquire slot
//	       ├─ ReadDir
//	       ├─ visit(entry) ... stat → filter → match → send
//	       │    └─ spawn(subdir)
//	       └─ release slot
//
// # Errors
//
// Permission problems never fail a walk: an unreadable directory is treated
// as empty and an entry whose metadata cannot be read is skipped. Entries
// that vanish between listing and stat are skipped too. Any other listing or
// metadata failure is fatal and cancels the remaining tasks.
//
// # Cancellation
//
// The walk polls its Canceller and its context before each directory scan
// and before each entry. Results already sent stay sent. A cancelled walk
// returns nil.
//
// # Symlinks
//
// Symlinks are skipped unless FollowSymlinks is set. When they are followed,
// every directory is descended at most once, keyed by its resolved path, so
// link cycles terminate.
package walker

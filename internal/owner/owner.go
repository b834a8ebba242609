// Package owner resolves the owning account of file-system entries.
//
// Owner lookup is the one platform-specific part of the search filters. The
// Resolver interface hides the platform: unix reads the owning uid from stat
// data, windows reads the owner SID from the security descriptor. On windows
// reading ownership of arbitrary files needs an elevated token, so Capable
// may trigger a one-shot elevation request that relaunches the process.
// Callers must check Capable before relying on owner data.
package owner

import (
	"errors"
	"io/fs"
	"log/slog"
)

// DefaultCacheSize is the number of resolved owner names kept in memory
const DefaultCacheSize = 1024

// ErrUnsupported is returned on platforms without owner lookup
var ErrUnsupported = errors.New("owner lookup not supported on this platform")

// Resolver looks up entry owners
type Resolver interface {
	// Capable reports whether owner data can be queried by this process.
	// It may have side effects on platforms that require elevation.
	Capable() bool

	// Owner returns the account name owning path
	Owner(path string, info fs.FileInfo) (string, error)
}

// Elevator relaunches the process with elevated rights. A successful call
// does not return.
type Elevator func() error

// Config contains configuration for the platform resolver
type Config struct {
	DevBuild  bool     // Skip elevation checks (development builds)
	Elevate   Elevator // Defaults to the platform relaunch
	CacheSize int      // Resolved-name cache size (default: DefaultCacheSize)
	Logger    *slog.Logger
}

// New creates the resolver for the running platform
func New(cfg Config) (Resolver, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return newPlatformResolver(cfg)
}

// Static is a fixed Resolver, useful where the real account database is
// not wanted
type Static struct {
	Name      string
	Err       error
	Incapable bool
}

// Capable reports the configured capability
func (s Static) Capable() bool {
	return !s.Incapable
}

// Owner returns the configured name or error
func (s Static) Owner(string, fs.FileInfo) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Name, nil
}

//go:build unix

package owner

import (
	"fmt"
	"io/fs"
	"os/user"
	"strconv"
	"syscall"

	lru "github.com/hashicorp/golang-lru/v2"
)

// unixResolver maps the owning uid from stat data to a user name
type unixResolver struct {
	names  *lru.Cache[uint32, string]
	lookup func(uid string) (*user.User, error)
}

func newPlatformResolver(cfg Config) (Resolver, error) {
	names, err := lru.New[uint32, string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner cache: %w", err)
	}
	return &unixResolver{
		names:  names,
		lookup: user.LookupId,
	}, nil
}

// Capable is always true: the owning uid is part of stat data readable by
// any caller that can list the entry
func (r *unixResolver) Capable() bool {
	return true
}

// Owner returns the user name owning the entry, or the numeric uid when the
// account database has no entry for it
func (r *unixResolver) Owner(path string, info fs.FileInfo) (string, error) {
	if info == nil {
		return "", fmt.Errorf("no metadata for %s", path)
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", fmt.Errorf("no ownership data for %s", path)
	}

	uid := st.Uid
	if name, ok := r.names.Get(uid); ok {
		return name, nil
	}

	name := strconv.FormatUint(uint64(uid), 10)
	if u, err := r.lookup(name); err == nil && u.Username != "" {
		name = u.Username
	}
	r.names.Add(uid, name)
	return name, nil
}

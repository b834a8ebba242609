//go:build windows

package owner

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sys/windows"
)

// windowsResolver reads owner SIDs from file security descriptors
type windowsResolver struct {
	devBuild bool
	elevate  Elevator
	logger   *slog.Logger
	names    *lru.Cache[string, string]

	once    sync.Once
	capable bool
}

func newPlatformResolver(cfg Config) (Resolver, error) {
	names, err := lru.New[string, string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner cache: %w", err)
	}
	elevate := cfg.Elevate
	if elevate == nil {
		elevate = relaunchElevated
	}
	return &windowsResolver{
		devBuild: cfg.DevBuild,
		elevate:  elevate,
		logger:   cfg.Logger,
		names:    names,
	}, nil
}

// Capable reports whether the process token is elevated. The first call on a
// non-elevated release build requests elevation, which relaunches the
// process and exits on success.
func (r *windowsResolver) Capable() bool {
	r.once.Do(func() {
		if r.devBuild {
			r.logger.Debug("development build, skipping elevation check")
			r.capable = true
			return
		}
		if windows.GetCurrentProcessToken().IsElevated() {
			r.capable = true
			return
		}
		r.logger.Info("owner filter requires elevation, requesting it")
		if err := r.elevate(); err != nil {
			r.logger.Warn("elevation request failed", slog.String("error", err.Error()))
		}
	})
	return r.capable
}

// Owner returns the account name of the entry's owner SID
func (r *windowsResolver) Owner(path string, _ fs.FileInfo) (string, error) {
	sd, err := windows.GetNamedSecurityInfo(path, windows.SE_FILE_OBJECT, windows.OWNER_SECURITY_INFORMATION)
	if err != nil {
		return "", fmt.Errorf("failed to read security info for %s: %w", path, err)
	}
	sid, _, err := sd.Owner()
	if err != nil {
		return "", fmt.Errorf("failed to read owner of %s: %w", path, err)
	}

	key := sid.String()
	if name, ok := r.names.Get(key); ok {
		return name, nil
	}

	account, _, _, err := sid.LookupAccount("")
	if err != nil {
		return "", fmt.Errorf("failed to resolve owner of %s: %w", path, err)
	}
	r.names.Add(key, account)
	return account, nil
}

// relaunchElevated starts a new elevated instance of the running executable
// with the same arguments and terminates this one
func relaunchElevated() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	cmd := exec.Command("powershell", "-NoProfile", "-Command", elevationScript(exe, os.Args[1:]))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to request elevation: %w", err)
	}
	os.Exit(0)
	return nil
}

// Package fsmeta reads the per-entry metadata the search filters work on.
package fsmeta

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/djherbis/times"
)

// Metadata describes one file-system entry
type Metadata struct {
	Path      string
	Info      fs.FileInfo // Target of the entry when it is a symlink
	IsSymlink bool

	// Created is only meaningful when HasCreated is true; not every
	// platform and file system records a birth time.
	Created    time.Time
	HasCreated bool
}

// Name returns the base name of the entry
func (m Metadata) Name() string {
	return filepath.Base(m.Path)
}

// IsDir reports whether the entry (or its symlink target) is a directory
func (m Metadata) IsDir() bool {
	return m.Info != nil && m.Info.IsDir()
}

// IsRegular reports whether the entry (or its symlink target) is a regular file
func (m Metadata) IsRegular() bool {
	return m.Info != nil && m.Info.Mode().IsRegular()
}

// Size returns the entry size in bytes
func (m Metadata) Size() uint64 {
	if m.Info == nil || m.Info.Size() < 0 {
		return 0
	}
	return uint64(m.Info.Size())
}

// Modified returns the modification time
func (m Metadata) Modified() time.Time {
	if m.Info == nil {
		return time.Time{}
	}
	return m.Info.ModTime()
}

// Stat reads metadata for path, following symlinks
func Stat(path string) (Metadata, error) {
	linfo, err := os.Lstat(path)
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{
		Path:      path,
		Info:      linfo,
		IsSymlink: linfo.Mode()&fs.ModeSymlink != 0,
	}

	if meta.IsSymlink {
		info, err := os.Stat(path)
		if err != nil {
			return Metadata{}, err
		}
		meta.Info = info
	}

	// Birth time is best effort: a failure here leaves the creation-date
	// filter inactive for this entry.
	if ts, err := times.Stat(path); err == nil && ts.HasBirthTime() {
		meta.Created = ts.BirthTime()
		meta.HasCreated = true
	}

	return meta, nil
}

// FromInfo builds metadata from an already known FileInfo, without a
// creation time
func FromInfo(path string, info fs.FileInfo) Metadata {
	return Metadata{
		Path: path,
		Info: info,
	}
}

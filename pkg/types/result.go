package types

import (
	"os"
	"path/filepath"
)

// FileItem is a single search result
type FileItem struct {
	Name string `json:"file_name"` // Base name of the entry
	Path string `json:"file_path"` // Absolute path
}

// NewFileItem builds a FileItem from an absolute path
func NewFileItem(path string) FileItem {
	return FileItem{
		Name: filepath.Base(path),
		Path: path,
	}
}

// IsDir reports whether the item currently refers to a directory
func (fi FileItem) IsDir() bool {
	info, err := os.Stat(fi.Path)
	return err == nil && info.IsDir()
}

// Validate checks if the file item is usable
func (fi FileItem) Validate() error {
	if fi.Path == "" {
		return ErrEmptyPath
	}
	if !filepath.IsAbs(fi.Path) {
		return ErrRelativePath
	}
	return nil
}

// ProcessInfo is the serialisable snapshot of a search process
type ProcessInfo struct {
	ID          string `json:"id"`
	IsCancelled bool   `json:"is_cancelled"`
}

// Paths returns the paths of the given items in order
func Paths(items []FileItem) []string {
	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path
	}
	return paths
}

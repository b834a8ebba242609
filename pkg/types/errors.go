package types

import "errors"

// Domain errors
var (
	// Search request errors
	ErrEmptyKeyword      = errors.New("keyword cannot be empty")
	ErrDirectoryNotFound = errors.New("directory does not exist")
	ErrNotDirectory      = errors.New("path is not a directory")
	ErrInvalidOptions    = errors.New("invalid search options")
	ErrProcessNotFound   = errors.New("process not found")

	// Result errors
	ErrEmptyPath    = errors.New("path cannot be empty")
	ErrRelativePath = errors.New("path must be absolute")
)

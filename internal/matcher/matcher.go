package matcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dshills/filescout-mcp/pkg/types"
)

// DefaultMaxContentBytes bounds the size of files read for content matching
const DefaultMaxContentBytes = 10 * 1024 * 1024

// ErrInvalidPattern is returned when a regex keyword does not compile
var ErrInvalidPattern = errors.New("invalid regex pattern")

// Strategy decides whether a single entry matches the search keyword
type Strategy interface {
	// Match reports whether the entry at path matches. info describes the
	// entry (the symlink target when following links). A non-nil error is
	// fatal to the search; unreadable content is never an error.
	Match(ctx context.Context, path string, info fs.FileInfo) (types.FileItem, bool, error)
}

// Config contains configuration for strategies
type Config struct {
	MaxContentBytes int64 // Files above this size never match on content (default: 10MB)
}

// New selects the strategy for opts.CustomSchMethod
func New(keyword string, opts types.SearchOptions, thresholds Thresholds, cfg Config) (Strategy, error) {
	if cfg.MaxContentBytes <= 0 {
		cfg.MaxContentBytes = DefaultMaxContentBytes
	}

	s := &strategy{
		opts:     opts,
		maxBytes: cfg.MaxContentBytes,
	}

	switch opts.CustomSchMethod {
	case types.MethodRegex:
		re, err := regexp.Compile(keyword)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		s.name = func(stem, _ string) bool { return re.MatchString(stem) }
		s.content = re.Match

	case types.MethodDamerauLevenshtein:
		limit := thresholds.DamerauLevenshtein
		s.name = func(stem, base string) bool {
			return float64(nameDistance(keyword, stem, base)) <= limit
		}

	case types.MethodJaccard:
		limit := thresholds.Jaccard
		s.name = func(stem, _ string) bool {
			return Jaccard(keyword, stem) >= limit
		}

	case types.MethodDefault, "":
		s.name = func(stem, _ string) bool { return strings.Contains(stem, keyword) }
		kw := []byte(keyword)
		s.content = func(b []byte) bool { return bytes.Contains(b, kw) }

	default:
		return nil, fmt.Errorf("%w: unknown search method %q", types.ErrInvalidOptions, opts.CustomSchMethod)
	}

	return s, nil
}

// strategy combines a name predicate with an optional content predicate.
// Fuzzy methods compare names only.
type strategy struct {
	opts     types.SearchOptions
	maxBytes int64
	name     func(stem, base string) bool
	content  func([]byte) bool
}

func (s *strategy) Match(ctx context.Context, path string, info fs.FileInfo) (types.FileItem, bool, error) {
	if info == nil {
		return types.FileItem{}, false, nil
	}
	if !s.opts.InScope(info.IsDir()) {
		return types.FileItem{}, false, nil
	}

	item := types.NewFileItem(path)
	if s.name(Stem(path), item.Name) {
		return item, true, nil
	}

	if s.content == nil || !s.opts.CustomFileContUse || !info.Mode().IsRegular() {
		return types.FileItem{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return types.FileItem{}, false, err
	}

	text, ok := ReadText(path, info.Size(), s.maxBytes)
	if ok && s.content(text) {
		return item, true, nil
	}
	return types.FileItem{}, false, nil
}

// Stem returns the base name of path without its final extension. Dot files
// such as ".profile" keep their full name.
func Stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

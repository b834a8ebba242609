package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope restricts matching to files, directories, or both
type Scope string

const (
	ScopeAll       Scope = "0"
	ScopeFilesOnly Scope = "1"
	ScopeDirsOnly  Scope = "2"
)

// Method selects the match strategy
type Method string

const (
	MethodDefault            Method = "0"
	MethodRegex              Method = "1"
	MethodDamerauLevenshtein Method = "2"
	MethodJaccard            Method = "3"
)

// String returns a human readable method name
func (m Method) String() string {
	switch m {
	case MethodDefault, "":
		return "default"
	case MethodRegex:
		return "regex"
	case MethodDamerauLevenshtein:
		return "damerau-levenshtein"
	case MethodJaccard:
		return "jaccard"
	default:
		return string(m)
	}
}

// SearchOptions describes the configuration of one search.
// It is a comparable value: two searches with equal options and keyword
// share a cache entry.
type SearchOptions struct {
	// Concurrency
	CustomThreadPoolUse bool   `json:"customThreadPoolUse" yaml:"custom_thread_pool_use"`
	ThreadPoolNum       string `json:"threadPoolNum" yaml:"thread_pool_num"`

	// Matching
	SearchScope       Scope  `json:"searchScope" yaml:"search_scope"`
	CustomFileContUse bool   `json:"customFileContUse" yaml:"custom_file_cont_use"`
	CustomSchMethod   Method `json:"customSchMethod" yaml:"custom_sch_method"`

	// Property filters (only applied when CustomPropertyUse is set)
	CustomPropertyUse bool `json:"customPropertyUse" yaml:"custom_property_use"`

	CustomFileSizeUse bool   `json:"customFileSizeUse" yaml:"custom_file_size_use"`
	SizeMax           uint64 `json:"sizeMax" yaml:"size_max"`
	SizeMin           uint64 `json:"sizeMin" yaml:"size_min"`

	CustomFileCrtDateUse bool   `json:"customFileCrtDateUse" yaml:"custom_file_crt_date_use"`
	CrtStart             string `json:"crtStart" yaml:"crt_start"`
	CrtEnd               string `json:"crtEnd" yaml:"crt_end"`

	CustomFileModiDateUse bool   `json:"customFileModiDateUse" yaml:"custom_file_modi_date_use"`
	ModiStart             string `json:"modiStart" yaml:"modi_start"`
	ModiEnd               string `json:"modiEnd" yaml:"modi_end"`

	CustomFileOwnerUse bool   `json:"customFileOwnerUse" yaml:"custom_file_owner_use"`
	OwnerName          string `json:"ownerName" yaml:"owner_name"`

	CustomFileTypeUse bool   `json:"customFileTypeUse" yaml:"custom_file_type_use"`
	FileTypeList      string `json:"fileTypeList" yaml:"file_type_list"`

	// Traversal
	CustomSymbolicChk bool `json:"customSymbolicChk" yaml:"custom_symbolic_chk"`

	// Activity log
	CustomLogUse bool `json:"customLogUse" yaml:"custom_log_use"`
}

// DefaultSearchOptions returns options with every filter disabled
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		ThreadPoolNum:   "0",
		SearchScope:     ScopeAll,
		CustomSchMethod: MethodDefault,
	}
}

// Normalize fills empty selector codes with their defaults
func (o SearchOptions) Normalize() SearchOptions {
	if o.SearchScope == "" {
		o.SearchScope = ScopeAll
	}
	if o.CustomSchMethod == "" {
		o.CustomSchMethod = MethodDefault
	}
	return o
}

// Validate checks selector codes and filter bounds
func (o SearchOptions) Validate() error {
	switch o.SearchScope {
	case ScopeAll, ScopeFilesOnly, ScopeDirsOnly, "":
	default:
		return fmt.Errorf("%w: unknown search scope %q", ErrInvalidOptions, o.SearchScope)
	}

	switch o.CustomSchMethod {
	case MethodDefault, MethodRegex, MethodDamerauLevenshtein, MethodJaccard, "":
	default:
		return fmt.Errorf("%w: unknown search method %q", ErrInvalidOptions, o.CustomSchMethod)
	}

	if o.CustomPropertyUse && o.CustomFileSizeUse && o.SizeMin > o.SizeMax {
		return fmt.Errorf("%w: sizeMin %d exceeds sizeMax %d", ErrInvalidOptions, o.SizeMin, o.SizeMax)
	}

	return nil
}

// ThreadPoolSize returns the parsed pool override, or fallback when the
// override is disabled or unparsable
func (o SearchOptions) ThreadPoolSize(fallback int) int {
	if !o.CustomThreadPoolUse {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(o.ThreadPoolNum))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// AllowsFile reports whether regular files are within scope
func (o SearchOptions) AllowsFile() bool {
	return o.SearchScope != ScopeDirsOnly
}

// AllowsDir reports whether directories are within scope
func (o SearchOptions) AllowsDir() bool {
	return o.SearchScope != ScopeFilesOnly
}

// InScope reports whether an entry of the given kind may be matched
func (o SearchOptions) InScope(isDir bool) bool {
	if isDir {
		return o.AllowsDir()
	}
	return o.AllowsFile()
}

// Extensions returns the configured extension whitelist with leading dots
// stripped. Entries are separated by whitespace or commas.
func (o SearchOptions) Extensions() []string {
	fields := strings.FieldsFunc(o.FileTypeList, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	exts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimLeft(f, ".")
		if f != "" {
			exts = append(exts, f)
		}
	}
	return exts
}

package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/dshills/filescout-mcp/internal/filter"
	"github.com/dshills/filescout-mcp/pkg/types"
)

// optionFlags are the search option flags shared by search and slots save
type optionFlags struct {
	scope     string
	method    string
	content   bool
	symlinks  bool
	threads   int
	logRun    bool
	exts      string
	minSize   string
	maxSize   string
	modAfter  string
	modBefore string
	crtAfter  string
	crtBefore string
	owner     string
}

func (o *optionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.scope, "scope", "all", "entries to match: all, files, dirs")
	f.StringVar(&o.method, "method", "default", "match method: default, regex, dl (Damerau-Levenshtein), jaccard")
	f.BoolVar(&o.content, "content", false, "also match the contents of text files")
	f.BoolVar(&o.symlinks, "follow-symlinks", false, "follow symbolic links")
	f.IntVar(&o.threads, "threads", 0, "directories scanned at once for this search")
	f.BoolVar(&o.logRun, "log", false, "write an activity log for the run")
	f.StringVar(&o.exts, "ext", "", "allowed file extensions, comma separated")
	f.StringVar(&o.minSize, "min-size", "", "minimum file size, e.g. 10KB or 2MiB")
	f.StringVar(&o.maxSize, "max-size", "", "maximum file size, e.g. 10KB or 2MiB")
	f.StringVar(&o.modAfter, "modified-after", "", "earliest modification date (YYYY-MM-DD)")
	f.StringVar(&o.modBefore, "modified-before", "", "latest modification date (YYYY-MM-DD)")
	f.StringVar(&o.crtAfter, "created-after", "", "earliest creation date (YYYY-MM-DD)")
	f.StringVar(&o.crtBefore, "created-before", "", "latest creation date (YYYY-MM-DD)")
	f.StringVar(&o.owner, "owner", "", "owning account name")
}

// apply writes the flags that were set on the command line into s
func (o *optionFlags) apply(cmd *cobra.Command, s *types.SearchSettings) error {
	changed := cmd.Flags().Changed

	if changed("scope") {
		scope, err := parseScope(o.scope)
		if err != nil {
			return err
		}
		s.SearchScope = scope
	}
	if changed("method") {
		method, err := parseMethod(o.method)
		if err != nil {
			return err
		}
		s.CustomSchMethod = method
	}
	if changed("content") {
		s.CustomFileContUse = o.content
	}
	if changed("follow-symlinks") {
		s.CustomSymbolicChk = o.symlinks
	}
	if changed("threads") {
		if o.threads <= 0 {
			return fmt.Errorf("--threads must be > 0, got %d", o.threads)
		}
		s.CustomThreadPoolUse = true
		s.ThreadPoolNum = strconv.Itoa(o.threads)
	}
	if changed("log") {
		s.CustomLogUse = o.logRun
	}

	if changed("ext") {
		s.CustomPropertyUse = true
		s.CustomFileTypeUse = true
		s.FileTypeList = o.exts
	}

	if changed("min-size") || changed("max-size") {
		s.CustomPropertyUse = true
		s.CustomFileSizeUse = true
		if changed("min-size") {
			raw, unit, err := parseSizeFlag(o.minSize)
			if err != nil {
				return fmt.Errorf("--min-size: %w", err)
			}
			s.FileMinRawVal, s.FileMinUnit = raw, unit
		}
		if changed("max-size") {
			raw, unit, err := parseSizeFlag(o.maxSize)
			if err != nil {
				return fmt.Errorf("--max-size: %w", err)
			}
			s.FileMaxRawVal, s.FileMaxUnit = raw, unit
		}
		// A lone lower bound leaves the upper one open
		if s.FileMaxRawVal == 0 && s.SizeMax == 0 {
			s.SizeMax = math.MaxUint64
		}
	}

	dates := []struct {
		flag   string
		value  string
		target *string
		enable *bool
	}{
		{"modified-after", o.modAfter, &s.ModiStart, &s.CustomFileModiDateUse},
		{"modified-before", o.modBefore, &s.ModiEnd, &s.CustomFileModiDateUse},
		{"created-after", o.crtAfter, &s.CrtStart, &s.CustomFileCrtDateUse},
		{"created-before", o.crtBefore, &s.CrtEnd, &s.CustomFileCrtDateUse},
	}
	for _, d := range dates {
		if !changed(d.flag) {
			continue
		}
		if filter.ParseDate(d.value) == nil {
			return fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", d.flag, d.value)
		}
		*d.target = d.value
		*d.enable = true
		s.CustomPropertyUse = true
	}

	if changed("owner") {
		s.CustomPropertyUse = true
		s.CustomFileOwnerUse = true
		s.OwnerName = o.owner
	}

	return nil
}

// parseScope accepts a scope name or its numeric code
func parseScope(s string) (types.Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "0", "":
		return types.ScopeAll, nil
	case "files", "file", "1":
		return types.ScopeFilesOnly, nil
	case "dirs", "dir", "directories", "2":
		return types.ScopeDirsOnly, nil
	default:
		return "", fmt.Errorf("unknown scope %q (want all, files or dirs)", s)
	}
}

// parseMethod accepts a method name or its numeric code
func parseMethod(s string) (types.Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "default", "substring", "0", "":
		return types.MethodDefault, nil
	case "regex", "regexp", "1":
		return types.MethodRegex, nil
	case "dl", "damerau-levenshtein", "levenshtein", "2":
		return types.MethodDamerauLevenshtein, nil
	case "jaccard", "3":
		return types.MethodJaccard, nil
	default:
		return "", fmt.Errorf("unknown method %q (want default, regex, dl or jaccard)", s)
	}
}

// parseSizeFlag splits a size such as "10MB" into its value and unit
func parseSizeFlag(s string) (uint64, string, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	digits, unit := s, ""
	if i >= 0 {
		digits, unit = s[:i], strings.TrimSpace(s[i:])
	}
	if digits == "" {
		return 0, "", fmt.Errorf("invalid size %q", s)
	}
	raw, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid size %q: %w", s, err)
	}
	if unit == "" {
		unit = types.DefaultSizeUnit
	}
	if _, err := types.ParseSize(raw, unit); err != nil {
		return 0, "", err
	}
	return raw, unit, nil
}

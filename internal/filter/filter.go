// Package filter implements the metadata stage of a search: size, creation
// and modification date ranges, ownership and extension constraints.
package filter

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/filescout-mcp/internal/fsmeta"
	"github.com/dshills/filescout-mcp/internal/owner"
	"github.com/dshills/filescout-mcp/pkg/types"
)

// DateLayout is the accepted format of date bounds
const DateLayout = "2006-01-02"

// Reason names the stage that excluded an entry
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonSize          Reason = "size"
	ReasonCreated       Reason = "creation date"
	ReasonModified      Reason = "modification date"
	ReasonOwnerDenied   Reason = "owner lookup not permitted"
	ReasonOwnerLookup   Reason = "owner lookup failed"
	ReasonOwnerMismatch Reason = "owner"
	ReasonExtension     Reason = "extension"
)

// dateRange is an inclusive day range; nil bounds are open
type dateRange struct {
	start *time.Time
	end   *time.Time
}

func (r dateRange) excludes(t time.Time) bool {
	day := TruncateToDay(t)
	if r.start != nil && day.Before(*r.start) {
		return true
	}
	if r.end != nil && day.After(*r.end) {
		return true
	}
	return false
}

// Filter evaluates entries against one search's property constraints
type Filter struct {
	opts     types.SearchOptions
	owners   owner.Resolver
	created  dateRange
	modified dateRange
	owner    string
	exts     map[string]bool
}

// New creates a Filter for opts. Date bounds are parsed once here; a
// malformed bound leaves that side of the range open.
func New(opts types.SearchOptions, owners owner.Resolver) *Filter {
	f := &Filter{
		opts:     opts,
		owners:   owners,
		created:  dateRange{start: ParseDate(opts.CrtStart), end: ParseDate(opts.CrtEnd)},
		modified: dateRange{start: ParseDate(opts.ModiStart), end: ParseDate(opts.ModiEnd)},
		owner:    strings.ToLower(opts.OwnerName),
		exts:     make(map[string]bool),
	}
	for _, ext := range opts.Extensions() {
		f.exts[ext] = true
	}
	return f
}

// Exclude reports whether the entry must be dropped from results and, if
// so, which stage rejected it. Stages run in order and stop at the first
// failure.
func (f *Filter) Exclude(m fsmeta.Metadata) (bool, Reason) {
	if f.opts.CustomFileSizeUse && m.IsRegular() {
		size := m.Size()
		if size > f.opts.SizeMax || size < f.opts.SizeMin {
			return true, ReasonSize
		}
	}

	if f.opts.CustomFileCrtDateUse && m.HasCreated && f.created.excludes(m.Created) {
		return true, ReasonCreated
	}

	if f.opts.CustomFileModiDateUse && m.Info != nil && f.modified.excludes(m.Modified()) {
		return true, ReasonModified
	}

	if f.opts.CustomFileOwnerUse {
		if excluded, reason := f.excludeByOwner(m); excluded {
			return true, reason
		}
	}

	// Files without an extension are not subject to the whitelist
	if f.opts.CustomFileTypeUse && m.IsRegular() {
		ext := strings.TrimPrefix(filepath.Ext(m.Path), ".")
		if ext != "" && !f.exts[ext] {
			return true, ReasonExtension
		}
	}

	return false, ReasonNone
}

func (f *Filter) excludeByOwner(m fsmeta.Metadata) (bool, Reason) {
	if f.owners == nil || !f.owners.Capable() {
		return true, ReasonOwnerDenied
	}
	name, err := f.owners.Owner(m.Path, m.Info)
	if err != nil {
		return true, ReasonOwnerLookup
	}
	if !strings.Contains(strings.ToLower(name), f.owner) {
		return true, ReasonOwnerMismatch
	}
	return false, ReasonNone
}

// TruncateToDay returns midnight UTC of t's UTC day
func TruncateToDay(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD bound. Empty or malformed input yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

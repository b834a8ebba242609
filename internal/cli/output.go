package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/dshills/filescout-mcp/pkg/types"
)

// palette holds the colours of one command's output
type palette struct {
	header *color.Color
	name   *color.Color
	dim    *color.Color
	ok     *color.Color
	warn   *color.Color
	fail   *color.Color
}

// newPalette returns colours for w, disabled when w is not a terminal or
// colour was turned off
func newPalette(w io.Writer, noColor bool) palette {
	p := palette{
		header: color.New(color.FgCyan, color.Bold),
		name:   color.New(color.FgGreen, color.Bold),
		dim:    color.New(color.Faint),
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed),
	}
	if noColor || !isTerminal(w) {
		for _, c := range []*color.Color{p.header, p.name, p.dim, p.ok, p.warn, p.fail} {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// status returns the colour of a run status
func (p palette) status(s types.RunStatus) *color.Color {
	switch s {
	case types.RunCompleted:
		return p.ok
	case types.RunCancelled:
		return p.warn
	default:
		return p.fail
	}
}

// printSink writes the events of a CLI search. Matches go to out, progress
// and errors to errOut.
type printSink struct {
	out    io.Writer
	errOut io.Writer
	pal    palette
	json   bool
	count  int
}

func (s *printSink) Result(item types.FileItem) {
	s.count++
	if s.json {
		data, err := json.Marshal(item)
		if err == nil {
			fmt.Fprintln(s.out, string(data))
		}
		return
	}
	s.pal.name.Fprint(s.out, item.Name)
	fmt.Fprint(s.out, "  ")
	s.pal.dim.Fprintln(s.out, item.Path)
}

func (s *printSink) ProcessInfo(info types.ProcessInfo) {
	s.pal.dim.Fprintf(s.errOut, "search %s started (Ctrl-C to cancel)\n", info.ID)
}

func (s *printSink) Elapsed(d time.Duration) {
	s.pal.header.Fprintf(s.errOut, "%d result(s) in %.3fs\n", s.count, d.Seconds())
}

func (s *printSink) Failed(err error) {
	s.pal.fail.Fprintf(s.errOut, "search failed: %v\n", err)
}

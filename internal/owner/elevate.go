package owner

import (
	"fmt"
	"strings"
)

// elevationScript returns the PowerShell command that starts exe elevated
// with the original command-line arguments. The new process gets its own
// console: a stdio session (filescout serve) is not reattached to its
// client, so elevation only helps interactive use.
func elevationScript(exe string, args []string) string {
	script := fmt.Sprintf("Start-Process -FilePath %s -Verb runAs", psQuote(exe))
	if len(args) == 0 {
		return script
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = psQuote(windowsArg(a))
	}
	return script + " -ArgumentList " + strings.Join(quoted, ",")
}

// psQuote wraps s in a PowerShell single-quoted string
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// windowsArg quotes one argument for a Windows command line. Start-Process
// joins the argument list with spaces, so arguments holding blanks or
// quotes must carry their own quoting.
func windowsArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for _, r := range s {
		switch r {
		case '\\':
			slashes++
			continue
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes*2+1))
		default:
			b.WriteString(strings.Repeat(`\`, slashes))
		}
		slashes = 0
		b.WriteRune(r)
	}
	b.WriteString(strings.Repeat(`\`, slashes*2))
	b.WriteByte('"')
	return b.String()
}

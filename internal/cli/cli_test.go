package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/filescout-mcp/pkg/types"
)

func execute(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--home="+home, "--dev-build", "--no-color"))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "a.log"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("bye"), 0644))
	return root
}

func TestSearchCommand(t *testing.T) {
	home := t.TempDir()
	root := makeTree(t)

	stdout, stderr, err := execute(t, home, "search", "a", root, "--scope", "files")
	require.NoError(t, err)

	assert.Contains(t, stdout, filepath.Join(root, "a.txt"))
	assert.Contains(t, stdout, filepath.Join(root, "sub", "a.log"))
	assert.NotContains(t, stdout, "b.txt")
	assert.Contains(t, stderr, "2 result(s)")
}

func TestSearchCommand_JSON(t *testing.T) {
	home := t.TempDir()
	root := makeTree(t)

	stdout, _, err := execute(t, home, "search", "b", root, "--scope", "files", "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)

	var item types.FileItem
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &item))
	assert.Equal(t, "b.txt", item.Name)
	assert.Equal(t, filepath.Join(root, "b.txt"), item.Path)
}

func TestSearchCommand_Errors(t *testing.T) {
	home := t.TempDir()
	root := makeTree(t)

	_, _, err := execute(t, home, "search", "a", root, "--method", "telepathy")
	assert.Error(t, err)

	_, _, err = execute(t, home, "search", "[", root, "--method", "regex")
	assert.Error(t, err)

	_, _, err = execute(t, home, "search", "a", filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, types.ErrDirectoryNotFound)

	_, _, err = execute(t, home, "search", "a")
	assert.Error(t, err)
}

func TestSlotsCommands(t *testing.T) {
	home := t.TempDir()
	root := makeTree(t)

	stdout, _, err := execute(t, home, "slots", "save", "2", "--name", "logs", "--ext", "log", "--scope", "files")
	require.NoError(t, err)
	assert.Contains(t, stdout, "saved slot 2")

	stdout, _, err = execute(t, home, "slots", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: logs")
	assert.Contains(t, stdout, "file_type_list: log")

	stdout, _, err = execute(t, home, "slots", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "logs")
	assert.Contains(t, stdout, "(empty)")

	stdout, _, err = execute(t, home, "search", "a", root, "--slot", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(root, "sub", "a.log"))
	assert.NotContains(t, stdout, "a.txt")

	_, _, err = execute(t, home, "slots", "clear", "2")
	require.NoError(t, err)

	stdout, _, err = execute(t, home, "slots", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, `name: ""`)

	_, _, err = execute(t, home, "slots", "show", "7")
	assert.Error(t, err)

	_, _, err = execute(t, home, "slots", "show", "two")
	assert.Error(t, err)
}

func TestCacheAndHistoryCommands(t *testing.T) {
	home := t.TempDir()
	root := makeTree(t)

	_, _, err := execute(t, home, "search", "b", root, "--scope", "files")
	require.NoError(t, err)

	stdout, _, err := execute(t, home, "cache", "list", "--paths")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 of 50 cache entries")
	assert.Contains(t, stdout, "hits=1")
	assert.Contains(t, stdout, filepath.Join(root, "b.txt"))

	stdout, _, err = execute(t, home, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "completed")
	assert.Contains(t, stdout, "results=1")

	stdout, _, err = execute(t, home, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cache cleared")

	stdout, _, err = execute(t, home, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 of 50 cache entries")

	stdout, _, err = execute(t, home, "history", "--prune", "0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "removed 1 run(s)")

	stdout, _, err = execute(t, home, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no searches recorded")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Version: ")
	assert.Contains(t, stdout, "Build Mode: ")
	assert.Contains(t, stdout, "SQLite Driver: ")
}

func TestConfigFileIsRead(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("cache:\n  capacity: 7\n"), 0644))

	stdout, _, err := execute(t, home, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 of 7 cache entries")
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in   string
		want types.Scope
	}{
		{"all", types.ScopeAll},
		{"0", types.ScopeAll},
		{"files", types.ScopeFilesOnly},
		{"1", types.ScopeFilesOnly},
		{"DIRS", types.ScopeDirsOnly},
		{"2", types.ScopeDirsOnly},
	}
	for _, tt := range tests {
		got, err := parseScope(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseScope("everything")
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want types.Method
	}{
		{"default", types.MethodDefault},
		{"regex", types.MethodRegex},
		{"dl", types.MethodDamerauLevenshtein},
		{"2", types.MethodDamerauLevenshtein},
		{"Jaccard", types.MethodJaccard},
	}
	for _, tt := range tests {
		got, err := parseMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseMethod("soundex")
	assert.Error(t, err)
}

func TestParseSizeFlag(t *testing.T) {
	raw, unit, err := parseSizeFlag("10MB")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), raw)
	assert.Equal(t, "MB", unit)

	raw, unit, err = parseSizeFlag("512")
	require.NoError(t, err)
	assert.Equal(t, uint64(512), raw)
	assert.Equal(t, types.DefaultSizeUnit, unit)

	raw, unit, err = parseSizeFlag("2 KiB")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), raw)
	assert.Equal(t, "KiB", unit)

	for _, bad := range []string{"", "MB", "10 furlongs"} {
		_, _, err := parseSizeFlag(bad)
		assert.Error(t, err, bad)
	}
}

func TestOptionFlagsApply(t *testing.T) {
	parse := func(t *testing.T, args ...string) (types.SearchSettings, error) {
		var flags optionFlags
		cmd := &cobra.Command{Use: "test"}
		flags.register(cmd)
		require.NoError(t, cmd.ParseFlags(args))

		s := types.DefaultSearchSettings()
		err := flags.apply(cmd, &s)
		return s, err
	}

	t.Run("no flags keeps defaults", func(t *testing.T) {
		s, err := parse(t)
		require.NoError(t, err)
		assert.Equal(t, types.DefaultSearchSettings(), s)
	})

	t.Run("lower size bound only", func(t *testing.T) {
		s, err := parse(t, "--min-size", "1KiB")
		require.NoError(t, err)

		opts, err := s.ToOptions()
		require.NoError(t, err)
		assert.True(t, opts.CustomPropertyUse)
		assert.True(t, opts.CustomFileSizeUse)
		assert.Equal(t, uint64(1024), opts.SizeMin)
		assert.Equal(t, uint64(math.MaxUint64), opts.SizeMax)
		assert.NoError(t, opts.Validate())
	})

	t.Run("both size bounds", func(t *testing.T) {
		s, err := parse(t, "--min-size", "1KB", "--max-size", "2MB")
		require.NoError(t, err)

		opts, err := s.ToOptions()
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), opts.SizeMin)
		assert.Equal(t, uint64(2_000_000), opts.SizeMax)
	})

	t.Run("dates and owner", func(t *testing.T) {
		s, err := parse(t, "--modified-after", "2024-01-01", "--created-before", "2024-12-31", "--owner", "root")
		require.NoError(t, err)
		assert.True(t, s.CustomPropertyUse)
		assert.True(t, s.CustomFileModiDateUse)
		assert.Equal(t, "2024-01-01", s.ModiStart)
		assert.True(t, s.CustomFileCrtDateUse)
		assert.Equal(t, "2024-12-31", s.CrtEnd)
		assert.True(t, s.CustomFileOwnerUse)
		assert.Equal(t, "root", s.OwnerName)
	})

	t.Run("threads and toggles", func(t *testing.T) {
		s, err := parse(t, "--threads", "3", "--content", "--follow-symlinks", "--log")
		require.NoError(t, err)
		assert.True(t, s.CustomThreadPoolUse)
		assert.Equal(t, "3", s.ThreadPoolNum)
		assert.True(t, s.CustomFileContUse)
		assert.True(t, s.CustomSymbolicChk)
		assert.True(t, s.CustomLogUse)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := parse(t, "--modified-after", "yesterday")
		assert.Error(t, err)

		_, err = parse(t, "--threads", "0")
		assert.Error(t, err)

		_, err = parse(t, "--max-size", "lots")
		assert.Error(t, err)
	})
}

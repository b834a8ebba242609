package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/filescout-mcp/internal/app"
	"github.com/dshills/filescout-mcp/internal/config"
	"github.com/dshills/filescout-mcp/pkg/types"
)

type notification struct {
	method string
	params map[string]any
}

// recorder captures notifications instead of sending them to a session
type recorder struct {
	mu     sync.Mutex
	events []notification
}

func (r *recorder) notify(_ context.Context, method string, params map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, notification{method: method, params: params})
	return nil
}

func (r *recorder) byMethod(method string) []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []map[string]any
	for _, e := range r.events {
		if e.method == method {
			out = append(out, e.params)
		}
	}
	return out
}

func setupServer(t *testing.T) (*Server, *recorder) {
	t.Helper()

	home := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DevBuild = true
	cfg.Search.PollInterval = 10 * time.Millisecond
	cfg.ResolvePaths(home)

	a, err := app.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	s, err := NewServer(a)
	require.NoError(t, err)

	rec := &recorder{}
	s.notify = rec.notify
	return s, rec
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

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult, dst interface{}) {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	require.NoError(t, json.Unmarshal([]byte(text.Text), dst))
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
}

func TestServer_Initialization(t *testing.T) {
	s, _ := setupServer(t)

	assert.NotNil(t, s.mcp, "MCP server should be initialized")
	assert.NotNil(t, s.engine, "Engine should be initialized")
	assert.NotNil(t, s.settings, "Settings should be initialized")
	assert.NotNil(t, s.storage, "Storage should be initialized")
	assert.NotNil(t, s.cache, "Cache should be initialized")
}

func TestSearchFiles_Wait(t *testing.T) {
	s, rec := setupServer(t)
	root := makeTree(t)

	result, err := s.handleSearchFiles(context.Background(), callRequest(map[string]interface{}{
		"keyword":   "a",
		"directory": root,
		"options":   map[string]interface{}{"searchScope": "1"},
		"wait":      true,
	}))
	require.NoError(t, err)

	var response struct {
		ID          string           `json:"id"`
		IsCancelled bool             `json:"is_cancelled"`
		Results     []types.FileItem `json:"results"`
		ResultCount int              `json:"result_count"`
	}
	resultJSON(t, result, &response)

	assert.NotEmpty(t, response.ID)
	assert.False(t, response.IsCancelled)
	assert.Equal(t, 2, response.ResultCount)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub", "a.log"),
	}, types.Paths(response.Results))

	// Waiting searches do not notify
	assert.Empty(t, rec.byMethod(NotifySearchResult))
}

func TestSearchFiles_Notifications(t *testing.T) {
	s, rec := setupServer(t)
	root := makeTree(t)

	result, err := s.handleSearchFiles(context.Background(), callRequest(map[string]interface{}{
		"keyword":   "b",
		"directory": root,
		"options":   map[string]interface{}{"searchScope": "1"},
	}))
	require.NoError(t, err)

	var info types.ProcessInfo
	resultJSON(t, result, &info)
	require.NotEmpty(t, info.ID)

	require.Eventually(t, func() bool {
		return len(rec.byMethod(NotifySearchTime)) == 1
	}, 5*time.Second, 10*time.Millisecond)

	results := rec.byMethod(NotifySearchResult)
	require.Len(t, results, 1)
	assert.Equal(t, "b.txt", results[0]["file_name"])
	assert.Equal(t, filepath.Join(root, "b.txt"), results[0]["file_path"])

	infos := rec.byMethod(NotifyProcessInfo)
	require.Len(t, infos, 1)
	assert.Equal(t, info.ID, infos[0]["id"])

	elapsed := rec.byMethod(NotifySearchTime)
	assert.Equal(t, info.ID, elapsed[0]["id"])
	assert.Empty(t, rec.byMethod(NotifySearchError))
}

func TestSearchFiles_InvalidParams(t *testing.T) {
	s, _ := setupServer(t)
	root := makeTree(t)
	ctx := context.Background()

	_, err := s.handleSearchFiles(ctx, callRequest(map[string]interface{}{
		"directory": root,
	}))
	requireCode(t, err, ErrorCodeEmptyKeyword)

	_, err = s.handleSearchFiles(ctx, callRequest(map[string]interface{}{
		"keyword": "a",
	}))
	requireCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleSearchFiles(ctx, callRequest(map[string]interface{}{
		"keyword":   "a",
		"directory": "relative/dir",
	}))
	requireCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleSearchFiles(ctx, callRequest(map[string]interface{}{
		"keyword":   "a",
		"directory": filepath.Join(root, "missing"),
	}))
	requireCode(t, err, ErrorCodeDirectoryNotFound)

	_, err = s.handleSearchFiles(ctx, callRequest(map[string]interface{}{
		"keyword":   "[",
		"directory": root,
		"options":   map[string]interface{}{"customSchMethod": "1"},
	}))
	requireCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleSearchFiles(ctx, callRequest(map[string]interface{}{
		"keyword":   "a",
		"directory": root,
		"options":   map[string]interface{}{"searchScope": "9"},
	}))
	requireCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleSearchFiles(ctx, callRequest(map[string]interface{}{
		"keyword":     "a",
		"directory":   root,
		"slot_number": 9,
	}))
	requireCode(t, err, ErrorCodeInvalidSlot)
}

func TestSearchFiles_SlotOptions(t *testing.T) {
	s, _ := setupServer(t)
	root := makeTree(t)
	ctx := context.Background()

	_, err := s.handleSaveSettings(ctx, callRequest(map[string]interface{}{
		"slot_number": float64(2),
		"name":        "logs only",
		"settings": map[string]interface{}{
			"customPropertyUse": true,
			"customFileTypeUse": true,
			"fileTypeList":      "log",
			"searchScope":       "1",
		},
	}))
	require.NoError(t, err)

	result, err := s.handleSearchFiles(ctx, callRequest(map[string]interface{}{
		"keyword":     "a",
		"directory":   root,
		"slot_number": float64(2),
		"wait":        true,
	}))
	require.NoError(t, err)

	var response struct {
		Results []types.FileItem `json:"results"`
	}
	resultJSON(t, result, &response)
	assert.Equal(t, []string{filepath.Join(root, "sub", "a.log")}, types.Paths(response.Results))
}

func TestCancelSearch(t *testing.T) {
	s, _ := setupServer(t)
	ctx := context.Background()

	_, err := s.handleCancelSearch(ctx, callRequest(map[string]interface{}{
		"process_id": "no-such-process",
	}))
	requireCode(t, err, ErrorCodeProcessNotFound)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, "process not found", mcpErr.Message)

	_, err = s.handleCancelSearch(ctx, callRequest(map[string]interface{}{}))
	requireCode(t, err, ErrorCodeInvalidParams)
}

func TestListSearches_Empty(t *testing.T) {
	s, _ := setupServer(t)

	result, err := s.handleListSearches(context.Background(), callRequest(nil))
	require.NoError(t, err)

	var response struct {
		Searches []types.ProcessInfo `json:"searches"`
		Count    int                 `json:"count"`
	}
	resultJSON(t, result, &response)
	assert.Equal(t, 0, response.Count)
	assert.NotNil(t, response.Searches)
}

func TestSettingsTools(t *testing.T) {
	s, _ := setupServer(t)
	ctx := context.Background()

	result, err := s.handleSaveSettings(ctx, callRequest(map[string]interface{}{
		"slot_number": float64(1),
		"name":        "big",
		"settings": map[string]interface{}{
			"customPropertyUse": true,
			"customFileSizeUse": true,
			"fileMinRawVal":     float64(1),
			"fileMinUnit":       "MiB",
		},
	}))
	require.NoError(t, err)

	var saved types.SettingSlot
	resultJSON(t, result, &saved)
	assert.Equal(t, 1, saved.Number)
	assert.Equal(t, "big", saved.Name)
	assert.Equal(t, uint64(1), saved.Val.FileMinRawVal)

	result, err = s.handleLoadSettings(ctx, callRequest(map[string]interface{}{
		"slot_number": float64(1),
	}))
	require.NoError(t, err)
	var loaded types.SettingSlot
	resultJSON(t, result, &loaded)
	assert.Equal(t, saved, loaded)

	result, err = s.handleListSettings(ctx, callRequest(nil))
	require.NoError(t, err)
	var listed struct {
		Slots []types.SettingSlot `json:"slots"`
	}
	resultJSON(t, result, &listed)
	require.Len(t, listed.Slots, types.SlotCount)
	assert.Equal(t, "big", listed.Slots[0].Name)

	_, err = s.handleDeleteSettings(ctx, callRequest(map[string]interface{}{
		"slot_number": float64(1),
	}))
	require.NoError(t, err)

	result, err = s.handleLoadSettings(ctx, callRequest(map[string]interface{}{
		"slot_number": float64(1),
	}))
	require.NoError(t, err)
	resultJSON(t, result, &loaded)
	assert.True(t, loaded.IsEmpty())

	_, err = s.handleLoadSettings(ctx, callRequest(map[string]interface{}{
		"slot_number": float64(6),
	}))
	requireCode(t, err, ErrorCodeInvalidSlot)

	_, err = s.handleSaveSettings(ctx, callRequest(map[string]interface{}{
		"slot_number": float64(1),
	}))
	requireCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleDeleteSettings(ctx, callRequest(map[string]interface{}{}))
	requireCode(t, err, ErrorCodeInvalidParams)
}

func TestHistoryAndCacheTools(t *testing.T) {
	s, _ := setupServer(t)
	root := makeTree(t)
	ctx := context.Background()

	_, err := s.handleSearchFiles(ctx, callRequest(map[string]interface{}{
		"keyword":   "a",
		"directory": root,
		"options":   map[string]interface{}{"searchScope": "1"},
		"wait":      true,
	}))
	require.NoError(t, err)

	result, err := s.handleSearchHistory(ctx, callRequest(map[string]interface{}{
		"limit": float64(5),
	}))
	require.NoError(t, err)
	var history struct {
		Runs  []types.SearchRun `json:"runs"`
		Count int               `json:"count"`
	}
	resultJSON(t, result, &history)
	require.Equal(t, 1, history.Count)
	assert.Equal(t, "a", history.Runs[0].Keyword)
	assert.Equal(t, types.RunCompleted, history.Runs[0].Status)
	assert.Equal(t, 2, history.Runs[0].ResultCount)

	_, err = s.handleSearchHistory(ctx, callRequest(map[string]interface{}{
		"limit": float64(0),
	}))
	requireCode(t, err, ErrorCodeInvalidParams)

	result, err = s.handleCacheEntries(ctx, callRequest(nil))
	require.NoError(t, err)
	var entries struct {
		Entries []struct {
			Name        string `json:"name"`
			Hit         int    `json:"hit"`
			ResultCount int    `json:"result_count"`
		} `json:"entries"`
		Count    int `json:"count"`
		Capacity int `json:"capacity"`
	}
	resultJSON(t, result, &entries)
	require.Equal(t, 1, entries.Count)
	assert.Equal(t, "a", entries.Entries[0].Name)
	assert.Equal(t, 1, entries.Entries[0].Hit)
	assert.Equal(t, 2, entries.Entries[0].ResultCount)
	assert.Equal(t, 50, entries.Capacity)

	_, err = s.handleClearCache(ctx, callRequest(nil))
	require.NoError(t, err)

	result, err = s.handleCacheEntries(ctx, callRequest(nil))
	require.NoError(t, err)
	resultJSON(t, result, &entries)
	assert.Equal(t, 0, entries.Count)
}

func TestNotificationSink(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	sink := newNotificationSink(ctx, rec.notify, nil)
	cancel()

	sink.ProcessInfo(types.ProcessInfo{ID: "p1"})
	sink.Result(types.NewFileItem("/x/y.txt"))
	sink.Elapsed(1500 * time.Millisecond)
	sink.Failed(assert.AnError)

	// Events still go out after the tool call context ends
	assert.NoError(t, sink.ctx.Err())

	assert.Equal(t, "y.txt", rec.byMethod(NotifySearchResult)[0]["file_name"])
	assert.Equal(t, 1.5, rec.byMethod(NotifySearchTime)[0]["seconds"])
	assert.Equal(t, "p1", rec.byMethod(NotifySearchError)[0]["id"])
	assert.Equal(t, assert.AnError.Error(), rec.byMethod(NotifySearchError)[0]["error"])
}

func TestToolDefinitions(t *testing.T) {
	tools := []mcp.Tool{
		searchFilesTool(), cancelSearchTool(), listSearchesTool(),
		saveSettingsTool(), loadSettingsTool(), deleteSettingsTool(), listSettingsTool(),
		searchHistoryTool(), cacheEntriesTool(), clearCacheTool(),
	}

	names := make(map[string]bool)
	for _, tool := range tools {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.Equal(t, "object", tool.InputSchema.Type, tool.Name)
		assert.False(t, names[tool.Name], "duplicate tool %s", tool.Name)
		names[tool.Name] = true
	}

	props := searchFilesTool().InputSchema.Properties["options"].(map[string]interface{})["properties"].(map[string]interface{})
	for _, key := range []string{"searchScope", "customSchMethod", "customSymbolicChk", "customLogUse", "fileTypeList"} {
		assert.Contains(t, props, key)
	}
}

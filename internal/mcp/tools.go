package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/filescout-mcp/internal/matcher"
	"github.com/dshills/filescout-mcp/internal/searcher"
	"github.com/dshills/filescout-mcp/internal/settings"
	"github.com/dshills/filescout-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeDirectoryNotFound = -32001 // Search root missing or not a directory
	ErrorCodeProcessNotFound   = -32002 // No running search with the given id
	ErrorCodeInvalidSlot       = -32003 // Settings slot outside 1-5
	ErrorCodeEmptyKeyword      = -32004 // Keyword parameter is empty
)

// handleSearchFiles handles the search_files tool invocation
func (s *Server) handleSearchFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	keyword, _ := args["keyword"].(string)
	if keyword == "" {
		return nil, newMCPError(ErrorCodeEmptyKeyword, "keyword parameter is required and cannot be empty", map[string]interface{}{
			"param":  "keyword",
			"reason": "missing or empty",
		})
	}

	directory, ok := args["directory"].(string)
	if !ok || directory == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "directory parameter is required", map[string]interface{}{
			"param":  "directory",
			"reason": "missing or empty",
		})
	}
	if !filepath.IsAbs(directory) {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid directory", map[string]interface{}{
			"param":  "directory",
			"reason": types.ErrRelativePath.Error(),
		})
	}

	opts, err := s.searchOptions(ctx, args)
	if err != nil {
		return nil, err
	}

	wait := getBoolDefault(args, "wait", false)

	var sink searcher.Sink = searcher.NopSink{}
	if !wait {
		sink = newNotificationSink(ctx, s.notify, s.logger)
	}

	run, err := s.engine.Start(ctx, searcher.Request{
		Keyword:   keyword,
		Directory: directory,
		Options:   opts,
	}, sink)
	if err != nil {
		return nil, toolError("search failed", err)
	}

	if !wait {
		return mcp.NewToolResultText(formatJSON(run.Info())), nil
	}

	select {
	case <-run.Done():
	case <-ctx.Done():
		// The client gave up; stop the walk and report what was found
		_ = s.engine.Cancel(run.ID())
	}

	outcome, err := run.Wait()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"id":    outcome.ProcessID,
			"error": err.Error(),
		})
	}

	results := outcome.Results
	if results == nil {
		results = []types.FileItem{}
	}
	response := map[string]interface{}{
		"id":              outcome.ProcessID,
		"is_cancelled":    outcome.Cancelled,
		"results":         results,
		"result_count":    len(results),
		"cache_hits":      outcome.CacheHits,
		"elapsed_seconds": outcome.Elapsed.Seconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// searchOptions builds the options of a search_files call: the explicit
// options object wins, then the named slot, then the defaults
func (s *Server) searchOptions(ctx context.Context, args map[string]interface{}) (types.SearchOptions, error) {
	if raw, ok := args["options"]; ok && raw != nil {
		opts := types.DefaultSearchOptions()
		if err := decodeArg(raw, &opts); err != nil {
			return types.SearchOptions{}, newMCPError(ErrorCodeInvalidParams, "invalid options", map[string]interface{}{
				"param":  "options",
				"reason": err.Error(),
			})
		}
		return opts, nil
	}

	if _, ok := args["slot_number"]; ok {
		number := getIntDefault(args, "slot_number", 0)
		opts, err := s.settings.Options(ctx, number)
		if err != nil {
			return types.SearchOptions{}, toolError("invalid settings slot", err)
		}
		return opts, nil
	}

	return types.DefaultSearchOptions(), nil
}

// handleCancelSearch handles the cancel_search tool invocation
func (s *Server) handleCancelSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["process_id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "process_id parameter is required", map[string]interface{}{
			"param":  "process_id",
			"reason": "missing or empty",
		})
	}

	if err := s.engine.Cancel(id); err != nil {
		return nil, toolError("cancel failed", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"id":        id,
		"cancelled": true,
	})), nil
}

// handleListSearches handles the list_searches tool invocation
func (s *Server) handleListSearches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	active := s.engine.Active()
	if active == nil {
		active = []types.ProcessInfo{}
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"searches": active,
		"count":    len(active),
	})), nil
}

// handleSaveSettings handles the save_settings tool invocation
func (s *Server) handleSaveSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	number, err := slotArg(args)
	if err != nil {
		return nil, err
	}

	raw, ok := args["settings"]
	if !ok || raw == nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "settings parameter is required", map[string]interface{}{
			"param":  "settings",
			"reason": "missing",
		})
	}
	val := types.DefaultSearchSettings()
	if err := decodeArg(raw, &val); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid settings", map[string]interface{}{
			"param":  "settings",
			"reason": err.Error(),
		})
	}

	slot, err := s.settings.Save(ctx, number, getStringDefault(args, "name", ""), val)
	if err != nil {
		return nil, toolError("failed to save settings", err)
	}
	return mcp.NewToolResultText(formatJSON(slot)), nil
}

// handleLoadSettings handles the load_settings tool invocation
func (s *Server) handleLoadSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	number, err := slotArg(args)
	if err != nil {
		return nil, err
	}

	slot, err := s.settings.Get(ctx, number)
	if err != nil {
		return nil, toolError("failed to load settings", err)
	}
	return mcp.NewToolResultText(formatJSON(slot)), nil
}

// handleDeleteSettings handles the delete_settings tool invocation
func (s *Server) handleDeleteSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	number, err := slotArg(args)
	if err != nil {
		return nil, err
	}

	slot, err := s.settings.Clear(ctx, number)
	if err != nil {
		return nil, toolError("failed to delete settings", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"message": fmt.Sprintf("settings slot %d reset", number),
		"slot":    slot,
	})), nil
}

// handleListSettings handles the list_settings tool invocation
func (s *Server) handleListSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slots, err := s.settings.List(ctx)
	if err != nil {
		return nil, toolError("failed to list settings", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"slots": slots,
	})), nil
}

// handleSearchHistory handles the search_history tool invocation
func (s *Server) handleSearchHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	limit := getIntDefault(args, "limit", 20)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	runs, err := s.storage.ListRuns(ctx, limit)
	if err != nil {
		return nil, toolError("failed to read search history", err)
	}
	if runs == nil {
		runs = []types.SearchRun{}
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})), nil
}

// handleCacheEntries handles the cache_entries tool invocation
func (s *Server) handleCacheEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.cache.Entries()
	if err != nil {
		return nil, toolError("failed to read cache", err)
	}

	summary := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		summary = append(summary, map[string]interface{}{
			"name":         e.Keyword,
			"hit":          e.Hit,
			"result_count": len(e.Results),
			"method":       e.Options.CustomSchMethod.String(),
			"result":       e.Results,
		})
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"entries":  summary,
		"count":    len(summary),
		"capacity": s.cache.Capacity(),
	})), nil
}

// handleClearCache handles the clear_cache tool invocation
func (s *Server) handleClearCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.cache.Clear(); err != nil {
		return nil, toolError("failed to clear cache", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"message": "cache cleared",
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// toolError maps domain errors to MCP error codes
func toolError(message string, err error) error {
	data := map[string]interface{}{"error": err.Error()}

	switch {
	case errors.Is(err, types.ErrProcessNotFound):
		return newMCPError(ErrorCodeProcessNotFound, types.ErrProcessNotFound.Error(), data)
	case errors.Is(err, types.ErrEmptyKeyword):
		return newMCPError(ErrorCodeEmptyKeyword, message, data)
	case errors.Is(err, types.ErrDirectoryNotFound), errors.Is(err, types.ErrNotDirectory):
		return newMCPError(ErrorCodeDirectoryNotFound, message, data)
	case errors.Is(err, settings.ErrInvalidSlot):
		return newMCPError(ErrorCodeInvalidSlot, message, data)
	case errors.Is(err, types.ErrInvalidOptions), errors.Is(err, matcher.ErrInvalidPattern):
		return newMCPError(ErrorCodeInvalidParams, message, data)
	default:
		return newMCPError(ErrorCodeInternalError, message, data)
	}
}

// slotArg extracts a required slot number
func slotArg(args map[string]interface{}) (int, error) {
	if _, ok := args["slot_number"]; !ok {
		return 0, newMCPError(ErrorCodeInvalidParams, "slot_number parameter is required", map[string]interface{}{
			"param":  "slot_number",
			"reason": "missing",
		})
	}
	return getIntDefault(args, "slot_number", 0), nil
}

// decodeArg converts a JSON object argument into dst
func decodeArg(raw interface{}, dst interface{}) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// optionsSchema describes a search options object. Field names follow the
// desktop front-end.
func optionsSchema(description string) map[string]interface{} {
	boolean := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "boolean", "description": desc, "default": false}
	}
	text := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"customThreadPoolUse": boolean("Use threadPoolNum as the directory scan limit"),
			"threadPoolNum":       text("Number of directories scanned at once"),
			"searchScope": map[string]interface{}{
				"type":        "string",
				"description": "0 = files and directories, 1 = files only, 2 = directories only",
				"enum":        []string{"0", "1", "2"},
				"default":     "0",
			},
			"customFileContUse": boolean("Also match the keyword against the content of text files"),
			"customSchMethod": map[string]interface{}{
				"type":        "string",
				"description": "0 = substring, 1 = regex, 2 = Damerau-Levenshtein, 3 = Jaccard similarity",
				"enum":        []string{"0", "1", "2", "3"},
				"default":     "0",
			},
			"customPropertyUse":     boolean("Enable the property filters below"),
			"customFileSizeUse":     boolean("Filter regular files by size"),
			"sizeMax":               map[string]interface{}{"type": "integer", "description": "Maximum size in bytes (inclusive)", "minimum": 0},
			"sizeMin":               map[string]interface{}{"type": "integer", "description": "Minimum size in bytes (inclusive)", "minimum": 0},
			"customFileCrtDateUse":  boolean("Filter by creation date"),
			"crtStart":              text("Earliest creation date (YYYY-MM-DD)"),
			"crtEnd":                text("Latest creation date (YYYY-MM-DD)"),
			"customFileModiDateUse": boolean("Filter by modification date"),
			"modiStart":             text("Earliest modification date (YYYY-MM-DD)"),
			"modiEnd":               text("Latest modification date (YYYY-MM-DD)"),
			"customFileOwnerUse":    boolean("Filter by owning account"),
			"ownerName":             text("Owner account name"),
			"customFileTypeUse":     boolean("Filter regular files by extension"),
			"fileTypeList":          text("Allowed extensions separated by commas or spaces"),
			"customSymbolicChk":     boolean("Follow symbolic links"),
			"customLogUse":          boolean("Write an activity log file for the run"),
		},
	}
}

func slotNumberSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Settings slot number (1-5)",
		"minimum":     1,
		"maximum":     5,
	}
}

// searchFilesTool returns the tool definition for search_files
func searchFilesTool() mcp.Tool {
	return mcp.Tool{
		Name: "search_files",
		Description: "Search a directory tree for entries matching a keyword. Returns the process id at once; " +
			"matches are sent as search-result notifications unless wait is set",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"keyword": map[string]interface{}{
					"type":        "string",
					"description": "Keyword, regular expression or fuzzy term depending on customSchMethod",
				},
				"directory": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the directory to search",
				},
				"options": optionsSchema("Search options; overrides slot_number when both are given"),
				"slot_number": map[string]interface{}{
					"type":        "integer",
					"description": "Use the options saved in this settings slot (1-5)",
					"minimum":     1,
					"maximum":     5,
				},
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, wait for the search to finish and return every result",
					"default":     false,
				},
			},
			Required: []string{"keyword", "directory"},
		},
	}
}

// cancelSearchTool returns the tool definition for cancel_search
func cancelSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cancel_search",
		Description: "Cancel a running search by its process id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"process_id": map[string]interface{}{
					"type":        "string",
					"description": "Process id returned by search_files",
				},
			},
			Required: []string{"process_id"},
		},
	}
}

// listSearchesTool returns the tool definition for list_searches
func listSearchesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_searches",
		Description: "List searches that are still running",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// saveSettingsTool returns the tool definition for save_settings
func saveSettingsTool() mcp.Tool {
	settings := optionsSchema("Preset to store")
	props := settings["properties"].(map[string]interface{})
	props["fileMaxRawVal"] = map[string]interface{}{"type": "integer", "description": "Maximum size in fileMaxUnit; replaces sizeMax when set", "minimum": 0}
	props["fileMinRawVal"] = map[string]interface{}{"type": "integer", "description": "Minimum size in fileMinUnit; replaces sizeMin when set", "minimum": 0}
	props["fileMaxUnit"] = map[string]interface{}{"type": "string", "description": "Unit of fileMaxRawVal (B, KB, KiB, MB, MiB, GB, ...)", "default": "B"}
	props["fileMinUnit"] = map[string]interface{}{"type": "string", "description": "Unit of fileMinRawVal (B, KB, KiB, MB, MiB, GB, ...)", "default": "B"}

	return mcp.Tool{
		Name:        "save_settings",
		Description: "Store a named search preset in a settings slot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"slot_number": slotNumberSchema(),
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Display name of the preset",
				},
				"settings": settings,
			},
			Required: []string{"slot_number", "settings"},
		},
	}
}

// loadSettingsTool returns the tool definition for load_settings
func loadSettingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "load_settings",
		Description: "Read the preset stored in a settings slot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"slot_number": slotNumberSchema(),
			},
			Required: []string{"slot_number"},
		},
	}
}

// deleteSettingsTool returns the tool definition for delete_settings
func deleteSettingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_settings",
		Description: "Reset a settings slot to the default preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"slot_number": slotNumberSchema(),
			},
			Required: []string{"slot_number"},
		},
	}
}

// listSettingsTool returns the tool definition for list_settings
func listSettingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_settings",
		Description: "List all settings slots",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// searchHistoryTool returns the tool definition for search_history
func searchHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_history",
		Description: "List recently finished searches, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// cacheEntriesTool returns the tool definition for cache_entries
func cacheEntriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cache_entries",
		Description: "List the cached result sets with their hit counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// clearCacheTool returns the tool definition for clear_cache
func clearCacheTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_cache",
		Description: "Remove every cached result set",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

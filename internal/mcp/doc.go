// Package mcp implements the Model Context Protocol (MCP) server for filescout.
//
// The MCP server exposes the search engine to MCP clients:
//   - search_files: Start a search; matches stream back as notifications
//   - cancel_search: Cancel a running search by process id
//   - list_searches: List running searches
//   - save_settings / load_settings / delete_settings / list_settings:
//     Manage the five numbered option presets
//   - search_history: List recently finished searches
//   - cache_entries / clear_cache: Inspect or empty the result cache
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Tool: search_files
//
// search_files returns as soon as the search is registered:
//
//	Request:
//	{
//	  "name": "search_files",
//	  "arguments": {
//	    "keyword": "report",
//	    "directory": "/home/me/docs",
//	    "options": {"searchScope": "1", "customSchMethod": "0"}
//	  }
//	}
//
//	Response:
//	{"id": "6f1c…", "is_cancelled": false}
//
// Events of the run follow as notifications on the same session:
//
//	search-result  {"file_name": "report.txt", "file_path": "/home/me/docs/report.txt"}
//	process-info   {"id": "6f1c…", "is_cancelled": false}
//	search-time    {"id": "6f1c…", "seconds": 0.42}
//	search-error   {"id": "6f1c…", "error": "…"}
//
// Results served from the cache arrive before process-info. Clients that
// cannot consume notifications pass "wait": true and receive every result
// in the tool response instead.
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "filescout": {
//	      "command": "/usr/local/bin/filescout",
//	      "args": ["serve"]
//	    }
//	  }
//	}
//
// # Error Handling
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments, bad regex, bad options)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Directory not found
//   - -32002: Process not found
//   - -32003: Invalid settings slot
//   - -32004: Empty keyword
//
// # Logging
//
// The server logs to stderr through log/slog; stdout is reserved for the
// protocol.
package mcp

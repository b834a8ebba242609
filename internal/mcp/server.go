package mcp

import (
	"context"
	"io"
	"log"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/filescout-mcp/internal/app"
	"github.com/dshills/filescout-mcp/internal/cache"
	"github.com/dshills/filescout-mcp/internal/searcher"
	"github.com/dshills/filescout-mcp/internal/settings"
	"github.com/dshills/filescout-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "filescout-mcp"
)

// ServerVersion is the reported server version, set by the binary
var ServerVersion = "dev"

// notifyFunc sends a notification to the client of the session in ctx
type notifyFunc func(ctx context.Context, method string, params map[string]any) error

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	engine   *searcher.Engine
	cache    *cache.Cache
	settings *settings.Service
	storage  storage.Storage
	logger   *slog.Logger
	notify   notifyFunc
}

// NewServer creates a new MCP server over the components of a
func NewServer(a *app.App) (*Server, error) {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:      mcpServer,
		engine:   a.Engine,
		cache:    a.Cache,
		settings: a.Settings,
		storage:  a.Storage,
		logger:   a.Logger,
		notify:   mcpServer.SendNotificationToClient,
	}

	s.registerTools()

	return s, nil
}

// Serve runs the MCP protocol on in/out until ctx is cancelled or the input
// is closed
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(&slogWriter{logger: s.logger}, "", 0))
	return stdio.Listen(ctx, in, out)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Searching
	s.mcp.AddTool(searchFilesTool(), s.handleSearchFiles)
	s.mcp.AddTool(cancelSearchTool(), s.handleCancelSearch)
	s.mcp.AddTool(listSearchesTool(), s.handleListSearches)

	// Settings slots
	s.mcp.AddTool(saveSettingsTool(), s.handleSaveSettings)
	s.mcp.AddTool(loadSettingsTool(), s.handleLoadSettings)
	s.mcp.AddTool(deleteSettingsTool(), s.handleDeleteSettings)
	s.mcp.AddTool(listSettingsTool(), s.handleListSettings)

	// History and cache
	s.mcp.AddTool(searchHistoryTool(), s.handleSearchHistory)
	s.mcp.AddTool(cacheEntriesTool(), s.handleCacheEntries)
	s.mcp.AddTool(clearCacheTool(), s.handleClearCache)
}

// slogWriter adapts the protocol error log to slog
type slogWriter struct {
	logger *slog.Logger
}

func (w *slogWriter) Write(p []byte) (int, error) {
	msg := string(p)
	for len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}
	w.logger.Error("mcp transport", "message", msg)
	return len(p), nil
}

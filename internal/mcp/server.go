package mcp

import (
	"database/sql"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mealcal/mealcal/internal/config"
)

// tool pairs a definition with the Handlers method that serves it.
type tool struct {
	def    mcp.Tool
	handle func(*Handlers) server.ToolHandlerFunc
}

// tools lists every meal tool in the order clients see them.
var tools = []tool{
	{listToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleList }},
	{getToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet }},
	{createToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate }},
	{updateToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate }},
	{deleteToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete }},
	{copyToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCopy }},
	{moveToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleMove }},
	{swapToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSwap }},
	{searchToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch }},
	{summaryToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSummary }},
	{exportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport }},
	{importToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport }},
	{purgeToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge }},
}

// AllToolNames returns every tool name in registration order.
func AllToolNames() []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.def.Name
	}
	return names
}

// ValidateDisabledTools returns the entries of names that match no tool.
func ValidateDisabledTools(names []string) []string {
	known := AllToolNames()
	unknown := make([]string, 0)
	for _, name := range names {
		if !slices.Contains(known, name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the meal tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"mealcal",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandlers(db, cfg)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for _, t := range tools {
		if disabled[t.def.Name] {
			continue
		}
		s.AddTool(t.def, t.handle(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}

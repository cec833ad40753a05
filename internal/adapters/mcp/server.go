// Package mcpadapter exposes substance lookup as MCP tools over stdio,
// so agent runtimes can query the catalog without the HTTP surface.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazref/hazsearch/internal/core/domain"
	"github.com/hazref/hazsearch/internal/core/ports"
)

type Server struct {
	mcpServer *server.MCPServer
	retriever ports.SubstanceRetriever
	catalog   ports.CatalogReader
}

func NewServer(retriever ports.SubstanceRetriever, catalog ports.CatalogReader, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer("hazsearch", version, server.WithToolCapabilities(false)),
		retriever: retriever,
		catalog:   catalog,
	}

	s.mcpServer.AddTool(mcp.NewTool("substance_lookup",
		mcp.WithDescription("Look up regulated dangerous-goods substances by UN number, name, or free-text description."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("UN number (e.g. 'UN1133' or '1133'), substance name, or free-text description."),
		),
		mcp.WithString("strategy",
			mcp.Description("Retrieval strategy: auto, exact, semantic, or hybrid. Defaults to auto."),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Candidate pool size per adapter. Defaults to the engine setting."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to show. Capped by the engine's display limits."),
		),
	), s.substanceLookup)

	s.mcpServer.AddTool(mcp.NewTool("confirm_full_results",
		mcp.WithDescription("Release the full result set behind a continuation token from a truncated lookup."),
		mcp.WithString("continuation_token",
			mcp.Required(),
			mcp.Description("Token returned by a truncated substance_lookup call. Single use."),
		),
	), s.confirmFullResults)

	s.mcpServer.AddTool(mcp.NewTool("catalog_stats",
		mcp.WithDescription("Report catalog size and vector index coverage."),
	), s.catalogStats)

	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) substanceLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.retriever.Retrieve(ctx, domain.Query{
		Text:             query,
		StrategyOverride: req.GetString("strategy", ""),
		TopK:             req.GetInt("top_k", 0),
		Limit:            req.GetInt("limit", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	return toolResultJSON(result)
}

func (s *Server) confirmFullResults(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := req.RequireString("continuation_token")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.retriever.ConfirmFullResults(ctx, token)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("confirm failed: %v", err)), nil
	}
	return toolResultJSON(result)
}

func (s *Server) catalogStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.catalog.Statistics(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return toolResultJSON(stats)
}

func toolResultJSON(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

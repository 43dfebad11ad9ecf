// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the cryptofeed MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, loader contract.FeedLoader) *server.MCPServer {
	s := server.NewMCPServer(
		"Crypto Feed Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		loader:  loader,
	}

	// --- 1. Tool: get_cached_feed ---
	s.AddTool(mcp.NewTool("get_cached_feed",
		mcp.WithDescription("Return the cached top cryptocurrencies by volume with USD prices, without calling the upstream API."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of coins returned.")),
	), h.handleGetCachedFeed)

	// --- 2. Tool: refresh_feed ---
	s.AddTool(mcp.NewTool("refresh_feed",
		mcp.WithDescription("Fetch the latest feed from the upstream API and replace the cached snapshot."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of coins returned after refreshing.")),
	), h.handleRefreshFeed)

	return s
}

// StartMCPServer starts the cryptofeed MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager, loader contract.FeedLoader) error {
	s := NewMCPServer(baseCfg, mgr, loader)
	return server.ServeStdio(s)
}

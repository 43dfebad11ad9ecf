package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/cryptofeed/core"
	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	loader  contract.FeedLoader
}

// feedResult is the JSON payload returned by every tool.
type feedResult struct {
	CachedAt   string              `json:"cached_at"`
	TotalItems int                 `json:"total_items"`
	Feeds      []schema.CryptoFeed `json:"feeds"`
}

func (h *toolHandler) resultLimit(request mcp.CallToolRequest) (int, error) {
	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l != 0 {
		if l < 0 || l > contract.MaxResultLimit {
			return 0, fmt.Errorf("limit must be between 1 and %d", contract.MaxResultLimit)
		}
		limit = l
	}
	return limit, nil
}

func (h *toolHandler) store() (contract.FeedStore, error) {
	if h.mgr == nil || h.mgr.GetFeedStore() == nil {
		return nil, errors.New("feed store is not initialized")
	}
	return h.mgr.GetFeedStore(), nil
}

func (h *toolHandler) handleGetCachedFeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := h.resultLimit(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cached, err := core.NewCryptoFeedCacheUseCase(store).Load(ctx)
	if errors.Is(err, contract.ErrEmptyCache) {
		return mcp.NewToolResultError("no cached feed found, call refresh_feed first"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load cached feed failed: %v", err)), nil
	}
	return feedToolResult(cached, limit), nil
}

func (h *toolHandler) handleRefreshFeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := h.resultLimit(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if h.loader == nil {
		return mcp.NewToolResultError("remote feed loader is not configured"), nil
	}

	cached, err := core.RefreshFeed(ctx, h.loader, core.NewCryptoFeedCacheUseCase(store), time.Now)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}
	return feedToolResult(cached, limit), nil
}

func feedToolResult(cached schema.CachedFeed, limit int) *mcp.CallToolResult {
	feeds := cached.Feeds
	if limit > 0 && len(feeds) > limit {
		feeds = feeds[:limit]
	}
	if feeds == nil {
		feeds = []schema.CryptoFeed{}
	}
	res := feedResult{
		CachedAt:   cached.Timestamp.UTC().Format(contract.DateTimeFormat),
		TotalItems: cached.Len(),
		Feeds:      feeds,
	}
	jsonData, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

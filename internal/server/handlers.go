package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/settings"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/terminal"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Engine  *terminal.Engine // Terminal engine (session, prices, quotes, screens)
	DevMode bool             // Enable detailed error responses in development
	Logger  *logrus.Logger   // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Session reports the wallet session state
func (h *Handlers) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, SessionResponse{
		Connected: h.Engine.Connected(),
		Owner:     h.Engine.Owner(),
	})
}

// Connect attaches the host wallet; balance polling starts as a side effect
func (h *Handlers) Connect(c echo.Context) error {
	var req ConnectRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if strings.TrimSpace(req.Owner) == "" {
		return h.err(c, http.StatusBadRequest, "owner is required", map[string]any{"owner": "required"})
	}

	if err := h.Engine.Connect(req.Owner); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid wallet address", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, SessionResponse{Connected: true, Owner: h.Engine.Owner()})
}

// Disconnect detaches the wallet; balances reset to empty
func (h *Handlers) Disconnect(c echo.Context) error {
	h.Engine.Disconnect()
	return c.JSON(http.StatusOK, SessionResponse{Connected: false})
}

// SelectTokens sets the swap form pair; both mints join the watch set
func (h *Handlers) SelectTokens(c echo.Context) error {
	var req TokensRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	if err := h.Engine.SelectTokens(req.From, req.To); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid token pair", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, h.Engine.Form())
}

// Prices resolves USD prices for the requested mint addresses
// Accepts ids query parameter as comma-separated mint addresses
func (h *Handlers) Prices(c echo.Context) error {
	ids := splitCSVQuery(c.QueryParams()["ids"])
	if len(ids) == 0 {
		return h.err(c, http.StatusBadRequest, "invalid ids", map[string]any{"ids": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res := h.Engine.Prices(ctx, ids)

	out := PricesResponse{Prices: make(map[string]PriceItem, len(res.Resolved)), Failed: res.Failed}
	for addr, e := range res.Resolved {
		out.Prices[addr] = PriceItem{USD: e.USD, ObservedAt: e.ObservedAt}
	}
	return c.JSON(http.StatusOK, out)
}

// Balances returns the connected wallet's owned token balances
func (h *Handlers) Balances(c echo.Context) error {
	if !h.Engine.Connected() {
		return h.err(c, http.StatusBadRequest, "wallet is not connected", nil)
	}

	balances := h.Engine.Balances()
	out := make(map[string]BalanceItem, len(balances))
	for mint, b := range balances {
		out[mint] = BalanceItem{
			Account:    b.Account,
			UIBalance:  b.UIBalance,
			Decimals:   b.Decimals,
			HasBalance: b.HasBalance,
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"balances": out})
}

// Quote refreshes the quote for the selected pair
// Accepts amount (raw integer string) and optional swapMode query parameters
func (h *Handlers) Quote(c echo.Context) error {
	amountStr := strings.TrimSpace(c.QueryParam("amount"))
	if amountStr == "" {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "required"})
	}
	if _, err := strconv.ParseUint(amountStr, 10, 64); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be uint64"})
	}

	swapMode := strings.TrimSpace(c.QueryParam("swapMode"))
	if swapMode != "" && swapMode != "ExactIn" && swapMode != "ExactOut" {
		return h.err(c, http.StatusBadRequest, "invalid swapMode", map[string]any{"swapMode": "must be ExactIn or ExactOut"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	out, err := h.Engine.RefreshQuote(ctx, amountStr, swapMode)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "quote failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

// QuoteSummary renders the held quote for the review screen
func (h *Handlers) QuoteSummary(c echo.Context) error {
	out, err := h.Engine.Summary()
	if err != nil {
		return h.err(c, http.StatusBadRequest, "no quote available", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// QuoteFees projects the transaction fee breakdown for the held quote
func (h *Handlers) QuoteFees(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Engine.FeeBreakdown(ctx)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "no quote available", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// Screen reports the current view state
func (h *Handlers) Screen(c echo.Context) error {
	return c.JSON(http.StatusOK, ScreenResponse{Screen: string(h.Engine.Screen())})
}

// ScreenAccept moves to the review screen; requires a fresh quote
func (h *Handlers) ScreenAccept(c echo.Context) error {
	if err := h.Engine.AcceptQuote(); err != nil {
		return h.err(c, http.StatusConflict, "cannot accept quote", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, ScreenResponse{Screen: string(h.Engine.Screen())})
}

// ScreenBack leaves the review screen; the quote refreshes in the background
func (h *Handlers) ScreenBack(c echo.Context) error {
	if err := h.Engine.Back(); err != nil {
		return h.err(c, http.StatusConflict, "cannot go back", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, ScreenResponse{Screen: string(h.Engine.Screen())})
}

// ScreenSubmit confirms the reviewed quote; stale quotes are rejected
func (h *Handlers) ScreenSubmit(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	ixs, err := h.Engine.Submit(ctx)
	if err != nil {
		return h.err(c, http.StatusConflict, "submit failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"screen":       string(h.Engine.Screen()),
		"instructions": len(ixs),
	})
}

// ScreenComplete marks the in-flight swap done
func (h *Handlers) ScreenComplete(c echo.Context) error {
	if err := h.Engine.Complete(); err != nil {
		return h.err(c, http.StatusConflict, "cannot complete", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, ScreenResponse{Screen: string(h.Engine.Screen())})
}

// ScreenReset returns the terminal to its initial screen from any state
func (h *Handlers) ScreenReset(c echo.Context) error {
	h.Engine.Reset()
	return c.JSON(http.StatusOK, ScreenResponse{Screen: string(h.Engine.Screen())})
}

// SettingsUpsert creates or replaces per-wallet settings
func (h *Handlers) SettingsUpsert(c echo.Context) error {
	store := h.Engine.SettingsStore()
	if store == nil {
		return h.err(c, http.StatusBadRequest, "settings storage is not configured", nil)
	}

	var req SettingsUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := settings.ValidateOwner(req.Owner); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid owner", map[string]any{"owner": "must be a base58 public key"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := store.Upsert(ctx, settings.Settings{
		Owner:            req.Owner,
		SlippageBps:      req.SlippageBps,
		PriorityFeeSOL:   req.PriorityFeeSOL,
		OnlyDirectRoutes: req.OnlyDirectRoutes,
	})
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert settings", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// SettingsGet retrieves settings for an owner
// Returns 404 when the owner has none stored
func (h *Handlers) SettingsGet(c echo.Context) error {
	store := h.Engine.SettingsStore()
	if store == nil {
		return h.err(c, http.StatusBadRequest, "settings storage is not configured", nil)
	}

	owner := c.Param("owner")
	if err := settings.ValidateOwner(owner); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid owner", map[string]any{"owner": "must be a base58 public key"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := store.Get(ctx, owner)
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "settings not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get settings", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// SettingsUpdate replaces settings for an existing owner
func (h *Handlers) SettingsUpdate(c echo.Context) error {
	store := h.Engine.SettingsStore()
	if store == nil {
		return h.err(c, http.StatusBadRequest, "settings storage is not configured", nil)
	}

	owner := c.Param("owner")
	if err := settings.ValidateOwner(owner); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid owner", map[string]any{"owner": "must be a base58 public key"})
	}

	var req SettingsUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := store.Upsert(ctx, settings.Settings{
		Owner:            owner,
		SlippageBps:      req.SlippageBps,
		PriorityFeeSOL:   req.PriorityFeeSOL,
		OnlyDirectRoutes: req.OnlyDirectRoutes,
	})
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update settings", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// SettingsDelete removes stored settings for an owner
// Returns 204 No Content on successful deletion
func (h *Handlers) SettingsDelete(c echo.Context) error {
	store := h.Engine.SettingsStore()
	if store == nil {
		return h.err(c, http.StatusBadRequest, "settings storage is not configured", nil)
	}

	owner := c.Param("owner")
	if err := settings.ValidateOwner(owner); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid owner", map[string]any{"owner": "must be a base58 public key"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := store.Delete(ctx, owner); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete settings", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

func splitCSVQuery(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		for _, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

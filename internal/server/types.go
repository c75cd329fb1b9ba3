package server

import (
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/terminal"
)

// ErrorResponse is the standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"`
}

// ConnectRequest attaches the host wallet to the terminal session
type ConnectRequest struct {
	Owner string `json:"owner"` // Base58 wallet public key
}

// SessionResponse describes the wallet session state
type SessionResponse struct {
	Connected bool   `json:"connected"`
	Owner     string `json:"owner,omitempty"`
}

// ScreenResponse reports the current view state
type ScreenResponse struct {
	Screen string `json:"screen"`
}

// TokensRequest selects the swap form pair
type TokensRequest struct {
	From terminal.TokenInfo `json:"from"`
	To   terminal.TokenInfo `json:"to"`
}

// PriceItem is one resolved price in a prices response
type PriceItem struct {
	USD        float64 `json:"usd"`
	ObservedAt int64   `json:"timestamp"` // Unix milliseconds
}

// PricesResponse maps mint address to its resolved price; addresses that
// could not be priced this cycle appear in Failed
type PricesResponse struct {
	Prices map[string]PriceItem `json:"prices"`
	Failed []string             `json:"failed,omitempty"`
}

// BalanceItem is one owned token balance
type BalanceItem struct {
	Account    string  `json:"account"`
	UIBalance  float64 `json:"uiBalance"`
	Decimals   int     `json:"decimals"`
	HasBalance bool    `json:"hasBalance"`
}

// SettingsUpsertRequest creates or replaces per-wallet settings
type SettingsUpsertRequest struct {
	Owner            string  `json:"owner"`
	SlippageBps      uint16  `json:"slippageBps"`
	PriorityFeeSOL   float64 `json:"priorityFeeSOL"`
	OnlyDirectRoutes bool    `json:"onlyDirectRoutes"`
}

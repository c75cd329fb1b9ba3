package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = NotFoundJSON()

	e.Use(SetJSONContentType)
	e.Use(SetNoCacheHeaders)

	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)

	// Wallet session
	v1.GET("/session", h.Session)
	v1.POST("/connect", h.Connect)
	v1.POST("/disconnect", h.Disconnect)

	// Swap form and market data
	v1.POST("/tokens", h.SelectTokens)
	v1.GET("/prices", h.Prices)
	v1.GET("/balances", h.Balances)

	// Quote endpoints hit the aggregator upstream, so they are rate limited
	quoteGroup := v1.Group("/quote")
	quoteGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(2), // 2 requests per second
		Burst:     5,
		ExpiresIn: 2 * time.Minute,
	})))
	quoteGroup.GET("", h.Quote)
	quoteGroup.GET("/summary", h.QuoteSummary)
	quoteGroup.GET("/fees", h.QuoteFees)

	// Screen flow
	screenGroup := v1.Group("/screen")
	screenGroup.GET("", h.Screen)
	screenGroup.POST("/accept", h.ScreenAccept)
	screenGroup.POST("/back", h.ScreenBack)
	screenGroup.POST("/submit", h.ScreenSubmit)
	screenGroup.POST("/complete", h.ScreenComplete)
	screenGroup.POST("/reset", h.ScreenReset)

	// Per-wallet settings CRUD
	settingsGroup := v1.Group("/settings")
	settingsGroup.POST("", h.SettingsUpsert)
	settingsGroup.GET("/:owner", h.SettingsGet)
	settingsGroup.PUT("/:owner", h.SettingsUpdate)
	settingsGroup.DELETE("/:owner", h.SettingsDelete)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}

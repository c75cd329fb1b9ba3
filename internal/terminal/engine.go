package terminal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/accounts"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/events"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/fees"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/jupiter"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/prices"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/rpc"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/screens"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/settings"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/storage"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/wallet"
)

// Engine is the terminal's orchestrator: one instance per embedding, created
// at mount and closed at unmount. It owns the wallet session, the balance
// poller, the price pipeline, the screen controller and the quote state, and
// exposes the operations the host drives through the API.
type Engine struct {
	logger *logrus.Logger

	session  *wallet.Session
	fetcher  *accounts.Fetcher
	poller   *accounts.Poller
	cache    *prices.Cache
	resolver *prices.Resolver
	watcher  *prices.Watcher
	quotes   *jupiter.Client
	screens  *screens.Controller
	settings *settings.Store
	events   *events.Publisher
	activity storage.ActivityStore

	platformFeeBps uint16
	priorityFeeSOL float64

	mu       sync.RWMutex
	form     Form
	quote    *jupiter.QuoteResponse
	quotedAt time.Time
}

// EngineConfig holds the engine's collaborators and tunables.
type EngineConfig struct {
	RPC             *rpc.Client
	Redis           *redis.Client
	PriceAPIBaseURL string
	Jupiter         *jupiter.Client
	Activity        storage.ActivityStore // optional
	PollAccounts    bool
	PlatformFeeBps  uint16
	PriorityFeeSOL  float64
	Logger          *logrus.Logger
}

// NewEngine assembles the terminal engine and its internal pipeline.
func NewEngine(ctx context.Context, cfg EngineConfig) (*Engine, error) {
	if cfg.RPC == nil {
		return nil, fmt.Errorf("rpc client is required")
	}
	if cfg.Jupiter == nil {
		return nil, fmt.Errorf("jupiter client is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	e := &Engine{
		logger:         cfg.Logger,
		quotes:         cfg.Jupiter,
		activity:       cfg.Activity,
		platformFeeBps: cfg.PlatformFeeBps,
		priorityFeeSOL: cfg.PriorityFeeSOL,
	}

	// Price pipeline: durable store -> cache -> resolver -> watcher.
	var store prices.Store
	if cfg.Redis != nil {
		s, err := prices.NewRedisStore(cfg.Redis, constants.PriceCacheStorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create price store: %w", err)
		}
		store = s

		st, err := settings.NewStore(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to create settings store: %w", err)
		}
		e.settings = st
		e.events = events.NewPublisher(cfg.Redis, cfg.Logger)
	}

	e.cache = prices.LoadCache(ctx, store, constants.PriceCacheTTL, cfg.Logger)
	e.resolver = prices.NewResolver(prices.ResolverConfig{
		Cache:     e.cache,
		Store:     store,
		Client:    prices.NewClient(cfg.PriceAPIBaseURL),
		BatchSize: constants.PriceBatchSize,
		Logger:    cfg.Logger,
	})
	e.watcher = prices.NewWatcher(prices.WatcherConfig{
		Resolve:  e.resolver.Resolve,
		Debounce: constants.WatchDebounce,
		Logger:   cfg.Logger,
	})

	// Accounts: fetcher + poller, keyed to the wallet session lifecycle.
	e.session = wallet.NewSession(cfg.Logger)
	e.fetcher = accounts.NewFetcher(cfg.RPC, cfg.Logger)
	e.poller = accounts.NewPoller(accounts.PollerConfig{
		Fetch:    e.fetcher.FetchAll,
		Interval: constants.AccountsPollInterval,
		Logger:   cfg.Logger,
	})

	// Every mint the wallet holds joins the watch set; prices for held
	// tokens stay warm while balances refresh.
	e.poller.Subscribe(func(balances map[string]accounts.Balance) {
		var held []string
		for mint, b := range balances {
			if b.HasBalance {
				held = append(held, mint)
			}
		}
		if len(held) > 0 {
			e.watcher.Add(held...)
		}
		e.publishBalances(len(balances))
	})

	if cfg.PollAccounts {
		e.session.Subscribe(func(connected bool, owner string) {
			if connected {
				e.poller.Start(owner)
				return
			}
			e.poller.Stop()
		})
	}

	e.screens = screens.NewController(screens.ControllerConfig{
		Refresh: e.refreshQuoteAsync,
		Submit:  e.submitDefault,
		Logger:  cfg.Logger,
	})
	e.screens.OnTransition(func(from, to screens.Screen) {
		e.publishScreen(from, to)
	})

	return e, nil
}

// Run keeps watched prices fresh until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	e.watcher.Run(ctx, constants.PriceCacheTTL)
}

// Connect attaches the host wallet; balance polling starts as a side effect.
func (e *Engine) Connect(owner string) error {
	return e.session.Connect(owner)
}

// Disconnect detaches the wallet, stops polling and clears balances.
func (e *Engine) Disconnect() {
	e.session.Disconnect()
}

// Connected reports whether a wallet is attached.
func (e *Engine) Connected() bool {
	return e.session.Connected()
}

// Owner returns the connected wallet address, or "".
func (e *Engine) Owner() string {
	return e.session.Owner()
}

// SelectTokens sets the swap form pair. Both mints join the watch set and
// any held quote is invalidated.
func (e *Engine) SelectTokens(from, to TokenInfo) error {
	if err := from.validate(); err != nil {
		return fmt.Errorf("invalid from token: %w", err)
	}
	if err := to.validate(); err != nil {
		return fmt.Errorf("invalid to token: %w", err)
	}
	if from.Mint == to.Mint {
		return fmt.Errorf("from and to tokens must differ")
	}

	e.mu.Lock()
	e.form.From = from
	e.form.To = to
	e.quote = nil
	e.quotedAt = time.Time{}
	hasAmount := e.form.Amount != ""
	e.mu.Unlock()

	e.watcher.Add(from.Mint, to.Mint)

	// With an amount already entered, a new pair re-quotes right away
	if hasAmount {
		e.refreshQuoteAsync()
	}
	return nil
}

// Form returns the current swap form state.
func (e *Engine) Form() Form {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.form
}

// RefreshQuote fetches a fresh quote for the selected pair and amount.
func (e *Engine) RefreshQuote(ctx context.Context, amount, swapMode string) (*jupiter.QuoteResponse, error) {
	e.mu.RLock()
	form := e.form
	e.mu.RUnlock()

	if form.From.Mint == "" || form.To.Mint == "" {
		return nil, fmt.Errorf("no token pair selected")
	}
	if amount == "" {
		return nil, fmt.Errorf("amount is required")
	}

	req := jupiter.QuoteRequest{
		InputMint:  form.From.Mint,
		OutputMint: form.To.Mint,
		Amount:     amount,
		SwapMode:   swapMode,
	}

	cfg := e.ownerSettings(ctx)
	slippage := cfg.SlippageBps
	req.SlippageBps = &slippage
	if cfg.OnlyDirectRoutes {
		direct := true
		req.OnlyDirectRoutes = &direct
	}
	if e.platformFeeBps > 0 {
		feeBps := e.platformFeeBps
		req.PlatformFeeBps = &feeBps
	}

	quote, err := e.quotes.Quote(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("quote failed: %w", err)
	}

	e.mu.Lock()
	e.form.Amount = amount
	e.form.SwapMode = swapMode
	e.quote = quote
	e.quotedAt = time.Now()
	e.mu.Unlock()

	return quote, nil
}

// Quote returns the held quote and whether it is still submittable.
func (e *Engine) Quote() (*jupiter.QuoteResponse, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.quote == nil {
		return nil, false
	}
	fresh := time.Since(e.quotedAt) < constants.QuoteValidity
	return e.quote, fresh
}

// Summary renders the held quote for display.
func (e *Engine) Summary() (*jupiter.Summary, error) {
	e.mu.RLock()
	quote := e.quote
	form := e.form
	e.mu.RUnlock()

	if quote == nil {
		return nil, fmt.Errorf("no quote available")
	}
	return jupiter.Summarize(quote, form.From.Symbol, form.From.Decimals, form.To.Symbol, form.To.Decimals)
}

// AcceptQuote moves to the review screen. A stale quote cannot be accepted.
func (e *Engine) AcceptQuote() error {
	if _, fresh := e.Quote(); !fresh {
		return fmt.Errorf("quote is missing or expired, refresh required")
	}
	return e.screens.Accept()
}

// Back leaves the review screen; the quote is refreshed as a side effect.
func (e *Engine) Back() error {
	return e.screens.Back()
}

// Submit confirms the reviewed quote. Stale quotes are rejected before any
// transition happens.
func (e *Engine) Submit(ctx context.Context) ([]solana.Instruction, error) {
	quote, fresh := e.Quote()
	if !fresh {
		return nil, fmt.Errorf("quote is missing or expired, refresh required")
	}
	return e.screens.Submit(ctx, quote)
}

// Complete marks the in-flight swap done.
func (e *Engine) Complete() error {
	return e.screens.Complete()
}

// Reset returns the terminal to its initial screen.
func (e *Engine) Reset() {
	e.screens.Reset()
}

// Screen returns the current view state.
func (e *Engine) Screen() screens.Screen {
	return e.screens.Screen()
}

// RegisterBuildCallback installs the host's instruction-build callback.
func (e *Engine) RegisterBuildCallback(fn screens.BuildFunc) {
	e.screens.RegisterBuildCallback(fn)
}

// Balances returns the current owned-balance map.
func (e *Engine) Balances() map[string]accounts.Balance {
	return e.poller.Balances()
}

// Prices resolves USD prices for the given addresses immediately,
// bypassing the watch-set debounce.
func (e *Engine) Prices(ctx context.Context, addresses []string) *prices.Result {
	return e.resolver.Resolve(ctx, addresses)
}

// WatchedPrices returns the watcher for subscription by the host surface.
func (e *Engine) WatchedPrices() *prices.Watcher {
	return e.watcher
}

// FeeBreakdown projects the transaction fees for the held quote against the
// accounts the owner already has.
func (e *Engine) FeeBreakdown(ctx context.Context) (fees.Breakdown, error) {
	e.mu.RLock()
	quote := e.quote
	e.mu.RUnlock()

	if quote == nil {
		return fees.Breakdown{}, fmt.Errorf("no quote available")
	}

	owned := make(map[string]string)
	for mint, b := range e.poller.Balances() {
		owned[mint] = b.Account
	}

	priorityFee := e.priorityFeeSOL
	if cfg := e.ownerSettings(ctx); cfg.PriorityFeeSOL > 0 {
		priorityFee = cfg.PriorityFeeSOL
	}

	// Open orders are left empty: swaps go through shared accounts.
	return fees.Project(quote, owned, map[string]string{}, priorityFee), nil
}

// Settings returns the effective settings for the connected owner.
func (e *Engine) Settings(ctx context.Context) *settings.Settings {
	return e.ownerSettings(ctx)
}

// SettingsStore exposes the persistence layer for the settings endpoints.
// Nil when the engine runs without redis.
func (e *Engine) SettingsStore() *settings.Store {
	return e.settings
}

// Close tears down polling and the price watcher. In-flight requests are
// not aborted, only future scheduling stops.
func (e *Engine) Close() error {
	e.watcher.Close()
	e.poller.Stop()

	if e.activity != nil {
		if err := e.activity.Close(); err != nil {
			return fmt.Errorf("activity store close: %w", err)
		}
	}
	return nil
}

func (e *Engine) ownerSettings(ctx context.Context) *settings.Settings {
	owner := e.session.Owner()
	if e.settings == nil || owner == "" {
		return settings.Default(owner)
	}
	cfg, err := e.settings.GetOrDefault(ctx, owner)
	if err != nil {
		e.logger.WithError(err).Warn("failed to load settings, using defaults")
		return settings.Default(owner)
	}
	return cfg
}

// refreshQuoteAsync re-quotes the last form state in the background. Used
// by the screen controller on back-navigation.
func (e *Engine) refreshQuoteAsync() {
	e.mu.RLock()
	amount := e.form.Amount
	swapMode := e.form.SwapMode
	e.mu.RUnlock()

	if amount == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := e.RefreshQuote(ctx, amount, swapMode); err != nil {
			e.logger.WithError(err).Warn("quote refresh failed")
		}
	}()
}

// submitDefault is the submission path when no build callback is
// registered: broadcast the submission and record it, leaving execution to
// the host listening on the swaps channel.
func (e *Engine) submitDefault(ctx context.Context, quote *jupiter.QuoteResponse) error {
	ev := events.SwapEvent{
		Owner:      e.session.Owner(),
		InputMint:  quote.InputMint,
		OutputMint: quote.OutputMint,
		InAmount:   quote.InAmount,
		OutAmount:  quote.OutAmount,
		SwapMode:   quote.SwapMode,
		At:         time.Now().UTC(),
	}
	if e.events != nil {
		if err := e.events.PublishSwap(ctx, ev); err != nil {
			return fmt.Errorf("failed to publish swap: %w", err)
		}
	}
	e.recordActivity(ctx, quote)
	return nil
}

func (e *Engine) recordActivity(ctx context.Context, quote *jupiter.QuoteResponse) {
	if e.activity == nil {
		return
	}
	a := &storage.Activity{
		Owner:          e.session.Owner(),
		InputMint:      quote.InputMint,
		OutputMint:     quote.OutputMint,
		InAmount:       quote.InAmount,
		OutAmount:      quote.OutAmount,
		SwapMode:       quote.SwapMode,
		PriceImpactPct: quote.PriceImpactPct,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := e.activity.InsertActivity(ctx, a); err != nil {
		e.logger.WithError(err).Warn("failed to record swap activity")
	}
}

func (e *Engine) publishScreen(from, to screens.Screen) {
	if e.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	ev := events.ScreenEvent{From: string(from), To: string(to), At: time.Now().UTC()}
	if err := e.events.PublishScreen(ctx, ev); err != nil {
		e.logger.WithError(err).Debug("failed to publish screen event")
	}
}

func (e *Engine) publishBalances(mints int) {
	if e.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	ev := events.BalancesEvent{Owner: e.session.Owner(), Mints: mints, At: time.Now().UTC()}
	if err := e.events.PublishBalances(ctx, ev); err != nil {
		e.logger.WithError(err).Debug("failed to publish balances event")
	}
}

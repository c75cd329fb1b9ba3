package constants

import "time"

// Well-known mints and programs
const (
	// WrappedSOLMint is the pseudo-mint under which the native SOL balance
	// is reported so it participates in the same mint->balance mapping.
	WrappedSOLMint = "So11111111111111111111111111111111111111112"

	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID       = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// Price pipeline
const (
	// PriceCacheStorageKey is the single durable-storage key holding the
	// serialized mint->price mapping. Kept byte-for-byte compatible with the
	// browser build of the terminal.
	PriceCacheStorageKey = "jupiter-terminal-cached-token-prices"

	// PriceCacheTTL is the freshness window for a cached price entry.
	PriceCacheTTL = time.Minute

	// PriceBatchSize is the hard upstream limit on ids per price request.
	PriceBatchSize = 100

	// WatchDebounce coalesces rapid watch-set changes into one resolve cycle.
	WatchDebounce = 250 * time.Millisecond
)

// Account polling
const (
	// AccountsPollInterval is the balance refresh cadence while a wallet
	// is connected.
	AccountsPollInterval = 10 * time.Second

	NativeDecimals = 9
	LamportsPerSOL = 1_000_000_000
)

// Quote lifetime
const (
	// QuoteValidity mirrors the route cache duration of the terminal: a quote
	// older than this must be refreshed before it can be submitted.
	QuoteValidity = 20 * time.Second
)

// Fee constants, lamports
const (
	// SignatureFeeLamports is the base network fee per signature.
	SignatureFeeLamports = 5_000

	// ATADepositLamports is the rent-exempt deposit for creating an
	// associated token account. Charged only when the account does not exist.
	ATADepositLamports = 2_039_280

	// OpenOrdersDepositLamports is the rent-exempt deposit for a
	// Serum/OpenBook open-orders account.
	OpenOrdersDepositLamports = 23_357_760
)

// Redis keys and pub/sub channels
const (
	SettingsIndexKey    = "terminal:settings:index"
	SettingsValuePrefix = "terminal:settings:"

	ChannelScreen   = "terminal:screen"
	ChannelSwaps    = "terminal:swaps"
	ChannelBalances = "terminal:balances"
)

package accounts

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/rpc"
)

// Balance is one owned balance record, keyed by mint in the balance map.
// Records are replaced wholesale on each refresh, never partially mutated.
type Balance struct {
	Account     string  `json:"account"` // token account holding the balance
	UIBalance   float64 `json:"uiBalance"`
	RawLamports uint64  `json:"rawLamports"`
	HasBalance  bool    `json:"hasBalance"`
	Decimals    int     `json:"decimals"`
}

// scanClient is the subset of the RPC client the fetcher needs.
type scanClient interface {
	GetParsedTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]rpc.ParsedTokenAccount, error)
	GetAccountInfo(ctx context.Context, address string) (*rpc.AccountInfoValue, error)
}

// Fetcher loads the full native + SPL balance picture for an owner.
type Fetcher struct {
	client scanClient
	logger *logrus.Logger
}

func NewFetcher(client scanClient, logger *logrus.Logger) *Fetcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Fetcher{client: client, logger: logger}
}

// FetchAll returns every owned balance keyed by mint. It fails closed: with
// no owner connected it returns an empty map and does not touch the network.
//
// Two account scans (legacy and token-2022 programs) and the native lamports
// lookup run concurrently. Scanned accounts that are not the canonical ATA
// for (owner, mint) are discarded so auxiliary accounts cannot double-count
// or spoof a displayed balance. The native balance is reported under the
// wrapped SOL mint so it rides in the same mapping.
func (f *Fetcher) FetchAll(ctx context.Context, owner string) (map[string]Balance, error) {
	if owner == "" {
		return map[string]Balance{}, nil
	}

	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner address: %w", err)
	}

	var (
		wg         sync.WaitGroup
		legacy     []rpc.ParsedTokenAccount
		token2022  []rpc.ParsedTokenAccount
		native     *rpc.AccountInfoValue
		legacyErr  error
		token22Err error
		nativeErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		legacy, legacyErr = f.client.GetParsedTokenAccountsByOwner(ctx, owner, constants.TokenProgramID)
	}()
	go func() {
		defer wg.Done()
		token2022, token22Err = f.client.GetParsedTokenAccountsByOwner(ctx, owner, constants.Token2022ProgramID)
	}()
	go func() {
		defer wg.Done()
		native, nativeErr = f.client.GetAccountInfo(ctx, owner)
	}()
	wg.Wait()

	if legacyErr != nil {
		return nil, fmt.Errorf("token account scan failed: %w", legacyErr)
	}
	if token22Err != nil {
		return nil, fmt.Errorf("token-2022 account scan failed: %w", token22Err)
	}
	if nativeErr != nil {
		return nil, fmt.Errorf("native balance lookup failed: %w", nativeErr)
	}

	balances := make(map[string]Balance)
	for _, acct := range append(legacy, token2022...) {
		b, mint, ok := f.toBalance(ownerKey, acct)
		if !ok {
			continue
		}
		balances[mint] = b
	}

	if native != nil {
		balances[constants.WrappedSOLMint] = Balance{
			Account:     owner,
			UIBalance:   float64(native.Lamports) / constants.LamportsPerSOL,
			RawLamports: native.Lamports,
			HasBalance:  native.Lamports > 0,
			Decimals:    constants.NativeDecimals,
		}
	}

	return balances, nil
}

func (f *Fetcher) toBalance(owner solana.PublicKey, acct rpc.ParsedTokenAccount) (Balance, string, bool) {
	info := acct.Account.Data.Parsed.Info
	if info.Mint == "" {
		return Balance{}, "", false
	}

	mintKey, err := solana.PublicKeyFromBase58(info.Mint)
	if err != nil {
		f.logger.WithField("mint", info.Mint).Debug("skipping account with unparseable mint")
		return Balance{}, "", false
	}

	// Only the canonical associated account counts; auxiliary token accounts
	// for the same mint are rejected.
	expected, _, err := FindAssociatedTokenAddress(owner, mintKey)
	if err != nil {
		return Balance{}, "", false
	}
	if expected.String() != acct.Pubkey {
		return Balance{}, "", false
	}

	raw, err := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
	if err != nil {
		raw = 0
	}

	return Balance{
		Account:     acct.Pubkey,
		UIBalance:   info.TokenAmount.UIAmount,
		RawLamports: raw,
		HasBalance:  info.TokenAmount.UIAmount > 0,
		Decimals:    info.TokenAmount.Decimals,
	}, info.Mint, true
}

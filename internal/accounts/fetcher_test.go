package accounts

import (
	"context"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/rpc"
)

const (
	testOwner = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
	mintUSDC  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	mintBONK  = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

type fakeScanClient struct {
	byProgram map[string][]rpc.ParsedTokenAccount
	native    *rpc.AccountInfoValue

	scanErr   error
	nativeErr error
}

func (f *fakeScanClient) GetParsedTokenAccountsByOwner(_ context.Context, _, programID string) ([]rpc.ParsedTokenAccount, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.byProgram[programID], nil
}

func (f *fakeScanClient) GetAccountInfo(_ context.Context, _ string) (*rpc.AccountInfoValue, error) {
	if f.nativeErr != nil {
		return nil, f.nativeErr
	}
	return f.native, nil
}

func tokenAccount(t *testing.T, pubkey, mint string, uiAmount float64, decimals int) rpc.ParsedTokenAccount {
	t.Helper()
	acct := rpc.ParsedTokenAccount{Pubkey: pubkey}
	acct.Account.Data.Parsed.Info = rpc.ParsedTokenInfo{
		Mint: mint,
		TokenAmount: rpc.TokenAmount{
			Amount:   fmt.Sprintf("%d", uint64(uiAmount*1e6)),
			UIAmount: uiAmount,
			Decimals: decimals,
		},
	}
	return acct
}

// canonicalATA computes the associated account address a scan result must
// carry to be counted.
func canonicalATA(t *testing.T, owner, mint string) string {
	t.Helper()
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	require.NoError(t, err)
	mintKey, err := solana.PublicKeyFromBase58(mint)
	require.NoError(t, err)
	addr, _, err := FindAssociatedTokenAddress(ownerKey, mintKey)
	require.NoError(t, err)
	return addr.String()
}

func TestFetchAll_NoOwnerFailsClosed(t *testing.T) {
	client := &fakeScanClient{scanErr: fmt.Errorf("must not be called")}
	f := NewFetcher(client, nil)

	balances, err := f.FetchAll(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestFetchAll_InvalidOwner(t *testing.T) {
	f := NewFetcher(&fakeScanClient{}, nil)

	_, err := f.FetchAll(context.Background(), "not-a-pubkey")
	assert.Error(t, err)
}

func TestFetchAll_CanonicalAccountsOnly(t *testing.T) {
	client := &fakeScanClient{
		byProgram: map[string][]rpc.ParsedTokenAccount{
			constants.TokenProgramID: {
				tokenAccount(t, canonicalATA(t, testOwner, mintUSDC), mintUSDC, 25.5, 6),
				// Auxiliary account for the same mint at a non-canonical address
				tokenAccount(t, testOwner, mintBONK, 9999, 5),
			},
		},
		native: &rpc.AccountInfoValue{Lamports: 0},
	}
	f := NewFetcher(client, nil)

	balances, err := f.FetchAll(context.Background(), testOwner)
	require.NoError(t, err)

	require.Contains(t, balances, mintUSDC)
	assert.Equal(t, 25.5, balances[mintUSDC].UIBalance)
	assert.True(t, balances[mintUSDC].HasBalance)
	assert.NotContains(t, balances, mintBONK)
}

func TestFetchAll_NativeBalanceUnderWrappedSOL(t *testing.T) {
	client := &fakeScanClient{
		native: &rpc.AccountInfoValue{Lamports: 2_500_000_000},
	}
	f := NewFetcher(client, nil)

	balances, err := f.FetchAll(context.Background(), testOwner)
	require.NoError(t, err)

	require.Contains(t, balances, constants.WrappedSOLMint)
	b := balances[constants.WrappedSOLMint]
	assert.Equal(t, 2.5, b.UIBalance)
	assert.Equal(t, uint64(2_500_000_000), b.RawLamports)
	assert.Equal(t, constants.NativeDecimals, b.Decimals)
	assert.True(t, b.HasBalance)
	assert.Equal(t, testOwner, b.Account)
}

func TestFetchAll_NativeOverridesScannedWSOLAccount(t *testing.T) {
	client := &fakeScanClient{
		byProgram: map[string][]rpc.ParsedTokenAccount{
			constants.TokenProgramID: {
				tokenAccount(t, canonicalATA(t, testOwner, constants.WrappedSOLMint), constants.WrappedSOLMint, 1, 9),
			},
		},
		native: &rpc.AccountInfoValue{Lamports: 5_000_000_000},
	}
	f := NewFetcher(client, nil)

	balances, err := f.FetchAll(context.Background(), testOwner)
	require.NoError(t, err)

	// Native lamports win over the scanned wrapped account
	assert.Equal(t, 5.0, balances[constants.WrappedSOLMint].UIBalance)
}

func TestFetchAll_ScanErrorPropagates(t *testing.T) {
	client := &fakeScanClient{scanErr: fmt.Errorf("rpc unavailable")}
	f := NewFetcher(client, nil)

	_, err := f.FetchAll(context.Background(), testOwner)
	assert.Error(t, err)
}

func TestFetchAll_ZeroBalanceStillListed(t *testing.T) {
	client := &fakeScanClient{
		byProgram: map[string][]rpc.ParsedTokenAccount{
			constants.TokenProgramID: {
				tokenAccount(t, canonicalATA(t, testOwner, mintUSDC), mintUSDC, 0, 6),
			},
		},
		native: &rpc.AccountInfoValue{Lamports: 0},
	}
	f := NewFetcher(client, nil)

	balances, err := f.FetchAll(context.Background(), testOwner)
	require.NoError(t, err)

	require.Contains(t, balances, mintUSDC)
	assert.False(t, balances[mintUSDC].HasBalance)
}

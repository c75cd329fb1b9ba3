package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/jupiter"
)

const (
	mintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	mintBONK = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	mintJUP  = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"

	marketA = "8BnEgHoWFysVcuFFX7QztDmzuH8r5ZFvyP3sYwn1XTh6"
	marketB = "9wFFyRfZBsuAha4YcuxcXLKwMxJR43S7fPfQLusDBzvT"
)

func routeStep(label, ammKey, outputMint string) jupiter.RoutePlanStep {
	return jupiter.RoutePlanStep{
		SwapInfo: jupiter.SwapInfo{
			AmmKey:     ammKey,
			Label:      label,
			OutputMint: outputMint,
		},
	}
}

func twoHopQuote() *jupiter.QuoteResponse {
	return &jupiter.QuoteResponse{
		InputMint:  constants.WrappedSOLMint,
		OutputMint: mintBONK,
		RoutePlan: []jupiter.RoutePlanStep{
			routeStep("Orca", marketA, mintUSDC),
			routeStep("Openbook", marketB, mintBONK),
		},
	}
}

func TestProject_NilQuote(t *testing.T) {
	b := Project(nil, nil, nil, 0.001)

	assert.Equal(t, uint64(constants.SignatureFeeLamports), b.SignatureFeeLamports)
	assert.Equal(t, 0.001, b.PriorityFeeSOL)
	assert.Empty(t, b.ATADeposits)
	assert.Empty(t, b.OpenOrdersDeposits)
	assert.Zero(t, b.TotalDepositLamports)
}

func TestProject_ATADepositsForUnownedMints(t *testing.T) {
	b := Project(twoHopQuote(), map[string]string{}, map[string]string{}, 0)

	require.Len(t, b.ATADeposits, 2)
	for _, d := range b.ATADeposits {
		assert.Equal(t, uint64(constants.ATADepositLamports), d.Lamports)
	}
	// Output is sorted by mint
	assert.True(t, b.ATADeposits[0].Mint < b.ATADeposits[1].Mint)
}

func TestProject_OwnedMintsNeedNoDeposit(t *testing.T) {
	owned := map[string]string{
		mintUSDC: "SomeTokenAccount1111111111111111111111111111",
	}
	b := Project(twoHopQuote(), owned, map[string]string{}, 0)

	require.Len(t, b.ATADeposits, 1)
	assert.Equal(t, mintBONK, b.ATADeposits[0].Mint)
}

func TestProject_WrappedSOLNeverNeedsDeposit(t *testing.T) {
	q := &jupiter.QuoteResponse{
		InputMint:  mintUSDC,
		OutputMint: constants.WrappedSOLMint,
		RoutePlan: []jupiter.RoutePlanStep{
			routeStep("Orca", marketA, constants.WrappedSOLMint),
		},
	}
	b := Project(q, map[string]string{}, map[string]string{}, 0)
	assert.Empty(t, b.ATADeposits)
}

func TestProject_OpenOrdersOnlyForSerumVenues(t *testing.T) {
	b := Project(twoHopQuote(), map[string]string{}, map[string]string{}, 0)

	require.Len(t, b.OpenOrdersDeposits, 1)
	assert.Equal(t, marketB, b.OpenOrdersDeposits[0].Market)
	assert.Equal(t, uint64(constants.OpenOrdersDepositLamports), b.OpenOrdersDeposits[0].Lamports)
}

func TestProject_ExistingOpenOrdersSkipped(t *testing.T) {
	openOrders := map[string]string{
		marketB: "ExistingOpenOrdersAccount1111111111111111111",
	}
	b := Project(twoHopQuote(), map[string]string{}, openOrders, 0)
	assert.Empty(t, b.OpenOrdersDeposits)
}

func TestProject_TotalSumsAllDeposits(t *testing.T) {
	b := Project(twoHopQuote(), map[string]string{}, map[string]string{}, 0)

	want := uint64(2*constants.ATADepositLamports + constants.OpenOrdersDepositLamports)
	assert.Equal(t, want, b.TotalDepositLamports)
}

func TestProject_IsPure(t *testing.T) {
	q := twoHopQuote()
	owned := map[string]string{mintJUP: "acct"}

	first := Project(q, owned, map[string]string{}, 0.002)
	second := Project(q, owned, map[string]string{}, 0.002)

	assert.Equal(t, first, second)
}

func TestProject_DuplicateRouteMintsCountOnce(t *testing.T) {
	q := &jupiter.QuoteResponse{
		OutputMint: mintBONK,
		RoutePlan: []jupiter.RoutePlanStep{
			routeStep("Orca", marketA, mintBONK),
			routeStep("Raydium", marketB, mintBONK),
		},
	}
	b := Project(q, map[string]string{}, map[string]string{}, 0)
	assert.Len(t, b.ATADeposits, 1)
}

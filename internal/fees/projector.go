package fees

import (
	"sort"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/jupiter"
)

// Deposit is a one-time rent-exempt deposit required to materialize an
// account the route needs.
type Deposit struct {
	Mint     string `json:"mint,omitempty"`
	Market   string `json:"market,omitempty"`
	Lamports uint64 `json:"lamports"`
}

// Breakdown is the projected cost surface of submitting a quoted swap.
type Breakdown struct {
	SignatureFeeLamports uint64    `json:"signatureFeeLamports"`
	ATADeposits          []Deposit `json:"ataDeposits"`
	OpenOrdersDeposits   []Deposit `json:"openOrdersDeposits"`
	PriorityFeeSOL       float64   `json:"priorityFeeSOL"`
	TotalDepositLamports uint64    `json:"totalDepositLamports"`
}

// Venues whose route steps settle through an open-orders account.
var openOrdersVenues = map[string]bool{
	"Serum":    true,
	"Openbook": true,
	"OpenBook": true,
}

// Project derives the fee breakdown for a quote given the accounts the
// owner already holds. It is a pure function of its inputs.
//
// A mint present in ownedAccountsByMint requires no ATA deposit: that rent
// was paid when the account was created in an earlier transaction. The same
// applies to markets present in openOrdersByMarket. Wrapped SOL is excluded
// from deposits because the wrap account is closed within the swap and its
// rent returned.
func Project(quote *jupiter.QuoteResponse, ownedAccountsByMint map[string]string, openOrdersByMarket map[string]string, priorityFeeSOL float64) Breakdown {
	b := Breakdown{
		SignatureFeeLamports: constants.SignatureFeeLamports,
		ATADeposits:          []Deposit{},
		OpenOrdersDeposits:   []Deposit{},
		PriorityFeeSOL:       priorityFeeSOL,
	}
	if quote == nil {
		return b
	}

	needATA := make(map[string]struct{})
	addMint := func(mint string) {
		if mint == "" || mint == constants.WrappedSOLMint {
			return
		}
		if _, owned := ownedAccountsByMint[mint]; owned {
			return
		}
		needATA[mint] = struct{}{}
	}

	addMint(quote.OutputMint)
	for _, step := range quote.RoutePlan {
		addMint(step.SwapInfo.OutputMint)
	}

	mints := make([]string, 0, len(needATA))
	for mint := range needATA {
		mints = append(mints, mint)
	}
	sort.Strings(mints)
	for _, mint := range mints {
		b.ATADeposits = append(b.ATADeposits, Deposit{
			Mint:     mint,
			Lamports: constants.ATADepositLamports,
		})
	}

	needOpenOrders := make(map[string]struct{})
	for _, step := range quote.RoutePlan {
		if !openOrdersVenues[step.SwapInfo.Label] {
			continue
		}
		market := step.SwapInfo.AmmKey
		if market == "" {
			continue
		}
		if _, owned := openOrdersByMarket[market]; owned {
			continue
		}
		needOpenOrders[market] = struct{}{}
	}

	markets := make([]string, 0, len(needOpenOrders))
	for market := range needOpenOrders {
		markets = append(markets, market)
	}
	sort.Strings(markets)
	for _, market := range markets {
		b.OpenOrdersDeposits = append(b.OpenOrdersDeposits, Deposit{
			Market:   market,
			Lamports: constants.OpenOrdersDepositLamports,
		})
	}

	for _, d := range b.ATADeposits {
		b.TotalDepositLamports += d.Lamports
	}
	for _, d := range b.OpenOrdersDeposits {
		b.TotalDepositLamports += d.Lamports
	}

	return b
}

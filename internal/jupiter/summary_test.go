package jupiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exactInQuote() *QuoteResponse {
	return &QuoteResponse{
		InputMint:            "So11111111111111111111111111111111111111112",
		OutputMint:           "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		InAmount:             "1000000000", // 1 SOL
		OutAmount:            "150000000",  // 150 USDC
		OtherAmountThreshold: "149250000",  // min received after slippage
		SwapMode:             "ExactIn",
		PriceImpactPct:       "0.0003",
	}
}

func TestSummarize_ExactIn(t *testing.T) {
	s, err := Summarize(exactInQuote(), "SOL", 9, "USDC", 6)
	require.NoError(t, err)

	assert.InDelta(t, 150.0, s.Rate, 1e-9)
	assert.Contains(t, s.RateText, "1 SOL")
	assert.Contains(t, s.RateText, "USDC")

	assert.Equal(t, "Minimum Received", s.ThresholdLabel)
	assert.Equal(t, "149.25 USDC", s.ThresholdText)
}

func TestSummarize_ExactOutThresholdInInputUnits(t *testing.T) {
	q := exactInQuote()
	q.SwapMode = "ExactOut"
	q.OtherAmountThreshold = "1005000000" // max consumed in SOL raw units

	s, err := Summarize(q, "SOL", 9, "USDC", 6)
	require.NoError(t, err)

	assert.Equal(t, "Maximum Consumed", s.ThresholdLabel)
	assert.Equal(t, "1.005 SOL", s.ThresholdText)
}

func TestSummarize_PriceImpactFloor(t *testing.T) {
	q := exactInQuote()
	q.PriceImpactPct = "0.0003" // 0.03% after x100

	s, err := Summarize(q, "SOL", 9, "USDC", 6)
	require.NoError(t, err)
	assert.Equal(t, "< 0.1%", s.PriceImpact)
	assert.InDelta(t, 0.03, s.PriceImpactPct, 1e-9)
}

func TestSummarize_PriceImpactAboveFloor(t *testing.T) {
	q := exactInQuote()
	q.PriceImpactPct = "0.025" // 2.5% after x100

	s, err := Summarize(q, "SOL", 9, "USDC", 6)
	require.NoError(t, err)
	assert.Equal(t, "~ 2.5%", s.PriceImpact)
}

func TestSummarize_MissingThreshold(t *testing.T) {
	q := exactInQuote()
	q.OtherAmountThreshold = ""

	s, err := Summarize(q, "SOL", 9, "USDC", 6)
	require.NoError(t, err)
	assert.Equal(t, "-", s.ThresholdText)
}

func TestSummarize_NilQuote(t *testing.T) {
	_, err := Summarize(nil, "SOL", 9, "USDC", 6)
	assert.Error(t, err)
}

func TestSummarize_BadAmounts(t *testing.T) {
	q := exactInQuote()
	q.InAmount = "not-a-number"

	_, err := Summarize(q, "SOL", 9, "USDC", 6)
	assert.Error(t, err)
}

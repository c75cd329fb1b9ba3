package jupiter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Summary is the human-readable rendering of a quote for the review screen.
type Summary struct {
	Rate           float64 `json:"rate"` // output units per input unit
	RateText       string  `json:"rateText"`
	PriceImpactPct float64 `json:"priceImpactPct"`
	PriceImpact    string  `json:"priceImpact"`
	ThresholdLabel string  `json:"thresholdLabel"` // Minimum Received / Maximum Consumed
	ThresholdText  string  `json:"thresholdText"`
}

// Summarize derives display text from a quote. For ExactIn the threshold is
// the minimum received in output units; for ExactOut it is the maximum
// consumed in input units.
func Summarize(q *QuoteResponse, fromSymbol string, fromDecimals int, toSymbol string, toDecimals int) (*Summary, error) {
	if q == nil {
		return nil, fmt.Errorf("quote is nil")
	}

	inAmount, err := uiAmount(q.InAmount, fromDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid inAmount: %w", err)
	}
	outAmount, err := uiAmount(q.OutAmount, toDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid outAmount: %w", err)
	}

	s := &Summary{}

	if inAmount > 0 && outAmount > 0 {
		s.Rate = outAmount / inAmount
		s.RateText = fmt.Sprintf("1 %s ≈ %s %s", fromSymbol, formatAmount(s.Rate), toSymbol)
	}

	impact, _ := strconv.ParseFloat(q.PriceImpactPct, 64)
	s.PriceImpactPct = round(impact*100, 4)
	if s.PriceImpactPct < 0.1 {
		s.PriceImpact = "< 0.1%"
	} else {
		s.PriceImpact = fmt.Sprintf("~ %s%%", formatAmount(s.PriceImpactPct))
	}

	thresholdDecimals, thresholdSymbol := toDecimals, toSymbol
	if q.SwapMode == "ExactOut" {
		s.ThresholdLabel = "Maximum Consumed"
		thresholdDecimals, thresholdSymbol = fromDecimals, fromSymbol
	} else {
		s.ThresholdLabel = "Minimum Received"
	}

	if q.OtherAmountThreshold != "" {
		threshold, err := uiAmount(q.OtherAmountThreshold, thresholdDecimals)
		if err != nil {
			return nil, fmt.Errorf("invalid otherAmountThreshold: %w", err)
		}
		s.ThresholdText = fmt.Sprintf("%s %s", formatAmount(threshold), thresholdSymbol)
	} else {
		s.ThresholdText = "-"
	}

	return s, nil
}

func uiAmount(raw string, decimals int) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return float64(n) / math.Pow10(decimals), nil
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}

func formatAmount(v float64) string {
	out := strconv.FormatFloat(v, 'f', 6, 64)
	out = strings.TrimRight(out, "0")
	out = strings.TrimRight(out, ".")
	if out == "" || out == "-" {
		return "0"
	}
	return out
}

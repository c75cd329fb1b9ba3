package terminal

import "fmt"

// TokenInfo identifies one side of the swap form. The embedding host
// supplies symbol and decimals from its token registry.
type TokenInfo struct {
	Mint     string `json:"mint"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

func (t TokenInfo) validate() error {
	if t.Mint == "" {
		return fmt.Errorf("mint is required")
	}
	if t.Decimals < 0 || t.Decimals > 18 {
		return fmt.Errorf("decimals out of range")
	}
	return nil
}

// Form is the current state of the swap form.
type Form struct {
	From     TokenInfo `json:"from"`
	To       TokenInfo `json:"to"`
	Amount   string    `json:"amount"`   // raw integer as string
	SwapMode string    `json:"swapMode"` // ExactIn | ExactOut
}

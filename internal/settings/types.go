package settings

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an owner has no stored settings.
var ErrNotFound = errors.New("settings not found")

// Settings holds the per-wallet knobs of the terminal's settings modal.
type Settings struct {
	Owner            string    `json:"owner"`
	SlippageBps      uint16    `json:"slippageBps"`
	PriorityFeeSOL   float64   `json:"priorityFeeSOL"`
	OnlyDirectRoutes bool      `json:"onlyDirectRoutes"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Default returns the settings applied before a wallet stores its own.
func Default(owner string) *Settings {
	return &Settings{
		Owner:       owner,
		SlippageBps: 50, // 0.5%
	}
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Activity is one submitted swap, recorded for later analysis.
type Activity struct {
	Owner          string
	InputMint      string
	OutputMint     string
	InAmount       string
	OutAmount      string
	SwapMode       string
	PriceImpactPct string
	SubmittedAt    time.Time
}

// ActivityStore records terminal swap activity. Recording is best-effort:
// callers log failures and move on.
type ActivityStore interface {
	InsertActivity(ctx context.Context, a *Activity) error
	Close() error
}

// ClickHouseConfig holds connection settings for the activity store.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

type ClickHouseStore struct {
	conn driver.Conn
}

func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseStore{conn: conn}, nil
}

func (c *ClickHouseStore) InsertActivity(ctx context.Context, a *Activity) error {
	query := `
		INSERT INTO terminal_activity (
			owner, input_mint, output_mint, in_amount, out_amount,
			swap_mode, price_impact_pct, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		a.Owner,
		a.InputMint,
		a.OutputMint,
		a.InAmount,
		a.OutAmount,
		a.SwapMode,
		a.PriceImpactPct,
		a.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	return nil
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}

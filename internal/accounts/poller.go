package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FetchFunc loads the full balance map for an owner.
type FetchFunc func(ctx context.Context, owner string) (map[string]Balance, error)

// Poller refreshes the connected owner's balances on a fixed cadence.
// Polling runs only while a wallet is connected; Stop tears down the loop
// (no in-flight request is aborted, only future scheduling) and clears the
// balance map.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	logger   *logrus.Logger

	mu       sync.RWMutex
	balances map[string]Balance
	subs     []func(map[string]Balance)
	cancel   context.CancelFunc
}

// PollerConfig holds configuration for the balance poller.
type PollerConfig struct {
	Fetch    FetchFunc
	Interval time.Duration
	Logger   *logrus.Logger
}

func NewPoller(cfg PollerConfig) *Poller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	return &Poller{
		fetch:    cfg.Fetch,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		balances: make(map[string]Balance),
	}
}

// Start begins polling balances for owner, replacing any previous loop. The
// first refresh happens immediately.
func (p *Poller) Start(owner string) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"owner":    owner,
		"interval": p.interval,
	}).Info("starting balance polling")

	go p.run(ctx, owner)
}

// Stop halts polling and resets the balance map to empty, notifying
// subscribers of the reset.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.balances = make(map[string]Balance)
	p.mu.Unlock()

	p.notify(map[string]Balance{})
}

// Balances returns a copy of the current balance map.
func (p *Poller) Balances() map[string]Balance {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]Balance, len(p.balances))
	for mint, b := range p.balances {
		out[mint] = b
	}
	return out
}

// Subscribe registers a listener called with the new balance map after every
// successful refresh and on reset.
func (p *Poller) Subscribe(fn func(map[string]Balance)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Refresh fetches balances once and replaces the map wholesale.
func (p *Poller) Refresh(ctx context.Context, owner string) error {
	balances, err := p.fetch(ctx, owner)
	if err != nil {
		return err
	}
	// A refresh that raced a Stop must not repopulate the cleared map.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	p.mu.Lock()
	p.balances = balances
	p.mu.Unlock()

	p.notify(balances)
	return nil
}

func (p *Poller) run(ctx context.Context, owner string) {
	if err := p.Refresh(ctx, owner); err != nil {
		p.logger.WithError(err).Warn("balance refresh failed")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Refresh(ctx, owner); err != nil {
				p.logger.WithError(err).Warn("balance refresh failed")
			}
		}
	}
}

func (p *Poller) notify(balances map[string]Balance) {
	p.mu.RLock()
	subs := make([]func(map[string]Balance), len(p.subs))
	copy(subs, p.subs)
	p.mu.RUnlock()

	for _, fn := range subs {
		fn(balances)
	}
}

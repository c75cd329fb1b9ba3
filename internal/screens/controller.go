package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/jupiter"
)

// Screen is one of the terminal's view states.
type Screen string

const (
	Initial      Screen = "Initial"
	Confirmation Screen = "Confirmation"
	Swapping     Screen = "Swapping"
	Error        Screen = "Error"
)

// BuildFunc is the externally registered instruction-build callback. The
// embedding host supplies it when it wants to sign and send the swap itself.
// Returning no instructions means the build produced nothing usable.
type BuildFunc func(ctx context.Context, quote *jupiter.QuoteResponse) ([]solana.Instruction, error)

// SubmitFunc is the default submit delegate used when no build callback is
// registered.
type SubmitFunc func(ctx context.Context, quote *jupiter.QuoteResponse) error

// Controller routes the terminal between its view states:
//
//	Initial -> Confirmation -> Swapping -> {done -> Initial | Error -> Initial}
//
// Transitions never perform network calls themselves beyond delegating to
// the registered collaborators.
type Controller struct {
	mu        sync.Mutex
	screen    Screen
	build     BuildFunc
	submit    SubmitFunc
	refresh   func()
	listeners []func(from, to Screen)
	logger    *logrus.Logger
}

// ControllerConfig holds the controller's collaborators. Refresh is invoked
// when the user navigates back from the review screen, so a stale quote is
// never carried forward. Submit is the default submission path.
type ControllerConfig struct {
	Refresh func()
	Submit  SubmitFunc
	Logger  *logrus.Logger
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Controller{
		screen:  Initial,
		refresh: cfg.Refresh,
		submit:  cfg.Submit,
		logger:  cfg.Logger,
	}
}

// Screen returns the currently mounted view state.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// OnTransition registers a listener notified after every state change.
func (c *Controller) OnTransition(fn func(from, to Screen)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// RegisterBuildCallback installs (or clears, with nil) the host's
// instruction-build callback.
func (c *Controller) RegisterBuildCallback(fn BuildFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.build = fn
}

// Accept moves from Initial to the review screen on quote acceptance.
func (c *Controller) Accept() error {
	return c.transition(Initial, Confirmation)
}

// Back returns from the review screen and refreshes the quote, so whatever
// is shown next is never the one the user walked away from.
func (c *Controller) Back() error {
	if err := c.transition(Confirmation, Initial); err != nil {
		return err
	}
	if c.refresh != nil {
		c.refresh()
	}
	return nil
}

// Submit confirms the reviewed quote. With a build callback registered the
// callback is awaited: instructions route to Swapping and are returned for
// the host to execute; an empty build routes to Error. Otherwise the default
// submit delegate runs.
func (c *Controller) Submit(ctx context.Context, quote *jupiter.QuoteResponse) ([]solana.Instruction, error) {
	if err := c.transition(Confirmation, Swapping); err != nil {
		return nil, err
	}

	c.mu.Lock()
	build := c.build
	submit := c.submit
	c.mu.Unlock()

	if build != nil {
		ixs, err := build(ctx, quote)
		if err != nil {
			c.logger.WithError(err).Warn("instruction build failed")
			_ = c.transition(Swapping, Error)
			return nil, err
		}
		if len(ixs) == 0 {
			_ = c.transition(Swapping, Error)
			return nil, fmt.Errorf("instruction build produced no instructions")
		}
		return ixs, nil
	}

	if submit == nil {
		_ = c.transition(Swapping, Error)
		return nil, fmt.Errorf("no submit delegate configured")
	}
	if err := submit(ctx, quote); err != nil {
		_ = c.transition(Swapping, Error)
		return nil, err
	}
	return nil, nil
}

// Complete marks the in-flight swap done and returns to the initial screen.
func (c *Controller) Complete() error {
	return c.transition(Swapping, Initial)
}

// Reset returns to the initial screen from any state.
func (c *Controller) Reset() {
	c.mu.Lock()
	from := c.screen
	c.screen = Initial
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if from != Initial {
		for _, fn := range listeners {
			fn(from, Initial)
		}
	}
}

func (c *Controller) transition(from, to Screen) error {
	c.mu.Lock()
	if c.screen != from {
		cur := c.screen
		c.mu.Unlock()
		return fmt.Errorf("invalid transition to %s: screen is %s, want %s", to, cur, from)
	}
	c.screen = to
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
	return nil
}

// snapshotListeners must be called with c.mu held.
func (c *Controller) snapshotListeners() []func(from, to Screen) {
	out := make([]func(from, to Screen), len(c.listeners))
	copy(out, c.listeners)
	return out
}

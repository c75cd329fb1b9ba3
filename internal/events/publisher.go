package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/constants"
)

// ScreenEvent is emitted on every screen transition.
type ScreenEvent struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	At   time.Time `json:"at"`
}

// SwapEvent is emitted when a reviewed quote is submitted.
type SwapEvent struct {
	Owner      string    `json:"owner"`
	InputMint  string    `json:"inputMint"`
	OutputMint string    `json:"outputMint"`
	InAmount   string    `json:"inAmount"`
	OutAmount  string    `json:"outAmount"`
	SwapMode   string    `json:"swapMode"`
	At         time.Time `json:"at"`
}

// BalancesEvent is emitted after a balance refresh or reset.
type BalancesEvent struct {
	Owner string    `json:"owner"`
	Mints int       `json:"mints"`
	At    time.Time `json:"at"`
}

// Publisher broadcasts terminal state changes over redis pub/sub so the
// embedding host can react without polling the API. This replaces the
// browser terminal's window events.
type Publisher struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewPublisher(client *redis.Client, logger *logrus.Logger) *Publisher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) PublishScreen(ctx context.Context, ev ScreenEvent) error {
	return p.publish(ctx, ev, constants.ChannelScreen)
}

func (p *Publisher) PublishSwap(ctx context.Context, ev SwapEvent) error {
	pair := fmt.Sprintf("%s:%s/%s", constants.ChannelSwaps, ev.InputMint, ev.OutputMint)
	return p.publish(ctx, ev, constants.ChannelSwaps, pair)
}

func (p *Publisher) PublishBalances(ctx context.Context, ev BalancesEvent) error {
	return p.publish(ctx, ev, constants.ChannelBalances)
}

func (p *Publisher) publish(ctx context.Context, ev any, channels ...string) error {
	if p.client == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	for _, channel := range channels {
		pipe.Publish(ctx, channel, data)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Subscribe delivers raw payloads from a channel to handler until ctx ends.
func (p *Publisher) Subscribe(ctx context.Context, channel string, handler func(payload []byte)) error {
	if p.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	pubsub := p.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	p.logger.WithField("channel", channel).Info("subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handler([]byte(msg.Payload))
		}
	}
}

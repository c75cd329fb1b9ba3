package screens

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/jupiter"
)

func testQuote() *jupiter.QuoteResponse {
	return &jupiter.QuoteResponse{
		InputMint:  "So11111111111111111111111111111111111111112",
		OutputMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		InAmount:   "1000000000",
		OutAmount:  "150000000",
	}
}

func testInstruction() solana.Instruction {
	return system.NewTransferInstruction(1, solana.PublicKey{}, solana.PublicKey{}).Build()
}

func TestController_HappyPath(t *testing.T) {
	c := NewController(ControllerConfig{
		Submit: func(context.Context, *jupiter.QuoteResponse) error { return nil },
	})

	assert.Equal(t, Initial, c.Screen())

	require.NoError(t, c.Accept())
	assert.Equal(t, Confirmation, c.Screen())

	_, err := c.Submit(context.Background(), testQuote())
	require.NoError(t, err)
	assert.Equal(t, Swapping, c.Screen())

	require.NoError(t, c.Complete())
	assert.Equal(t, Initial, c.Screen())
}

func TestController_InvalidTransitionsRejected(t *testing.T) {
	c := NewController(ControllerConfig{})

	// Cannot submit or complete from Initial
	_, err := c.Submit(context.Background(), testQuote())
	assert.Error(t, err)
	assert.Error(t, c.Complete())
	assert.Error(t, c.Back())

	// Double accept
	require.NoError(t, c.Accept())
	assert.Error(t, c.Accept())
}

func TestController_BackRefreshesQuote(t *testing.T) {
	refreshed := 0
	c := NewController(ControllerConfig{
		Refresh: func() { refreshed++ },
	})

	require.NoError(t, c.Accept())
	require.NoError(t, c.Back())

	assert.Equal(t, Initial, c.Screen())
	assert.Equal(t, 1, refreshed)
}

func TestController_BuildCallbackReturnsInstructions(t *testing.T) {
	c := NewController(ControllerConfig{})
	c.RegisterBuildCallback(func(context.Context, *jupiter.QuoteResponse) ([]solana.Instruction, error) {
		return []solana.Instruction{testInstruction()}, nil
	})

	require.NoError(t, c.Accept())

	ixs, err := c.Submit(context.Background(), testQuote())
	require.NoError(t, err)
	assert.Len(t, ixs, 1)
	assert.Equal(t, Swapping, c.Screen())
}

func TestController_EmptyBuildRoutesToError(t *testing.T) {
	c := NewController(ControllerConfig{})
	c.RegisterBuildCallback(func(context.Context, *jupiter.QuoteResponse) ([]solana.Instruction, error) {
		return nil, nil
	})

	require.NoError(t, c.Accept())

	_, err := c.Submit(context.Background(), testQuote())
	assert.Error(t, err)
	assert.Equal(t, Error, c.Screen())
}

func TestController_BuildErrorRoutesToError(t *testing.T) {
	c := NewController(ControllerConfig{})
	c.RegisterBuildCallback(func(context.Context, *jupiter.QuoteResponse) ([]solana.Instruction, error) {
		return nil, fmt.Errorf("build exploded")
	})

	require.NoError(t, c.Accept())

	_, err := c.Submit(context.Background(), testQuote())
	assert.Error(t, err)
	assert.Equal(t, Error, c.Screen())
}

func TestController_SubmitDelegateErrorRoutesToError(t *testing.T) {
	c := NewController(ControllerConfig{
		Submit: func(context.Context, *jupiter.QuoteResponse) error {
			return fmt.Errorf("broadcast failed")
		},
	})

	require.NoError(t, c.Accept())

	_, err := c.Submit(context.Background(), testQuote())
	assert.Error(t, err)
	assert.Equal(t, Error, c.Screen())
}

func TestController_ResetFromAnyState(t *testing.T) {
	c := NewController(ControllerConfig{})
	c.RegisterBuildCallback(func(context.Context, *jupiter.QuoteResponse) ([]solana.Instruction, error) {
		return nil, nil
	})

	require.NoError(t, c.Accept())
	_, _ = c.Submit(context.Background(), testQuote())
	require.Equal(t, Error, c.Screen())

	c.Reset()
	assert.Equal(t, Initial, c.Screen())

	// Reset while already Initial is a quiet no-op
	c.Reset()
	assert.Equal(t, Initial, c.Screen())
}

func TestController_TransitionListeners(t *testing.T) {
	c := NewController(ControllerConfig{
		Submit: func(context.Context, *jupiter.QuoteResponse) error { return nil },
	})

	var mu sync.Mutex
	var transitions []string
	c.OnTransition(func(from, to Screen) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, fmt.Sprintf("%s->%s", from, to))
	})

	require.NoError(t, c.Accept())
	_, err := c.Submit(context.Background(), testQuote())
	require.NoError(t, err)
	require.NoError(t, c.Complete())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"Initial->Confirmation",
		"Confirmation->Swapping",
		"Swapping->Initial",
	}, transitions)
}

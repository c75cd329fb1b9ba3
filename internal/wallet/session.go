package wallet

import (
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// Session tracks the wallet the host passed through to the terminal. The
// terminal never holds keys or signs anything; connection, signing and
// sending all belong to the host's wallet adapter. What the terminal needs
// is the connected owner address and a signal when it changes.
type Session struct {
	mu        sync.RWMutex
	owner     solana.PublicKey
	connected bool
	subs      []func(connected bool, owner string)
	logger    *logrus.Logger
}

func NewSession(logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{logger: logger}
}

// Connect registers the host wallet's public key as the session owner.
func (s *Session) Connect(owner string) error {
	key, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return fmt.Errorf("invalid wallet address: %w", err)
	}

	s.mu.Lock()
	s.owner = key
	s.connected = true
	subs := s.snapshotSubs()
	s.mu.Unlock()

	s.logger.WithField("owner", key.String()).Info("wallet connected")
	for _, fn := range subs {
		fn(true, key.String())
	}
	return nil
}

// Disconnect clears the session owner. Safe to call when not connected.
func (s *Session) Disconnect() {
	s.mu.Lock()
	wasConnected := s.connected
	s.owner = solana.PublicKey{}
	s.connected = false
	subs := s.snapshotSubs()
	s.mu.Unlock()

	if !wasConnected {
		return
	}
	s.logger.Info("wallet disconnected")
	for _, fn := range subs {
		fn(false, "")
	}
}

// Owner returns the connected owner address, or "" when disconnected.
func (s *Session) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return ""
	}
	return s.owner.String()
}

// Connected reports whether a wallet is currently attached.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Subscribe registers a listener for connect/disconnect events.
func (s *Session) Subscribe(fn func(connected bool, owner string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// snapshotSubs must be called with s.mu held.
func (s *Session) snapshotSubs() []func(bool, string) {
	out := make([]func(bool, string), len(s.subs))
	copy(out, s.subs)
	return out
}

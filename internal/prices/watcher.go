package prices

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Watcher maintains the set of mint addresses whose USD value the terminal
// needs: every mint the connected wallet holds a positive balance of, plus
// the two mints currently selected in the swap form. Membership is sticky
// for the session; addresses are only ever added.
//
// Additions are debounced so that rapid token switching collapses into one
// resolve cycle.
type Watcher struct {
	mu       sync.Mutex
	set      map[string]struct{}
	timer    *time.Timer
	subs     []func(*Result)
	debounce time.Duration
	resolve  func(context.Context, []string) *Result
	logger   *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// WatcherConfig holds dependencies for a Watcher.
type WatcherConfig struct {
	Resolve  func(context.Context, []string) *Result
	Debounce time.Duration
	Logger   *logrus.Logger
}

func NewWatcher(cfg WatcherConfig) *Watcher {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 250 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		set:      make(map[string]struct{}),
		debounce: cfg.Debounce,
		resolve:  cfg.Resolve,
		logger:   cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Add unions addresses into the watch set. Empty strings (no token selected
// yet) are skipped, re-adding a member is a no-op. A changed set schedules a
// debounced resolve, superseding any pending one.
func (w *Watcher) Add(addresses ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	added := 0
	for _, addr := range addresses {
		if addr == "" {
			continue
		}
		if _, ok := w.set[addr]; ok {
			continue
		}
		w.set[addr] = struct{}{}
		added++
	}
	if added == 0 {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushDebounced)
}

// Addresses returns a sorted snapshot of the watch set.
func (w *Watcher) Addresses() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.set))
	for addr := range w.set {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Subscribe registers a listener for resolve results.
func (w *Watcher) Subscribe(fn func(*Result)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = append(w.subs, fn)
}

// Flush resolves the current watch set immediately.
func (w *Watcher) Flush(ctx context.Context) *Result {
	res := w.resolve(ctx, w.Addresses())
	w.notify(res)
	return res
}

// Run re-resolves the watch set on a fixed interval until ctx is done, so
// watched prices stay within their freshness window.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Close stops any pending debounce flush and the refresh loop. In-flight
// resolves are not aborted, only future scheduling stops.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	w.cancel()
}

func (w *Watcher) flushDebounced() {
	select {
	case <-w.ctx.Done():
		return
	default:
	}
	res := w.resolve(w.ctx, w.Addresses())
	w.notify(res)
}

func (w *Watcher) notify(res *Result) {
	w.mu.Lock()
	subs := make([]func(*Result), len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	for _, fn := range subs {
		fn(res)
	}
}

package prices

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Result is the outcome of one resolve cycle. Failed addresses have no
// usable price this cycle; the next cycle retries them.
type Result struct {
	Resolved map[string]Entry
	Failed   []string
}

// Resolver serves price lookups from the cache when fresh and fans out
// chunked requests to the price API for the rest.
type Resolver struct {
	cache     *Cache
	store     Store
	client    *Client
	batchSize int
	logger    *logrus.Logger
}

// ResolverConfig holds dependencies for a Resolver.
type ResolverConfig struct {
	Cache     *Cache
	Store     Store // optional; merged results are persisted after each fetch
	Client    *Client
	BatchSize int
	Logger    *logrus.Logger
}

func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Resolver{
		cache:     cfg.Cache,
		store:     cfg.Store,
		client:    cfg.Client,
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger,
	}
}

// Resolve returns USD prices for the requested addresses. Fresh cache
// entries are served directly; the rest are fetched in concurrent batches.
// A failed batch yields no entries for its addresses instead of failing the
// cycle, so Resolve itself cannot fail.
func (r *Resolver) Resolve(ctx context.Context, addresses []string) *Result {
	result := &Result{Resolved: map[string]Entry{}}

	var toFetch []string
	seen := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		// could be empty string while no token is selected yet
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}

		if e, ok := r.cache.Get(addr); ok {
			result.Resolved[addr] = e
			continue
		}
		toFetch = append(toFetch, addr)
	}

	if len(toFetch) == 0 {
		return result
	}

	batches := splitIntoChunks(toFetch, r.batchSize)

	var (
		mu      sync.Mutex
		fetched = make(map[string]Entry, len(toFetch))
		wg      sync.WaitGroup
	)

	for _, batch := range batches {
		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()

			resolved, failed, err := r.client.Fetch(ctx, batch)
			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				// Sibling batches keep going; these prices stay unknown
				// for this cycle.
				r.logger.WithError(err).WithField("batch_size", len(batch)).
					Warn("price batch failed")
				result.Failed = append(result.Failed, batch...)
				return
			}
			for addr, e := range resolved {
				fetched[addr] = e
			}
			result.Failed = append(result.Failed, failed...)
		}(batch)
	}
	wg.Wait()

	for addr, e := range fetched {
		result.Resolved[addr] = e
	}

	r.cache.Merge(fetched)
	r.persist(ctx)

	return result
}

func (r *Resolver) persist(ctx context.Context) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(ctx, r.cache.Snapshot()); err != nil {
		r.logger.WithError(err).Warn("failed to persist price cache")
	}
}

// splitIntoChunks partitions list into slices of at most size elements.
func splitIntoChunks(list []string, size int) [][]string {
	if size <= 0 {
		return [][]string{list}
	}
	var chunks [][]string
	for start := 0; start < len(list); start += size {
		end := start + size
		if end > len(list) {
			end = len(list)
		}
		chunks = append(chunks, list[start:end])
	}
	return chunks
}

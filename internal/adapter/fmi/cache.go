package fmi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
)

// Fetcher is the subset of Client the cache decorates.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// CachedFetcher reuses the last successful response for ttl. Concurrent
// callers that miss the cache share a single upstream request; the request is
// detached from any one caller's cancellation, so each caller only stops
// waiting when its own context ends. The inner fetcher bounds the request.
type CachedFetcher struct {
	inner Fetcher
	ttl   time.Duration
	clock clockwork.Clock
	group singleflight.Group

	mu        sync.Mutex
	body      []byte
	fetchedAt time.Time
}

// NewCachedFetcher wraps inner. A nil clock uses the real clock.
func NewCachedFetcher(inner Fetcher, ttl time.Duration, clock clockwork.Clock) *CachedFetcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedFetcher{inner: inner, ttl: ttl, clock: clock}
}

func (c *CachedFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if body, ok := c.cached(); ok {
		return body, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan("dataset", func() (any, error) {
		// A request that finished since the check above may have filled the cache.
		if body, ok := c.cached(); ok {
			return body, nil
		}
		body, err := c.inner.Fetch(shared)
		if err != nil {
			return nil, err
		}
		c.store(body)
		return body, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for shared request: %w", domain.ErrDownload, ctx.Err())
	}
}

func (c *CachedFetcher) cached() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.body == nil || c.clock.Since(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.body, true
}

// store records a successful response. Failures are never stored so the next
// caller retries the download.
func (c *CachedFetcher) store(body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.body = body
	c.fetchedAt = c.clock.Now()
}

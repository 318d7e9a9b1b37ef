package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// NameMapLoader loads the full metricType -> tiny internal name table.
type NameMapLoader interface {
	LoadNameMap(ctx context.Context) (map[string]string, error)
}

// NameCache is the process-wide metricType -> tiny name table. It is loaded
// once at construction and assumed static for the process lifetime; staleness
// is an accepted tradeoff. Reads are safe for concurrent use. An optional
// refresh interval rebuilds the table in the background.
type NameCache struct {
	loader NameMapLoader

	mu    sync.RWMutex
	names map[string]string
}

// NewNameCache builds the cache and performs the initial load.
func NewNameCache(ctx context.Context, loader NameMapLoader) (*NameCache, error) {
	c := &NameCache{loader: loader, names: map[string]string{}}
	if err := c.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("initial metric name load failed: %w", err)
	}
	return c, nil
}

// Lookup returns the tiny internal name for a metric type id.
func (c *NameCache) Lookup(metricType string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[metricType]
	return name, ok
}

// Len returns the number of cached mappings.
func (c *NameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Refresh reloads the table. On failure the previous table stays in place.
func (c *NameCache) Refresh(ctx context.Context) error {
	names, err := c.loader.LoadNameMap(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.names = names
	c.mu.Unlock()
	log.Debug().Int("mappings", len(names)).Msg("metric name cache refreshed")
	return nil
}

// StartRefresher reloads the cache on the given interval until ctx is done.
// A zero or negative interval disables refreshing (load-once semantics).
func (c *NameCache) StartRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := c.Refresh(ctx); err != nil {
					log.Error().Err(err).Msg("metric name cache refresh failed")
				}
			}
		}
	}()
}

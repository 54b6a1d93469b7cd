package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// QueryCache is a TTL cache for master data and other read-mostly query
// results, keyed by resource plus its parameters. Writers call Invalidate
// with the resource prefix so the next read refetches.
type QueryCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]queryItem
	group singleflight.Group
}

type queryItem struct {
	value   interface{}
	expires time.Time
}

// NewQueryCache constructs a QueryCache with the given entry lifetime.
func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		ttl:   ttl,
		items: make(map[string]queryItem),
	}
}

// Key builds a cache key from a resource name and its parameters. Params are
// sorted so equivalent lookups share an entry.
func Key(resource string, params ...string) string {
	if len(params) == 0 {
		return resource
	}
	sorted := append([]string(nil), params...)
	sort.Strings(sorted)
	return resource + "|" + strings.Join(sorted, "|")
}

// Get returns the cached value for key, if present and unexpired.
func (c *QueryCache) Get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expires) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return item.value, true
}

// Set stores value under key for the configured TTL.
func (c *QueryCache) Set(key string, value interface{}) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items[key] = queryItem{value: value, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops every entry whose key starts with prefix.
func (c *QueryCache) Invalidate(prefix string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
}

// Fetch returns the cached value for key or builds it with fn, collapsing
// concurrent builds for the same key into a single call.
func (c *QueryCache) Fetch(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	// The build outlives the initiating request: collapsed waiters must not
	// inherit its cancellation.
	buildCtx := context.WithoutCancel(ctx)
	resultChan := c.group.DoChan(key, func() (interface{}, error) {
		value, err := fn(buildCtx)
		if err != nil {
			return nil, err
		}
		c.Set(key, value)
		return value, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.Val, res.Err
	}
}

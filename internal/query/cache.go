// Package query caches server reads under hierarchical keys and lets writers
// invalidate them, so views refetch after a mutation changes server state.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies a cached view, e.g. Key{"sales", userID}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether k starts with every segment of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key       Key
	value     any
	fetchedAt time.Time
	stale     bool
}

// flight is a fetch in progress. invalidated is set when an Invalidate
// covering its key lands before the result is stored.
type flight struct {
	key         Key
	invalidated bool
}

type Client struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	inflight map[string]*flight
	ttl      time.Duration
	now      func() time.Time
	sfg      singleflight.Group // one fetch per key at a time
}

func NewClient(ttl time.Duration) *Client {
	return &Client{
		entries:  make(map[string]*entry),
		inflight: make(map[string]*flight),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Fetch returns the cached value for key when fresh, otherwise runs fn once
// for all concurrent callers and caches its result. Errors are not cached.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.fresh(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err, _ := c.sfg.Do(key.String(), func() (interface{}, error) {
		f := c.begin(key)
		value, err := fn(ctx)
		if err != nil {
			c.end(key, f, nil, false)
			return nil, err
		}
		c.end(key, f, value, true)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cached value for %s has type %T", key, v)
	}
	return typed, nil
}

// Invalidate marks every entry under prefix stale, including results of
// fetches still in flight. Stale entries refetch on next read.
func (c *Client) Invalidate(prefix ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.stale = true
		}
	}
	for _, f := range c.inflight {
		if f.key.HasPrefix(prefix) {
			f.invalidated = true
		}
	}
}

// IsStale is true for cached entries that were invalidated or outlived the ttl.
// Unknown keys are not stale.
func (c *Client) IsStale(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return false
	}
	return c.expired(e)
}

func (c *Client) Has(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key.String()]
	return ok
}

// Remove drops entries under prefix entirely.
func (c *Client) Remove(prefix ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, k)
		}
	}
}

func (c *Client) fresh(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok || c.expired(e) {
		return nil, false
	}
	return e.value, true
}

func (c *Client) begin(key Key) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := &flight{key: append(Key(nil), key...)}
	c.inflight[key.String()] = f
	return f
}

// end stores value when ok. A result overtaken by an invalidation is kept
// but already stale.
func (c *Client) end(key Key, f *flight, value any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	if c.inflight[k] == f {
		delete(c.inflight, k)
	}
	if !ok {
		return
	}
	c.entries[k] = &entry{
		key:       f.key,
		value:     value,
		fetchedAt: c.now(),
		stale:     f.invalidated,
	}
}

func (c *Client) expired(e *entry) bool {
	if e.stale {
		return true
	}
	return c.ttl > 0 && c.now().Sub(e.fetchedAt) >= c.ttl
}

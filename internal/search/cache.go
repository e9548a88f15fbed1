package search

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"wanderlust/internal/model"
)

// Lookuper resolves a free-text destination query.
type Lookuper interface {
	Lookup(ctx context.Context, query string) (model.DestinationInfo, error)
}

// Cache remembers successful lookups keyed by the normalized query.
// Failures are never cached.
type Cache struct {
	next    Lookuper
	entries *lru.Cache[string, model.DestinationInfo]
}

// NewCache wraps next with an LRU of the given size.
func NewCache(next Lookuper, size int) (*Cache, error) {
	entries, err := lru.New[string, model.DestinationInfo](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup cache: %w", err)
	}
	return &Cache{next: next, entries: entries}, nil
}

// Lookup returns a cached result or asks the wrapped client.
func (c *Cache) Lookup(ctx context.Context, query string) (model.DestinationInfo, error) {
	key := normalizeQuery(query)
	if info, ok := c.entries.Get(key); ok {
		return info.Clone(), nil
	}
	info, err := c.next.Lookup(ctx, query)
	if err != nil {
		return model.DestinationInfo{}, err
	}
	c.entries.Add(key, info.Clone())
	return info, nil
}

// Len reports the number of cached destinations.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Disabled fails every lookup. It stands in for the client when no API key
// is configured.
type Disabled struct {
	Reason string
}

// Lookup always returns an error wrapping model.ErrLookup.
func (d Disabled) Lookup(context.Context, string) (model.DestinationInfo, error) {
	reason := d.Reason
	if reason == "" {
		reason = "destination lookup is disabled"
	}
	return model.DestinationInfo{}, fmt.Errorf("%w: %s", model.ErrLookup, reason)
}

package views

import (
	"context"
	"sync"

	"library-web/internal/models"

	"golang.org/x/sync/singleflight"
)

type detailFetcher func(ctx context.Context, id string) (*models.Book, error)

// DetailCache is a fetch-or-return-cached store of full book records keyed by
// ID. Entries are never invalidated; concurrent misses for one ID share a
// single fetch. Failures are not cached.
type DetailCache struct {
	fetch detailFetcher
	group singleflight.Group

	mu    sync.RWMutex
	books map[string]*models.Book
}

func NewDetailCache(fetch detailFetcher) *DetailCache {
	return &DetailCache{
		fetch: fetch,
		books: make(map[string]*models.Book),
	}
}

func (c *DetailCache) Peek(id string) (*models.Book, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.books[id]
	return b, ok
}

func (c *DetailCache) Get(ctx context.Context, id string) (*models.Book, error) {
	if b, ok := c.Peek(id); ok {
		return b, nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		if b, ok := c.Peek(id); ok {
			return b, nil
		}
		b, err := c.fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.books[id] = b
		c.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Book), nil
}

func (c *DetailCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}

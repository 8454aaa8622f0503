// Package cache holds the read cache owned by the barcode service.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a concurrency-safe key/value store whose entries live until the
// next InvalidateAll.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	InvalidateAll()
}

var _ Cache[string, int] = (*LRU[string, int])(nil)

// LRU is a Cache bounded to a fixed number of entries.
type LRU[K comparable, V any] struct {
	c *lru.Cache[K, V]
}

func NewLRU[K comparable, V any](size int) (*LRU[K, V], error) {
	c, err := lru.New[K, V](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRU[K, V]{c: c}, nil
}

func (l *LRU[K, V]) Get(key K) (V, bool) {
	return l.c.Get(key)
}

func (l *LRU[K, V]) Set(key K, value V) {
	l.c.Add(key, value)
}

func (l *LRU[K, V]) InvalidateAll() {
	l.c.Purge()
}

// Len returns the number of cached entries.
func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

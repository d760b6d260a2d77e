package normalize

import "container/list"

// lruCache is a small bounded LRU for memoizing name canonicalization.
// Not safe for concurrent use; the Normalizer guards it with a mutex.
type lruCache struct {
	cap   int
	order *list.List               // front = most recent
	items map[string]*list.Element // key → element holding lruEntry
}

type lruEntry struct {
	key   string
	value string
}

func newLRU(capacity int) *lruCache {
	return &lruCache{
		cap:   capacity,
		order: list.New(),
		items: make(map[string]*list.Element, capacity),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(lruEntry).value, true
}

func (c *lruCache) put(key, value string) {
	if el, ok := c.items[key]; ok {
		el.Value = lruEntry{key: key, value: value}
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.cap {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(lruEntry).key)
		}
	}
	c.items[key] = c.order.PushFront(lruEntry{key: key, value: value})
}

func (c *lruCache) len() int { return c.order.Len() }

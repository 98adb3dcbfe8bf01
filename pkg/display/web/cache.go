package web

// cacheEntry is a frame that has been sent to every client.
type cacheEntry struct {
	hash uint64
	data []byte
}

// cache is a fixed size ring of sent frames, keyed by the xxhash of
// their encoded bytes. Clients keep the same ring, so a repeated
// frame is sent as its index.
type cache struct {
	entries []cacheEntry
	idx     int
}

func newCache(size int) *cache {
	return &cache{entries: make([]cacheEntry, size)}
}

// index returns the position of hash in the ring, or -1.
func (c *cache) index(hash uint64) int {
	for i, e := range c.entries {
		if e.data != nil && e.hash == hash {
			return i
		}
	}
	return -1
}

// add stores data at the next position, overwriting the oldest
// entry, and returns that position.
func (c *cache) add(hash uint64, data []byte) int {
	i := c.idx
	c.entries[i] = cacheEntry{hash: hash, data: data}
	c.idx = (c.idx + 1) % len(c.entries)
	return i
}

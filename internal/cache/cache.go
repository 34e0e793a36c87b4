package cache

// LRU indexes values by key in least recently used order and keeps the sum
// of their weights.
type LRU[K comparable, V any] struct {
	entries map[K]*lruNode[K, V]
	list    lruList[K, V]
	weight  uint64
}

// NewLRU returns an empty index.
func NewLRU[K comparable, V any]() *LRU[K, V] {
	return &LRU[K, V]{entries: make(map[K]*lruNode[K, V])}
}

// Get returns the value of key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	node, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.list.moveToFront(node)
	return node.value, true
}

// Peek returns the value of key without touching its recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	node, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return node.value, true
}

// Add stores value as the most recently used entry. An existing entry for
// key is replaced.
func (c *LRU[K, V]) Add(key K, value V, weight uint64) {
	if node, ok := c.entries[key]; ok {
		c.weight -= node.weight
		node.value = value
		node.weight = weight
		c.weight += weight
		c.list.moveToFront(node)
		return
	}
	node := &lruNode[K, V]{key: key, value: value, weight: weight}
	c.entries[key] = node
	c.list.pushFront(node)
	c.weight += weight
}

// Remove deletes key and returns its value.
func (c *LRU[K, V]) Remove(key K) (V, bool) {
	node, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.list.unlink(node)
	delete(c.entries, key)
	c.weight -= node.weight
	return node.value, true
}

// Oldest returns the least recently used entry.
func (c *LRU[K, V]) Oldest() (K, V, bool) {
	if c.list.tail == nil {
		var (
			zeroK K
			zeroV V
		)
		return zeroK, zeroV, false
	}
	return c.list.tail.key, c.list.tail.value, true
}

// Range calls fn for every entry from least to most recently used until fn
// returns false. fn may Remove the entry it is called with.
func (c *LRU[K, V]) Range(fn func(key K, value V) bool) {
	for node := c.list.tail; node != nil; {
		prev := node.prev
		if !fn(node.key, node.value) {
			return
		}
		node = prev
	}
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	return c.list.len
}

// Weight returns the sum of the weights of all entries.
func (c *LRU[K, V]) Weight() uint64 {
	return c.weight
}

// Stats returns a snapshot of the index.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{Len: c.list.len, Weight: c.weight}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Weight is the sum of the entry weights.
	Weight uint64
}

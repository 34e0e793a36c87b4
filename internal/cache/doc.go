// Package cache provides a weighted least recently used index.
//
// LRU tracks entries together with a weight, typically a size in bytes, and
// hands back the least recently used entries first. It never evicts on its
// own: owners of GPU resources decide when an entry may be released, release
// it, and then remove it.
//
//	c := cache.NewLRU[uint64, *entry]()
//	c.Add(id, e, bytes)
//	for c.Weight() > budget {
//		id, e, _ := c.Oldest()
//		release(e)
//		c.Remove(id)
//	}
//
// LRU is not safe for concurrent use.
package cache

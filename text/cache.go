package text

import (
	"hash/fnv"
	"math"
)

// CacheKey identifies shaped text.
type CacheKey struct {
	// Hash is FNV-1a of the content and family.
	Hash uint64

	// SizeBits and LineHeightBits are IEEE 754 bit patterns, so keys match
	// exactly without floating-point comparisons.
	SizeBits       uint32
	LineHeightBits uint32

	// Version is the font system version the text was shaped with.
	Version uint64
}

// NewCacheKey returns the key of a paragraph.
func NewCacheKey(content, family string, size, lineHeight float32, version uint64) CacheKey {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content)) // fnv.Write never returns an error
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(family))
	return CacheKey{
		Hash:           h.Sum64(),
		SizeBits:       math.Float32bits(size),
		LineHeightBits: math.Float32bits(lineHeight),
		Version:        version,
	}
}

type cacheEntry struct {
	content   string
	family    string
	paragraph *Paragraph
	used      bool
}

// Cache keeps shaped paragraphs between frames. Entries not used since the
// previous Trim are evicted by the next one.
type Cache struct {
	entries map[CacheKey]*cacheEntry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]*cacheEntry)}
}

// Get returns a cached paragraph and marks it used.
func (c *Cache) Get(key CacheKey, content, family string) (*Paragraph, bool) {
	e, ok := c.entries[key]
	if !ok || e.content != content || e.family != family {
		return nil, false
	}
	e.used = true
	return e.paragraph, true
}

// Put stores a paragraph and marks it used.
func (c *Cache) Put(key CacheKey, content, family string, p *Paragraph) {
	c.entries[key] = &cacheEntry{content: content, family: family, paragraph: p, used: true}
}

// Trim evicts entries not used since the last Trim and returns how many
// were evicted.
func (c *Cache) Trim() int {
	evicted := 0
	for k, e := range c.entries {
		if !e.used {
			delete(c.entries, k)
			evicted++
			continue
		}
		e.used = false
	}
	return evicted
}

// Len returns the number of cached paragraphs.
func (c *Cache) Len() int {
	return len(c.entries)
}

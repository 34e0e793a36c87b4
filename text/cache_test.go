package text

import "testing"

func TestCache_FrameEviction(t *testing.T) {
	c := NewCache()
	p := &Paragraph{}

	k1 := NewCacheKey("one", DefaultFamily, 20, 26, 0)
	k2 := NewCacheKey("two", DefaultFamily, 20, 26, 0)
	c.Put(k1, "one", DefaultFamily, p)
	c.Put(k2, "two", DefaultFamily, p)

	// First trim only clears the used marks.
	if n := c.Trim(); n != 0 {
		t.Fatalf("Trim() evicted %d, want 0", n)
	}

	if _, ok := c.Get(k1, "one", DefaultFamily); !ok {
		t.Fatal("Get(k1) missed")
	}
	if n := c.Trim(); n != 1 {
		t.Errorf("Trim() evicted %d, want 1", n)
	}
	if _, ok := c.Get(k2, "two", DefaultFamily); ok {
		t.Error("unused entry survived")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheKey(t *testing.T) {
	base := NewCacheKey("text", "Go", 20, 26, 0)
	tests := []struct {
		name string
		key  CacheKey
	}{
		{"content", NewCacheKey("texT", "Go", 20, 26, 0)},
		{"family", NewCacheKey("text", "Go Mono", 20, 26, 0)},
		{"size", NewCacheKey("text", "Go", 21, 26, 0)},
		{"line height", NewCacheKey("text", "Go", 20, 27, 0)},
		{"version", NewCacheKey("text", "Go", 20, 26, 1)},
	}
	for _, tt := range tests {
		if tt.key == base {
			t.Errorf("%s change did not change the key", tt.name)
		}
	}
	if NewCacheKey("text", "Go", 20, 26, 0) != base {
		t.Error("equal inputs produced different keys")
	}
}

func TestCache_ContentMismatch(t *testing.T) {
	c := NewCache()
	k := NewCacheKey("a", "Go", 10, 12, 0)
	c.Put(k, "a", "Go", &Paragraph{})
	if _, ok := c.Get(k, "b", "Go"); ok {
		t.Error("Get with different content must miss")
	}
}

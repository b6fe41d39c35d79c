package regex

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of compiled patterns kept by NewCache when
// given a non-positive size.
const DefaultCacheSize = 256

// Cache memoizes compiled patterns. Compiled patterns are immutable, so a
// cached *Regexp may be handed to several callers at once.
type Cache struct {
	lru *lru.Cache[string, *Regexp]
}

// NewCache returns a cache holding up to size compiled patterns.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *Regexp](size)
	if err != nil {
		// Only returned for non-positive sizes.
		panic(err)
	}
	return &Cache{lru: c}
}

// Compile returns the cached compilation of pattern, compiling it on a miss.
// Failed compilations are not cached.
func (c *Cache) Compile(pattern string) (*Regexp, error) {
	if re, ok := c.lru.Get(pattern); ok {
		return re, nil
	}
	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	c.lru.Add(pattern, re)
	return re, nil
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	return c.lru.Len()
}

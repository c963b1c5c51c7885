package core

import "sync"

// MemoCache is the process-wide memo of generated insight text, sitting in
// front of the durable store. It is created once in main and injected into
// the Analyzer rather than living as ambient package state. Entries are never
// evicted; the durable store holds them forever anyway.
type MemoCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoCache() *MemoCache {
	return &MemoCache{entries: make(map[string]string)}
}

func (c *MemoCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[key]
	return text, ok
}

func (c *MemoCache) Set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = text
}

package discord

import "sync"

type guildCache struct {
	mu    sync.RWMutex
	names map[string]string
}

func newGuildCache() *guildCache {
	return &guildCache{
		names: make(map[string]string),
	}
}

func (c *guildCache) Get(guildID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[guildID]
	return name, ok
}

func (c *guildCache) Set(guildID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[guildID] = name
}

func (c *guildCache) Invalidate(guildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.names, guildID)
}

func (c *guildCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

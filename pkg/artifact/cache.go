package artifact

import "sync"

// writeOnceCache caches Artifacts and Summaries for the process lifetime.
// Entries never expire: once a product's data is loaded it is immutable
// for the life of the process.
// Concurrent first-readers may each perform the underlying I/O and all
// write; the last write wins, which is safe because the source file is
// the same on every read.
type writeOnceCache struct {
	mu        sync.RWMutex
	artifacts map[string]Artifact
	summaries map[string]Summary
}

func newWriteOnceCache() *writeOnceCache {
	return &writeOnceCache{
		artifacts: make(map[string]Artifact),
		summaries: make(map[string]Summary),
	}
}

func (c *writeOnceCache) getArtifact(id string) (Artifact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.artifacts[id]
	return v, ok
}

func (c *writeOnceCache) setArtifact(id string, a Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifacts[id] = a
}

func (c *writeOnceCache) getSummary(id string) (Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.summaries[id]
	return v, ok
}

func (c *writeOnceCache) setSummary(id string, s Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries[id] = s
}

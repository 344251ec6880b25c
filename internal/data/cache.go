package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"marketshare/internal/diag"
	"marketshare/internal/simulation"
)

// Run is a finished simulation kept for later retrieval.
type Run struct {
	ID       string
	Scenario string
	// Digest identifies the scenario document the run was built from.
	Digest      string
	CreatedAt   time.Time
	Result      *simulation.Result
	Diagnostics []diag.Event
}

type cacheEntry struct {
	run       *Run
	expiresAt time.Time
}

// RunCache keeps finished runs in memory until their TTL passes.
// A nil *RunCache is valid and stores nothing.
type RunCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration

	now func() time.Time
}

func NewRunCache(ttl time.Duration) *RunCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RunCache{
		store: make(map[string]*cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a run if present and not expired.
func (c *RunCache) Get(id string) (*Run, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[id]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.run, true
}

func (c *RunCache) Set(run *Run) {
	if c == nil || run == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[run.ID] = &cacheEntry{run: run, expiresAt: c.now().Add(c.ttl)}
}

// Len counts stored runs, expired ones included until the next sweep.
func (c *RunCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *RunCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*cacheEntry)
}

// Sweep removes expired runs and returns how many it dropped.
func (c *RunCache) Sweep() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for id, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, id)
			n++
		}
	}
	return n
}

// Cleanup sweeps every interval until ctx is done.
func (c *RunCache) Cleanup(ctx context.Context, interval time.Duration) {
	if c == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// ScenarioDigest hashes a scenario document so identical submissions can be
// recognized.
func ScenarioDigest(raw []byte) string {
	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:])
}

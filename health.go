package pdfraster

import (
	"sync"
)

// maxAttempts bounds the attempt history kept for diagnostics.
const maxAttempts = 64

// HealthCache records the last locator proven to work.
type HealthCache interface {
	// Verified returns the verified locator, if any.
	Verified() (EngineLocator, bool)

	// SetVerified stores a locator that passed probing and verification.
	// Last writer wins.
	SetVerified(loc EngineLocator)

	// RecordAttempt appends a probe or verification outcome to the history.
	RecordAttempt(outcome ProbeOutcome)

	// Attempts returns a copy of the attempt history, oldest first.
	Attempts() []ProbeOutcome

	// Reset clears the verified locator and the history.
	Reset()
}

// EngineHealthCache is the default HealthCache. Entries never expire:
// engine availability rarely changes within a process, and Reset is the
// recovery path.
type EngineHealthCache struct {
	mu       sync.Mutex
	verified EngineLocator
	attempts []ProbeOutcome
}

// NewHealthCache returns an empty cache.
func NewHealthCache() *EngineHealthCache {
	return &EngineHealthCache{}
}

var sharedHealthCache = sync.OnceValue(func() *EngineHealthCache {
	return NewHealthCache()
})

// SharedHealthCache returns the process-wide cache used by converters
// that were not given one with WithHealthCache.
func SharedHealthCache() *EngineHealthCache {
	return sharedHealthCache()
}

// Verified implements HealthCache.
func (c *EngineHealthCache) Verified() (EngineLocator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verified, !c.verified.IsZero()
}

// SetVerified implements HealthCache.
func (c *EngineHealthCache) SetVerified(loc EngineLocator) {
	if loc.IsZero() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verified = loc
}

// RecordAttempt implements HealthCache.
func (c *EngineHealthCache) RecordAttempt(outcome ProbeOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.attempts) == maxAttempts {
		copy(c.attempts, c.attempts[1:])
		c.attempts = c.attempts[:maxAttempts-1]
	}
	c.attempts = append(c.attempts, outcome)
}

// Attempts implements HealthCache.
func (c *EngineHealthCache) Attempts() []ProbeOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ProbeOutcome(nil), c.attempts...)
}

// Reset implements HealthCache.
func (c *EngineHealthCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verified = EngineLocator{}
	c.attempts = nil
}

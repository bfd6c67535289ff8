// Package cache implements the in-process result cache keyed by
// (username, endpoint signature), TTL-expiring, grounded on
// codeGROOVE-dev-ghuTZ's pkg/httpcache OtterCache: same otter/v2 usage,
// same "double-check expiry on read" defensiveness, same sha256-of-key
// approach adapted to our domain's cache key shape.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

// Backend is the pluggable storage boundary for cached endpoint payloads.
// The only concrete implementation in this repository is the in-process
// otter/v2-backed MemoryBackend; an external (e.g. Redis) backend would
// satisfy the same interface without touching call sites. See DESIGN.md
// for why no concrete Redis client is wired: nothing in the retrieved
// reference pack imports one.
type Backend interface {
	Get(key string) (ghstats.CacheEntry, bool)
	Set(key string, entry ghstats.CacheEntry)
	Invalidate(key string)
	Size() int
}

// MemoryBackend is an otter/v2-backed Backend.
type MemoryBackend struct {
	cache otter.Cache[string, ghstats.CacheEntry]
}

// NewMemoryBackend builds a MemoryBackend with the given maximum entry
// count.
func NewMemoryBackend(maxSize int) *MemoryBackend {
	c := otter.Must(&otter.Options[string, ghstats.CacheEntry]{
		MaximumSize:     maxSize,
		InitialCapacity: maxSize / 10,
	})
	return &MemoryBackend{cache: *c}
}

func (m *MemoryBackend) Get(key string) (ghstats.CacheEntry, bool) {
	entry, found := m.cache.GetIfPresent(key)
	if !found {
		return ghstats.CacheEntry{}, false
	}
	if time.Now().After(entry.ExpiresAt) {
		m.cache.Invalidate(key)
		return ghstats.CacheEntry{}, false
	}
	return entry, true
}

func (m *MemoryBackend) Set(key string, entry ghstats.CacheEntry) {
	m.cache.Set(key, entry)
}

func (m *MemoryBackend) Invalidate(key string) {
	m.cache.Invalidate(key)
}

func (m *MemoryBackend) Size() int {
	return m.cache.EstimatedSize()
}

// Cache is the result cache the httpapi layer consumes. It stores
// already-encoded payload bytes as given and applies the default TTL; keys
// come from Key(username, endpoint).
type Cache struct {
	backend Backend
	ttl     time.Duration
	hits    int64
	misses  int64
}

// New builds a Cache over backend with a default TTL applied whenever a
// caller doesn't specify one via SetWithTTL.
func New(backend Backend, ttl time.Duration) *Cache {
	return &Cache{backend: backend, ttl: ttl}
}

// Key derives the cache key for a (username, endpoint) pair, following the
// original's "cache:{username}:{endpoint}" convention, hashed so arbitrary
// endpoint signatures (including query strings) stay a bounded key size.
func Key(username, endpoint string) string {
	h := sha256.New()
	h.Write([]byte("cache:" + username + ":" + endpoint))
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up raw bytes for key, reporting a cache hit/miss.
func (c *Cache) Get(key string) ([]byte, bool) {
	entry, found := c.backend.Get(key)
	if !found {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return entry.Value, true
}

// Set stores raw bytes for key with the cache's default TTL.
func (c *Cache) Set(key string, value []byte) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores raw bytes for key with an explicit TTL override.
func (c *Cache) SetWithTTL(key string, value []byte, ttl time.Duration) {
	c.backend.Set(key, ghstats.CacheEntry{Value: value, ExpiresAt: time.Now().Add(ttl)})
}

// Invalidate removes key immediately.
func (c *Cache) Invalidate(key string) {
	c.backend.Invalidate(key)
}

// Stats reports hit/miss/entry counts.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
		Entries: c.backend.Size(),
	}
}

// Logger is a package-level default used by callers that don't want to
// thread one through, matching the teacher's log/slog-everywhere idiom.
var Logger = slog.Default()

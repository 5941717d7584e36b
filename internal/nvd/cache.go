package nvd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// DefaultCacheRetention is how long a cached response stays usable. Entries
// older than this are treated as misses at read time and overwritten on the
// next live fetch; nothing ever deletes them in the background.
const DefaultCacheRetention = 7 * 24 * time.Hour

// cacheEnvelope is the on-disk layout: capture time plus the raw page.
type cacheEnvelope struct {
	CapturedAt time.Time `json:"captured_at"`
	Response   *Response `json:"response"`
}

// Cache is a content-addressed response store, one JSON file per request
// signature. The cache is a pure optimization: every failure path degrades to
// a miss or a skipped write and is logged, never surfaced to the caller.
type Cache struct {
	dir       string
	retention time.Duration
	enabled   bool
	logger    *zap.Logger
	now       func() time.Time
}

// NewCache creates the cache directory if needed. When enabled is false both
// Get and Put are no-ops and every request is a miss.
func NewCache(dir string, retention time.Duration, enabled bool, logger *zap.Logger) *Cache {
	if retention <= 0 {
		retention = DefaultCacheRetention
	}
	c := &Cache{
		dir:       dir,
		retention: retention,
		enabled:   enabled,
		logger:    logger,
		now:       time.Now,
	}
	if enabled {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("cache directory unavailable, caching disabled", zap.String("dir", dir), zap.Error(err))
			c.enabled = false
		}
	}
	return c
}

func (c *Cache) path(signature string) string {
	return filepath.Join(c.dir, signature+".json")
}

// Get returns the cached response for a signature, or a miss when the entry
// is absent, unreadable, or older than the retention window.
func (c *Cache) Get(signature string) (*Response, bool) {
	if !c.enabled {
		return nil, false
	}

	raw, err := os.ReadFile(c.path(signature))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache read error", zap.String("signature", signature), zap.Error(err))
		}
		return nil, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Response == nil {
		c.logger.Warn("corrupt cache entry treated as miss", zap.String("signature", signature), zap.Error(err))
		return nil, false
	}

	if c.now().Sub(env.CapturedAt) > c.retention {
		c.logger.Debug("cache entry expired", zap.String("signature", signature))
		return nil, false
	}

	c.logger.Debug("cache hit", zap.String("signature", signature))
	return env.Response, true
}

// Put stores a response under its signature, overwriting any prior entry.
// Write failures are logged and swallowed.
func (c *Cache) Put(signature string, resp *Response) {
	if !c.enabled {
		return
	}

	raw, err := json.Marshal(cacheEnvelope{CapturedAt: c.now(), Response: resp})
	if err != nil {
		c.logger.Warn("cache encode error", zap.String("signature", signature), zap.Error(err))
		return
	}

	if err := os.WriteFile(c.path(signature), raw, 0o644); err != nil {
		c.logger.Warn("cache write error", zap.String("signature", signature), zap.Error(err))
	}
}

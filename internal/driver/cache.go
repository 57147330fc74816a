package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"mirck/internal/borrowck"
	"mirck/internal/mir"
)

// Current schema version - increment when cachePayload or BorrowError changes
const cacheSchemaVersion uint16 = 1

// CacheKey identifies a check result: the body and every setting that can
// change the errors found. Jobs is not part of it.
type CacheKey [32]byte

// NewCacheKey combines a body digest with the checker configuration.
func NewCacheKey(body mir.Digest, cfg borrowck.Config) CacheKey {
	h := sha256.New()
	_, _ = h.Write(body[:])
	skip := byte(0)
	if cfg.SkipLifetimes {
		skip = 1
	}
	_, _ = h.Write([]byte{
		byte(cacheSchemaVersion >> 8), byte(cacheSchemaVersion),
		byte(cfg.Mode), byte(cfg.Dataflow), skip,
	})
	var out CacheKey
	copy(out[:], h.Sum(nil))
	return out
}

func (k CacheKey) String() string { return hex.EncodeToString(k[:]) }

// Cache stores per-body check results on disk, one msgpack file per key.
// Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema uint16
	Errors []borrowck.BorrowError
}

// OpenCache returns a cache under $XDG_CACHE_HOME/app, falling back to
// ~/.cache/app.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewCache(filepath.Join(base, app))
}

// NewCache returns a cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key CacheKey) string {
	hexKey := key.String()
	// two-level fan-out keeps directories small
	return filepath.Join(c.dir, "bodies", hexKey[:2], hexKey+".mp")
}

// Put writes errs under key, replacing any previous entry atomically.
func (c *Cache) Put(key CacheKey, errs []borrowck.BorrowError) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(&cachePayload{Schema: cacheSchemaVersion, Errors: errs}); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get returns the errors stored under key. A missing entry or one written
// with another schema is a miss, not an error.
func (c *Cache) Get(key CacheKey) ([]borrowck.BorrowError, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return payload.Errors, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

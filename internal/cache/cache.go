package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Store caches raw model responses by key. Disabled stores miss on every Get
// and accept every Put without storing anything.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, response string) error
	Clear(ctx context.Context) error
	GetStats(ctx context.Context) (Stats, error)
	Enabled() bool
}

// Options selects and configures a Store.
type Options struct {
	Enabled    bool
	Backend    string
	Dir        string
	TTLSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the Store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return New(opts.Enabled, opts.Dir, opts.TTLSeconds)
	case BackendRedis:
		if !opts.Enabled {
			return &File{enabled: false}, nil
		}
		return NewRedis(RedisOptions{
			Addr:       opts.RedisAddr,
			Password:   opts.RedisPassword,
			DB:         opts.RedisDB,
			TTLSeconds: opts.TTLSeconds,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", opts.Backend)
	}
}

// Entry represents a cached model response.
type Entry struct {
	Key       string    `json:"key"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

// Stats describes the contents of a Store.
type Stats struct {
	Backend    string `json:"backend"`
	Dir        string `json:"dir,omitempty"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// File is the file-based Store, one JSON file per entry.
type File struct {
	dir        string
	ttlSeconds int
	enabled    bool
}

// New creates a file Store. If dir is empty, uses the default cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*File, error) {
	if !enabled {
		return &File{enabled: false}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &File{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
	}, nil
}

// Get retrieves a cached entry by key. Returns ("", false) on miss.
func (c *File) Get(_ context.Context, key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if c.expired(entry) {
		os.Remove(path)
		return "", false
	}
	return entry.Response, true
}

// Put stores a response in the cache.
func (c *File) Put(_ context.Context, key, response string) error {
	if !c.enabled {
		return nil
	}
	entry := Entry{
		Key:       HashKey(key),
		Response:  response,
		CreatedAt: time.Now(),
		TTL:       c.ttlSeconds,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(key), data, 0o644)
}

// Clear removes all cache entries.
func (c *File) Clear(_ context.Context) error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing cache entry: %w", err)
			}
		}
	}
	return nil
}

// GetStats returns information about the cache.
func (c *File) GetStats(_ context.Context) (Stats, error) {
	stats := Stats{Backend: BackendFile, Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if c.expired(entry) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *File) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *File) Enabled() bool {
	return c.enabled
}

func (c *File) expired(entry Entry) bool {
	return c.ttlSeconds > 0 && time.Since(entry.CreatedAt) > time.Duration(c.ttlSeconds)*time.Second
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// BuildCacheKey creates a cache key from the generation inputs.
func BuildCacheKey(provider, model, prompt string) string {
	return HashKey(fmt.Sprintf("%s:%s:%s", provider, model, prompt))
}

func (c *File) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "reviewlens"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "reviewlens"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "reviewlens", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "reviewlens", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "reviewlens"), nil
	}
}

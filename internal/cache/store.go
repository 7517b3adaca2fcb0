package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/steviee/go-northstar/internal/state"
)

const (
	// DefaultMaxAge is how long a cached payload stays fresh when the caller
	// does not say otherwise.
	DefaultMaxAge = 5 * time.Minute

	filePerm = 0644
)

// Entry is one cached payload as stored on disk.
// Data is the verbatim response body; Time is epoch milliseconds.
type Entry struct {
	Data string `json:"data"`
	Time int64  `json:"time"`
}

// storedEntry decodes an Entry while telling "missing" apart from "zero".
type storedEntry struct {
	Data *string `json:"data"`
	Time *int64  `json:"time"`
}

// Config locates the cache document.
type Config struct {
	// Dir holds the cache document. It is created on demand.
	Dir string
	// FileName defaults to state.CacheFileName.
	FileName string
	// LegacyPath is an older cache document that DeleteAll also removes.
	LegacyPath string
}

// Store is a disk-backed key/value cache of time-stamped payloads.
//
// The whole store is one JSON document that is re-read and rewritten on
// every mutation. Calls are serialized within the process; nothing guards
// against a second process writing the same document.
type Store struct {
	mu         sync.Mutex
	dir        string
	path       string
	legacyPath string
	now        func() time.Time
}

// New creates a store for the given configuration.
func New(cfg Config) *Store {
	if cfg.FileName == "" {
		cfg.FileName = state.CacheFileName
	}

	return &Store{
		dir:        cfg.Dir,
		path:       filepath.Join(cfg.Dir, cfg.FileName),
		legacyPath: cfg.LegacyPath,
		now:        time.Now,
	}
}

// NewDefault creates a store at the per-user cache location.
func NewDefault() (*Store, error) {
	dir, err := state.GetCacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}

	legacy, err := state.GetLegacyCachePath()
	if err != nil {
		return nil, fmt.Errorf("get legacy cache path: %w", err)
	}

	return New(Config{Dir: dir, LegacyPath: legacy}), nil
}

// Path returns the location of the cache document.
func (s *Store) Path() string {
	return s.path
}

// EnsureDir guarantees the cache directory exists and is a directory.
func (s *Store) EnsureDir() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return state.ReplaceNonDir(s.dir)
}

// Get returns the payload cached under key.
//
// It reports a miss when the document is absent or unusable, when the key is
// absent or incomplete, or when maxAge is positive and the entry is at least
// maxAge old. A maxAge of zero disables the age check.
func (s *Store) Get(key string, maxAge time.Duration) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := state.ReplaceNonDir(s.dir); err != nil {
		slog.Debug("request cache directory unavailable", "dir", s.dir, "error", err)
		return "", false
	}

	doc, ok := s.load()
	if !ok {
		return "", false
	}

	raw, exists := doc[key]
	if !exists {
		return "", false
	}

	var entry storedEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Data == nil || entry.Time == nil {
		slog.Debug("request cache entry incomplete", "key", key)
		return "", false
	}

	if maxAge > 0 {
		age := s.now().Sub(time.UnixMilli(*entry.Time))
		if age >= maxAge {
			slog.Debug("request cache entry stale", "key", key, "age", age, "max_age", maxAge)
			return "", false
		}
	}

	return *entry.Data, true
}

// Set stores data under key, stamped with the current time.
func (s *Store) Set(key, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := state.ReplaceNonDir(s.dir); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}

	doc, ok := s.load()
	if !ok {
		doc = make(map[string]json.RawMessage)
	}

	raw, err := json.Marshal(Entry{Data: data, Time: s.now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	doc[key] = raw

	return s.write(doc)
}

// Delete removes key from the store.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := state.ReplaceNonDir(s.dir); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}

	doc, ok := s.load()
	if !ok {
		doc = make(map[string]json.RawMessage)
	}
	delete(doc, key)

	return s.write(doc)
}

// DeleteAll removes the cache document and the legacy document.
// Files that do not exist are ignored.
func (s *Store) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, path := range []string{s.path, s.legacyPath} {
		if path == "" {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}

	slog.Debug("request cache cleared", "path", s.path, "legacy_path", s.legacyPath)

	return errors.Join(errs...)
}

// Keys returns the cached keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.load()
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

// load reads the cache document. A document that is not a regular file or
// does not parse is deleted, and load reports false.
// Must be called with lock held.
func (s *Store) load() (map[string]json.RawMessage, bool) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, false
	}

	if !info.Mode().IsRegular() {
		slog.Warn("request cache is not a regular file, removing", "path", s.path)
		_ = os.RemoveAll(s.path)
		return nil, false
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		slog.Debug("request cache unreadable", "path", s.path, "error", err)
		return nil, false
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("request cache corrupt, removing", "path", s.path, "error", err)
		_ = os.Remove(s.path)
		return nil, false
	}

	if doc == nil {
		doc = make(map[string]json.RawMessage)
	}

	return doc, true
}

// write replaces the cache document.
// Must be called with lock held.
func (s *Store) write(doc map[string]json.RawMessage) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	if err := state.AtomicWrite(s.path, data, filePerm); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}

	return nil
}

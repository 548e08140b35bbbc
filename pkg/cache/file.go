package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const fileExt = ".json"

// FileStore keeps one JSON file per key in a directory.
//
// Concurrent writers of the same key are not coordinated; the last rename wins.
type FileStore struct {
	dir    string
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewFileStore creates a store rooted at dir, creating the directory if needed.
// A directory that cannot be created is logged; the store then behaves as an
// always-missing cache.
func NewFileStore(dir string, ttl time.Duration, opts ...Option) *FileStore {
	o := applyOptions(backendFile, opts)
	s := &FileStore{
		dir:    dir,
		ttl:    ttl,
		now:    o.now,
		logger: o.logger,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		CacheErrors.WithLabelValues(backendFile, "init").Inc()
		s.logger.Warn().Err(err).Str("dir", dir).Msg("Cache directory unavailable, continuing without cache")
	}

	return s
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, NormalizeKey(key)+fileExt)
}

// Get returns the cached payload for key if present and unexpired.
func (s *FileStore) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	path := s.Path(key)

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			CacheErrors.WithLabelValues(backendFile, "get").Inc()
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		CacheMisses.WithLabelValues(backendFile).Inc()
		return nil, false
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("Evicting corrupt cache entry")
		s.evict(path, reasonCorrupt)
		CacheMisses.WithLabelValues(backendFile).Inc()
		return nil, false
	}

	if entry.IsExpired(s.now(), s.ttl) {
		s.logger.Debug().Str("key", key).Time("cached_at", entry.CachedAt()).Msg("Evicting expired cache entry")
		s.evict(path, reasonExpired)
		CacheMisses.WithLabelValues(backendFile).Inc()
		return nil, false
	}

	CacheHits.WithLabelValues(backendFile).Inc()
	s.logger.Debug().Str("key", key).Msg("Cache hit")
	return entry.Data, true
}

// Set writes payload under key. Failures are logged and dropped.
func (s *FileStore) Set(ctx context.Context, key string, payload json.RawMessage) {
	if err := s.write(s.Path(key), newEntry(s.now(), payload)); err != nil {
		CacheErrors.WithLabelValues(backendFile, "set").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed, continuing without caching")
		return
	}
	s.logger.Debug().Str("key", key).Dur("ttl", s.ttl).Msg("Cached response")
}

// write replaces path atomically (write to temp, then rename).
func (s *FileStore) write(path string, entry Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp cache file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming cache file: %w", err)
	}

	return nil
}

// Delete removes the file for key. A missing file is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := removeIfExists(s.Path(key)); err != nil {
		CacheErrors.WithLabelValues(backendFile, "delete").Inc()
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Clear removes every cache file, including temp files left by interrupted
// writes. All files are attempted; the failures are joined into the returned
// error.
func (s *FileStore) Clear(ctx context.Context) error {
	files, err := s.files()
	if err == nil {
		var temps []string
		temps, err = s.tempFiles()
		files = append(files, temps...)
	}
	if err != nil {
		CacheErrors.WithLabelValues(backendFile, "clear").Inc()
		return err
	}

	var errs []error
	for _, path := range files {
		if err := removeIfExists(path); err != nil {
			CacheErrors.WithLabelValues(backendFile, "clear").Inc()
			errs = append(errs, err)
		}
	}

	s.logger.Debug().Int("files", len(files)).Int("failed", len(errs)).Msg("Cache cleared")
	return errors.Join(errs...)
}

// Prune removes expired and unreadable files, and temp files older than the TTL.
func (s *FileStore) Prune(ctx context.Context) (int, error) {
	files, err := s.files()
	if err != nil {
		CacheErrors.WithLabelValues(backendFile, "prune").Inc()
		return 0, err
	}

	now := s.now()
	removed := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		reason := ""
		if entry, err := decodeEntry(raw); err != nil {
			reason = reasonCorrupt
		} else if entry.IsExpired(now, s.ttl) {
			reason = reasonExpired
		}

		if reason != "" && s.evict(path, reason) {
			removed++
		}
	}

	// Temp files younger than the TTL may belong to a write in progress.
	temps, err := s.tempFiles()
	if err != nil {
		CacheErrors.WithLabelValues(backendFile, "prune").Inc()
		return removed, err
	}
	for _, path := range temps {
		info, err := os.Stat(path)
		if err != nil || now.Sub(info.ModTime()) <= s.ttl {
			continue
		}
		if s.evict(path, reasonOrphan) {
			removed++
		}
	}

	return removed, nil
}

// files lists the cache files. A missing directory has no files.
func (s *FileStore) files() ([]string, error) {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(s.dir, "*"+fileExt))
	if err != nil {
		return nil, fmt.Errorf("list cache files: %w", err)
	}
	return files, nil
}

// tempFiles lists the temp files written by write.
func (s *FileStore) tempFiles() ([]string, error) {
	temps, err := filepath.Glob(filepath.Join(s.dir, ".*"+fileExt+".*.tmp"))
	if err != nil {
		return nil, fmt.Errorf("list temp cache files: %w", err)
	}
	return temps, nil
}

func (s *FileStore) evict(path, reason string) bool {
	if err := removeIfExists(path); err != nil {
		CacheErrors.WithLabelValues(backendFile, "delete").Inc()
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to evict cache entry")
		return false
	}
	CacheEvictions.WithLabelValues(backendFile, reason).Inc()
	return true
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil // Already deleted
	}
	return err
}

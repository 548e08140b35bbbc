package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultTTL is how long an entry stays valid.
const DefaultTTL = 600 * time.Second

// Entry is the record persisted for every key.
type Entry struct {
	// Timestamp is when the entry was written, in fractional epoch seconds.
	Timestamp *float64 `json:"timestamp"`

	// Data is the raw provider response.
	Data json.RawMessage `json:"data"`
}

func newEntry(now time.Time, payload json.RawMessage) Entry {
	ts := float64(now.UnixNano()) / float64(time.Second)
	return Entry{Timestamp: &ts, Data: payload}
}

// CachedAt returns the write time of the entry.
func (e Entry) CachedAt() time.Time {
	if e.Timestamp == nil {
		return time.Time{}
	}
	sec, frac := math.Modf(*e.Timestamp)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// IsExpired reports whether more than ttl has passed since the entry was written.
// An entry exactly ttl old is still valid.
func (e Entry) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CachedAt()) > ttl
}

// decodeEntry parses a stored record. Records that are not JSON or lack either
// field are reported as ErrInvalidEntry.
func decodeEntry(raw []byte) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if entry.Timestamp == nil {
		return Entry{}, fmt.Errorf("%w: missing timestamp", ErrInvalidEntry)
	}
	if len(entry.Data) == 0 || string(entry.Data) == "null" {
		return Entry{}, fmt.Errorf("%w: missing data", ErrInvalidEntry)
	}
	return entry, nil
}

// Package prefstore is a typed durable key/value store for scalar
// preferences. Values live in memory and are snapshotted to a single JSON
// file through a debounced atomic writer; mutations between flushes are
// coalesced into the latest snapshot.
package prefstore

import (
	"os"
	"seedvault/internal/filewriter"
	"seedvault/internal/providers"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

type Store struct {
	mu     sync.RWMutex
	values map[string]any
	writer *filewriter.Writer
	logger providers.Logger
}

// New loads the snapshot at path (missing or corrupt snapshots start
// empty) and persists future mutations through a debounced atomic writer.
func New(path string, debounce time.Duration, runner *filewriter.TaskRunner, logger providers.Logger) *Store {
	s := &Store{
		values: make(map[string]any),
		writer: filewriter.NewWriter(path, debounce, runner, logger),
		logger: logger,
	}
	s.load(path)
	return s
}

// NewInMemory returns a store with no backing file. Used in tests and by
// embedders that keep preferences elsewhere.
func NewInMemory() *Store {
	return &Store{values: make(map[string]any)}
}

func (s *Store) load(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Errorf(providers.TypePrefs, "Failed to read prefs file %s: %s", path, err)
		}
		return
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Errorf(providers.TypePrefs, "Failed to parse prefs file %s: %s", path, err)
		return
	}
	if values != nil {
		s.values = values
	}
}

func (s *Store) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return ""
}

func (s *Store) SetString(key, value string) {
	s.set(key, value)
}

func (s *Store) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// JSON round-trips numbers as float64.
	switch v := s.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (s *Store) SetInt(key string, value int) {
	s.set(key, value)
}

// GetTime returns the stored time, or the zero time if the key is absent
// or malformed. Times are stored as microseconds since the Unix epoch.
func (s *Store) GetTime(key string) time.Time {
	s.mu.RLock()
	var micros int64
	switch v := s.values[key].(type) {
	case int64:
		micros = v
	case int:
		micros = int64(v)
	case float64:
		micros = int64(v)
	default:
		s.mu.RUnlock()
		return time.Time{}
	}
	s.mu.RUnlock()
	return time.UnixMicro(micros).UTC()
}

func (s *Store) SetTime(key string, value time.Time) {
	s.set(key, value.UnixMicro())
}

// GetStringList returns the stored list, tolerating malformed shapes by
// returning nil.
func (s *Store) GetStringList(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch v := s.values[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, str)
		}
		return out
	}
	return nil
}

func (s *Store) SetStringList(key string, value []string) {
	list := make([]string, len(value))
	copy(list, value)
	s.set(key, list)
}

func (s *Store) HasKey(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

func (s *Store) ClearKey(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	s.scheduleFlush()
}

func (s *Store) set(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	s.scheduleFlush()
}

// scheduleFlush snapshots the store and hands the bytes to the writer. The
// snapshot is encoded here, on the owning goroutine, so the background
// write never reads live state.
func (s *Store) scheduleFlush() {
	if s.writer == nil {
		return
	}
	s.mu.RLock()
	data, err := json.Marshal(s.values)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Errorf(providers.TypePrefs, "Failed to serialize prefs: %s", err)
		return
	}
	s.writer.ScheduleWrite(func() []byte { return data })
}

func (s *Store) HasPendingWrite() bool {
	return s.writer != nil && s.writer.HasPendingWrite()
}

// Flush forces a pending snapshot write to complete.
func (s *Store) Flush() {
	if s.writer != nil {
		s.writer.DoScheduledWrite()
	}
}

func (s *Store) Close() {
	s.Flush()
}

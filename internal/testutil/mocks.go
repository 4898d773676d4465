package testutil

import (
	"seedvault/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and records
// seed-domain calls for assertions.
type MockMetrics struct {
	mu              sync.Mutex
	SeedFileReads   []SeedFileReadCall
	EmptySeedWrites []EmptySeedWriteCall
	Deletions       int
}

type SeedFileReadCall struct {
	Kind string
	OK   bool
}

type EmptySeedWriteCall struct {
	Kind  string
	Empty bool
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}

func (m *MockMetrics) IncSeedFileRead(kind string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SeedFileReads = append(m.SeedFileReads, SeedFileReadCall{Kind: kind, OK: ok})
}

func (m *MockMetrics) IncSeedFileWriteEmptySeed(kind string, empty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmptySeedWrites = append(m.EmptySeedWrites, EmptySeedWriteCall{Kind: kind, Empty: empty})
}

func (m *MockMetrics) IncSeedFileDeletions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletions++
}

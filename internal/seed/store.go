package seed

import (
	"errors"
	"os"
	"path/filepath"
	"seedvault/internal/experiment"
	"seedvault/internal/filewriter"
	"seedvault/internal/prefstore"
	"seedvault/internal/providers"
	"sync"
	"time"
)

// Backend identifies where the seed payload is persisted.
type Backend int

const (
	BackendPreferences Backend = iota
	BackendSeedFile
)

func (b Backend) String() string {
	if b == BackendSeedFile {
		return "seed_file"
	}
	return "preferences"
}

// Metrics is the narrow slice of telemetry the store emits. Satisfied by
// providers.MetricsProviderInterface.
type Metrics interface {
	IncSeedFileRead(kind string, ok bool)
	IncSeedFileWriteEmptySeed(kind string, empty bool)
	IncSeedFileDeletions()
}

type noopMetrics struct{}

func (noopMetrics) IncSeedFileRead(string, bool)           {}
func (noopMetrics) IncSeedFileWriteEmptySeed(string, bool) {}
func (noopMetrics) IncSeedFileDeletions()                  {}

const defaultSeedFilename = "VariationsSeedV1"

// Options configures a Store.
type Options struct {
	// Prefs is the preference store backing this record. Required.
	Prefs *prefstore.Store
	// Keys names the preference keys for this record (LatestFieldKeys or
	// SafeFieldKeys).
	Keys FieldKeys
	// SeedFileDir holds the dedicated seed file. Empty disables the file
	// backend for this process entirely.
	SeedFileDir  string
	SeedFilename string
	Channel      Channel
	// EntropySource randomizes the trial assignment. Empty opts the
	// process out of the seed file experiment.
	EntropySource string
	Registry      *experiment.Registry
	Trial         TrialSettings
	// Runner executes file I/O off the owning goroutine. Created
	// internally (and owned) when nil.
	Runner        *filewriter.TaskRunner
	WriteDebounce time.Duration
	// Backend forces the backend instead of resolving it from the trial.
	// Tests and embedders with their own rollout logic use this.
	Backend *Backend
	Logger  providers.Logger
	Metrics Metrics
}

// Store owns the durable storage of one seed record: where payload and
// metadata are persisted, the migration experiment between backends, and
// the encode/decode transforms.
//
// All methods are intended for a single owning goroutine; the mutex exists
// to keep the in-memory record consistent with scheduled background
// writes, not to make the store generally concurrent.
type Store struct {
	mu      sync.Mutex
	rec     record
	prefs   *prefstore.Store
	pSink   prefSink
	sinks   []fieldSink
	keys    FieldKeys
	writer  *filewriter.Writer
	runner  *filewriter.TaskRunner
	ownsRun bool
	backend Backend
	kind    string
	logger  providers.Logger
	metrics Metrics
}

func NewStore(opts Options) (*Store, error) {
	if opts.Prefs == nil {
		return nil, errors.New("seed: preference store is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("seed: logger is required")
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	s := &Store{
		prefs:   opts.Prefs,
		pSink:   prefSink{prefs: opts.Prefs, keys: opts.Keys},
		keys:    opts.Keys,
		logger:  opts.Logger,
		metrics: metrics,
		kind:    "latest",
	}
	if opts.Keys.Seed == SafeFieldKeys.Seed {
		s.kind = "safe"
	}

	if opts.SeedFileDir != "" {
		s.runner = opts.Runner
		if s.runner == nil {
			s.runner = filewriter.NewTaskRunner()
			s.ownsRun = true
		}
		filename := opts.SeedFilename
		if filename == "" {
			filename = defaultSeedFilename
		}
		s.writer = filewriter.NewWriter(
			filepath.Join(opts.SeedFileDir, filename),
			opts.WriteDebounce, s.runner, opts.Logger)
	}

	s.backend = s.resolveBackend(opts)
	s.sinks = []fieldSink{s.pSink}
	if s.backend == BackendSeedFile {
		s.sinks = []fieldSink{recordSink{rec: &s.rec}, s.pSink}
		s.readSeedFile()
	}
	return s, nil
}

func (s *Store) resolveBackend(opts Options) Backend {
	if opts.Backend != nil {
		if *opts.Backend == BackendSeedFile && s.writer == nil {
			return BackendPreferences
		}
		return *opts.Backend
	}
	if opts.Registry == nil || !eligibleForSeedFileTrial(opts.Channel, opts.SeedFileDir, opts.EntropySource) {
		return BackendPreferences
	}
	registerSeedFileTrial(opts.Registry, opts.Channel, opts.Trial, opts.EntropySource)
	if s.writer != nil && opts.Registry.ActiveGroup(SeedFileTrial) == SeedFilesGroup {
		return BackendSeedFile
	}
	return BackendPreferences
}

// Backend returns the backend resolved at construction. Fixed for the
// lifetime of the store.
func (s *Store) Backend() Backend {
	return s.backend
}

// StoreValidatedSeedInfo persists a seed that fetch logic has already
// decoded and validated. Always-present fields replace the stored values;
// empty country fields leave the stored values untouched.
func (s *Store) StoreValidatedSeedInfo(info ValidatedSeedInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == BackendSeedFile {
		s.scheduleSeedFileWrite(info)
		return
	}
	s.prefs.SetString(s.keys.Seed, info.Base64SeedData)
	s.storeMeta(info)
}

// scheduleSeedFileWrite updates the in-memory record, schedules the file
// write and mirrors metadata. Callers hold s.mu.
func (s *Store) scheduleSeedFileWrite(info ValidatedSeedInfo) {
	s.rec.data = info.CompressedSeedData
	s.scheduleWrite()
	s.storeMeta(info)
}

func (s *Store) storeMeta(info ValidatedSeedInfo) {
	// Country and version are guarded independently: an empty incoming
	// value keeps the stored one, and the write carries the merged pair so
	// the [version, country] pref mirror never loses the preserved half.
	country, version := info.PermanentCountry, info.PermanentCountryVersion
	if country != "" || version != "" {
		curCountry, curVersion := s.permanentCountryLocked()
		if country == "" {
			country = curCountry
		}
		if version == "" {
			version = curVersion
		}
	}
	for _, sink := range s.sinks {
		sink.setSignature(info.Signature)
		sink.setMilestone(info.Milestone)
		sink.setSeedDate(info.SeedDate)
		sink.setFetchTime(info.ClientFetchTime)
		if info.SessionCountry != "" {
			sink.setSessionCountry(info.SessionCountry)
		}
		if country != "" || version != "" {
			sink.setPermanentCountry(country, version)
		}
	}
}

// permanentCountryLocked reads the stored permanent country pair from the
// active backend. Callers hold s.mu.
func (s *Store) permanentCountryLocked() (country, version string) {
	if s.backend == BackendSeedFile {
		return s.rec.permanentCountry, s.rec.permanentVersion
	}
	return s.pSink.permanentCountry()
}

// scheduleWrite hands the writer a copy of the current payload. The copy
// is taken now so the background write never races a later mutation; a
// later mutation schedules its own write and wins the coalescing.
func (s *Store) scheduleWrite() {
	data := []byte(s.rec.data)
	s.writer.ScheduleWrite(func() []byte { return data })
}

// ClearSeedInfo clears the payload, signature, milestone, seed date and
// fetch time. Session and permanent countries have their own clear calls.
func (s *Store) ClearSeedInfo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == BackendSeedFile {
		s.rec.data = ""
		s.scheduleWrite()
		for _, sink := range s.sinks {
			sink.clearSeedMeta()
		}
		return
	}
	s.prefs.ClearKey(s.keys.Seed)
	for _, sink := range s.sinks {
		sink.clearSeedMeta()
	}
	// Only file-backed processes write seed files, but a stale file can
	// remain after a group or channel switch. Deletion is best effort.
	if s.writer != nil {
		s.writer.DeleteFile()
		s.metrics.IncSeedFileDeletions()
	}
}

func (s *Store) ClearSessionCountry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sink := range s.sinks {
		sink.clearSessionCountry()
	}
}

func (s *Store) SetSeedDate(serverDate time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sink := range s.sinks {
		sink.setSeedDate(serverDate)
	}
}

func (s *Store) SetFetchTime(fetchTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sink := range s.sinks {
		sink.setFetchTime(fetchTime)
	}
}

func (s *Store) SetPermanentConsistencyCountryAndVersion(country, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sink := range s.sinks {
		sink.setPermanentCountry(country, version)
	}
}

func (s *Store) ClearPermanentConsistencyCountryAndVersion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sink := range s.sinks {
		sink.clearPermanentCountry()
	}
}

// SeedData returns an immutable view of the stored seed, read from
// whichever backend is active.
func (s *Store) SeedData() StoredSeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seedDataLocked()
}

func (s *Store) seedDataLocked() StoredSeed {
	if s.backend == BackendSeedFile {
		return StoredSeed{
			StorageFormat:           FormatCompressed,
			Data:                    s.rec.data,
			Signature:               s.rec.signature,
			Milestone:               s.rec.milestone,
			SeedDate:                s.rec.seedDate,
			ClientFetchTime:         s.rec.fetchTime,
			SessionCountry:          s.rec.sessionCountry,
			PermanentCountry:        s.rec.permanentCountry,
			PermanentCountryVersion: s.rec.permanentVersion,
		}
	}
	country, version := s.pSink.permanentCountry()
	return StoredSeed{
		StorageFormat:           FormatCompressedBase64,
		Data:                    s.prefs.GetString(s.keys.Seed),
		Signature:               s.prefs.GetString(s.keys.Signature),
		Milestone:               s.prefs.GetInt(s.keys.Milestone),
		SeedDate:                s.prefs.GetTime(s.keys.SeedDate),
		ClientFetchTime:         s.prefs.GetTime(s.keys.ClientFetchTime),
		SessionCountry:          s.prefs.GetString(s.keys.SessionCountry),
		PermanentCountry:        country,
		PermanentCountryVersion: version,
	}
}

// ReadSeedData decodes the stored seed into usable bytes. The returned
// data is only meaningful for LoadSuccess. A sentinel payload is returned
// verbatim with an empty signature — the signature is shared with the safe
// seed and the caller substitutes both.
func (s *Store) ReadSeedData() (string, string, LoadResult) {
	s.mu.Lock()
	stored := s.seedDataLocked()
	s.mu.Unlock()

	if stored.Data == "" {
		return "", "", LoadEmpty
	}
	if stored.Data == IdenticalToSafeSeedSentinel {
		return stored.Data, "", LoadSuccess
	}

	compressed := stored.Data
	if stored.StorageFormat == FormatCompressedBase64 {
		decoded, err := Base64Decode(stored.Data)
		if err != nil {
			return "", "", LoadCorruptBase64
		}
		compressed = decoded
	}

	if UncompressedSize(compressed) > MaxUncompressedSeedSize {
		return "", "", LoadExceedsUncompressedSizeLimit
	}
	data, err := GzipUncompress(compressed)
	if err != nil {
		return "", "", LoadCorruptGzip
	}
	return data, stored.Signature, LoadSuccess
}

// HasPendingWrite reports whether a seed file write is scheduled but not
// yet flushed.
func (s *Store) HasPendingWrite() bool {
	return s.writer != nil && s.writer.HasPendingWrite()
}

// Close flushes a pending write before teardown; a scheduled write is
// never dropped.
func (s *Store) Close() {
	if s.HasPendingWrite() {
		s.writer.DoScheduledWrite()
	}
	if s.ownsRun {
		s.runner.Stop()
	}
}

// readSeedFile loads the payload from the seed file at construction. On a
// failed read it imports the preference store's seed instead, scheduling a
// write to establish the file. Either way the preference seed key is
// cleared afterward: the file is authoritative for the payload now.
func (s *Store) readSeedFile() {
	raw, err := os.ReadFile(s.writer.Path())
	success := err == nil
	if success {
		s.rec.data = string(raw)
		// Metadata has not yet migrated off the preference store.
		s.rec.signature = s.prefs.GetString(s.keys.Signature)
		s.rec.milestone = s.prefs.GetInt(s.keys.Milestone)
		s.rec.seedDate = s.prefs.GetTime(s.keys.SeedDate)
		s.rec.fetchTime = s.prefs.GetTime(s.keys.ClientFetchTime)
		s.rec.sessionCountry = s.prefs.GetString(s.keys.SessionCountry)
		s.rec.permanentCountry, s.rec.permanentVersion = s.pSink.permanentCountry()
	} else {
		if !os.IsNotExist(err) {
			s.logger.Warnf(providers.TypeSeed, "Failed to read %s seed file: %s", s.kind, err)
		}
		// First run in the treatment group, or an unreadable file: import
		// whatever the preference store holds.
		decoded, derr := Base64Decode(s.prefs.GetString(s.keys.Seed))
		if derr == nil {
			country, version := s.pSink.permanentCountry()
			s.scheduleSeedFileWrite(ValidatedSeedInfo{
				CompressedSeedData:      decoded,
				Signature:               s.prefs.GetString(s.keys.Signature),
				Milestone:               s.prefs.GetInt(s.keys.Milestone),
				SeedDate:                s.prefs.GetTime(s.keys.SeedDate),
				ClientFetchTime:         s.prefs.GetTime(s.keys.ClientFetchTime),
				SessionCountry:          s.prefs.GetString(s.keys.SessionCountry),
				PermanentCountry:        country,
				PermanentCountryVersion: version,
			})
			// An empty import distinguishes "never had a seed" from "had
			// a file and lost it".
			s.metrics.IncSeedFileWriteEmptySeed(s.kind, decoded == "")
		} else {
			s.logger.Warnf(providers.TypeSeed, "Corrupt base64 %s seed in prefs: %s", s.kind, derr)
		}
	}
	s.metrics.IncSeedFileRead(s.kind, success)
	s.prefs.ClearKey(s.keys.Seed)
}

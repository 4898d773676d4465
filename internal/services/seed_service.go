package services

import (
	"fmt"
	"seedvault/internal/experiment"
	"seedvault/internal/filewriter"
	"seedvault/internal/prefstore"
	"seedvault/internal/providers"
	"seedvault/internal/seed"
	"seedvault/internal/structures"
	"time"
)

const (
	LatestSeed = "latest"
	SafeSeed   = "safe"
)

const (
	defaultLatestFilename = "VariationsSeedV1"
	defaultSafeFilename   = "VariationsSafeSeedV1"
)

// SeedStatus is the JSON-facing snapshot of one stored seed record.
type SeedStatus struct {
	Kind                    string    `json:"kind"`
	Backend                 string    `json:"backend"`
	StorageFormat           string    `json:"storage_format"`
	HasSeed                 bool      `json:"has_seed"`
	AliasedToSafeSeed       bool      `json:"aliased_to_safe_seed,omitempty"`
	Milestone               int       `json:"milestone"`
	SeedDate                time.Time `json:"seed_date"`
	ClientFetchTime         time.Time `json:"client_fetch_time"`
	SessionCountry          string    `json:"session_country,omitempty"`
	PermanentCountry        string    `json:"permanent_country,omitempty"`
	PermanentCountryVersion string    `json:"permanent_country_version,omitempty"`
	PendingWrite            bool      `json:"pending_write"`
}

// StoreSeedInput carries a raw (uncompressed) seed payload and its
// metadata. The service derives both storage representations from it.
type StoreSeedInput struct {
	Payload                 []byte
	Signature               string
	Milestone               int
	SeedDate                time.Time
	FetchTime               time.Time
	SessionCountry          string
	PermanentCountry        string
	PermanentCountryVersion string
}

// ResolvedSeed is the outcome of decoding the latest seed, with the
// safe-seed sentinel already substituted.
type ResolvedSeed struct {
	Data         string
	Signature    string
	Result       seed.LoadResult
	FromSafeSeed bool
}

type SeedServiceInterface interface {
	StoreSeed(kind string, input StoreSeedInput) error
	ClearSeed(kind string) error
	Status(kind string) (SeedStatus, error)
	ResolveLatest() ResolvedSeed
	HasPendingWrites() bool
	Close()
}

// SeedService owns the latest and safe seed stores plus their shared
// preference store and background runner.
type SeedService struct {
	latest *seed.Store
	safe   *seed.Store
	prefs  *prefstore.Store
	runner *filewriter.TaskRunner
	logger providers.Logger
}

func NewSeedService(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (SeedServiceInterface, error) {
	runner := filewriter.NewTaskRunner()

	var prefs *prefstore.Store
	if conf.Prefs.FilePath != "" {
		prefs = prefstore.New(conf.Prefs.FilePath, conf.Prefs.FlushDebounce, runner, logger)
	} else {
		prefs = prefstore.NewInMemory()
	}

	registry := experiment.NewRegistry()
	channel := seed.ParseChannel(conf.Seed.Channel)
	trial := seed.TrialSettings{
		StableProbability:    conf.Seed.Trial.StableProbability,
		PreStableProbability: conf.Seed.Trial.PreStableProbability,
	}

	latestFile := conf.Seed.LatestFile
	if latestFile == "" {
		latestFile = defaultLatestFilename
	}
	safeFile := conf.Seed.SafeFile
	if safeFile == "" {
		safeFile = defaultSafeFilename
	}

	latest, err := seed.NewStore(seed.Options{
		Prefs:         prefs,
		Keys:          seed.LatestFieldKeys,
		SeedFileDir:   conf.Seed.Dir,
		SeedFilename:  latestFile,
		Channel:       channel,
		EntropySource: conf.Seed.EntropySource,
		Registry:      registry,
		Trial:         trial,
		Runner:        runner,
		WriteDebounce: conf.Seed.WriteDebounce,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("latest seed store: %w", err)
	}

	safe, err := seed.NewStore(seed.Options{
		Prefs:         prefs,
		Keys:          seed.SafeFieldKeys,
		SeedFileDir:   conf.Seed.Dir,
		SeedFilename:  safeFile,
		Channel:       channel,
		EntropySource: conf.Seed.EntropySource,
		Registry:      registry,
		Trial:         trial,
		Runner:        runner,
		WriteDebounce: conf.Seed.WriteDebounce,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("safe seed store: %w", err)
	}

	logger.Infof(providers.TypeSeed, "Seed storage backend: %s", latest.Backend())

	return &SeedService{
		latest: latest,
		safe:   safe,
		prefs:  prefs,
		runner: runner,
		logger: logger,
	}, nil
}

func (s *SeedService) store(kind string) (*seed.Store, error) {
	switch kind {
	case LatestSeed:
		return s.latest, nil
	case SafeSeed:
		return s.safe, nil
	}
	return nil, fmt.Errorf("unknown seed kind %q", kind)
}

func (s *SeedService) StoreSeed(kind string, input StoreSeedInput) error {
	st, err := s.store(kind)
	if err != nil {
		return err
	}
	compressed, err := seed.GzipCompress(input.Payload)
	if err != nil {
		return fmt.Errorf("compress seed: %w", err)
	}
	info := seed.ValidatedSeedInfo{
		CompressedSeedData:      compressed,
		Base64SeedData:          seed.Base64Encode(compressed),
		Signature:               input.Signature,
		Milestone:               input.Milestone,
		SeedDate:                input.SeedDate,
		ClientFetchTime:         input.FetchTime,
		SessionCountry:          input.SessionCountry,
		PermanentCountry:        input.PermanentCountry,
		PermanentCountryVersion: input.PermanentCountryVersion,
	}
	// The safe seed record never carries a permanent-country version.
	if kind == SafeSeed {
		info.PermanentCountryVersion = ""
	}
	st.StoreValidatedSeedInfo(info)
	return nil
}

func (s *SeedService) ClearSeed(kind string) error {
	st, err := s.store(kind)
	if err != nil {
		return err
	}
	st.ClearSeedInfo()
	return nil
}

func (s *SeedService) Status(kind string) (SeedStatus, error) {
	st, err := s.store(kind)
	if err != nil {
		return SeedStatus{}, err
	}
	stored := st.SeedData()
	return SeedStatus{
		Kind:                    kind,
		Backend:                 st.Backend().String(),
		StorageFormat:           stored.StorageFormat.String(),
		HasSeed:                 stored.Data != "",
		AliasedToSafeSeed:       stored.Data == seed.IdenticalToSafeSeedSentinel,
		Milestone:               stored.Milestone,
		SeedDate:                stored.SeedDate,
		ClientFetchTime:         stored.ClientFetchTime,
		SessionCountry:          stored.SessionCountry,
		PermanentCountry:        stored.PermanentCountry,
		PermanentCountryVersion: stored.PermanentCountryVersion,
		PendingWrite:            st.HasPendingWrite(),
	}, nil
}

func (s *SeedService) ResolveLatest() ResolvedSeed {
	data, signature, result := s.latest.ReadSeedData()
	if result == seed.LoadSuccess && data == seed.IdenticalToSafeSeedSentinel {
		data, signature, result = s.safe.ReadSeedData()
		return ResolvedSeed{Data: data, Signature: signature, Result: result, FromSafeSeed: true}
	}
	return ResolvedSeed{Data: data, Signature: signature, Result: result}
}

func (s *SeedService) HasPendingWrites() bool {
	return s.latest.HasPendingWrite() || s.safe.HasPendingWrite() || s.prefs.HasPendingWrite()
}

// Close flushes every pending write and stops the background runner.
func (s *SeedService) Close() {
	s.latest.Close()
	s.safe.Close()
	s.prefs.Close()
	s.runner.Stop()
}

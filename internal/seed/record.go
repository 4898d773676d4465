// Package seed persists a variations experiment seed and its metadata.
//
// A seed can live in one of two backends: a dedicated file holding the raw
// gzip payload, or the preference store holding a gzip+base64 payload. The
// backend for a process is chosen by the seed file trial; metadata keeps
// being mirrored into the preference store while the migration experiment
// is running.
package seed

import "time"

// Trial and group names for the seed file experiment.
const (
	SeedFileTrial  = "SeedFileTrial"
	DefaultGroup   = "Default"
	ControlGroup   = "Control_V7"
	SeedFilesGroup = "SeedFiles_V7"
)

// IdenticalToSafeSeedSentinel may be stored as the latest seed payload to
// indicate that the latest seed is identical to the safe seed. Used to
// avoid duplicating storage space; readers must special-case it before
// attempting decompression.
const IdenticalToSafeSeedSentinel = "safe_seed_content"

// MaxUncompressedSeedSize caps the declared uncompressed size of a seed. A
// corrupt payload could otherwise declare an enormous buffer.
const MaxUncompressedSeedSize = 50 * 1024 * 1024

type StorageFormat int

const (
	// FormatCompressed is the seed file format: raw gzip bytes.
	FormatCompressed StorageFormat = iota
	// FormatCompressedBase64 is the preference store format.
	FormatCompressedBase64
)

func (f StorageFormat) String() string {
	if f == FormatCompressed {
		return "compressed"
	}
	return "compressed+base64"
}

// StoredSeed is an immutable view of a stored seed and its metadata,
// tagged with the storage format of Data.
type StoredSeed struct {
	StorageFormat           StorageFormat
	Data                    string
	Signature               string
	Milestone               int
	SeedDate                time.Time
	ClientFetchTime         time.Time
	SessionCountry          string
	PermanentCountry        string
	PermanentCountryVersion string
}

// ValidatedSeedInfo carries a seed that has already been decoded and
// validated by fetch logic, ready to store. Callers supply both payload
// representations since they do not know which backend is active. Empty
// country fields mean "do not update".
type ValidatedSeedInfo struct {
	CompressedSeedData      string
	Base64SeedData          string
	Signature               string
	Milestone               int
	SeedDate                time.Time
	ClientFetchTime         time.Time
	SessionCountry          string
	PermanentCountry        string
	PermanentCountryVersion string
}

// FieldKeys names the preference keys backing one seed record. Two sets
// exist, for the latest and the safe seed.
type FieldKeys struct {
	Seed                    string
	Signature               string
	Milestone               string
	SeedDate                string
	ClientFetchTime         string
	SessionCountry          string
	PermanentCountryVersion string
}

var LatestFieldKeys = FieldKeys{
	Seed:                    "variations_compressed_seed",
	Signature:               "variations_seed_signature",
	Milestone:               "variations_seed_milestone",
	SeedDate:                "variations_seed_date",
	ClientFetchTime:         "variations_last_fetch_time",
	SessionCountry:          "variations_country",
	PermanentCountryVersion: "variations_permanent_consistency_country",
}

var SafeFieldKeys = FieldKeys{
	Seed:                    "variations_safe_compressed_seed",
	Signature:               "variations_safe_seed_signature",
	Milestone:               "variations_safe_seed_milestone",
	SeedDate:                "variations_safe_seed_date",
	ClientFetchTime:         "variations_safe_seed_fetch_time",
	SessionCountry:          "variations_safe_seed_session_consistency_country",
	PermanentCountryVersion: "variations_safe_seed_permanent_consistency_country",
}

// LoadResult classifies the outcome of ReadSeedData. Every non-success
// value degrades to "no seed present" at the caller; none are fatal.
type LoadResult int

const (
	LoadSuccess LoadResult = iota
	LoadEmpty
	LoadCorruptBase64
	LoadExceedsUncompressedSizeLimit
	LoadCorruptGzip
)

func (r LoadResult) String() string {
	switch r {
	case LoadSuccess:
		return "success"
	case LoadEmpty:
		return "empty"
	case LoadCorruptBase64:
		return "corrupt_base64"
	case LoadExceedsUncompressedSizeLimit:
		return "exceeds_uncompressed_size_limit"
	case LoadCorruptGzip:
		return "corrupt_gzip"
	}
	return "unknown"
}

type Channel string

const (
	ChannelUnknown Channel = "unknown"
	ChannelCanary  Channel = "canary"
	ChannelDev     Channel = "dev"
	ChannelBeta    Channel = "beta"
	ChannelStable  Channel = "stable"
)

func ParseChannel(s string) Channel {
	switch Channel(s) {
	case ChannelCanary, ChannelDev, ChannelBeta, ChannelStable:
		return Channel(s)
	}
	return ChannelUnknown
}

// record is the in-memory copy of a file-backed seed. Exclusively owned by
// its Store; the background serializer only ever sees a copy of data.
type record struct {
	data             string
	signature        string
	milestone        int
	seedDate         time.Time
	fetchTime        time.Time
	sessionCountry   string
	permanentCountry string
	permanentVersion string
}

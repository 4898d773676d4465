package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir"`
}

type PrefsConfig struct {
	FilePath      string        `yaml:"filePath"`
	FlushDebounce time.Duration `yaml:"flushDebounce"`
}

type TrialConfig struct {
	StableProbability    int `yaml:"stableProbability" validate:"min:0|max:100"`
	PreStableProbability int `yaml:"preStableProbability" validate:"min:0|max:100"`
}

type SeedConfig struct {
	// Dir is the directory holding dedicated seed files. An empty dir
	// disables the file backend entirely.
	Dir           string        `yaml:"dir"`
	LatestFile    string        `yaml:"latestFile"`
	SafeFile      string        `yaml:"safeFile"`
	Channel       string        `yaml:"channel" validate:"in:unknown,canary,dev,beta,stable"`
	EntropySource string        `yaml:"entropySource"`
	WriteDebounce time.Duration `yaml:"writeDebounce"`
	Trial         TrialConfig   `yaml:"trial"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Seed      SeedConfig    `yaml:"seed"`
	Prefs     PrefsConfig   `yaml:"prefs"`
	WebServer Server        `yaml:"webServer"`
	Logger    LoggerConfig  `yaml:"logger"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

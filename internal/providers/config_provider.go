package providers

import (
	"fmt"
	"path/filepath"
	"seedvault/internal/structures"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "SEEDVAULT_LOG_LEVEL")
	viper.BindEnv("seed.dir", "SEEDVAULT_SEED_DIR")
	viper.BindEnv("seed.channel", "SEEDVAULT_CHANNEL")
	viper.BindEnv("seed.entropySource", "SEEDVAULT_ENTROPY_SOURCE")
	viper.BindEnv("prefs.filePath", "SEEDVAULT_PREFS_FILE")
	viper.BindEnv("cache.enabled", "SEEDVAULT_CACHE_ENABLED")
	viper.BindEnv("cache.size", "SEEDVAULT_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SeedVault"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

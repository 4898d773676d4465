package providers

import (
	"seedvault/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{Host: "127.0.0.1", Port: 8080},
		Logger:    structures.LoggerConfig{Level: "info", Mode: 0644},
		Seed:      structures.SeedConfig{Channel: "beta"},
	}
}

func TestCnfValidator_ValidConfig(t *testing.T) {
	assert.NoError(t, NewCnfValidator(validConfig()).Validate())
}

func TestCnfValidator_MissingHost(t *testing.T) {
	conf := validConfig()
	conf.WebServer.Host = ""
	assert.Error(t, NewCnfValidator(conf).Validate())
}

func TestCnfValidator_BadPort(t *testing.T) {
	conf := validConfig()
	conf.WebServer.Port = 0
	assert.Error(t, NewCnfValidator(conf).Validate())
}

func TestCnfValidator_BadLogLevel(t *testing.T) {
	conf := validConfig()
	conf.Logger.Level = "verbose"
	assert.Error(t, NewCnfValidator(conf).Validate())
}

func TestCnfValidator_BadChannel(t *testing.T) {
	conf := validConfig()
	conf.Seed.Channel = "nightly"
	assert.Error(t, NewCnfValidator(conf).Validate())
}

func TestCnfValidator_EmptyChannelAllowed(t *testing.T) {
	conf := validConfig()
	conf.Seed.Channel = ""
	assert.NoError(t, NewCnfValidator(conf).Validate())
}

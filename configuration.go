package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sanity-io/litter"
	"github.com/spf13/viper"

	"github.com/wufe/govee-control/internal/govee"
	"github.com/wufe/govee-control/internal/store"
)

const (
	envPrefix      = "GOVEE"
	configName     = "govee"
	redactedSecret = "<redacted>"
)

var errMissingAPIKey = errors.New("GOVEE_API_KEY is not set")

type Configuration struct {
	APIKey        string             `mapstructure:"api_key"`
	BaseURL       string             `mapstructure:"base_url"`
	Timeout       time.Duration      `mapstructure:"timeout"`
	RetryAttempts int                `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration      `mapstructure:"retry_delay"`
	StateWorkers  int                `mapstructure:"state_workers"`
	LogLevel      string             `mapstructure:"log_level"`
	Files         ConfigurationFiles `mapstructure:"files"`
}

type ConfigurationFiles struct {
	Devices string `mapstructure:"devices"`
	Colors  string `mapstructure:"colors"`
	Presets string `mapstructure:"presets"`
	States  string `mapstructure:"states"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", govee.DefaultBaseURL)
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("retry_attempts", 1)
	v.SetDefault("retry_delay", 500*time.Millisecond)
	v.SetDefault("state_workers", 4)
	v.SetDefault("log_level", "info")
	v.SetDefault("files.devices", filepath.Join("config", "devices.json"))
	v.SetDefault("files.colors", filepath.Join("config", "colors.json"))
	v.SetDefault("files.presets", filepath.Join("config", "presets.json"))
	v.SetDefault("files.states", filepath.Join("config", "saved-states.json"))
}

// NewConfiguration reads govee.yaml (or configFile when set) and the GOVEE_*
// environment. A missing API key is fatal.
func NewConfiguration(configFile string) (Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Configuration{}, &store.ConfigError{Source: configSource(v, configFile), Err: err}
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Loaded configuration file")
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return Configuration{}, &store.ConfigError{Source: configSource(v, configFile), Err: fmt.Errorf("error unmarshalling configuration: %w", err)}
	}

	if strings.TrimSpace(configuration.APIKey) == "" {
		return Configuration{}, &store.ConfigError{Source: "environment", Err: errMissingAPIKey}
	}

	return configuration, nil
}

func configSource(v *viper.Viper, configFile string) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	if configFile != "" {
		return configFile
	}
	return configName + ".yaml"
}

func (c Configuration) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Msgf("Unknown log level %q, using info", c.LogLevel)
		return zerolog.InfoLevel
	}
	return level
}

// Dump renders the configuration with the API key hidden.
func (c Configuration) Dump() string {
	redacted := c
	if redacted.APIKey != "" {
		redacted.APIKey = redactedSecret
	}
	return litter.Sdump(redacted)
}

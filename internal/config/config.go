package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/wheelibin/merossd/internal/constants"
	"github.com/wheelibin/merossd/internal/models"
)

type Device struct {
	ID      string `mapstructure:"id"`
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	Secret  string `mapstructure:"secret"`
	Channel int    `mapstructure:"channel"`
}

func (d Device) Identity() models.DeviceIdentity {
	name := d.Name
	if name == "" {
		name = d.ID
	}
	return models.DeviceIdentity{ID: d.ID, Name: name, Address: d.Address, Secret: d.Secret, Channel: d.Channel}
}

type Config struct {
	Log struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
	HTTP struct {
		Timeout time.Duration `mapstructure:"timeout"`
		Listen  string        `mapstructure:"listen"`
	} `mapstructure:"http"`
	Store struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"store"`
	MQTT struct {
		Enabled         bool   `mapstructure:"enabled"`
		Broker          string `mapstructure:"broker"`
		Username        string `mapstructure:"username"`
		Password        string `mapstructure:"password"`
		TopicPrefix     string `mapstructure:"topic_prefix"`
		DiscoveryPrefix string `mapstructure:"discovery_prefix"`
	} `mapstructure:"mqtt"`
	Devices []Device `mapstructure:"devices"`
}

// ConfigurationError reports an invalid device configuration. It is fatal at
// startup and no device is registered when one is returned.
type ConfigurationError struct {
	DeviceID string
	Field    string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.DeviceID == "" {
		return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration for device %q: %s %s", e.DeviceID, e.Field, e.Reason)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("http.timeout", constants.DefaultRequestTimeout)
	v.SetDefault("http.listen", "127.0.0.1:8089")
	v.SetDefault("store.path", "file::memory:?cache=shared")
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "merossd")
	v.SetDefault("mqtt.discovery_prefix", "homeassistant")
}

// InitialiseConfig finds and reads the config file into the global viper
// instance. An explicit path takes precedence over the search paths.
func InitialiseConfig(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")                 // name of config file (without extension)
		viper.AddConfigPath("/etc/merossd/")          // path to look for the config file in
		viper.AddConfigPath("$HOME/.config/merossd/") // call multiple times to add many search paths
		viper.AddConfigPath(".")                      // optionally look for config in the working directory
	}
	viper.SetEnvPrefix("merossd")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

// ReadConfig decodes and validates the configuration held by v
func ReadConfig(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := ValidateDevices(cfg.Devices); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateDevices checks every device has the identity fields the protocol
// needs and that ids are unique.
func ValidateDevices(devices []Device) error {
	for i, d := range devices {
		if strings.TrimSpace(d.ID) == "" {
			return &ConfigurationError{Field: fmt.Sprintf("devices[%d].id", i), Reason: "is required"}
		}
		if strings.TrimSpace(d.Address) == "" {
			return &ConfigurationError{DeviceID: d.ID, Field: "address", Reason: "is required"}
		}
		if d.Secret == "" {
			return &ConfigurationError{DeviceID: d.ID, Field: "secret", Reason: "is required"}
		}
		if d.Channel < 0 {
			return &ConfigurationError{DeviceID: d.ID, Field: "channel", Reason: "must not be negative"}
		}
	}

	duplicates := lo.FindDuplicatesBy(devices, func(d Device) string { return d.ID })
	if len(duplicates) > 0 {
		return &ConfigurationError{DeviceID: duplicates[0].ID, Field: "id", Reason: "is duplicated"}
	}

	// two entries may share an address only when they drive different channels
	duplicates = lo.FindDuplicatesBy(devices, func(d Device) string { return fmt.Sprintf("%s#%d", d.Address, d.Channel) })
	if len(duplicates) > 0 {
		return &ConfigurationError{DeviceID: duplicates[0].ID, Field: "address/channel", Reason: "is already used by another device"}
	}

	return nil
}

// IsConfigurationError reports whether err is a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// ParseLogLevel maps a config/CLI level name to a logger level
func ParseLogLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "fatal":
		return log.FatalLevel, nil
	}
	return log.InfoLevel, &ConfigurationError{Field: "log.level", Reason: fmt.Sprintf("has unknown value %q", level)}
}

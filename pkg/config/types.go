package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent gazetap configuration stored as config.toml
// in the .gazetap/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	IMotions    IMotionsConfig    `toml:"imotions"`
	Filter      FilterConfig      `toml:"filter"`
	Display     DisplayConfig     `toml:"display"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
	API         APIConfig         `toml:"api"`
	Recorder    RecorderConfig    `toml:"recorder"`
}

// IMotionsConfig locates the telemetry server.
type IMotionsConfig struct {
	Host string `toml:"host,omitempty"`
	Port uint   `toml:"port,omitempty"`
}

// FilterConfig selects which records are emitted. Empty fields match any value.
type FilterConfig struct {
	DeviceName string `toml:"device_name"`
	SampleName string `toml:"sample_name"`
}

// DisplayConfig pins the screen size. When either dimension is zero the size
// is queried from xrandr.
type DisplayConfig struct {
	Width  uint `toml:"width,omitempty"`
	Height uint `toml:"height,omitempty"`
}

// StorageConfig selects where emitted samples are recorded. Postgres wins
// over SQLite; with neither set samples are kept in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig holds Kafka publishing settings. Publishing is disabled
// without brokers.
type EventStreamConfig struct {
	// KafkaBrokers is a comma-separated list of host:port addresses.
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// APIConfig holds status API settings. The API is disabled when Listen is empty.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// RecorderConfig sizes the background worker pool.
type RecorderConfig struct {
	Workers   uint `toml:"workers,omitempty"`
	QueueSize uint `toml:"queue_size,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"imotions.host": stringKey(func(c *Config) *string { return &c.IMotions.Host }),
	"imotions.port": {
		get: func(c *Config) string {
			if c.IMotions.Port == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.IMotions.Port), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 16)
			if err != nil {
				return fmt.Errorf("invalid value for imotions.port: %w", err)
			}
			c.IMotions.Port = uint(n)
			return nil
		},
	},
	"filter.device_name":        stringKey(func(c *Config) *string { return &c.Filter.DeviceName }),
	"filter.sample_name":        stringKey(func(c *Config) *string { return &c.Filter.SampleName }),
	"display.width":             uintKey("display.width", func(c *Config) *uint { return &c.Display.Width }),
	"display.height":            uintKey("display.height", func(c *Config) *uint { return &c.Display.Height }),
	"storage.sqlite_path":       stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn":      stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"eventstream.kafka_brokers": stringKey(func(c *Config) *string { return &c.EventStream.KafkaBrokers }),
	"eventstream.kafka_topic":   stringKey(func(c *Config) *string { return &c.EventStream.KafkaTopic }),
	"api.listen":                stringKey(func(c *Config) *string { return &c.API.Listen }),
	"recorder.workers":          uintKey("recorder.workers", func(c *Config) *uint { return &c.Recorder.Workers }),
	"recorder.queue_size":       uintKey("recorder.queue_size", func(c *Config) *uint { return &c.Recorder.QueueSize }),
}

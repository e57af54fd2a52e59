package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands.
type Flag struct {
	// Name is the long flag name (e.g. "host").
	Name string

	// Shorthand is the one-letter short flag (e.g. "H"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "imotions.host").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagHost         = "host"
	FlagPort         = "port"
	FlagDeviceName   = "device"
	FlagSampleName   = "sample"
	FlagWidth        = "width"
	FlagHeight       = "height"
	FlagSQLite       = "sqlite"
	FlagPostgres     = "postgres"
	FlagKafkaBrokers = "kafka-brokers"
	FlagKafkaTopic   = "kafka-topic"
	FlagAPIListen    = "api-listen"
	FlagWorkers      = "workers"
	FlagQueueSize    = "queue-size"
)

// StreamFlags is the registry of flags accepted by "gazetap stream".
var StreamFlags = FlagSet{
	FlagHost:         {Name: "host", Shorthand: "H", ViperKey: "imotions.host", Description: "iMotions API host"},
	FlagPort:         {Name: "port", Shorthand: "p", ViperKey: "imotions.port", Description: "iMotions API TCP port"},
	FlagDeviceName:   {Name: "device", ViperKey: "filter.device_name", Description: "Only emit records from this device (empty matches any)"},
	FlagSampleName:   {Name: "sample", ViperKey: "filter.sample_name", Description: "Only emit records of this sample type (empty matches any)"},
	FlagWidth:        {Name: "width", ViperKey: "display.width", Description: "Screen width in pixels (default: query xrandr)"},
	FlagHeight:       {Name: "height", ViperKey: "display.height", Description: "Screen height in pixels (default: query xrandr)"},
	FlagSQLite:       {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database for recorded samples (default: in-memory)"},
	FlagPostgres:     {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string for recorded samples"},
	FlagKafkaBrokers: {Name: "kafka-brokers", ViperKey: "eventstream.kafka_brokers", Description: "Comma-separated Kafka brokers to publish samples to"},
	FlagKafkaTopic:   {Name: "kafka-topic", ViperKey: "eventstream.kafka_topic", Description: "Kafka topic for sample events"},
	FlagAPIListen:    {Name: "api-listen", ViperKey: "api.listen", Description: "Address for the status API to listen on (disabled when empty)"},
	FlagWorkers:      {Name: "workers", ViperKey: "recorder.workers", Description: "Number of recorder workers"},
	FlagQueueSize:    {Name: "queue-size", ViperKey: "recorder.queue_size", Description: "Recorder queue capacity"},
}

// StreamFlagKeys lists every StreamFlags registry key in help order.
var StreamFlagKeys = []string{
	FlagHost, FlagPort, FlagDeviceName, FlagSampleName, FlagWidth, FlagHeight,
	FlagSQLite, FlagPostgres, FlagKafkaBrokers, FlagKafkaTopic, FlagAPIListen,
	FlagWorkers, FlagQueueSize,
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

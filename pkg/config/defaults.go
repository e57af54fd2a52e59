package config

const (
	defaultIMotionsHost = "localhost"
	defaultIMotionsPort = 8088

	defaultSampleName = "EyeData"

	defaultKafkaTopic = "gazetap.samples"

	defaultRecorderWorkers   = 1
	defaultRecorderQueueSize = 1024
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		IMotions: IMotionsConfig{
			Host: defaultIMotionsHost,
			Port: defaultIMotionsPort,
		},
		Filter: FilterConfig{
			SampleName: defaultSampleName,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
		Recorder: RecorderConfig{
			Workers:   defaultRecorderWorkers,
			QueueSize: defaultRecorderQueueSize,
		},
	}
}

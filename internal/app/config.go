package app

import "errors"

// Config holds everything an App instance needs to run one build.
type Config struct {
	ManifestPath    string
	BuildDir        string
	ToolchainPrefix string

	// CPU, Output and the console toggles override the manifest when set.
	CPU            string
	Output         string
	ConsoleDisable bool
	ConsoleLite    bool
	NoAutocomplete bool
	NoHistory      bool
	TFTPPort       string

	Jobs     int
	Simulate bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.BuildDir == "" {
		return nil, errors.New("BuildDir is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}

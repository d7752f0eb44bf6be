// Package config handles threemftool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig holds extraction output settings.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Directory for extracted entries and patched archives
}

// MeshConfig holds mesh reporting settings.
type MeshConfig struct {
	ShowBounds bool `yaml:"show_bounds"`
	ShowColors bool `yaml:"show_colors"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: ".",
		},
		Mesh: MeshConfig{
			ShowBounds: true,
			ShowColors: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Package config handles application configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	VSync  bool `yaml:"vsync"`
	OnTop  bool `yaml:"on_top"`
}

// ModelConfig holds model bundle settings.
type ModelConfig struct {
	Dir      string  `yaml:"dir"`       // Model bundle directory
	File     string  `yaml:"file"`      // model3.json file name within Dir
	CorePath string  `yaml:"core_path"` // Path to the Cubism core shared library
	Scale    float32 `yaml:"scale"`
	X        float32 `yaml:"x"`
	Y        float32 `yaml:"y"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  480,
			Height: 640,
			VSync:  true,
			OnTop:  false,
		},
		Model: ModelConfig{
			Dir:      "model",
			File:     "model.model3.json",
			CorePath: defaultCorePath(),
			Scale:    1.0,
			X:        0,
			Y:        0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

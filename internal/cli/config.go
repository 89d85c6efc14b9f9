package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	derrors "github.com/orizon-lang/derivcheck/internal/errors"
)

// DefaultConfigFile is read when no --config flag is given
const DefaultConfigFile = "derivcheck.yaml"

// ColorMode selects when reports are coloured
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ServeConfig configures the HTTP/3 check service
type ServeConfig struct {
	Addr string `yaml:"addr"`
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// ReportConfig configures text reports
type ReportConfig struct {
	IgnoreCodes []string `yaml:"ignore_codes"`
	MaxErrors   int      `yaml:"max_errors"`
}

// Config is the derivcheck configuration file
type Config struct {
	Verbose  bool         `yaml:"verbose"`
	Debug    bool         `yaml:"debug"`
	Language string       `yaml:"language"`
	Ruleset  string       `yaml:"ruleset"`
	Color    ColorMode    `yaml:"color"`
	Serve    ServeConfig  `yaml:"serve"`
	Watch    WatchConfig  `yaml:"watch"`
	Report   ReportConfig `yaml:"report"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Language: "lm.quantificational",
		Ruleset:  "lm.nd",
		Color:    ColorAuto,
		Serve:    ServeConfig{Addr: "localhost:8443"},
		Watch:    WatchConfig{Debounce: 200 * time.Millisecond},
	}
}

// LoadConfig loads configuration from file. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil // Default config if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	switch config.Color {
	case ColorAuto, ColorAlways, ColorNever:
	case "":
		config.Color = ColorAuto
	default:
		return nil, fmt.Errorf("invalid color mode %q: want auto, always or never", config.Color)
	}
	for _, code := range config.Report.IgnoreCodes {
		if !derrors.Code(code).Known() {
			return nil, fmt.Errorf("unknown diagnostic code %q in report.ignore_codes", code)
		}
	}
	if config.Report.MaxErrors < 0 {
		return nil, fmt.Errorf("report.max_errors must not be negative, got %d", config.Report.MaxErrors)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

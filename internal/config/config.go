package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
)

const (
	DefaultSignalFile = "dati.txt"
	DefaultNoiseFile  = "rumore_base.txt"
	DefaultChartFile  = "chart.png"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "console"
)

type Config struct {
	Steps     int          `yaml:"steps"`
	Duration  float64      `yaml:"duration"`
	Gravity   float64      `yaml:"gravity"`
	Length    float64      `yaml:"length"`
	TermsFile string       `yaml:"terms_file,omitempty"`
	Terms     []TermConfig `yaml:"terms,omitempty"`
	Output    OutputConfig `yaml:"output"`
	Log       LoggerConfig `yaml:"log"`
}

// TermConfig is a forcing term as written by users: frequency in Hz.
type TermConfig struct {
	Tau       float64 `yaml:"tau"`
	Frequency float64 `yaml:"frequency"`
	Phi       float64 `yaml:"phi"`
	Amplitude float64 `yaml:"amplitude"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Signal string `yaml:"signal"`
	Noise  string `yaml:"noise"`
	Chart  string `yaml:"chart"`
}

type LoggerConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	ServiceName string `yaml:"service_name"`
	File        string `yaml:"file,omitempty"`
	MaxSize     int    `yaml:"max_size"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAge      int    `yaml:"max_age"`
	Compress    bool   `yaml:"compress"`
}

func DefaultConfig() *Config {
	return &Config{
		Steps:    dynamo.DefaultSteps,
		Duration: dynamo.DefaultDuration,
		Gravity:  dynamo.DefaultGravity,
		Length:   dynamo.DefaultLength,
		Output: OutputConfig{
			Dir:    ".",
			Signal: DefaultSignalFile,
			Noise:  DefaultNoiseFile,
			Chart:  DefaultChartFile,
		},
		Log: LoggerConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			ServiceName: "drivenpend",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      28,
		},
	}
}

// Load reads a YAML file on top of the defaults. A relative terms_file is
// resolved against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.TermsFile != "" && !filepath.IsAbs(cfg.TermsFile) {
		cfg.TermsFile = filepath.Join(filepath.Dir(path), cfg.TermsFile)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Sim() dynamo.Config {
	return dynamo.Config{
		Steps:    c.Steps,
		Duration: c.Duration,
		Gravity:  c.Gravity,
		Length:   c.Length,
	}
}

func (c *Config) Validate() error {
	if err := c.Sim().Validate(); err != nil {
		return err
	}
	if c.TermsFile != "" && len(c.Terms) > 0 {
		return fmt.Errorf("terms_file and inline terms are mutually exclusive")
	}
	return nil
}

// ForcingTerms returns the inline terms, or parses TermsFile when set.
func (c *Config) ForcingTerms() ([]forcing.Term, error) {
	if c.TermsFile != "" {
		return forcing.ParseFile(c.TermsFile)
	}
	terms := make([]forcing.Term, len(c.Terms))
	for i, tc := range c.Terms {
		terms[i] = forcing.NewTerm(tc.Tau, tc.Frequency, tc.Phi, tc.Amplitude)
	}
	if err := forcing.ValidateTerms(terms); err != nil {
		return nil, err
	}
	return terms, nil
}

func (c *Config) SignalPath() string { return filepath.Join(c.Output.Dir, c.Output.Signal) }
func (c *Config) NoisePath() string  { return filepath.Join(c.Output.Dir, c.Output.Noise) }
func (c *Config) ChartPath() string  { return filepath.Join(c.Output.Dir, c.Output.Chart) }

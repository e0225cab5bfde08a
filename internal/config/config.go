// Package config loads the YAML configuration shared by the master and
// slave binaries: listen addresses, liveness cadence, the progress window,
// and the default histogram shape.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPingPeriod is the master's liveness-probe cadence (spec.md §6).
	DefaultPingPeriod = 3 * time.Second
	// ProgressWindow is the fixed coalescing delay before an aggregated
	// report is emitted. The spec treats this as fixed; it is still exposed
	// here so tests can shrink it.
	ProgressWindow = 500 * time.Millisecond
	// DefaultHistogramBuckets is the default fixed-width bucket count.
	DefaultHistogramBuckets = 3000

	// FilePermissions matches the teacher's convention for config artifacts.
	FilePermissions = 0644
	// DirPermissions matches the teacher's convention for config directories.
	DirPermissions = 0755
)

// DefaultPercentiles are the percentiles reported by every Histogram summary.
func DefaultPercentiles() []float64 { return []float64{0.95, 0.99} }

// Duration wraps time.Duration so it can be expressed as "3s" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string, falling back to treating a bare
// number as nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Get returns the wrapped time.Duration.
func (d Duration) Get() time.Duration { return time.Duration(d) }

// MasterConfig configures the master worker pool and its HTTP surfaces.
type MasterConfig struct {
	ListenAddr     string   `yaml:"listenAddr"`
	MetricsAddr    string   `yaml:"metricsAddr"`
	PingPeriod     Duration `yaml:"pingPeriod"`
	ProgressWindow Duration `yaml:"progressWindow"`
	Slaves         []string `yaml:"slaves"`
}

// SlaveConfig configures a single slave agent.
type SlaveConfig struct {
	ID         string `yaml:"id"`
	ListenAddr string `yaml:"listenAddr"`
}

// HistogramConfig sets the default shape for Histogram sketches created from
// a TestSpec's report parameters.
type HistogramConfig struct {
	NumBuckets  int       `yaml:"numBuckets"`
	Percentiles []float64 `yaml:"percentiles"`
}

// HistoryConfig configures the master's run-history store.
type HistoryConfig struct {
	DatabasePath string `yaml:"databasePath"`
}

// Config is the top-level configuration document.
type Config struct {
	Master    MasterConfig    `yaml:"master"`
	Slave     SlaveConfig     `yaml:"slave"`
	Histogram HistogramConfig `yaml:"histogram"`
	History   HistoryConfig   `yaml:"history"`
}

// Default returns a Config populated with the spec's defaults.
func Default() *Config {
	return &Config{
		Master: MasterConfig{
			ListenAddr:     ":7070",
			MetricsAddr:    ":7071",
			PingPeriod:     Duration(DefaultPingPeriod),
			ProgressWindow: Duration(ProgressWindow),
		},
		Slave: SlaveConfig{
			ListenAddr: ":7080",
		},
		Histogram: HistogramConfig{
			NumBuckets:  DefaultHistogramBuckets,
			Percentiles: DefaultPercentiles(),
		},
		History: HistoryConfig{
			DatabasePath: "loadcoord-history.db",
		},
	}
}

// Load reads a YAML document at path, overlaying it onto Default(). A
// missing file is not an error — it yields Default() unmodified, mirroring
// the teacher's habit of falling back to usable defaults on first run.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Master.PingPeriod == 0 {
		cfg.Master.PingPeriod = Duration(DefaultPingPeriod)
	}
	if cfg.Master.ProgressWindow == 0 {
		cfg.Master.ProgressWindow = Duration(ProgressWindow)
	}
	if cfg.Histogram.NumBuckets == 0 {
		cfg.Histogram.NumBuckets = DefaultHistogramBuckets
	}
	if len(cfg.Histogram.Percentiles) == 0 {
		cfg.Histogram.Percentiles = DefaultPercentiles()
	}

	return cfg, nil
}

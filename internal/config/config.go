package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Control    ControlConfig    `yaml:"control"`
	Graph      GraphConfig      `yaml:"graph"`
	Accounting AccountingConfig `yaml:"accounting"`
	State      StateConfig      `yaml:"state"`
}

type ControlConfig struct {
	Address        string        `yaml:"address"`
	Password       string        `yaml:"password"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type GraphConfig struct {
	Intervals []time.Duration `yaml:"intervals"`
	MaxColumn int             `yaml:"max_column"`
}

type AccountingConfig struct {
	Show         bool          `yaml:"show"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type StateConfig struct {
	Path        string        `yaml:"path"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// ResolutionSeconds converts the interval list to whole seconds for the
// sample stores.
func (g GraphConfig) ResolutionSeconds() []int {
	out := make([]int, len(g.Intervals))
	for i, d := range g.Intervals {
		out[i] = int(d / time.Second)
	}
	return out
}

func Default() *Config {
	return &Config{
		Control: ControlConfig{
			Address:        "127.0.0.1:9051",
			DialTimeout:    5 * time.Second,
			RequestTimeout: 5 * time.Second,
		},
		Graph: GraphConfig{
			Intervals: []time.Duration{
				time.Second,
				5 * time.Second,
				30 * time.Second,
				time.Minute,
				15 * time.Minute,
				30 * time.Minute,
				time.Hour,
			},
			MaxColumn: 300,
		},
		Accounting: AccountingConfig{
			Show:         true,
			PollInterval: 5 * time.Second,
		},
		State: StateConfig{
			LockTimeout: 500 * time.Millisecond,
		},
	}
}

// Load reads a yaml config file, applying defaults for anything the file
// leaves unset. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Graph.Intervals) == 0 {
		return fmt.Errorf("config: graph needs at least one interval")
	}
	for i, d := range c.Graph.Intervals {
		if d < time.Second {
			return fmt.Errorf("config: graph interval %d is below one second", i)
		}
	}
	if c.Graph.MaxColumn <= 0 {
		return fmt.Errorf("config: graph max_column must be positive")
	}
	if c.Accounting.PollInterval <= 0 {
		return fmt.Errorf("config: accounting poll_interval must be positive")
	}
	return nil
}

// # internal/config/config.go
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the process-wide configuration, set once before any graph
// construction and injected into the registry and manager.
type Config struct {
	// BaseURL is where the documentation will be served; ".." for
	// relative links.
	BaseURL string `toml:"base_url"`
	// OutputDir is the documentation output tree.
	OutputDir string `toml:"output_dir"`
	// GraphDir is the graph image subdirectory within the output tree.
	GraphDir string `toml:"graph_dir"`
	// ParentDir is prepended to internal entities' page URLs.
	ParentDir string `toml:"parent_dir"`

	ColouredEdges bool `toml:"coloured_edges"`
	// SaveGraphs controls whether standalone image files are written at
	// all; embeddable markup is produced either way.
	SaveGraphs bool `toml:"save_graphs"`

	Exclude Exclude `toml:"exclude"`
	Export  Export  `toml:"export"`
	Render  Render  `toml:"render"`
}

// Exclude filters which corpus entities participate in the graph pass.
type Exclude struct {
	Dirs     []string `toml:"dirs"`
	Entities []string `toml:"entities"`
}

type Export struct {
	// Workers sizes the export pool; 0 exports sequentially.
	Workers int `toml:"workers"`
}

type Render struct {
	// Binary names the layout engine executable.
	Binary string `toml:"binary"`
	// RatePerSec bounds renderer process spawns; 0 is unlimited.
	RatePerSec float64 `toml:"rate_per_sec"`
	Burst      int     `toml:"burst"`
	CacheSize  int     `toml:"cache_size"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{ColouredEdges: true, SaveGraphs: true}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = ".."
	}
	if c.OutputDir == "" {
		c.OutputDir = "./doc"
	}
	if c.GraphDir == "" {
		c.GraphDir = "graphs"
	}
	if c.Render.Burst == 0 {
		c.Render.Burst = 4
	}
	if c.Render.CacheSize == 0 {
		c.Render.CacheSize = 256
	}
}

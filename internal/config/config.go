// Package config loads the command-line tool's YAML configuration.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"bptree"
)

type Config struct {
	Tree   TreeConfig   `yaml:"tree"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

type TreeConfig struct {
	LeafCapacity     int `yaml:"leaf_capacity"`     // Nominal keys per leaf
	InternalCapacity int `yaml:"internal_capacity"` // Nominal separators per internal node
}

type CacheConfig struct {
	Size uint32 `yaml:"size"` // Lookup cache entries, 0 disables
}

type LogConfig struct {
	Backend string `yaml:"backend"` // zap or logrus
	Level   string `yaml:"level"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // TCP listen address for the line protocol
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Tree: TreeConfig{
			LeafCapacity:     bptree.DefaultLeafCapacity,
			InternalCapacity: bptree.DefaultInternalCapacity,
		},
		Cache: CacheConfig{
			Size: 4096,
		},
		Log: LogConfig{
			Backend: "zap",
			Level:   "info",
		},
		Server: ServerConfig{
			Addr: "localhost:7070",
		},
	}
}

// Load reads configPath over the defaults. An empty path searches
// configs/bptree.yaml and bptree.yaml and falls back to the defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		for _, p := range []string{"configs/bptree.yaml", "bptree.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// TreeOptions converts the tree section to bptree options
func (c *Config) TreeOptions() []bptree.Option {
	return []bptree.Option{
		bptree.WithLeafCapacity(c.Tree.LeafCapacity),
		bptree.WithInternalCapacity(c.Tree.InternalCapacity),
	}
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Tree.LeafCapacity <= 0 {
		cfg.Tree.LeafCapacity = def.Tree.LeafCapacity
	}
	if cfg.Tree.InternalCapacity <= 0 {
		cfg.Tree.InternalCapacity = def.Tree.InternalCapacity
	}
	if cfg.Log.Backend == "" {
		cfg.Log.Backend = def.Log.Backend
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shinyvision/sniffctx/internal/sniff"
	"github.com/tliron/commonlog"
)

// FileName is the project configuration file looked up in the root.
const FileName = ".sniffctx.toml"

type CacheConfig struct {
	Enabled bool `toml:"enabled"`
}

type SniffsConfig struct {
	Disabled []string `toml:"disabled"`
}

type FilesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type Config struct {
	Root      string       `toml:"-"`
	Cache     CacheConfig  `toml:"cache"`
	Sniffs    SniffsConfig `toml:"sniffs"`
	Files     FilesConfig  `toml:"files"`
	StoreSize int          `toml:"store_size"`
	Workers   int          `toml:"workers"`
}

func NewConfig() *Config {
	return &Config{
		Root:      ".",
		Cache:     CacheConfig{Enabled: true},
		Files:     FilesConfig{Include: []string{"**/*.php"}, Exclude: []string{"vendor/**"}},
		StoreSize: 100,
		Workers:   runtime.NumCPU(),
	}
}

// Load reads FileName from root on top of the defaults. A missing file is not
// an error.
func Load(root string) (*Config, error) {
	logger := commonlog.GetLoggerf("sniffctx.config")
	c := NewConfig()
	c.Root = root

	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	c.Root = root
	logger.Infof("loaded %s", path)
	return c, c.Validate()
}

// Validate rejects malformed glob patterns and unknown sniff codes.
func (c *Config) Validate() error {
	var errs []error
	for _, pattern := range c.Files.Include {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("invalid include pattern: %s", pattern))
		}
	}
	for _, pattern := range c.Files.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("invalid exclude pattern: %s", pattern))
		}
	}
	for _, code := range c.Sniffs.Disabled {
		if !sniff.Known(code) {
			errs = append(errs, fmt.Errorf("unknown sniff: %s", code))
		}
	}
	if c.StoreSize < 0 {
		errs = append(errs, fmt.Errorf("store_size must not be negative: %d", c.StoreSize))
	}
	return errors.Join(errs...)
}

// Excluded reports whether the slash-separated path rel, relative to Root,
// matches an exclude pattern.
func (c *Config) Excluded(rel string) bool {
	for _, pattern := range c.Files.Exclude {
		if m, _ := doublestar.Match(pattern, rel); m {
			return true
		}
	}
	return false
}

// Included reports whether rel is selected for checking. An empty include
// list selects everything that is not excluded.
func (c *Config) Included(rel string) bool {
	if c.Excluded(rel) {
		return false
	}
	if len(c.Files.Include) == 0 {
		return true
	}
	for _, pattern := range c.Files.Include {
		if m, _ := doublestar.Match(pattern, rel); m {
			return true
		}
	}
	return false
}

// Rel returns path relative to Root in slash form, or path itself when it
// lies outside Root.
func (c *Config) Rel(path string) string {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return filepath.ToSlash(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

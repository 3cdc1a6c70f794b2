// Package config reads the optional vlower.toml project file.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

const FileName = "vlower.toml"

type Config struct {
	Lower LowerConfig `toml:"lower"`
	Log   LogConfig   `toml:"log"`
}

type LowerConfig struct {
	// Files are program files, relative to the directory of the config file.
	Files     []string `toml:"files"`
	VstdCrate string   `toml:"vstd-crate"`
	Format    string   `toml:"format"`
	Order     string   `toml:"order"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() *Config {
	return &Config{
		Lower: LowerConfig{VstdCrate: "vstd", Format: "text", Order: "fifo"},
		Log:   LogConfig{Level: "warning"},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "ReadFile")
	}
	file := &Config{}
	if err := toml.Unmarshal(buff, file); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	conf := Default()
	conf.merge(file)
	dir := filepath.Dir(path)
	for i, f := range conf.Lower.Files {
		if !filepath.IsAbs(f) {
			conf.Lower.Files[i] = filepath.Join(dir, f)
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return conf, nil
}

// merge copies every value set in other.
func (c *Config) merge(other *Config) {
	if other.Lower.Files != nil {
		c.Lower.Files = other.Lower.Files
	}
	for dst, src := range map[*string]string{
		&c.Lower.VstdCrate: other.Lower.VstdCrate,
		&c.Lower.Format:    other.Lower.Format,
		&c.Lower.Order:     other.Lower.Order,
		&c.Log.Level:       other.Log.Level,
	} {
		if src != "" {
			*dst = src
		}
	}
}

func (c *Config) Validate() error {
	switch c.Lower.Format {
	case "text", "yaml":
	default:
		return errors.Errorf("unknown format %q", c.Lower.Format)
	}
	switch c.Lower.Order {
	case "fifo", "lifo":
	default:
		return errors.Errorf("unknown order %q", c.Lower.Order)
	}
	if c.Lower.VstdCrate == "" {
		return errors.New("vstd-crate must not be empty")
	}
	return nil
}

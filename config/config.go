/*
Package config loads the concrete configuration from a YAML file and
CONCRETE_* environment variables.
*/
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kkyr/fig"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is prepended to every environment variable
	EnvPrefix = "CONCRETE"
	// File is the configuration file name searched for
	File = "concrete.yaml"
)

var errInvalid = errors.New("config: invalid configuration")

// Config is the effective configuration
type Config struct {
	Width     int    `fig:"width" yaml:"width" default:"114"`
	Height    int    `fig:"height" yaml:"height" default:"64"`
	FPS       int    `fig:"fps" yaml:"fps" default:"20"`
	DB        string `fig:"db" yaml:"db" default:"concrete.db"`
	Processed string `fig:"processed" yaml:"processed" default:"processed"`
	Scale     string `fig:"scale" yaml:"scale" default:"nearest"`
	Flip      bool   `fig:"flip" yaml:"flip"`
}

// Dirs returns the directories searched for the configuration file. A
// non-empty path is searched exclusively.
func Dirs(path string) []string {
	if path != "" {
		return []string{path}
	}
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".concrete"))
	}
	return dirs
}

// Load reads the configuration. A missing file is not an error, the defaults
// and environment are used instead.
func Load(path string) (Config, error) {
	var cfg Config
	err := fig.Load(&cfg, fig.File(File), fig.Dirs(Dirs(path)...), fig.UseEnv(EnvPrefix))
	if errors.Is(err, fig.ErrFileNotFound) {
		cfg = Config{}
		err = fig.Load(&cfg, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
	}
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration is usable
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", errInvalid, c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps %d", errInvalid, c.FPS)
	}
	return nil
}

// Dump writes cfg to w as YAML
func Dump(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

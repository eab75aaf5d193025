// Package config loads the hdlcbridge YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for one hdlcbridge link.
type Config struct {
	Listen string `yaml:"listen"`
	Dial   string `yaml:"dial"`

	ReadBufferSize  int   `yaml:"readBuffer"`
	WriteBufferSize int   `yaml:"writeBuffer"`
	WriteTimeoutMS  int   `yaml:"writeTimeoutMs"`
	WriteRetries    int   `yaml:"writeRetries"`
	DefaultAddress  uint8 `yaml:"defaultAddress"`
}

// WriteTimeout returns the configured per-attempt ack wait as a
// time.Duration. Kept as a plain millisecond integer in the YAML file
// itself since yaml.v3 has no built-in text-scalar decoding for
// time.Duration's "100ms"-style strings.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

// DefaultPath returns ~/.hdlcbridge/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".hdlcbridge", "config.yaml")
	}
	return filepath.Join(home, ".hdlcbridge", "config.yaml")
}

// Load reads path, returning a Config seeded with the library's own
// defaults for anything the file doesn't set. A missing file is not an
// error: the defaults alone are enough to run a bridge.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ReadBufferSize:  256,
		WriteBufferSize: 520,
		WriteTimeoutMS:  100,
		WriteRetries:    1,
		DefaultAddress:  0xff,
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		fmt.Fprintf(os.Stderr,
			"warning: config file %s has permissions %04o — expected 0600\n",
			path, perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Package yaml loads selfeval configuration files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/selfeval"
	yamlv3 "gopkg.in/yaml.v3"
)

// Completion providers.
const (
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderBellman = "bellman"
)

// Providers lists the supported completion providers.
var Providers = []string{ProviderOpenAI, ProviderGemini, ProviderBellman}

// FileConfig is the on-disk configuration.
type FileConfig struct {
	selfeval.Config `yaml:",inline"`

	Provider string `yaml:"provider"`
	CacheDir string `yaml:"cache_dir"`
	DB       string `yaml:"db"`
}

// LoadConfig reads, parses, normalizes and validates a config file.
func LoadConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// ParseConfig decodes, normalizes and validates config data. Unknown keys
// are rejected.
func ParseConfig(data []byte) (FileConfig, error) {
	var cfg FileConfig
	dec := yamlv3.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, fmt.Errorf("parse config: %w", err)
	}
	Normalize(&cfg)
	if err := Validate(cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Normalize trims string fields and defaults the provider.
func Normalize(cfg *FileConfig) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.CacheDir = strings.TrimSpace(cfg.CacheDir)
	cfg.DB = strings.TrimSpace(cfg.DB)
}

// Validate reports configuration errors.
func Validate(cfg FileConfig) error {
	for _, p := range Providers {
		if cfg.Provider == p {
			return nil
		}
	}
	return fmt.Errorf("invalid provider %q: must be one of %s", cfg.Provider, strings.Join(Providers, ", "))
}

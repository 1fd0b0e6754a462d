package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the configuration file name.
	DefaultConfigFile = ".wordwatch"

	// EnvPrefix prefixes environment overrides, e.g. WORDWATCH_POLL_INTERVAL.
	EnvPrefix = "WORDWATCH_"

	// keyDelim separates nested keys. Site keys are host names, so the
	// delimiter must not be a dot.
	keyDelim = "/"
)

// LoadConfigFile reads path and overlays WORDWATCH_* environment
// variables. It returns ErrConfigNotFound when path does not exist.
func LoadConfigFile(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	k := koanf.New(keyDelim)
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return unmarshal(k)
}

// LoadEnv reads only the WORDWATCH_* environment variables. It is used
// when no configuration file exists.
func LoadEnv() (*File, error) {
	return unmarshal(koanf.New(keyDelim))
}

func unmarshal(k *koanf.Koanf) (*File, error) {
	if err := k.Load(env.Provider(EnvPrefix, keyDelim, func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	var f File
	if err := k.Unmarshal("", &f); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if f.Sites == nil {
		f.Sites = make(map[string]SiteConfig)
	}
	return &f, nil
}

// Save writes f as YAML to path.
func (f *File) Save(path string) error {
	data, err := yamlv3.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Apply copies the values set in f into c. Unset values keep c's current
// value, so CLI flags can be applied afterwards.
func (c *Config) Apply(f *File) error {
	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"debounce", f.Debounce, &c.Debounce},
		{"interval", f.Interval, &c.Interval},
		{"cooldown", f.Cooldown, &c.Cooldown},
		{"poll_interval", f.PollInterval, &c.PollInterval},
		{"timeout", f.Timeout, &c.Timeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.value, err)
		}
		*d.dst = parsed
	}

	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.MaxBodySize != 0 {
		c.MaxBodySize = f.MaxBodySize
	}
	if f.Proxy != "" {
		c.Proxy = f.Proxy
	}
	if f.Audio != "" {
		c.Audio = AudioMode(strings.ToLower(f.Audio))
	}
	if f.AudioCommand != "" {
		c.AudioCommandName = f.AudioCommand
	}
	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
	if f.Output != "" {
		c.Output = f.Output
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	c.Sites = f
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. configPath, when given
// 2. .wordwatch in the current directory
// 3. .wordwatch in the user's home directory
// 4. config.yaml in the XDG config directory
//
// It returns the path of the file found, or "" when there is none.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

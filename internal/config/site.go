package config

import "strings"

// SiteConfig holds request settings for one site.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty" koanf:"cookie"`

	// Headers are extra HTTP headers sent to the site.
	Headers map[string]string `yaml:"headers,omitempty" koanf:"headers"`
}

// File is the structure of the .wordwatch configuration file. Durations
// are Go duration strings such as "500ms" or "5s".
type File struct {
	Debounce     string `yaml:"debounce,omitempty" koanf:"debounce"`
	Interval     string `yaml:"interval,omitempty" koanf:"interval"`
	Cooldown     string `yaml:"cooldown,omitempty" koanf:"cooldown"`
	PollInterval string `yaml:"poll_interval,omitempty" koanf:"poll_interval"`
	Timeout      string `yaml:"timeout,omitempty" koanf:"timeout"`
	UserAgent    string `yaml:"user_agent,omitempty" koanf:"user_agent"`
	MaxBodySize  int64  `yaml:"max_body_size,omitempty" koanf:"max_body_size"`
	Proxy        string `yaml:"proxy,omitempty" koanf:"proxy"`
	Audio        string `yaml:"audio,omitempty" koanf:"audio"`
	AudioCommand string `yaml:"audio_command,omitempty" koanf:"audio_command"`
	DataDir      string `yaml:"data_dir,omitempty" koanf:"data_dir"`
	Output       string `yaml:"output,omitempty" koanf:"output"`
	Concurrency  int    `yaml:"concurrency,omitempty" koanf:"concurrency"`

	// Sites maps host names to their request settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty" koanf:"sites"`

	// Defaults applies to every site unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty" koanf:"defaults"`
}

// GetSiteConfig returns the settings for host, merged over the defaults.
// Host names compare case-insensitively.
func (f *File) GetSiteConfig(host string) SiteConfig {
	result := SiteConfig{Cookie: f.Defaults.Cookie}
	if len(f.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(f.Defaults.Headers))
		for k, v := range f.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	for name, site := range f.Sites {
		if !strings.EqualFold(name, host) {
			continue
		}
		if site.Cookie != "" {
			result.Cookie = site.Cookie
		}
		if len(site.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range site.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}

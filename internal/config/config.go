package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wordwatch"

	// DefaultDebounce is the quiet period after the last document mutation
	// before a scan runs.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultInterval is the fallback scan cadence. It runs whether or not
	// mutations were observed.
	DefaultInterval = 5 * time.Second

	// DefaultCooldown is the minimum time between two audio cues.
	DefaultCooldown = 5 * time.Second

	// DefaultPollInterval is how often HTTP targets are re-fetched.
	DefaultPollInterval = 10 * time.Second

	// DefaultTimeout bounds a single HTTP fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every HTTP request.
	DefaultUserAgent = "wordwatch/1.0 (+https://github.com/nao1215/wordwatch)"

	// DefaultMaxBodySize limits how much of a page is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultConcurrency is the number of targets watched at once.
	DefaultConcurrency = 8
)

// AudioMode selects how the notification cue is played.
type AudioMode string

const (
	// AudioAuto uses the first installed audio command, else the bell.
	AudioAuto AudioMode = "auto"
	// AudioBell writes the terminal bell character.
	AudioBell AudioMode = "bell"
	// AudioCommand uses AudioCommandName.
	AudioCommand AudioMode = "command"
	// AudioNone disables the cue.
	AudioNone AudioMode = "none"
)

// Config holds the runtime options of a wordwatch run. It is populated
// from defaults, the configuration file, environment variables and CLI
// flags, in that order, and passed down explicitly.
type Config struct {
	// Debounce is the quiet period after the last mutation batch.
	Debounce time.Duration

	// Interval is the fallback scan cadence.
	Interval time.Duration

	// Cooldown is the minimum time between audio cues of one monitor.
	Cooldown time.Duration

	// PollInterval is the re-fetch cadence of HTTP targets.
	PollInterval time.Duration

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum number of page bytes read.
	MaxBodySize int64

	// Proxy is an optional SOCKS5 proxy in "host:port" form.
	Proxy string

	// Audio selects the cue player.
	Audio AudioMode

	// AudioCommandName is the program used with AudioCommand. It receives
	// the WAV on standard input.
	AudioCommandName string

	// DataDir holds the settings database.
	// Defaults to the XDG data directory (~/.local/share/wordwatch on Linux).
	DataDir string

	// Output, when set, receives the marked HTML after every change.
	// With several targets a file name suffix is derived per target.
	Output string

	// Concurrency is the number of targets watched at once.
	Concurrency int

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches the log output to JSON.
	LogJSON bool

	// ConfigFilePath is an explicit configuration file. When empty the
	// file is searched for, see FindConfigFile.
	ConfigFilePath string

	// Sites holds per-site request settings from the configuration file.
	Sites *File

	// Targets are the URLs and files to watch.
	Targets []string
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Debounce:     DefaultDebounce,
		Interval:     DefaultInterval,
		Cooldown:     DefaultCooldown,
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		Audio:        AudioAuto,
		DataDir:      XDGDataDir(),
		Concurrency:  DefaultConcurrency,
	}
}

// XDGDataDir returns the XDG data directory for wordwatch.
// On Linux: ~/.local/share/wordwatch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wordwatch.
// On Linux: ~/.config/wordwatch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Debounce <= 0 {
		return ErrInvalidDebounce
	}
	if c.Interval <= 0 {
		return ErrInvalidInterval
	}
	if c.Cooldown < 0 {
		return ErrInvalidCooldown
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	switch c.Audio {
	case AudioAuto, AudioBell, AudioNone:
	case AudioCommand:
		if c.AudioCommandName == "" {
			return ErrMissingAudioCommand
		}
	default:
		return ErrInvalidAudioMode
	}
	return nil
}

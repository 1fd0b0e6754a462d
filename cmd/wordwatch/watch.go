package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/nao1215/wordwatch/internal/config"
	"github.com/nao1215/wordwatch/internal/monitor"
	"github.com/nao1215/wordwatch/internal/notify"
	"github.com/nao1215/wordwatch/internal/source"
	"github.com/nao1215/wordwatch/internal/store"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <url|file|glob>...",
		Short: "Watch pages and highlight keywords as they appear",
		Long: `Watch keeps each target page live and marks the configured keywords in it.

HTTP(S) targets are re-fetched every poll interval; local files (plain
paths, file:// URLs or ** glob patterns) are reloaded when they change.
Each page runs its own monitor: mutations are debounced, a fallback scan
runs every interval, and a cue is played at most once per cooldown when
new matches appear.

Scans only run while the page location contains the target site and the
word list is not empty (see the target and words commands).

Examples:
  # Watch a news page
  wordwatch watch https://example.com/news

  # Watch every HTML file below ./pages and write the marked page
  wordwatch watch 'pages/**/*.html' -o marked.html

  # Poll every 30 seconds through a SOCKS5 proxy, no sound
  wordwatch watch --poll-interval 30s --proxy 127.0.0.1:9050 --audio none https://example.com/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWatchCmd,
	}

	cmd.Flags().Duration("debounce", config.DefaultDebounce,
		"Quiet period after the last change before a scan")
	cmd.Flags().Duration("interval", config.DefaultInterval,
		"Fallback scan interval")
	cmd.Flags().Duration("cooldown", config.DefaultCooldown,
		"Minimum time between two audio cues")
	cmd.Flags().Duration("poll-interval", config.DefaultPollInterval,
		"How often HTTP targets are re-fetched")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port) for HTTP targets")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for HTTP requests")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of page bytes read")
	cmd.Flags().String("audio", string(config.AudioAuto),
		"Audio cue: auto, bell, command or none")
	cmd.Flags().String("audio-command", "",
		"Program receiving the WAV cue on stdin (with --audio command)")
	cmd.Flags().StringP("output", "o", "",
		"Write the marked HTML to this file after every change")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of targets watched at once")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildWatchConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, stopping monitors")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runWatch(ctx, cfg, logger)
}

// flagOverride copies a flag value into the config when the user set it.
type flagOverride struct {
	name  string
	apply func() error
}

// buildWatchConfig layers the watch flags over the shared configuration.
func buildWatchConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	overrides := []flagOverride{
		{"debounce", func() (err error) { cfg.Debounce, err = flags.GetDuration("debounce"); return }},
		{"interval", func() (err error) { cfg.Interval, err = flags.GetDuration("interval"); return }},
		{"cooldown", func() (err error) { cfg.Cooldown, err = flags.GetDuration("cooldown"); return }},
		{"poll-interval", func() (err error) { cfg.PollInterval, err = flags.GetDuration("poll-interval"); return }},
		{"timeout", func() (err error) { cfg.Timeout, err = flags.GetDuration("timeout"); return }},
		{"proxy", func() (err error) { cfg.Proxy, err = flags.GetString("proxy"); return }},
		{"user-agent", func() (err error) { cfg.UserAgent, err = flags.GetString("user-agent"); return }},
		{"max-body-size", func() (err error) { cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); return }},
		{"audio", func() error {
			mode, err := flags.GetString("audio")
			cfg.Audio = config.AudioMode(strings.ToLower(mode))
			return err
		}},
		{"audio-command", func() (err error) { cfg.AudioCommandName, err = flags.GetString("audio-command"); return }},
		{"output", func() (err error) { cfg.Output, err = flags.GetString("output"); return }},
		{"concurrency", func() (err error) { cfg.Concurrency, err = flags.GetInt("concurrency"); return }},
	}
	for _, o := range overrides {
		if !flags.Changed(o.name) {
			continue
		}
		if err := o.apply(); err != nil {
			return nil, err
		}
	}

	cfg.Targets, err = expandTargets(args)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandTargets keeps URLs as they are and expands glob patterns of local
// files. A pattern matching nothing is an error.
func expandTargets(args []string) ([]string, error) {
	targets := make([]string, 0, len(args))
	for _, arg := range args {
		if isRemote(arg) || !strings.ContainsAny(arg, "*?[{") {
			targets = append(targets, arg)
			continue
		}

		pattern := strings.TrimPrefix(arg, "file://")
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		targets = append(targets, matches...)
	}
	return targets, nil
}

func isRemote(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// runWatch starts one monitor per target and blocks until ctx is done or
// every monitor stopped.
func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if repaired, err := st.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to initialise settings: %w", err)
	} else if len(repaired) > 0 {
		logger.Debug("settings initialised with defaults", "keys", repaired)
	}

	settings, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if settings.TargetURL == "" || len(settings.Words) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: scanning is inactive until a target site and at least one word are set (see 'wordwatch target' and 'wordwatch words add').")
	}

	player := newPlayer(cfg, logger)

	runners := make([]monitor.Runner, 0, len(cfg.Targets))
	for i, target := range cfg.Targets {
		m, err := newMonitor(cfg, st, player, target, i, logger)
		if err != nil {
			return err
		}
		runners = append(runners, m)
		fmt.Fprintf(os.Stderr, "Watching %s\n", target)
	}

	group := monitor.NewGroup(
		monitor.WithConcurrency(cfg.Concurrency),
		monitor.WithGroupLogger(logger),
	)
	errs := group.Run(ctx, runners)
	return errors.Join(errs...)
}

// newMonitor builds the monitor of one target.
func newMonitor(cfg *config.Config, st *store.Store, player notify.Player, target string, index int, logger *slog.Logger) (*monitor.Monitor, error) {
	httpOpts, err := httpOptions(cfg, target, logger)
	if err != nil {
		return nil, err
	}
	fileOpts := []source.FileOption{
		source.WithFileMaxBodySize(cfg.MaxBodySize),
		source.WithFileLogger(logger),
	}

	src, err := source.Open(target, httpOpts, fileOpts)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", target, err)
	}

	opts := []monitor.Option{
		monitor.WithTimings(cfg.Debounce, cfg.Interval),
		monitor.WithEmitter(notify.NewEmitter(
			notify.WithCooldown(cfg.Cooldown),
			notify.WithPlayer(player),
			notify.WithLogger(logger),
		)),
		monitor.WithLogger(logger),
	}
	if cfg.Output != "" {
		opts = append(opts, monitor.WithSink(monitor.NewFileSink(outputPath(cfg.Output, index, len(cfg.Targets)))))
	}

	return monitor.New(src, st, opts...), nil
}

// httpOptions returns the fetch options of target, applying the site
// settings of its host. Non-HTTP targets get none.
func httpOptions(cfg *config.Config, target string, logger *slog.Logger) ([]source.HTTPOption, error) {
	if !isRemote(target) {
		return nil, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", target, err)
	}

	var site config.SiteConfig
	if cfg.Sites != nil {
		site = cfg.Sites.GetSiteConfig(u.Hostname())
	}

	client, err := source.NewHTTPClient(source.ClientConfig{
		Timeout: cfg.Timeout,
		Proxy:   cfg.Proxy,
		Cookie:  site.Cookie,
		Headers: site.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return []source.HTTPOption{
		source.WithHTTPClient(client),
		source.WithPollInterval(cfg.PollInterval),
		source.WithUserAgent(cfg.UserAgent),
		source.WithMaxBodySize(cfg.MaxBodySize),
		source.WithHTTPLogger(logger),
	}, nil
}

// outputPath derives the output file of the index-th of n targets.
// With one target the path is used as given.
func outputPath(base string, index, n int) string {
	if n <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), index+1, ext)
}

// newPlayer returns the cue player selected by cfg.
func newPlayer(cfg *config.Config, logger *slog.Logger) notify.Player {
	switch cfg.Audio {
	case config.AudioNone:
		return notify.NopPlayer{}
	case config.AudioBell:
		return notify.NewBellPlayer(os.Stderr)
	case config.AudioCommand:
		fields := strings.Fields(cfg.AudioCommandName)
		if len(fields) == 0 {
			return notify.NewBellPlayer(os.Stderr)
		}
		return notify.NewCommandPlayer(fields[0], fields[1:], false, logger)
	default:
		p, err := notify.DetectPlayer(logger)
		if err != nil {
			logger.Debug("no audio command found, using terminal bell", "error", err)
			return notify.NewBellPlayer(os.Stderr)
		}
		return p
	}
}

package notify

import (
	"context"
	"log/slog"
	"time"
)

// DefaultCooldown is the minimum time between two cues.
const DefaultCooldown = 5 * time.Second

// Emitter plays the notification tone, rate-limited by a cooldown.
// It is not safe for concurrent use; a monitor calls it only from its
// event loop.
type Emitter struct {
	cooldown time.Duration
	now      func() time.Time
	player   Player
	tone     Tone
	logger   *slog.Logger

	lastNotificationAt time.Time
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithCooldown sets the cooldown window. Zero disables rate limiting.
func WithCooldown(d time.Duration) Option {
	return func(e *Emitter) {
		if d >= 0 {
			e.cooldown = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Emitter) {
		e.now = now
	}
}

// WithPlayer sets how the tone is played.
func WithPlayer(p Player) Option {
	return func(e *Emitter) {
		e.player = p
	}
}

// WithTone overrides the tone.
func WithTone(t Tone) Option {
	return func(e *Emitter) {
		e.tone = t
	}
}

// WithLogger sets the logger used for audio warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// NewEmitter creates an Emitter. Without WithPlayer it plays nothing.
func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{
		cooldown: DefaultCooldown,
		now:      time.Now,
		player:   NopPlayer{},
		tone:     DefaultTone(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Notify plays the tone unless the last cue was emitted less than the
// cooldown ago. It reports whether a cue was emitted. The cooldown is
// stamped even when the player fails.
func (e *Emitter) Notify(ctx context.Context) bool {
	now := e.now()
	if !e.lastNotificationAt.IsZero() && now.Sub(e.lastNotificationAt) < e.cooldown {
		return false
	}
	e.lastNotificationAt = now

	if err := e.player.Play(ctx, e.tone); err != nil {
		e.logger.Warn("audio notification failed", "error", err)
	}
	return true
}

// LastNotification returns when the last cue was emitted, or the zero time.
func (e *Emitter) LastNotification() time.Time {
	return e.lastNotificationAt
}

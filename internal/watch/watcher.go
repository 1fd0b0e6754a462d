package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/wordwatch/internal/dom"
)

const (
	// DefaultDebounce is the quiet period after the last mutation batch.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultInterval is the fallback scan cadence.
	DefaultInterval = 5 * time.Second
)

// Trigger identifies why a scan ran.
type Trigger int

const (
	// TriggerInitial is the scan performed when the loop starts.
	TriggerInitial Trigger = iota
	// TriggerMutation is a debounced scan after document mutations.
	TriggerMutation
	// TriggerInterval is the fallback scan.
	TriggerInterval
)

// String returns the trigger name used in logs.
func (t Trigger) String() string {
	switch t {
	case TriggerInitial:
		return "initial"
	case TriggerMutation:
		return "mutation"
	case TriggerInterval:
		return "interval"
	default:
		return "unknown"
	}
}

// ScanFunc performs one scan. It is always called on the loop goroutine.
type ScanFunc func(ctx context.Context, trigger Trigger)

// MutationSource delivers batched mutation records. *dom.Observer
// implements it.
type MutationSource interface {
	C() <-chan struct{}
	TakeRecords() []dom.MutationRecord
}

// Watcher is the event loop of one monitored document.
type Watcher struct {
	source      MutationSource
	scan        ScanFunc
	debounce    time.Duration
	interval    time.Duration
	initialScan bool
	logger      *slog.Logger

	tasks    chan func()
	requests chan struct{}
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInterval sets the fallback scan cadence. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithInitialScan controls whether Run scans once before arming the
// fallback ticker. Enabled by default.
func WithInitialScan(enabled bool) Option {
	return func(w *Watcher) {
		w.initialScan = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a Watcher that reads mutations from source and calls scan.
func New(source MutationSource, scan ScanFunc, opts ...Option) *Watcher {
	w := &Watcher{
		source:      source,
		scan:        scan,
		debounce:    DefaultDebounce,
		interval:    DefaultInterval,
		initialScan: true,
		tasks:       make(chan func()),
		requests:    make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Run executes the event loop until ctx is cancelled and returns ctx.Err().
// Run must be called at most once.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.done)

	if w.initialScan {
		w.scan(ctx, TriggerInitial)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		pending   *time.Timer
		debounceC <-chan time.Time
	)
	reschedule := func() {
		if pending != nil {
			pending.Stop()
		}
		pending = time.NewTimer(w.debounce)
		debounceC = pending.C
	}
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-w.source.C():
			records := w.source.TakeRecords()
			if len(records) == 0 {
				continue
			}
			w.logger.Debug("mutations observed", "records", len(records))
			reschedule()

		case <-w.requests:
			reschedule()

		case <-debounceC:
			pending = nil
			debounceC = nil
			w.scan(ctx, TriggerMutation)

		case <-ticker.C:
			w.scan(ctx, TriggerInterval)

		case fn := <-w.tasks:
			fn()
		}
	}
}

// Post runs fn on the loop goroutine and returns once fn has been handed
// to the loop. Mutations made by fn are observed like any other.
func (w *Watcher) Post(ctx context.Context, fn func()) error {
	select {
	case w.tasks <- fn:
		return nil
	case <-w.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule requests a debounced scan, as if a mutation had been observed.
// It never blocks.
func (w *Watcher) Schedule() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// Done is closed when Run returns.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

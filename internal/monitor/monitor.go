package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/nao1215/wordwatch/internal/dom"
	"github.com/nao1215/wordwatch/internal/highlight"
	"github.com/nao1215/wordwatch/internal/notify"
	"github.com/nao1215/wordwatch/internal/pattern"
	"github.com/nao1215/wordwatch/internal/source"
	"github.com/nao1215/wordwatch/internal/store"
	"github.com/nao1215/wordwatch/internal/watch"
)

// Settings is the configuration collaborator of a Monitor.
// *store.Store implements it.
type Settings interface {
	Load(ctx context.Context) (store.Settings, error)
	RecordMatches(ctx context.Context, runID, location string, words map[string]int) error
}

// Monitor watches one document.
type Monitor struct {
	source   source.Source
	settings Settings
	scanner  *highlight.Scanner
	emitter  *notify.Emitter
	sink     Sink
	logger   *slog.Logger
	runID    string

	watchOpts []watch.Option

	// Fields below are owned by the event loop goroutine.
	doc       *dom.Document
	lastWords []string
	dirty     bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithScanner sets the scanner.
func WithScanner(s *highlight.Scanner) Option {
	return func(m *Monitor) {
		m.scanner = s
	}
}

// WithEmitter sets the notification emitter.
func WithEmitter(e *notify.Emitter) Option {
	return func(m *Monitor) {
		m.emitter = e
	}
}

// WithSink sets where the marked document is written after it changes.
func WithSink(s Sink) Option {
	return func(m *Monitor) {
		m.sink = s
	}
}

// WithTimings sets the debounce quiet period and the fallback interval.
// Zero values keep the defaults.
func WithTimings(debounce, interval time.Duration) Option {
	return func(m *Monitor) {
		m.watchOpts = append(m.watchOpts, watch.WithDebounce(debounce), watch.WithInterval(interval))
	}
}

// WithRunID sets the identifier stored with match events.
func WithRunID(id string) Option {
	return func(m *Monitor) {
		m.runID = id
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// New creates a Monitor for src, reading its settings from settings.
func New(src source.Source, settings Settings, opts ...Option) *Monitor {
	m := &Monitor{
		source:   src,
		settings: settings,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("target", src.Location())
	if m.scanner == nil {
		m.scanner = highlight.NewScanner(highlight.WithLogger(m.logger))
	}
	if m.emitter == nil {
		m.emitter = notify.NewEmitter(notify.WithLogger(m.logger))
	}
	if m.runID == "" {
		m.runID = uuid.NewString()
	}
	return m
}

// RunID returns the identifier stored with this monitor's match events.
func (m *Monitor) RunID() string {
	return m.runID
}

// Document returns the live document, or nil before the first snapshot
// arrived. It must only be used from the event loop or after Run returned.
func (m *Monitor) Document() *dom.Document {
	return m.doc
}

// Run waits for the first snapshot, injects the highlight style, scans
// once and then keeps the document live and scanned until ctx is
// cancelled. Cancellation is a clean shutdown and returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan *source.Snapshot, 1)
	srcErr := make(chan error, 1)
	srcDone := make(chan struct{})
	go func() {
		defer close(srcDone)
		srcErr <- m.source.Run(ctx, func(s *source.Snapshot) { offer(updates, s) })
	}()
	// The source must have stopped before Run returns.
	defer func() {
		cancel()
		<-srcDone
	}()

	doc, err := m.waitReady(ctx, updates, srcErr)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	m.doc = doc
	m.dirty = true
	m.logger.Info("document ready", "location", doc.Location())

	m.injectStyle(ctx)

	observer := doc.Observe(doc.Body())
	defer observer.Disconnect()

	opts := append([]watch.Option{watch.WithLogger(m.logger)}, m.watchOpts...)
	watcher := watch.New(observer, m.scan, opts...)

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		m.forward(ctx, watcher, updates, srcErr)
	}()

	err = watcher.Run(ctx)
	cancel()
	<-forwarded

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// waitReady blocks until a snapshot with a body arrives.
func (m *Monitor) waitReady(ctx context.Context, updates <-chan *source.Snapshot, srcErr <-chan error) (*dom.Document, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-srcErr:
			if err == nil {
				err = errors.New("source stopped before the document was ready")
			}
			return nil, fmt.Errorf("failed to load %s: %w", m.source.Location(), err)
		case snap := <-updates:
			doc, err := dom.Parse(bytes.NewReader(snap.Body), snap.Location)
			if err != nil {
				m.logger.Warn("failed to parse document", "error", err)
				continue
			}
			if doc.Body() == nil {
				m.logger.Debug("document has no body yet")
				continue
			}
			return doc, nil
		}
	}
}

// forward applies source updates on the loop until ctx is done. A source
// that stops leaves the current document in place.
func (m *Monitor) forward(ctx context.Context, w *watch.Watcher, updates <-chan *source.Snapshot, srcErr <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-srcErr:
			if err != nil && ctx.Err() == nil {
				m.logger.Warn("page source stopped", "error", err)
			}
			srcErr = nil
		case snap := <-updates:
			if err := w.Post(ctx, func() { m.apply(ctx, snap) }); err != nil {
				return
			}
		}
	}
}

// apply swaps the document content for snap. The head and body children
// are replaced in place so observers stay attached.
func (m *Monitor) apply(ctx context.Context, snap *source.Snapshot) {
	next, err := dom.Parse(bytes.NewReader(snap.Body), snap.Location)
	if err != nil {
		m.logger.Warn("failed to parse document", "error", err)
		return
	}
	if next.Body() == nil {
		return
	}

	if head, nextHead := m.doc.Head(), next.Head(); head != nil && nextHead != nil {
		if err := m.doc.ReplaceChildren(head, detachChildren(nextHead)); err != nil {
			m.logger.Debug("failed to replace head", "error", err)
		}
	}
	if err := m.doc.ReplaceChildren(m.doc.Body(), detachChildren(next.Body())); err != nil {
		m.logger.Warn("failed to replace body", "error", err)
		return
	}
	m.doc.SetLocation(snap.Location)
	m.dirty = true
	m.logger.Debug("document refreshed", "location", snap.Location)

	m.injectStyle(ctx)
}

func (m *Monitor) injectStyle(ctx context.Context) {
	color := store.DefaultHighlightColor
	if s, err := m.settings.Load(ctx); err != nil {
		m.logger.Debug("failed to read highlight color", "error", err)
	} else if s.HighlightColor != "" {
		color = s.HighlightColor
	}
	if _, err := m.scanner.InjectStyle(m.doc, color); err != nil {
		m.logger.Warn("failed to inject highlight style", "error", err)
	}
}

func (m *Monitor) scan(ctx context.Context, trigger watch.Trigger) {
	result, active := m.RunScan(ctx)
	if active {
		m.logger.Debug("scan complete",
			"trigger", trigger.String(),
			"markers", result.Markers,
			"nodes", result.Nodes,
		)
	}
}

// RunScan performs one gated scan of the document body. It reports false
// when a gate kept the scan from running: no document, no matching target
// site, or an empty word list. It must run on the event loop.
func (m *Monitor) RunScan(ctx context.Context) (highlight.Result, bool) {
	if m.doc == nil {
		return highlight.Result{}, false
	}

	settings, err := m.settings.Load(ctx)
	if err != nil {
		m.logger.Debug("failed to read settings", "error", err)
		return highlight.Result{}, false
	}

	location := m.doc.Location()
	if settings.TargetURL == "" || !strings.Contains(location, settings.TargetURL) {
		return highlight.Result{}, false
	}

	matcher, err := pattern.Build(settings.Words)
	if err != nil {
		return highlight.Result{}, false
	}

	body := m.doc.Body()
	stripped := 0
	var marked map[string]int
	if m.lastWords != nil && !slices.Equal(m.lastWords, matcher.Words()) {
		marked = m.scanner.MarkedWords(body)
		stripped = m.scanner.Strip(m.doc, body)
		m.logger.Debug("word list changed, markers removed", "markers", stripped)
	}
	m.lastWords = matcher.Words()

	result := m.scanner.Scan(m.doc, body, matcher)

	// Text that was marked before the strip is not a new discovery.
	discovered := unseen(result.Words, marked)
	if len(discovered) > 0 {
		m.emitter.Notify(ctx)
		if err := m.settings.RecordMatches(ctx, m.runID, location, discovered); err != nil {
			m.logger.Warn("failed to record matches", "error", err)
		}
		m.logger.Info("keywords found", "markers", result.Markers, "words", discovered)
	}

	if m.sink != nil && (m.dirty || result.Markers > 0 || stripped > 0) {
		if err := m.sink.Write(m.doc); err != nil {
			m.logger.Warn("failed to write document", "error", err)
		} else {
			m.dirty = false
		}
	}

	return result, true
}

// unseen returns the counts in found that exceed those in seen.
func unseen(found, seen map[string]int) map[string]int {
	out := make(map[string]int)
	for word, n := range found {
		if n > seen[word] {
			out[word] = n - seen[word]
		}
	}
	return out
}

// offer hands s to ch, replacing an unconsumed older snapshot.
func offer(ch chan *source.Snapshot, s *source.Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// detachChildren removes and returns the children of n.
func detachChildren(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		children = append(children, c)
		c = next
	}
	return children
}

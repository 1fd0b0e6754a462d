package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// DefaultPollInterval is how often an HTTPSource re-fetches its page.
	DefaultPollInterval = 10 * time.Second

	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

	// DefaultMaxBodySize caps how much of a response is read.
	DefaultMaxBodySize int64 = 10 * 1024 * 1024
)

// HTTPSource polls a page over HTTP.
type HTTPSource struct {
	// target is the URL to fetch.
	target string

	// client performs the requests. It may route through a SOCKS5 proxy.
	client *http.Client

	interval    time.Duration
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger

	detector changeDetector
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets the client used for fetching.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithPollInterval sets the re-fetch cadence. Non-positive values are ignored.
func WithPollInterval(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per fetch.
func WithMaxBodySize(size int64) HTTPOption {
	return func(s *HTTPSource) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		s.logger = logger
	}
}

// NewHTTPSource creates a source polling target.
func NewHTTPSource(target string, opts ...HTTPOption) (*HTTPSource, error) {
	s := &HTTPSource{
		target:      target,
		interval:    DefaultPollInterval,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		client, err := NewHTTPClient(ClientConfig{Timeout: DefaultTimeout})
		if err != nil {
			return nil, err
		}
		s.client = client
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Location returns the configured URL.
func (s *HTTPSource) Location() string {
	return s.target
}

// Run fetches the page immediately and then every poll interval. A failed
// fetch is logged and retried on the next tick; the last good snapshot
// stays in effect.
func (s *HTTPSource) Run(ctx context.Context, emit EmitFunc) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.poll(ctx, emit)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *HTTPSource) poll(ctx context.Context, emit EmitFunc) {
	snap, err := s.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("fetch failed", "url", s.target, "error", err)
		}
		return
	}
	if !s.detector.changed(snap) {
		s.logger.Debug("page unchanged", "url", snap.Location)
		return
	}
	s.logger.Debug("page changed", "url", snap.Location, "bytes", len(snap.Body))
	emit(snap)
}

// Fetch performs one GET of the target.
func (s *HTTPSource) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.target, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, err
	}

	location := s.target
	if resp.Request != nil && resp.Request.URL != nil {
		location = DocumentLocation(resp.Request.URL)
	}
	return NewSnapshot(location, body), nil
}

// DocumentLocation renders u the way a browser reports a page location:
// the host is lowercased and the path stays percent-encoded.
func DocumentLocation(u *url.URL) string {
	normalized := *u
	normalized.Scheme = strings.ToLower(u.Scheme)
	normalized.Host = strings.ToLower(u.Host)
	return normalized.String()
}

// ClientConfig configures NewHTTPClient.
type ClientConfig struct {
	// Timeout bounds each request.
	Timeout time.Duration

	// Proxy is an optional SOCKS5 proxy in "host:port" form.
	Proxy string

	// Cookie is a raw cookie string sent with every request.
	Cookie string

	// Headers are sent with every request.
	Headers map[string]string
}

// NewHTTPClient builds the client used by HTTPSource. With a proxy
// configured, every connection is dialed through SOCKS5.
func NewHTTPClient(cfg ClientConfig) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport

	if cfg.Proxy != "" {
		if !isValidProxyAddress(cfg.Proxy) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", cfg.Proxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = dialContext(dialer)
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	var rt http.RoundTripper = transport
	if cfg.Cookie != "" || len(cfg.Headers) > 0 {
		rt = &headerInjectingTransport{
			base:    transport,
			cookie:  cfg.Cookie,
			headers: cfg.Headers,
		}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   cfg.Timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// dialContext adapts a proxy.Dialer to http.Transport.DialContext,
// honouring cancellation for dialers without native context support.
func dialContext(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()
		select {
		case r := <-resultCh:
			return r.conn, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// isValidProxyAddress reports whether address is "host:port" with a port
// between 1 and 65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// headerInjectingTransport adds the configured cookie and headers to every
// request, redirects included.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}

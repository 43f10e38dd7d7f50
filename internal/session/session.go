// Package session provides the single HTTP client shared by every request of
// a mirror run.
//
// A Session enforces two policies on all requests: a fixed timeout covering
// the whole exchange (connect, headers and body), and failure on any non-2xx
// status. It is safe for sequential reuse across any number of requests; idle
// connections are pooled by the underlying transport.
package session

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// DefaultTimeout bounds every request, listing pages and file bodies alike.
	DefaultTimeout = 2 * time.Second

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "dirmirror"
)

// Session wraps an http.Client with status and lifecycle handling.
type Session struct {
	// client performs the requests. Its Timeout is the per-request budget.
	client *http.Client

	// transport is kept to release pooled connections on Close.
	transport http.RoundTripper

	// userAgent is set on every request.
	userAgent string

	// proxyAddress is the optional SOCKS5 proxy in "host:port" format.
	proxyAddress string

	// timeout is the per-request timeout.
	timeout time.Duration

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithProxy routes all connections through a SOCKS5 proxy at addr.
// An empty address means direct connections.
func WithProxy(addr string) Option {
	return func(s *Session) {
		s.proxyAddress = addr
	}
}

// WithTransport replaces the HTTP transport. The proxy option is ignored
// when a transport is supplied.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Session) {
		s.transport = rt
	}
}

// New creates a Session. The returned session must be closed.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.transport == nil {
		transport, err := newTransport(s.proxyAddress)
		if err != nil {
			return nil, err
		}
		s.transport = transport
	}

	s.client = &http.Client{
		Transport: s.transport,
		Timeout:   s.timeout,
	}
	return s, nil
}

// newTransport builds a pooled transport, dialing through SOCKS5 when
// proxyAddress is set.
func newTransport(proxyAddress string) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if proxyAddress == "" {
		return transport, nil
	}
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// isValidProxyAddress checks for "host:port" with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || strings.ContainsAny(host, "/ ") {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// Get issues a GET request for rawURL.
//
// A non-2xx response is closed and reported as *StatusError. On success the
// caller owns resp.Body and must close it; reading the body counts against
// the session timeout.
func (s *Session) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close() //nolint:errcheck // body is discarded
		return nil, &StatusError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}
	return resp, nil
}

// Timeout returns the per-request timeout.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// ProxyAddress returns the configured SOCKS5 proxy address, if any.
func (s *Session) ProxyAddress() string {
	return s.proxyAddress
}

// Close releases pooled connections. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.client.CloseIdleConnections()
	})
	return nil
}

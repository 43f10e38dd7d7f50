package session

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// TestNew tests session construction and defaults.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("uses default timeout", func(t *testing.T) {
		t.Parallel()
		s, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer s.Close()

		if s.Timeout() != 2*time.Second {
			t.Errorf("expected 2s timeout, got %v", s.Timeout())
		}
	})

	t.Run("ignores non-positive timeout", func(t *testing.T) {
		t.Parallel()
		s, err := New(WithTimeout(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer s.Close()

		if s.Timeout() != DefaultTimeout {
			t.Errorf("expected default timeout, got %v", s.Timeout())
		}
	})

	t.Run("accepts SOCKS5 proxy address", func(t *testing.T) {
		t.Parallel()
		s, err := New(WithProxy("127.0.0.1:9050"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer s.Close()

		if s.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("unexpected proxy address %q", s.ProxyAddress())
		}
	})

	t.Run("rejects malformed proxy address", func(t *testing.T) {
		t.Parallel()
		for _, addr := range []string{"localhost", ":9050", "host:0", "host:70000", "host:port"} {
			_, err := New(WithProxy(addr))
			if !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("%q: expected ErrInvalidProxyAddress, got %v", addr, err)
			}
		}
	})
}

// TestSessionGet tests the status and header policy.
func TestSessionGet(t *testing.T) {
	t.Parallel()

	t.Run("returns body on success", func(t *testing.T) {
		t.Parallel()

		gotUA := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA <- r.Header.Get("User-Agent")
			_, _ = io.WriteString(w, "hello")
		}))
		defer server.Close()

		s, err := New(WithUserAgent("dirmirror-test"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer s.Close()

		resp, err := s.Get(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if string(body) != "hello" {
			t.Errorf("expected 'hello', got %q", body)
		}
		if ua := <-gotUA; ua != "dirmirror-test" {
			t.Errorf("expected user agent 'dirmirror-test', got %q", ua)
		}
	})

	t.Run("non-2xx status is a StatusError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer server.Close()

		s, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer s.Close()

		_, err = s.Get(context.Background(), server.URL+"/secret")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403, got %d", statusErr.StatusCode)
		}
		if statusErr.URL != server.URL+"/secret" {
			t.Errorf("unexpected URL %q", statusErr.URL)
		}
	})

	t.Run("stalled server fails within the timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		s, err := New(WithTimeout(200 * time.Millisecond))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer s.Close()

		start := time.Now()
		_, err = s.Get(context.Background(), server.URL)
		if err == nil {
			t.Fatal("expected timeout error")
		}
		if !IsTimeout(err) {
			t.Errorf("expected timeout error, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("request took %v, expected to abort near 200ms", elapsed)
		}
	})

	t.Run("reuses pooled connections", func(t *testing.T) {
		t.Parallel()

		var conns atomic.Int32
		server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}))
		server.Config.ConnState = func(_ net.Conn, state http.ConnState) {
			if state == http.StateNew {
				conns.Add(1)
			}
		}
		server.Start()
		defer server.Close()

		s, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer s.Close()

		for range 20 {
			resp, err := s.Get(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		if n := conns.Load(); n != 1 {
			t.Errorf("expected 1 connection for sequential requests, got %d", n)
		}
	})
}

// TestSessionClose tests the close lifecycle.
func TestSessionClose(t *testing.T) {
	t.Parallel()

	s, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}

	_, err = s.Get(context.Background(), "http://127.0.0.1:1/")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

// TestIsTimeout tests timeout classification.
func TestIsTimeout(t *testing.T) {
	t.Parallel()

	if IsTimeout(nil) {
		t.Error("nil is not a timeout")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Error("context.DeadlineExceeded should be a timeout")
	}
	if IsTimeout(errors.New("other")) {
		t.Error("plain error is not a timeout")
	}
}

// Package mirror drives a complete mirror run: it walks the remote listing
// tree and hands every discovered path to the fetcher, one at a time.
//
// The walk and the downloads are strictly sequential. A path is not pulled
// from the walker until the previous path has been fully downloaded or
// skipped, so at most one request is in flight at any moment.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/nao1215/dirmirror/internal/config"
	"github.com/nao1215/dirmirror/internal/fetcher"
	"github.com/nao1215/dirmirror/internal/listing"
	"github.com/nao1215/dirmirror/internal/metrics"
	"github.com/nao1215/dirmirror/internal/model"
	"github.com/nao1215/dirmirror/internal/session"
)

// Mirror owns the session, walker and fetcher of one run.
type Mirror struct {
	serverAddress string
	outputDir     string

	session *session.Session
	walker  *listing.Walker
	fetcher *fetcher.Fetcher

	logger  *slog.Logger
	metrics *metrics.Recorder

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithLogger sets the logger passed to every component.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mirror) {
		m.logger = logger
	}
}

// WithMetrics records listings and results on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Mirror) {
		m.metrics = r
	}
}

// WithSession uses s instead of building a session from the config.
// The Mirror takes ownership and closes it.
func WithSession(s *session.Session) Option {
	return func(m *Mirror) {
		m.session = s
	}
}

// New builds a Mirror from cfg. The output directory is created if needed.
// The returned Mirror must be run or closed.
func New(cfg *config.Config, opts ...Option) (*Mirror, error) {
	m := &Mirror{
		serverAddress: config.NormalizeAddress(cfg.ServerAddress),
		outputDir:     cfg.OutputDir,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	if err := os.MkdirAll(m.outputDir, fetcher.DefaultDirMode); err != nil {
		if m.session != nil {
			_ = m.session.Close()
		}
		return nil, fmt.Errorf("failed to create output directory %s: %w", m.outputDir, err)
	}

	if m.session == nil {
		s, err := session.New(
			session.WithTimeout(cfg.Timeout),
			session.WithUserAgent(cfg.UserAgent),
			session.WithProxy(cfg.ProxyAddress),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		m.session = s
	}

	walkerOpts := []listing.Option{
		listing.WithMaxDepth(cfg.MaxDepth),
		listing.WithLogger(m.logger),
		listing.WithListingHook(func(model.RelativePath) {
			m.metrics.ListingFetched()
		}),
	}
	if cfg.SkipDirectoryMarkers {
		walkerOpts = append(walkerOpts, listing.WithoutDirectoryMarkers())
	}
	m.walker = listing.NewWalker(m.session, m.serverAddress, walkerOpts...)

	m.fetcher = fetcher.New(m.session, m.outputDir,
		fetcher.WithChunkSize(cfg.ChunkSize),
		fetcher.WithLogger(m.logger),
	)
	return m, nil
}

// Run mirrors the whole tree and closes the session.
//
// The summary is always returned, also when err is non-nil, and holds
// everything that happened before the first fatal error. Run is meant to
// be called once; a second call fails with session.ErrClosed.
func (m *Mirror) Run(ctx context.Context) (summary *model.Summary, err error) {
	summary = model.NewSummary(m.serverAddress, m.outputDir)

	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		summary.Listings = m.walker.Listings()
		summary.Finish(err)
		m.metrics.ObserveRun(err)

		if err != nil {
			m.logger.Error("mirror failed",
				"server", m.serverAddress,
				"downloaded", summary.Downloaded(),
				"error", err,
			)
			return
		}
		m.logger.Info("mirror complete",
			"server", m.serverAddress,
			"listings", summary.Listings,
			"downloaded", summary.Downloaded(),
			"skipped", summary.TotalSkipped(),
			"bytes", summary.TotalBytes,
		)
	}()

	m.logger.Debug("mirror started",
		"server", m.serverAddress,
		"output", m.outputDir,
	)

	for path, walkErr := range m.walker.All(ctx) {
		if walkErr != nil {
			return summary, walkErr
		}

		result, fetchErr := m.fetcher.Fetch(ctx, m.walker.URL(path), path)
		if fetchErr != nil {
			if result.Partial {
				summary.Record(result)
				m.logger.Warn("partial file left on disk",
					"path", result.LocalPath,
					"bytes", result.Bytes,
				)
			}
			return summary, fetchErr
		}
		summary.Record(result)
		m.metrics.ObserveResult(result)
	}
	return summary, nil
}

// Close releases the session. It is safe to call more than once.
func (m *Mirror) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = m.session.Close()
	})
	return m.closeErr
}

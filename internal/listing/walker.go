package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nao1215/dirmirror/internal/model"
)

// ErrMaxDepthExceeded is returned when the walk would enter a directory
// deeper than the configured limit.
var ErrMaxDepthExceeded = errors.New("maximum listing depth exceeded")

// PageFetcher fetches listing pages. *session.Session satisfies it.
// Implementations must fail on non-2xx statuses; the walker does not inspect
// the status code.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// Walker produces the relative paths of a listing tree, depth first.
// A Walker is single-use and not safe for concurrent use.
type Walker struct {
	// fetcher loads listing pages.
	fetcher PageFetcher

	// serverAddress is prefixed to every relative path to build a URL.
	serverAddress string

	// start is the relative path of the first listing. It is never yielded.
	start model.RelativePath

	// maxDepth limits directory nesting below start. 0 means unlimited.
	maxDepth int

	// dirMarkers controls whether directory paths are yielded after their
	// subtree.
	dirMarkers bool

	// onListing is called after each listing page is parsed.
	onListing func(model.RelativePath)

	logger *slog.Logger

	// stack holds the partially consumed listings, innermost last.
	stack []*frame

	started  bool
	err      error
	listings int
}

// frame is one listing page being consumed.
type frame struct {
	dir   model.RelativePath
	hrefs []string
	next  int
}

// Option configures a Walker.
type Option func(*Walker)

// WithStart begins the walk at a sub-path of the server instead of the root.
// The path should end with "/".
func WithStart(path model.RelativePath) Option {
	return func(w *Walker) {
		w.start = path
	}
}

// WithMaxDepth limits how many directory levels below the start are entered.
// Exceeding the limit is an error, not a silent cut-off.
func WithMaxDepth(depth int) Option {
	return func(w *Walker) {
		if depth >= 0 {
			w.maxDepth = depth
		}
	}
}

// WithoutDirectoryMarkers stops the walker from yielding directory paths.
// Subdirectories are still descended into.
func WithoutDirectoryMarkers() Option {
	return func(w *Walker) {
		w.dirMarkers = false
	}
}

// WithListingHook registers fn to be called for every listing page fetched.
func WithListingHook(fn func(model.RelativePath)) Option {
	return func(w *Walker) {
		w.onListing = fn
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker creates a Walker over the listings served at serverAddress.
// serverAddress is used verbatim as the URL prefix, so it normally ends
// with "/".
func NewWalker(fetcher PageFetcher, serverAddress string, opts ...Option) *Walker {
	w := &Walker{
		fetcher:       fetcher,
		serverAddress: serverAddress,
		dirMarkers:    true,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Next returns the next relative path, or io.EOF once the tree is exhausted.
//
// Any other error is fatal: the walk stops and every later call returns the
// same error.
func (w *Walker) Next(ctx context.Context) (model.RelativePath, error) {
	if w.err != nil {
		return "", w.err
	}

	if !w.started {
		w.started = true
		if err := w.descend(ctx, w.start); err != nil {
			return "", w.fail(err)
		}
	}

	for len(w.stack) > 0 {
		if err := ctx.Err(); err != nil {
			return "", w.fail(err)
		}

		top := w.stack[len(w.stack)-1]
		if top.next >= len(top.hrefs) {
			w.stack = w.stack[:len(w.stack)-1]
			if len(w.stack) > 0 && w.dirMarkers {
				return top.dir, nil
			}
			continue
		}

		href := top.hrefs[top.next]
		top.next++
		path := top.dir.Join(href)

		if strings.HasSuffix(href, model.PathSeparator) {
			if err := w.descend(ctx, path); err != nil {
				return "", w.fail(err)
			}
			continue
		}
		return path, nil
	}

	w.err = io.EOF
	return "", io.EOF
}

// All returns an iterator over the remaining paths. Iteration stops after
// the first error, which is yielded with an empty path.
func (w *Walker) All(ctx context.Context) iter.Seq2[model.RelativePath, error] {
	return func(yield func(model.RelativePath, error) bool) {
		for {
			path, err := w.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(path, nil) {
				return
			}
		}
	}
}

// Listings returns the number of listing pages fetched so far.
func (w *Walker) Listings() int {
	return w.listings
}

// URL returns the absolute URL of a relative path.
func (w *Walker) URL(path model.RelativePath) string {
	return w.serverAddress + string(path)
}

// descend fetches the listing of dir and pushes it onto the stack.
func (w *Walker) descend(ctx context.Context, dir model.RelativePath) error {
	if w.maxDepth > 0 && dir.Depth()-w.start.Depth() > w.maxDepth {
		return fmt.Errorf("%w: %s (limit %d)", ErrMaxDepthExceeded, dir, w.maxDepth)
	}

	hrefs, err := w.fetchListing(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to list %q: %w", dir.String(), err)
	}

	w.listings++
	w.logger.Debug("listing fetched",
		"path", dir.String(),
		"links", len(hrefs),
	)
	if w.onListing != nil {
		w.onListing(dir)
	}

	w.stack = append(w.stack, &frame{dir: dir, hrefs: hrefs})
	return nil
}

// fetchListing loads and parses one listing page.
func (w *Walker) fetchListing(ctx context.Context, dir model.RelativePath) ([]string, error) {
	resp, err := w.fetcher.Get(ctx, w.URL(dir))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return ParseHrefs(resp.Body)
}

// fail records err as the terminal state of the walk.
func (w *Walker) fail(err error) error {
	w.stack = nil
	w.err = err
	return err
}

// Package fetcher downloads the files discovered by the listing walker into
// a local tree that mirrors the remote one.
//
// The local filesystem is the only record of progress: a path whose decoded
// form already exists is never fetched again, whatever its size or content.
// A transfer that fails halfway leaves its truncated file behind, and that
// file is treated as downloaded by the next run.
package fetcher

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/dirmirror/internal/model"
)

const (
	// DefaultChunkSize is the size of the buffer the response body is
	// streamed through. Memory use per download is bounded by it.
	DefaultChunkSize = 100 * 1024

	// DefaultFileMode is the permission of downloaded files.
	DefaultFileMode os.FileMode = 0o644

	// DefaultDirMode is the permission of created directories.
	DefaultDirMode os.FileMode = 0o755
)

// Getter performs GET requests. *session.Session satisfies it.
// Implementations must fail on non-2xx statuses.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// Fetcher decides whether a path needs downloading and streams it to disk.
type Fetcher struct {
	getter    Getter
	root      string
	chunkSize int
	fileMode  os.FileMode
	dirMode   os.FileMode
	logger    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithChunkSize sets the streaming buffer size. Non-positive values are ignored.
func WithChunkSize(size int) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.chunkSize = size
		}
	}
}

// WithFileMode sets the permission of downloaded files.
func WithFileMode(mode os.FileMode) Option {
	return func(f *Fetcher) {
		f.fileMode = mode
	}
}

// WithDirMode sets the permission of created directories.
func WithDirMode(mode os.FileMode) Option {
	return func(f *Fetcher) {
		f.dirMode = mode
	}
}

// WithLogger sets the logger. Downloads are logged at info, skips at debug.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher writing below root. root must exist.
func New(getter Getter, root string, opts ...Option) *Fetcher {
	f := &Fetcher{
		getter:    getter,
		root:      root,
		chunkSize: DefaultChunkSize,
		fileMode:  DefaultFileMode,
		dirMode:   DefaultDirMode,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Root returns the local mirror root.
func (f *Fetcher) Root() string {
	return f.root
}

// Check classifies path without touching the network.
//
// Directory markers and excluded files are rejected on their name alone.
// Otherwise the decoded local path is computed and checked for existence.
// A stat error other than "does not exist" is returned as is.
func (f *Fetcher) Check(path model.RelativePath) (model.SkipReason, string, error) {
	if path.IsDirectoryMarker() {
		return model.SkipDirectory, "", nil
	}
	if path.IsExcluded() {
		return model.SkipExcluded, "", nil
	}

	local, err := path.LocalPath(f.root)
	if errors.Is(err, model.ErrUnsafePath) {
		return model.SkipUnsafe, "", nil
	}
	if err != nil {
		return model.SkipNone, "", err
	}

	_, err = os.Stat(local)
	switch {
	case err == nil:
		return model.SkipExists, local, nil
	case errors.Is(err, fs.ErrNotExist):
		return model.SkipNone, local, nil
	default:
		return model.SkipNone, local, fmt.Errorf("failed to check %s: %w", local, err)
	}
}

// Fetch downloads fullURL into the local path of path unless Check says to
// skip it. A skipped path is not an error; inspect result.Skipped.
//
// Any network or filesystem error is returned and nothing is cleaned up.
func (f *Fetcher) Fetch(ctx context.Context, fullURL string, path model.RelativePath) (model.FileResult, error) {
	result := model.FileResult{Path: path}

	reason, local, err := f.Check(path)
	if err != nil {
		return result, err
	}
	result.LocalPath = local
	result.Skipped = reason

	switch reason {
	case model.SkipNone:
	case model.SkipUnsafe:
		f.logger.Warn("skipping path outside mirror root", "path", path.String())
		return result, nil
	default:
		f.logger.Debug("skipped", "path", path.String(), "reason", reason.String())
		return result, nil
	}

	start := time.Now()

	resp, err := f.getter.Get(ctx, fullURL)
	if err != nil {
		return result, fmt.Errorf("failed to download %q: %w", path.String(), err)
	}
	defer resp.Body.Close()

	if err := f.ensureParents(path); err != nil {
		return result, err
	}

	file, err := os.OpenFile(local, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.fileMode) //nolint:gosec // path is confined to root by LocalPath
	if err != nil {
		return result, fmt.Errorf("failed to create %s: %w", local, err)
	}

	n, digest, copyErr := copyChunks(file, resp.Body, f.chunkSize)
	closeErr := file.Close()
	result.Bytes = n
	result.Duration = time.Since(start)
	if copyErr != nil {
		result.Partial = true
		return result, fmt.Errorf("failed to download %q: %w", path.String(), copyErr)
	}
	if closeErr != nil {
		result.Partial = true
		return result, fmt.Errorf("failed to close %s: %w", local, closeErr)
	}

	result.Digest = digest

	f.logger.Info("downloaded",
		"path", local,
		"bytes", n,
	)
	return result, nil
}

// ensureParents creates the missing directories of path one level at a time
// from the root downward. Directories that already exist are left alone.
func (f *Fetcher) ensureParents(path model.RelativePath) error {
	segments, err := path.Segments()
	if err != nil {
		return err
	}

	dir := f.root
	for _, segment := range segments[:len(segments)-1] {
		dir = filepath.Join(dir, segment)
		if err := os.Mkdir(dir, f.dirMode); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// copyChunks streams src to dst through a buffer of chunkSize bytes, in
// order, until src is exhausted. It returns the byte count and the hex
// SHA3-256 of everything written.
func copyChunks(dst io.Writer, src io.Reader, chunkSize int) (int64, string, error) {
	buf := make([]byte, chunkSize)
	hash := sha3.New256()

	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, err := dst.Write(chunk); err != nil {
				return written, "", err
			}
			_, _ = hash.Write(chunk) //nolint:errcheck // hash writes never fail
			written += int64(n)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return written, "", readErr
		}
	}
	return written, hex.EncodeToString(hash.Sum(nil)), nil
}

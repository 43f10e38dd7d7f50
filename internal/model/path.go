package model

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// PathSeparator is the separator used by directory listings between segments.
// Subdirectory links end with it.
const PathSeparator = "/"

// ExcludedExtension marks listing entries that are never downloaded.
// Directory listings generated on Windows hosts expose shortcut files with
// this extension; they are not content.
const ExcludedExtension = ".lnk"

// ErrUnsafePath is returned when a relative path would resolve outside of the
// mirror root once decoded (a "." or ".." segment, or an absolute path).
var ErrUnsafePath = errors.New("path escapes mirror root")

// RelativePath is a URL-encoded path relative to the server root.
// It is built by concatenating the parent path and the child href while
// walking listings, and it stays encoded until LocalPath is called.
type RelativePath string

// String returns the encoded path.
func (p RelativePath) String() string {
	return string(p)
}

// Join appends an href taken from the listing page of p.
func (p RelativePath) Join(href string) RelativePath {
	return RelativePath(string(p) + href)
}

// IsDirectoryMarker reports whether p names a directory (trailing separator).
func (p RelativePath) IsDirectoryMarker() bool {
	return strings.HasSuffix(string(p), PathSeparator)
}

// IsExcluded reports whether p has the excluded extension.
// The check is case-sensitive and made on the encoded form.
func (p RelativePath) IsExcluded() bool {
	return strings.HasSuffix(string(p), ExcludedExtension)
}

// Depth returns the number of directory levels below the root that p lives in.
// "a.txt" and "sub/" have depth 0 and 1 respectively.
func (p RelativePath) Depth() int {
	return strings.Count(string(p), PathSeparator)
}

// Segments returns the decoded path segments of p.
// The only error is ErrUnsafePath.
//
// Each segment is unescaped on its own so that an encoded separator inside a
// single segment (e.g. "a%2Fb") never introduces an extra directory level.
// Decoded separators are re-encoded in the returned segment.
func (p RelativePath) Segments() ([]string, error) {
	raw := strings.TrimSuffix(string(p), PathSeparator)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, PathSeparator)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			// "a//b" collapses like a filesystem path would.
			continue
		}
		decoded, err := url.PathUnescape(part)
		if err != nil {
			// Servers occasionally emit a stray "%"; keep such segments verbatim.
			decoded = part
		}
		decoded = strings.ReplaceAll(decoded, "/", "%2F")
		decoded = strings.ReplaceAll(decoded, `\`, "%5C")
		if decoded == "." || decoded == ".." {
			return nil, fmt.Errorf("%w: %s", ErrUnsafePath, p)
		}
		segments = append(segments, decoded)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsafePath, p)
	}
	return segments, nil
}

// LocalPath returns the decoded filesystem path of p below root.
func (p RelativePath) LocalPath(root string) (string, error) {
	segments, err := p.Segments()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{root}, segments...)...), nil
}

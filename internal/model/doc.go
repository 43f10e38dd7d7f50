// Package model defines the data shared by the walker, the fetcher and the
// report writers.
//
// This package contains the following main types:
//   - RelativePath: an encoded path relative to the server root
//   - FileResult: the outcome of fetching or skipping one path
//   - Summary: everything recorded during one mirror run
//
// The records are serializable to JSON for the --json report.
package model

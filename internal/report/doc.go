// Package report renders the summary of a mirror run.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display
//   - MarkdownWriter: GitHub Flavored Markdown for sharing
//   - JSONWriter: structured JSON for tool integration
//
// Writers implement the Writer interface and can be used interchangeably.
package report

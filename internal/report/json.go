package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/dirmirror/internal/model"
)

// JSONWriter outputs the summary in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonSummary adds derived totals to the summary.
type jsonSummary struct {
	*model.Summary

	Downloaded   int     `json:"downloaded"`
	TotalSkipped int     `json:"total_skipped"`
	DurationSec  float64 `json:"duration_seconds"`
}

// Write outputs the summary as a single JSON document with a trailing newline.
func (w *JSONWriter) Write(summary *model.Summary) (int, error) {
	v := jsonSummary{
		Summary:      summary,
		Downloaded:   summary.Downloaded(),
		TotalSkipped: summary.TotalSkipped(),
		DurationSec:  summary.Duration().Seconds(),
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

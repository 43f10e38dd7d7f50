package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/dirmirror/internal/model"
)

// SimpleWriter outputs human-readable text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// listFiles prints one line per downloaded file.
	listFiles bool

	printer *message.Printer
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithFileList prints every downloaded file below the totals.
func WithFileList(list bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.listFiles = list
	}
}

// WithLanguage sets the locale used for number grouping. Default is English.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeTotals(&sb, summary)
	if w.listFiles {
		w.writeFiles(&sb, summary)
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        DIRMIRROR SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Server:    %s\n", s.ServerAddress)
	fmt.Fprintf(sb, "Output:    %s\n", s.OutputDir)
	fmt.Fprintf(sb, "Started:   %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:  %s\n", s.Duration().Round(time.Millisecond))
	fmt.Fprintf(sb, "Status:    %s\n", statusText(s))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTotals(sb *strings.Builder, s *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	sb.WriteString(w.printer.Sprintf("  Listings fetched:  %d\n", s.Listings))
	sb.WriteString(w.printer.Sprintf("  Files downloaded:  %d (%s)\n", s.Downloaded(), humanize.Bytes(uint64(max(s.TotalBytes, 0)))))
	sb.WriteString(w.printer.Sprintf("  Paths skipped:     %d\n", s.TotalSkipped()))
	for _, reason := range model.SkipReasons {
		if n := s.Skipped(reason); n > 0 {
			sb.WriteString(w.printer.Sprintf("    %-10s %d\n", reason.String()+":", n))
		}
	}
	if p := s.Partial; p != nil {
		sb.WriteString(w.printer.Sprintf("  Partial file:      %s (%s)\n", p.LocalPath, humanize.Bytes(uint64(max(p.Bytes, 0)))))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFiles(sb *strings.Builder, s *model.Summary) {
	if len(s.Files) == 0 {
		return
	}
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, f := range s.Files {
		fmt.Fprintf(sb, "  [+] %s (%s)\n", f.LocalPath, humanize.Bytes(uint64(max(f.Bytes, 0))))
	}
	sb.WriteString("\n")
}

package report

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/dirmirror/internal/model"
)

// maxDigestLen keeps the files table readable; the JSON report has full digests.
const maxDigestLen = 16

// MarkdownWriter outputs the summary as GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSkips(md, summary)
	w.writeFiles(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("dirmirror Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Server", "`" + s.ServerAddress + "`"},
			{"Output", "`" + s.OutputDir + "`"},
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration().String()},
			{"Listings Fetched", strconv.Itoa(s.Listings)},
			{"Files Downloaded", strconv.Itoa(s.Downloaded())},
			{"Bytes Written", humanize.Bytes(uint64(max(s.TotalBytes, 0)))},
		},
	})
	md.PlainText("")

	switch {
	case s.Failed():
		md.Cautionf("Mirror aborted: %s", s.Error)
		if p := s.Partial; p != nil {
			md.PlainText("")
			md.Warningf("Partial file left on disk: %s (%s). Delete it before the next run.",
				p.LocalPath, humanize.Bytes(uint64(max(p.Bytes, 0))))
		}
	case s.Downloaded() == 0:
		md.Note("Mirror is already up to date. Nothing was downloaded.")
	default:
		md.Tip("Mirror completed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeSkips(md *markdown.Markdown, s *model.Summary) {
	md.H2("Skipped Paths")
	md.PlainText("")

	rows := make([][]string, 0, len(model.SkipReasons)+1)
	for _, reason := range model.SkipReasons {
		rows = append(rows, []string{reason.String(), strconv.Itoa(s.Skipped(reason))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(s.TotalSkipped()) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Reason", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if s.Downloaded()+s.TotalSkipped() > 0 {
		w.writePieChart(md, s)
	}
}

// writePieChart writes a mermaid pie chart of downloaded versus skipped paths.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Walked Paths"),
		piechart.WithShowData(true),
	)

	if n := s.Downloaded(); n > 0 {
		chart.LabelAndIntValue("downloaded", uint64(n))
	}
	for _, reason := range model.SkipReasons {
		if n := s.Skipped(reason); n > 0 {
			chart.LabelAndIntValue(reason.String(), uint64(n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFiles(md *markdown.Markdown, s *model.Summary) {
	md.H2("Downloaded Files")
	md.PlainText("")

	if len(s.Files) == 0 {
		md.PlainText("No files downloaded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(s.Files))
	for i, f := range s.Files {
		rows[i] = []string{
			"`" + f.LocalPath + "`",
			humanize.Bytes(uint64(max(f.Bytes, 0))),
			"`" + truncateString(f.Digest, maxDigestLen) + "`",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Path", "Size", "SHA3-256"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [dirmirror](https://github.com/nao1215/dirmirror)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

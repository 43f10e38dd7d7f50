package model

import "time"

// SkipReason explains why the fetcher did not download a path.
type SkipReason int

const (
	// SkipNone means the path was downloaded.
	SkipNone SkipReason = iota

	// SkipDirectory means the path is a directory marker, not a file.
	SkipDirectory

	// SkipExcluded means the path has the excluded extension.
	SkipExcluded

	// SkipExists means a file is already present at the decoded local path.
	// Its size and content are not inspected.
	SkipExists

	// SkipUnsafe means the decoded path would leave the mirror root.
	SkipUnsafe
)

// SkipReasons lists every reason a path can be skipped, in report order.
var SkipReasons = []SkipReason{SkipDirectory, SkipExcluded, SkipExists, SkipUnsafe}

// String returns the reason label used in logs, metrics and reports.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipDirectory:
		return "directory"
	case SkipExcluded:
		return "excluded"
	case SkipExists:
		return "exists"
	case SkipUnsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so JSON reports carry labels.
func (r SkipReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// FileResult is the outcome of one fetcher call.
type FileResult struct {
	// Path is the encoded relative path yielded by the walker.
	Path RelativePath `json:"path"`

	// LocalPath is the decoded destination on disk. Empty for unsafe paths.
	LocalPath string `json:"local_path,omitempty"`

	// Bytes is the number of bytes written.
	Bytes int64 `json:"bytes"`

	// Digest is the hex SHA3-256 of the written bytes.
	Digest string `json:"digest,omitempty"`

	// Skipped is SkipNone for downloaded files.
	Skipped SkipReason `json:"skipped"`

	// Duration is how long the transfer took.
	Duration time.Duration `json:"duration"`

	// Partial is set when the file was created but the transfer failed.
	// The truncated file stays on disk and is skipped as existing next run.
	Partial bool `json:"partial,omitempty"`
}

// Downloaded reports whether the file was written.
func (r FileResult) Downloaded() bool {
	return r.Skipped == SkipNone && !r.Partial
}

// Summary accumulates the results of one mirror run.
type Summary struct {
	// ServerAddress is the base URL that was mirrored.
	ServerAddress string `json:"server_address"`

	// OutputDir is the local mirror root.
	OutputDir string `json:"output_dir"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Listings is the number of listing pages fetched.
	Listings int `json:"listings"`

	// Files holds every downloaded file in download order.
	Files []FileResult `json:"files"`

	// SkipCounts counts skipped paths per reason.
	SkipCounts map[SkipReason]int `json:"skip_counts"`

	// TotalBytes is the sum of bytes written.
	TotalBytes int64 `json:"total_bytes"`

	// Error is the fatal error that aborted the run, if any.
	Error string `json:"error,omitempty"`

	// Partial is the file left truncated by the aborting error, if any.
	Partial *FileResult `json:"partial,omitempty"`
}

// NewSummary creates an empty summary for a run that starts now.
func NewSummary(serverAddress, outputDir string) *Summary {
	return &Summary{
		ServerAddress: serverAddress,
		OutputDir:     outputDir,
		StartedAt:     time.Now(),
		Files:         make([]FileResult, 0),
		SkipCounts:    make(map[SkipReason]int),
	}
}

// Record adds a fetcher result to the summary.
func (s *Summary) Record(result FileResult) {
	if result.Partial {
		s.Partial = &result
		s.TotalBytes += result.Bytes
		return
	}
	if result.Downloaded() {
		s.Files = append(s.Files, result)
		s.TotalBytes += result.Bytes
		return
	}
	s.SkipCounts[result.Skipped]++
}

// Finish marks the run as done, recording err if the run was aborted.
func (s *Summary) Finish(err error) {
	s.FinishedAt = time.Now()
	if err != nil {
		s.Error = err.Error()
	}
}

// Downloaded returns the number of files written.
func (s *Summary) Downloaded() int {
	return len(s.Files)
}

// Skipped returns the number of paths skipped for reason.
func (s *Summary) Skipped(reason SkipReason) int {
	return s.SkipCounts[reason]
}

// TotalSkipped returns the number of skipped paths over all reasons.
func (s *Summary) TotalSkipped() int {
	total := 0
	for _, n := range s.SkipCounts {
		total += n
	}
	return total
}

// Duration returns how long the run took; zero while it is still running.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Failed reports whether the run was aborted by a fatal error.
func (s *Summary) Failed() bool {
	return s.Error != ""
}

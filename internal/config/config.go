package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "dirmirror"

	// DefaultServerAddress is where `python -m http.server` listens.
	DefaultServerAddress = "http://localhost:8000/"

	// DefaultOutputDir mirrors into the current working directory.
	DefaultOutputDir = "."

	// DefaultTimeout applies to every request, listing pages and file bodies
	// alike, for the whole exchange.
	DefaultTimeout = 2 * time.Second

	// DefaultChunkSize is the streaming buffer size for downloads (100 KiB).
	DefaultChunkSize = 100 * 1024

	// DefaultMaxDepth of 0 means listings are followed without a depth limit.
	DefaultMaxDepth = 0

	// DefaultUserAgent identifies dirmirror in HTTP requests.
	DefaultUserAgent = "dirmirror/1.0 (+https://github.com/nao1215/dirmirror)"
)

// Config holds all options of a mirror run.
// It is populated from defaults, the config file and CLI flags, in that
// order, and is not modified once the run starts.
type Config struct {
	// ServerAddress is the base URL of the directory listing server.
	// It always ends with "/" after Normalize.
	ServerAddress string

	// OutputDir is the local root the remote tree is mirrored into.
	OutputDir string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// ChunkSize is the size in bytes of the download streaming buffer.
	ChunkSize int

	// MaxDepth limits listing recursion below the server root. 0 is unlimited.
	MaxDepth int

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// SkipDirectoryMarkers drops directory paths from the walk output
	// instead of handing them to the fetcher to be skipped.
	SkipDirectoryMarkers bool

	// Verbose enables debug-level logging.
	Verbose bool

	// LogJSON switches log output from text to JSON.
	LogJSON bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// IgnoredConfigFile is an implicitly found configuration file that
	// could not be read, so the defaults were kept.
	IgnoredConfigFile string

	// JSONReport prints the run summary as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the run summary as GitHub Flavored Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the summary to a file instead of stdout.
	ReportFile string

	// MetricsFile writes run metrics in Prometheus text format when set.
	MetricsFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerAddress: DefaultServerAddress,
		OutputDir:     DefaultOutputDir,
		Timeout:       DefaultTimeout,
		ChunkSize:     DefaultChunkSize,
		MaxDepth:      DefaultMaxDepth,
		UserAgent:     DefaultUserAgent,
	}
}

// XDGConfigDir returns the XDG config directory for dirmirror.
// On Linux: ~/.config/dirmirror
// On macOS: ~/Library/Application Support/dirmirror
// On Windows: %APPDATA%\dirmirror
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// NormalizeAddress trims surrounding space and guarantees a trailing "/" so
// relative paths can be appended verbatim.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if address != "" && !strings.HasSuffix(address, "/") {
		address += "/"
	}
	return address
}

// Normalize applies NormalizeAddress to the server address.
func (c *Config) Normalize() {
	c.ServerAddress = NormalizeAddress(c.ServerAddress)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerAddress)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServerAddress, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidServerAddress, c.ServerAddress)
	}

	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

package config

import "time"

// ServerSection is the `server:` section of the configuration file.
type ServerSection struct {
	// Address is the base URL of the listing server.
	Address string `yaml:"address,omitempty"`

	// Timeout is the per-request timeout, e.g. "2s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Proxy is an optional SOCKS5 proxy address.
	Proxy string `yaml:"proxy,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`
}

// MirrorSection is the `mirror:` section of the configuration file.
type MirrorSection struct {
	// Output is the local mirror root.
	Output string `yaml:"output,omitempty"`

	// ChunkSize is the download buffer size in bytes.
	ChunkSize int `yaml:"chunk_size,omitempty"`

	// MaxDepth limits listing recursion. 0 is unlimited.
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// File represents the structure of the dirmirror configuration file.
//
//	server:
//	  address: http://localhost:8000/
//	  timeout: 2s
//	mirror:
//	  output: ./mirror
type File struct {
	Server ServerSection `yaml:"server,omitempty"`
	Mirror MirrorSection `yaml:"mirror,omitempty"`
}

// Apply copies every value set in f onto c. Zero values leave c untouched.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.Server.Address != "" {
		c.ServerAddress = f.Server.Address
	}
	if f.Server.Timeout != 0 {
		c.Timeout = f.Server.Timeout
	}
	if f.Server.Proxy != "" {
		c.ProxyAddress = f.Server.Proxy
	}
	if f.Server.UserAgent != "" {
		c.UserAgent = f.Server.UserAgent
	}
	if f.Mirror.Output != "" {
		c.OutputDir = f.Mirror.Output
	}
	if f.Mirror.ChunkSize != 0 {
		c.ChunkSize = f.Mirror.ChunkSize
	}
	if f.Mirror.MaxDepth != 0 {
		c.MaxDepth = f.Mirror.MaxDepth
	}
}

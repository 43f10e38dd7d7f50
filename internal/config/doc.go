// Package config provides the configuration of a mirror run: the server to
// mirror, where to write, and how requests and reports behave.
//
// A Config is built once at startup from defaults, an optional YAML file and
// command-line flags, validated, and then passed down read-only.
package config

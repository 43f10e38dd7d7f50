// Package main provides the entry point for the dirmirror CLI.
//
// dirmirror recursively copies the files published by a directory-listing
// HTTP server (python -m http.server, nginx autoindex, ...) to local disk.
// Files that already exist locally are never downloaded again.
//
// Usage:
//
//	dirmirror mirror http://localhost:8000/ -o ./mirror
//	dirmirror init
//
// See --help for all available options.
package main

func main() {
	Execute()
}

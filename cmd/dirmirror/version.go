package main

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildMeta is what the binary knows about itself. Linker flags win over
// the module and vcs data embedded by the go tool.
type buildMeta struct {
	version string
	commit  string
	date    string
}

var readBuildMeta = sync.OnceValue(func() buildMeta {
	meta := buildMeta{version: "(devel)", commit: "unknown", date: "unknown"}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" {
			meta.version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && s.Value != "":
				meta.commit = s.Value[:min(len(s.Value), 7)]
			case s.Key == "vcs.time" && s.Value != "":
				meta.date = s.Value
			}
		}
	}

	for _, override := range []struct {
		dst *string
		val string
	}{
		{&meta.version, version},
		{&meta.commit, commit},
		{&meta.date, date},
	} {
		if override.val != "" {
			*override.dst = override.val
		}
	}
	return meta
})

func getVersion() string { return readBuildMeta().version }
func getCommit() string  { return readBuildMeta().commit }
func getDate() string    { return readBuildMeta().date }

// userAgent is sent with every request unless --user-agent is given.
func userAgent() string {
	return "dirmirror/" + getVersion()
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "dirmirror version %s\n  commit: %s\n  built:  %s\n",
				getVersion(), getCommit(), getDate())
			return err
		},
	}
}

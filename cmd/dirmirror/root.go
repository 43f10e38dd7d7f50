package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for dirmirror.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirmirror",
		Short: "Mirror a directory-listing HTTP server to local disk",
		Long: `dirmirror walks the nested index pages of a directory-listing HTTP server
and downloads every file that is not already present locally.

Runs are incremental: a file whose local path exists is skipped, whatever its
size or content. Paths ending in .lnk are never downloaded.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewMirrorCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

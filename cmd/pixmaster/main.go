// Command pixmaster is the CLI entrypoint for the Pixmaster batch image
// pixelator. The command tree lives in internal/cli; fang adds styled help,
// --version, completions and signal-driven context cancellation.
package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"

	"github.com/backmassage/pixmaster/internal/cli"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	root := cli.NewRootCmd(version, commit)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithCommit(commit),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

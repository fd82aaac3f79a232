// Package main provides the gamehub CLI entrypoint.
//
// Usage:
//
//	gamehub <command> [options]
//
// Exit codes:
//   - 0: success
//   - 1: failure (remote failure, channel fault, invalid flags)
//   - 2: disconnected
//   - 3: provider action required (install, update or login)
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gamehub/cli/cmd"
	"github.com/pithecene-io/gamehub/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           "gamehub",
		Usage:          "GameHub tournament bridge CLI",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.ConnectCommand(),
			cmd.LoginCommand(),
			cmd.TournamentsCommand(),
			cmd.StartMatchCommand(),
			cmd.EndMatchCommand(),
			cmd.RankingCommand(),
			cmd.ShowRankingCommand(),
			cmd.WatchCommand(),
			cmd.VersionCommand(commit),
		},
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	os.Exit(reportExit(os.Stderr, err))
}

// reportExit prints the user-facing part of err to w and returns the exit code.
func reportExit(w io.Writer, err error) int {
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "" or "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(w, msg)
		}
		return code
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

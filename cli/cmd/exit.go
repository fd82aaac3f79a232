package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gamehub/types"
)

// Exit codes.
const (
	exitSuccess        = 0
	exitFailure        = 1
	exitDisconnected   = 2
	exitProviderAction = 3
)

// statusToExitCode maps a bridge status to a process exit code.
// Unknown remote codes are failures.
func statusToExitCode(s types.Status) int {
	switch {
	case !s.IsKnown():
		return exitFailure
	case s == types.StatusSuccess:
		return exitSuccess
	case s == types.StatusDisconnected:
		return exitDisconnected
	case s.NeedsProviderAction():
		return exitProviderAction
	default:
		return exitFailure
	}
}

// exitFor returns nil on success and a cli exit error otherwise. The
// error is silent for known statuses, which are already rendered.
func exitFor(s types.Status) error {
	code := statusToExitCode(s)
	if code == exitSuccess {
		return nil
	}
	if !s.IsKnown() {
		return cli.Exit(fmt.Sprintf("provider reported unknown status code %d", s.LevelCode()), code)
	}
	return cli.Exit("", code)
}

// usageError reports invalid flags or configuration.
func usageError(err error) error {
	return cli.Exit(err.Error(), exitFailure)
}

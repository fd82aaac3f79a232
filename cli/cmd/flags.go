// Package cmd provides CLI commands for the gamehub binary.
package cmd

import (
	"time"

	"github.com/urfave/cli/v2"
)

// Output flags shared by every command.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)

// OutputFlags returns the shared output flags.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
	}
}

// SessionFlags returns the flags of every command that opens a bridge
// session. Values left unset fall back to the config file.
func SessionFlags() []cli.Flag {
	return append(OutputFlags(),
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to gamehub.yaml config file",
			EnvVars: []string{"GAMEHUB_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "host-package",
			Usage:   "Host application identity sent to the provider",
			EnvVars: []string{"GAMEHUB_HOST_PACKAGE"},
		},
		&cli.StringFlag{
			Name:  "manifest-dir",
			Usage: "Directory of provider manifests (<package>.yaml)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
			Value: "warn",
		},
		&cli.DurationFlag{
			Name:  "bind-timeout",
			Usage: "Bounded wait for the service connection (negative disables)",
			Value: 10 * time.Second,
		},
		&cli.DurationFlag{
			Name:  "dial-timeout",
			Usage: "Dial and handshake timeout",
			Value: 5 * time.Second,
		},
		&cli.DurationFlag{
			Name:  "call-timeout",
			Usage: "Per-call reply timeout",
			Value: 30 * time.Second,
		},
		&cli.BoolFlag{
			Name:  "no-prompts",
			Usage: "Do not open install, update or login pages",
		},
		// Adapter flags
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Match notification adapter: webhook, redis or lode",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Adapter endpoint URL (lode: directory or s3://bucket/prefix)",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis pub/sub channel or lode dataset id",
		},
		&cli.DurationFlag{
			Name:  "adapter-timeout",
			Usage: "Adapter request timeout",
			Value: 10 * time.Second,
		},
		&cli.IntFlag{
			Name:  "adapter-retries",
			Usage: "Adapter retry attempts",
			Value: 3,
		},
		&cli.StringSliceFlag{
			Name:  "adapter-header",
			Usage: "Webhook header as key=value (repeatable)",
		},
	)
}

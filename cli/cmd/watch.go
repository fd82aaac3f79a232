package cmd

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gamehub/adapter"
	"github.com/pithecene-io/gamehub/cli/render"
	"github.com/pithecene-io/gamehub/iox"
	"github.com/pithecene-io/gamehub/metrics"
	"github.com/pithecene-io/gamehub/types"
)

// WatchCommand returns the watch command.
// It holds a session open, renders every state change and optionally
// serves Prometheus metrics until interrupted.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Hold a session open and report state changes until interrupted",
		Flags: append(SessionFlags(),
			&cli.StringFlag{
				Name:  "metrics-listen",
				Usage: "Serve /metrics on this address (e.g. 127.0.0.1:9464)",
			},
			&cli.BoolFlag{
				Name:  "reconnect",
				Usage: "Reconnect with backoff after the service disconnects",
			},
		),
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return usageError(err)
	}

	// State changes arrive on the session loop; rendering happens here.
	states := make(chan types.Result, 16)
	b, err := openBridge(c, func(res types.Result) {
		select {
		case states <- res:
		default:
		}
	})
	if err != nil {
		return usageError(err)
	}
	defer iox.DiscardClose(b)

	ctx, cancel := signalContext()
	defer cancel()

	listen := resolveString(c, "metrics-listen", b.opts.metrics)
	serveErr := make(chan error, 1)
	if listen != "" {
		ln, err := net.Listen("tcp", listen)
		if err != nil {
			return usageError(fmt.Errorf("metrics listen: %w", err))
		}
		go func() {
			serveErr <- metrics.Serve(ctx, ln, metrics.NewRegistry(b.metrics), b.logger)
		}()
	}

	res := b.connect(ctx)
	drain(states)
	if err := r.RenderResult(res); err != nil {
		return err
	}
	if !res.OK() {
		return exitFor(res.Status)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			if err != nil {
				return cli.Exit(fmt.Sprintf("metrics server: %v", err), exitFailure)
			}
		case st := <-states:
			if err := r.RenderResult(st); err != nil {
				return err
			}
			if st.Status != types.StatusDisconnected || b.session.Bound() {
				continue
			}
			if !c.Bool("reconnect") {
				return exitFor(st.Status)
			}
			if err := reconnect(ctx, b, r, states); err != nil {
				return err
			}
		}
	}
}

// reconnect retries Connect with capped backoff until the service is bound
// again or ctx ends.
func reconnect(ctx context.Context, b *bridge, r *render.Renderer, states chan types.Result) error {
	log := b.logger.Sugar()
	for attempt := 1; ; {
		delay := adapter.Backoff(attempt)
		log.Infof("reconnecting in %s", delay)
		if !sleepCtx(ctx, delay) {
			return nil
		}
		res := b.connect(ctx)
		drain(states)
		if err := r.RenderResult(res); err != nil {
			return err
		}
		if res.OK() || b.session.Bound() || ctx.Err() != nil {
			return nil
		}
		if attempt < maxBackoffAttempt {
			attempt++
		}
	}
}

// maxBackoffAttempt caps the reconnect delay at Backoff(6), 16s.
const maxBackoffAttempt = 6

// drain discards buffered state changes already reported by a connect.
func drain(ch <-chan types.Result) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// sleepCtx waits for d or until ctx is done. Returns false if ctx ended.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

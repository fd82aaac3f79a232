package cmd

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gamehub/cli/render"
	"github.com/pithecene-io/gamehub/iox"
)

// connectedAction is the body of a command that needs a connected session.
type connectedAction func(ctx context.Context, c *cli.Context, b *bridge, r *render.Renderer) error

// withSession opens a bridge, connects, and runs fn once the session is
// connected and logged in. A failed connect is rendered and mapped to its
// exit code.
func withSession(fn connectedAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return usageError(err)
		}

		b, err := openBridge(c, nil)
		if err != nil {
			return usageError(err)
		}
		defer iox.DiscardClose(b)

		ctx, cancel := signalContext()
		defer cancel()

		res := b.connect(ctx)
		if !res.OK() {
			if err := r.RenderResult(res); err != nil {
				return err
			}
			return exitFor(res.Status)
		}
		return fn(ctx, c, b, r)
	}
}

// ConnectCommand returns the connect command.
func ConnectCommand() *cli.Command {
	return &cli.Command{
		Name:  "connect",
		Usage: "Check availability, bind the game hub service and verify login",
		Flags: SessionFlags(),
		Action: withSession(func(_ context.Context, _ *cli.Context, b *bridge, r *render.Renderer) error {
			res := b.session.State()
			if err := r.RenderResult(res); err != nil {
				return err
			}
			return exitFor(res.Status)
		}),
	}
}

// LoginCommand returns the login command.
// Unlike connect, a missing login is reported from a bound session and
// opens the provider login screen unless --no-prompts is set.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Report whether a user is signed in to the provider",
		Flags:  SessionFlags(),
		Action: loginAction,
	}
}

func loginAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return usageError(err)
	}

	b, err := openBridge(c, nil)
	if err != nil {
		return usageError(err)
	}
	defer iox.DiscardClose(b)

	ctx, cancel := signalContext()
	defer cancel()

	res := b.connect(ctx)
	if b.session.Bound() {
		res = b.session.IsLogin(ctx, b.opts.showPrompts)
	}
	if err := r.RenderResult(res); err != nil {
		return err
	}
	return exitFor(res.Status)
}

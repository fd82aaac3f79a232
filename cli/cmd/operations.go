package cmd

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gamehub/cli/render"
	"github.com/pithecene-io/gamehub/protocol"
	"github.com/pithecene-io/gamehub/types"
)

// MatchView is the rendered outcome of start-match and end-match.
type MatchView struct {
	Status    string `json:"status" yaml:"status"`
	Code      int    `json:"code" yaml:"code"`
	SessionID string `json:"session_id" yaml:"session_id"`
	MatchID   string `json:"match_id" yaml:"match_id"`
	Metadata  string `json:"metadata" yaml:"metadata"`
}

// TournamentsCommand returns the tournaments command.
func TournamentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tournaments",
		Usage: "List the current tournament",
		Flags: SessionFlags(),
		Action: withSession(func(ctx context.Context, _ *cli.Context, b *bridge, r *render.Renderer) error {
			var (
				res  types.Result
				list []types.Tournament
			)
			b.session.GetTournaments(ctx, func(status int, message, stackTrace string, tournaments []types.Tournament) {
				res = types.Result{Status: types.Status(status), Message: message, StackTrace: stackTrace}
				list = tournaments
			})
			return renderPayload(r, res, list)
		}),
	}
}

// StartMatchCommand returns the start-match command.
func StartMatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "start-match",
		Usage: "Open a tournament match session",
		Flags: append(SessionFlags(),
			&cli.StringFlag{
				Name:     "match-id",
				Usage:    "Game-defined match identifier",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "metadata",
				Usage: "Opaque match metadata",
			},
		),
		Action: withSession(func(ctx context.Context, c *cli.Context, b *bridge, r *render.Renderer) error {
			var res types.Result
			var match *types.Match
			b.session.StartMatch(ctx, c.String("match-id"), c.String("metadata"), matchCallback(&res, &match))
			return renderMatch(r, res, match)
		}),
	}
}

// EndMatchCommand returns the end-match command.
func EndMatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "end-match",
		Usage: "Submit the final score of a match session",
		Flags: append(SessionFlags(),
			&cli.StringFlag{
				Name:     "session-id",
				Usage:    "Match session id returned by start-match",
				Required: true,
			},
			&cli.Float64Flag{
				Name:     "score",
				Usage:    "Final score",
				Required: true,
			},
		),
		Action: withSession(func(ctx context.Context, c *cli.Context, b *bridge, r *render.Renderer) error {
			var res types.Result
			var match *types.Match
			b.session.EndMatch(ctx, c.String("session-id"), float32(c.Float64("score")), matchCallback(&res, &match))
			return renderMatch(r, res, match)
		}),
	}
}

// RankingCommand returns the ranking command.
func RankingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ranking",
		Usage: "Show the ranking of the current tournament",
		Flags: append(SessionFlags(), tournamentIDFlag()),
		Action: withSession(func(ctx context.Context, c *cli.Context, b *bridge, r *render.Renderer) error {
			var (
				res   types.Result
				items []types.RankItem
			)
			b.session.GetRanking(ctx, c.String("tournament-id"), func(status int, message, stackTrace string, ranking []types.RankItem) {
				res = types.Result{Status: types.Status(status), Message: message}
				// The success trace slot carries the raw payload, not a trace.
				if status != types.StatusSuccess.LevelCode() {
					res.StackTrace = stackTrace
				}
				items = ranking
			})
			if res.OK() && items == nil {
				// Parse failures keep the success code but carry no items.
				return renderResultOnly(r, res)
			}
			return renderPayload(r, res, items)
		}),
	}
}

// ShowRankingCommand returns the show-ranking command.
func ShowRankingCommand() *cli.Command {
	return &cli.Command{
		Name:  "show-ranking",
		Usage: "Open the provider's leaderboard screen",
		Flags: append(SessionFlags(), tournamentIDFlag()),
		Action: withSession(func(ctx context.Context, c *cli.Context, b *bridge, r *render.Renderer) error {
			done := make(chan types.Result, 1)
			b.session.ShowRanking(ctx, c.String("tournament-id"), func(status int, message, stackTrace string) {
				done <- types.Result{Status: types.Status(status), Message: message, StackTrace: stackTrace}
			})

			var res types.Result
			select {
			case res = <-done:
			case <-ctx.Done():
				res = types.NewResult(types.StatusDisconnected, "interrupted")
			}
			return renderResultOnly(r, res)
		}),
	}
}

func tournamentIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "tournament-id",
		Usage: "Tournament identifier",
		Value: protocol.SyntheticTournamentID,
	}
}

func matchCallback(res *types.Result, match **types.Match) types.MatchCallback {
	return func(status int, message, matchID, metadata string) {
		*res = types.Result{Status: types.Status(status), Message: message}
		*match = types.MatchFromCallback(status, message, matchID, metadata)
		if *match == nil {
			// Error paths carry the trace in the match id slot.
			res.StackTrace = matchID
		}
	}
}

// renderPayload renders payload on success and the result otherwise.
func renderPayload(r *render.Renderer, res types.Result, payload any) error {
	if !res.OK() {
		return renderResultOnly(r, res)
	}
	return r.Render(payload)
}

func renderMatch(r *render.Renderer, res types.Result, match *types.Match) error {
	if match == nil {
		return renderResultOnly(r, res)
	}
	return r.Render(MatchView{
		Status:    res.Status.String(),
		Code:      res.Status.LevelCode(),
		SessionID: match.SessionID,
		MatchID:   match.MatchID,
		Metadata:  match.Metadata,
	})
}

func renderResultOnly(r *render.Renderer, res types.Result) error {
	if err := r.RenderResult(res); err != nil {
		return err
	}
	return exitFor(res.Status)
}

package hub

import (
	"context"

	"github.com/pithecene-io/gamehub/types"
)

// Bridge is the capability set a host uses to talk to the game hub.
type Bridge interface {
	Connect(ctx context.Context, showPrompts bool, cb types.ConnectionCallback)
	IsLogin(ctx context.Context, showPrompts bool) types.Result
	GetTournaments(ctx context.Context, cb types.TournamentsCallback)
	StartMatch(ctx context.Context, matchID, metadata string, cb types.MatchCallback)
	EndMatch(ctx context.Context, sessionID string, score float32, cb types.MatchCallback)
	GetRanking(ctx context.Context, tournamentID string, cb types.RankingCallback)
	ShowRanking(ctx context.Context, tournamentID string, cb types.ConnectionCallback)
	Dispose()
	Disposed() bool
	Version() string
}

// Verify Session implements Bridge.
var _ Bridge = (*Session)(nil)

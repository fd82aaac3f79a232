package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/pithecene-io/gamehub/adapter"
	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/navigate"
	"github.com/pithecene-io/gamehub/protocol"
	"github.com/pithecene-io/gamehub/types"
)

// Operation names used in logs and metrics.
const (
	opTournaments = "getTournaments"
	opStartMatch  = "startTournamentMatch"
	opEndMatch    = "endTournamentMatch"
	opRanking     = "getTournamentRanking"
)

// call runs the precondition and the remote call of an operation.
// Exactly one of the returned values is meaningful: a nil *types.Result
// means the service replied with bag (which may itself be nil).
func (s *Session) call(ctx context.Context, op string, remote func(context.Context, channel.Service) (channel.Bag, error)) (channel.Bag, *types.Result) {
	s.metrics.IncCall(op)
	svc, res := s.boundService()
	if res != nil {
		return nil, res
	}

	bag, err := remote(ctx, svc)
	if err != nil {
		s.metrics.IncChannelFault(op)
		s.logger.Warn("remote call failed", map[string]any{"op": op, "error": err.Error()})
		return nil, &types.Result{Status: types.StatusFailure, Message: err.Error(), StackTrace: trace(err)}
	}
	return bag, nil
}

// decode validates the status field of a reply.
func (s *Session) decode(op string, bag channel.Bag) (*protocol.Reply, *types.Result) {
	reply, err := protocol.Decode(bag)
	if err != nil {
		s.metrics.IncDecodeError(op)
		s.logger.Warn("malformed reply", map[string]any{"op": op, "error": err.Error()})
		return nil, &types.Result{
			Status:     types.StatusFailure,
			Message:    fmt.Sprintf("Malformed %s reply: %v", op, err),
			StackTrace: trace(err),
		}
	}
	if !reply.OK() {
		s.metrics.IncRemoteFailure(op)
		s.logger.Info("remote status failure", map[string]any{"op": op, "status": reply.Status.String()})
	}
	return reply, nil
}

// GetTournaments lists the current tournament.
func (s *Session) GetTournaments(ctx context.Context, cb types.TournamentsCallback) {
	if cb == nil {
		cb = func(int, string, string, []types.Tournament) {}
	}

	bag, fail := s.call(ctx, opTournaments, func(ctx context.Context, svc channel.Service) (channel.Bag, error) {
		return svc.GetTournamentTimes(ctx, s.hostPackage)
	})
	if fail != nil {
		cb(fail.Status.LevelCode(), fail.Message, fail.StackTrace, nil)
		return
	}

	reply, fail := s.decode(opTournaments, bag)
	if fail != nil {
		cb(fail.Status.LevelCode(), fail.Message, fail.StackTrace, nil)
		return
	}
	if !reply.OK() {
		cb(reply.Status.LevelCode(), msgErrTournaments, "", nil)
		return
	}

	cb(types.StatusSuccess.LevelCode(), msgTournaments, "", protocol.Tournaments(reply.TournamentTimes()))
}

// StartMatch opens a match session for matchID. On success the callback's
// second argument is the provider's match session id.
func (s *Session) StartMatch(ctx context.Context, matchID, metadata string, cb types.MatchCallback) {
	if cb == nil {
		cb = func(int, string, string, string) {}
	}

	bag, fail := s.call(ctx, opStartMatch, func(ctx context.Context, svc channel.Service) (channel.Bag, error) {
		return svc.StartTournamentMatch(ctx, s.hostPackage, matchID, metadata)
	})
	if fail != nil {
		cb(fail.Status.LevelCode(), fail.Message, fail.StackTrace, "")
		return
	}

	reply, fail := s.decode(opStartMatch, bag)
	if fail != nil {
		cb(fail.Status.LevelCode(), fail.Message, fail.StackTrace, "")
		return
	}
	if !reply.OK() {
		cb(reply.Status.LevelCode(), msgErrStartMatch, "", "")
		return
	}

	match := types.Match{SessionID: reply.StartMatch().SessionID, MatchID: matchID, Metadata: metadata}
	cb(types.StatusSuccess.LevelCode(), match.SessionID, match.MatchID, match.Metadata)
	s.notify(adapter.NewMatchEvent(adapter.EventMatchStarted, s.meta, match, time.Now()))
}

// EndMatch submits the final score of the match session sessionID.
func (s *Session) EndMatch(ctx context.Context, sessionID string, score float32, cb types.MatchCallback) {
	if cb == nil {
		cb = func(int, string, string, string) {}
	}

	bag, fail := s.call(ctx, opEndMatch, func(ctx context.Context, svc channel.Service) (channel.Bag, error) {
		return svc.EndTournamentMatch(ctx, sessionID, score)
	})
	if fail != nil {
		cb(fail.Status.LevelCode(), fail.Message, fail.StackTrace, "")
		return
	}

	reply, fail := s.decode(opEndMatch, bag)
	if fail != nil {
		cb(fail.Status.LevelCode(), fail.Message, fail.StackTrace, "")
		return
	}
	if !reply.OK() {
		cb(reply.Status.LevelCode(), msgErrEndMatch, "", "")
		return
	}

	end := reply.EndMatch()
	match := types.Match{SessionID: sessionID, MatchID: end.MatchID, Metadata: end.Metadata}
	cb(types.StatusSuccess.LevelCode(), match.SessionID, match.MatchID, match.Metadata)
	s.notify(adapter.NewMatchEvent(adapter.EventMatchEnded, s.meta, match, time.Now()).WithScore(score))
}

// GetRanking fetches the ranking of the current tournament. The provider
// only exposes the current leaderboard, so tournamentID is informational.
// On success the callback's trace argument carries the raw payload.
func (s *Session) GetRanking(ctx context.Context, tournamentID string, cb types.RankingCallback) {
	if cb == nil {
		cb = func(int, string, string, []types.RankItem) {}
	}
	s.logger.Debug("getTournamentRanking", map[string]any{"tournament_id": tournamentID})

	bag, fail := s.call(ctx, opRanking, func(ctx context.Context, svc channel.Service) (channel.Bag, error) {
		return svc.GetCurrentLeaderboard(ctx, s.hostPackage)
	})
	if fail != nil {
		cb(fail.Status.LevelCode(), fail.Message, fail.StackTrace, nil)
		return
	}
	// Providers predating the leaderboard call reply with nothing.
	if bag == nil {
		s.metrics.IncDecodeError(opRanking)
		cb(types.StatusUpdateProvider.LevelCode(), msgRankingUpdate(s.provider), "", nil)
		return
	}

	reply, fail := s.decode(opRanking, bag)
	if fail != nil {
		cb(fail.Status.LevelCode(), fail.Message, fail.StackTrace, nil)
		return
	}
	if !reply.OK() {
		cb(reply.Status.LevelCode(), msgErrRanking, "", nil)
		return
	}

	board := reply.Leaderboard()
	items, err := board.Items()
	if err != nil {
		s.metrics.IncParseError()
		s.logger.Warn(msgRankingParse, map[string]any{"error": err.Error()})
		cb(reply.Status.LevelCode(), msgRankingParse, "", nil)
		return
	}
	cb(reply.Status.LevelCode(), msgRankingSuccess, board.Data, items)
}

// ShowRanking opens the provider's leaderboard screen for the host.
// The availability check runs with prompts on the calling goroutine; the
// login check and navigation run on the session loop, where cb fires.
func (s *Session) ShowRanking(ctx context.Context, tournamentID string, cb types.ConnectionCallback) {
	s.logger.Debug("showTournamentRanking", map[string]any{"tournament_id": tournamentID})
	if s.disposed.Load() {
		types.NewResult(types.StatusDisconnected, msgConnectBefore).Call(cb)
		return
	}

	res := checkAvailability(ctx, s.platform, s.opener, s.provider, true)
	if !res.OK() {
		s.schedule(func() {
			if !s.disposed.Load() {
				s.setResult(res)
			}
		}, nil)
		res.Call(cb)
		return
	}

	s.schedule(func() { s.showRanking(cb) }, func() {
		types.NewResult(types.StatusDisconnected, msgConnectBefore).Call(cb)
	})
}

func (s *Session) showRanking(cb types.ConnectionCallback) {
	if s.disposed.Load() {
		types.NewResult(types.StatusDisconnected, msgConnectBefore).Call(cb)
		return
	}

	res := s.checkLogin(s.ctx, s.service, true)
	if res.OK() {
		res.Message = msgRankingShown
		target := navigate.Target{
			URI:     fmt.Sprintf(s.provider.LeaderboardURI, s.hostPackage),
			Package: s.provider.Package,
		}
		s.logger.Info("opening leaderboard", map[string]any{"uri": target.URI})
		if err := s.opener.open(s.ctx, target); err != nil {
			types.Result{
				Status:     types.StatusUpdateProvider,
				Message:    msgRankingUpdate(s.provider),
				StackTrace: trace(err),
			}.Call(cb)
			return
		}
	}
	s.setResult(res)
	res.Call(cb)
}

package hub

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pithecene-io/gamehub/adapter"
	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/navigate"
	"github.com/pithecene-io/gamehub/types"
)

type tournamentsResult struct {
	status  int
	message string
	trace   string
	list    []types.Tournament
	calls   int
}

func getTournaments(t *testing.T, s *Session) tournamentsResult {
	t.Helper()
	var r tournamentsResult
	s.GetTournaments(t.Context(), func(status int, message, stackTrace string, list []types.Tournament) {
		r = tournamentsResult{status: status, message: message, trace: stackTrace, list: list, calls: r.calls + 1}
	})
	if r.calls != 1 {
		t.Fatalf("callback fired %d times, want 1", r.calls)
	}
	return r
}

type matchResult struct {
	status   int
	message  string
	matchID  string
	metadata string
	calls    int
}

func startMatch(t *testing.T, s *Session, matchID, metadata string) matchResult {
	t.Helper()
	var r matchResult
	s.StartMatch(t.Context(), matchID, metadata, func(status int, message, mID, meta string) {
		r = matchResult{status: status, message: message, matchID: mID, metadata: meta, calls: r.calls + 1}
	})
	if r.calls != 1 {
		t.Fatalf("callback fired %d times, want 1", r.calls)
	}
	return r
}

func endMatch(t *testing.T, s *Session, sessionID string, score float32) matchResult {
	t.Helper()
	var r matchResult
	s.EndMatch(t.Context(), sessionID, score, func(status int, message, mID, meta string) {
		r = matchResult{status: status, message: message, matchID: mID, metadata: meta, calls: r.calls + 1}
	})
	if r.calls != 1 {
		t.Fatalf("callback fired %d times, want 1", r.calls)
	}
	return r
}

type rankingResult struct {
	status  int
	message string
	trace   string
	items   []types.RankItem
	calls   int
}

func getRanking(t *testing.T, s *Session) rankingResult {
	t.Helper()
	var r rankingResult
	s.GetRanking(t.Context(), "-1", func(status int, message, stackTrace string, items []types.RankItem) {
		r = rankingResult{status: status, message: message, trace: stackTrace, items: items, calls: r.calls + 1}
	})
	if r.calls != 1 {
		t.Fatalf("callback fired %d times, want 1", r.calls)
	}
	return r
}

func TestOperations_NotConnected(t *testing.T) {
	h := newHarness(t)
	const msg = "Connect to service before!"
	disconnected := int(types.StatusDisconnected)

	if r := getTournaments(t, h.session); r.status != disconnected || r.message != msg || r.list != nil {
		t.Errorf("GetTournaments = %+v", r)
	}
	if r := startMatch(t, h.session, "m", "meta"); r.status != disconnected || r.message != msg {
		t.Errorf("StartMatch = %+v", r)
	}
	if r := endMatch(t, h.session, "s", 1); r.status != disconnected || r.message != msg {
		t.Errorf("EndMatch = %+v", r)
	}
	if r := getRanking(t, h.session); r.status != disconnected || r.message != msg || r.items != nil {
		t.Errorf("GetRanking = %+v", r)
	}
	if res := h.session.IsLogin(t.Context(), true); res.Status != types.StatusDisconnected || res.Message != msg {
		t.Errorf("IsLogin = %+v", res)
	}
	if targets := h.nav.Targets(); len(targets) != 0 {
		t.Errorf("IsLogin without handle must not prompt, got %+v", targets)
	}
}

func TestGetTournaments_Success(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodGetTournamentTimes, channel.Bag{
		"statusCode":     int8(0),
		"startTimestamp": int64(1700000000000),
		"endTimestamp":   uint32(1800000000),
	})
	h.connected(t, svc)

	r := getTournaments(t, h.session)
	if r.status != 0 || r.message != "Get Tournaments" || r.trace != "" {
		t.Errorf("result = %+v", r)
	}
	want := types.Tournament{ID: "-1", DisplayName: "Tournament -1", StartTimestamp: 1700000000000, EndTimestamp: 1800000000}
	if len(r.list) != 1 || r.list[0] != want {
		t.Errorf("list = %+v, want [%+v]", r.list, want)
	}
	if args := svc.argsOf(types.MethodGetTournamentTimes); len(args) != 1 || args[0] != testHostPackage {
		t.Errorf("args = %v", args)
	}
}

func TestGetTournaments_RemoteStatus(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodGetTournamentTimes, channel.Bag{"statusCode": int8(1)})
	h.connected(t, svc)

	r := getTournaments(t, h.session)
	if r.status != 1 || r.message != "Error on getTournaments method" || r.trace != "" || r.list != nil {
		t.Errorf("result = %+v", r)
	}
	if n := h.metrics.Snapshot().RemoteFailures[opTournaments]; n != 1 {
		t.Errorf("RemoteFailures = %d, want 1", n)
	}
}

func TestGetTournaments_ChannelFault(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.fail(types.MethodGetTournamentTimes, &channel.Fault{
		Kind:   channel.FaultTransport,
		Method: types.MethodGetTournamentTimes,
		Msg:    "connection lost",
	})
	h.connected(t, svc)

	r := getTournaments(t, h.session)
	if r.status != int(types.StatusFailure) {
		t.Errorf("status = %d, want FAILURE", r.status)
	}
	if !strings.Contains(r.message, "connection lost") {
		t.Errorf("message = %q", r.message)
	}
	if !strings.Contains(r.trace, "connection lost") {
		t.Errorf("trace = %q", r.trace)
	}
	if n := h.metrics.Snapshot().ChannelFaults[opTournaments]; n != 1 {
		t.Errorf("ChannelFaults = %d, want 1", n)
	}
}

func TestOperations_MalformedReplies(t *testing.T) {
	tests := []struct {
		name string
		bag  channel.Bag
	}{
		{"absent reply", nil},
		{"missing status", channel.Bag{"sessionId": "s"}},
		{"mistyped status", channel.Bag{"statusCode": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			svc := newFakeService()
			for _, m := range []string{types.MethodGetTournamentTimes, types.MethodStartTournamentMatch, types.MethodEndTournamentMatch} {
				svc.reply(m, tt.bag)
			}
			h.connected(t, svc)

			failure := int(types.StatusFailure)
			if r := getTournaments(t, h.session); r.status != failure || r.trace == "" || r.list != nil {
				t.Errorf("GetTournaments = %+v", r)
			}
			if r := startMatch(t, h.session, "m", "meta"); r.status != failure || r.matchID == "" {
				t.Errorf("StartMatch = %+v", r)
			}
			if r := endMatch(t, h.session, "s", 3); r.status != failure || r.metadata != "" {
				t.Errorf("EndMatch = %+v", r)
			}
		})
	}
}

func TestStartMatch_Success(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodStartTournamentMatch, channel.Bag{"statusCode": int8(0), "sessionId": "sess-9"})
	h.connected(t, svc)

	r := startMatch(t, h.session, "match-1", `{"level":2}`)
	if r.status != 0 || r.message != "sess-9" || r.matchID != "match-1" || r.metadata != `{"level":2}` {
		t.Errorf("result = %+v", r)
	}

	m := types.MatchFromCallback(r.status, r.message, r.matchID, r.metadata)
	if m == nil || m.SessionID != "sess-9" {
		t.Errorf("MatchFromCallback = %+v", m)
	}

	args := svc.argsOf(types.MethodStartTournamentMatch)
	if len(args) != 3 || args[0] != testHostPackage || args[1] != "match-1" || args[2] != `{"level":2}` {
		t.Errorf("args = %v", args)
	}

	events := h.waitPublished(t, 1)
	if len(events) != 1 {
		t.Fatalf("published %d events, want 1", len(events))
	}
	e := events[0]
	if e.EventType != adapter.EventMatchStarted || e.SessionID != "sess-9" || e.MatchID != "match-1" {
		t.Errorf("event = %+v", e)
	}
	if e.BridgeSession != "test" || e.HostPackage != testHostPackage {
		t.Errorf("event session fields = %+v", e)
	}
}

func TestStartMatch_DefaultSessionID(t *testing.T) {
	h := newHarness(t)
	h.connected(t, newFakeService())

	r := startMatch(t, h.session, "match-1", "meta")
	if r.status != 0 || r.message != "sessionId" {
		t.Errorf("result = %+v, want session id placeholder", r)
	}
}

func TestStartMatch_RemoteStatus(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodStartTournamentMatch, channel.Bag{"statusCode": int8(5)})
	h.connected(t, svc)

	r := startMatch(t, h.session, "match-1", "meta")
	if r.status != 5 || r.message != "Error on startTournamentMatch" || r.matchID != "" || r.metadata != "" {
		t.Errorf("result = %+v", r)
	}
	if n := len(h.publisher.published()); n != 0 {
		t.Errorf("published %d events on failure, want 0", n)
	}
}

func TestEndMatch_Success(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodEndTournamentMatch, channel.Bag{
		"statusCode": int8(0),
		"matchId":    "match-1",
		"metadata":   "final",
	})
	h.connected(t, svc)

	r := endMatch(t, h.session, "sess-9", 1234.5)
	if r.status != 0 || r.message != "sess-9" || r.matchID != "match-1" || r.metadata != "final" {
		t.Errorf("result = %+v", r)
	}

	args := svc.argsOf(types.MethodEndTournamentMatch)
	if len(args) != 2 || args[0] != "sess-9" || args[1] != float32(1234.5) {
		t.Errorf("args = %v", args)
	}

	events := h.waitPublished(t, 1)
	if len(events) != 1 {
		t.Fatalf("published %d events, want 1", len(events))
	}
	if e := events[0]; e.EventType != adapter.EventMatchEnded || e.Score == nil || *e.Score != 1234.5 {
		t.Errorf("event = %+v", e)
	}
}

func TestEndMatch_Defaults(t *testing.T) {
	h := newHarness(t)
	h.connected(t, newFakeService())

	r := endMatch(t, h.session, "sess-9", 1)
	if r.status != 0 || r.message != "sess-9" || r.matchID != "matchId" || r.metadata != "metadata" {
		t.Errorf("result = %+v", r)
	}
}

func TestEndMatch_UnknownStatusPassesThrough(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodEndTournamentMatch, channel.Bag{"statusCode": int64(42)})
	h.connected(t, svc)

	r := endMatch(t, h.session, "sess-9", 1)
	if r.status != 42 || r.message != "Error on endTournamentMatch" {
		t.Errorf("result = %+v", r)
	}
}

func TestNotify_FailureDoesNotAffectCallback(t *testing.T) {
	h := newHarness(t)
	h.publisher.err = errors.New("broker down")
	h.connected(t, newFakeService())

	if r := startMatch(t, h.session, "match-1", "meta"); r.status != 0 {
		t.Errorf("status = %d, want 0", r.status)
	}
	eventually(t, "publish failure metric", func() bool { return h.metrics.Snapshot().PublishFailure == 1 })
	if snap := h.metrics.Snapshot(); snap.PublishSuccess != 0 {
		t.Errorf("publish metrics = %d ok, %d failed", snap.PublishSuccess, snap.PublishFailure)
	}
}

func TestStartMatch_SlowPublisherDoesNotBlock(t *testing.T) {
	gate := make(chan struct{})
	h := newHarness(t)
	h.publisher.gate = gate
	svc := newFakeService()
	svc.reply(types.MethodStartTournamentMatch, channel.Bag{"statusCode": int8(0), "sessionId": "sess-9"})
	h.connected(t, svc)

	returned := make(chan matchResult, 1)
	go func() {
		var r matchResult
		h.session.StartMatch(t.Context(), "match-1", "meta", func(status int, message, matchID, metadata string) {
			r = matchResult{status: status, message: message, matchID: matchID, metadata: metadata, calls: r.calls + 1}
		})
		returned <- r
	}()

	select {
	case r := <-returned:
		if r.calls != 1 || r.status != 0 || r.message != "sess-9" {
			t.Errorf("result = %+v", r)
		}
	case <-time.After(waitTimeout):
		close(gate)
		t.Fatal("StartMatch blocked on the publisher")
	}

	close(gate)
	if events := h.waitPublished(t, 1); events[0].EventType != adapter.EventMatchStarted {
		t.Errorf("event = %+v", events[0])
	}
}

func TestClose_DeliversQueuedNotifications(t *testing.T) {
	gate := make(chan struct{})
	h := newHarness(t)
	h.publisher.gate = gate
	h.connected(t, newFakeService())

	startMatch(t, h.session, "match-1", "meta")
	endMatch(t, h.session, "sessionId", 7)

	if err := h.session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-h.session.Done():
		t.Fatal("Done closed before queued notifications were delivered")
	case <-time.After(quietPeriod):
	}

	close(gate)
	select {
	case <-h.session.Done():
	case <-time.After(waitTimeout):
		t.Fatal("session did not stop")
	}

	events := h.publisher.published()
	if len(events) != 2 {
		t.Fatalf("published %d events, want 2", len(events))
	}
	if events[0].EventType != adapter.EventMatchStarted || events[1].EventType != adapter.EventMatchEnded {
		t.Errorf("event order = %s, %s", events[0].EventType, events[1].EventType)
	}
	if h.metrics.Snapshot().PublishSuccess != 2 {
		t.Errorf("PublishSuccess = %d, want 2", h.metrics.Snapshot().PublishSuccess)
	}
}

const leaderboardJSON = `[{"nickname":"ali","score":"10","award":"gold","hasFollowingEllipsis":false,"isCurrentUser":true,"isWinner":true}]`

func TestGetRanking_Success(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodGetCurrentLeaderboard, channel.Bag{
		"statusCode":      int8(0),
		"leaderboardData": leaderboardJSON,
	})
	h.connected(t, svc)

	r := getRanking(t, h.session)
	if r.status != 0 || r.message != "getTournamentRanking" || r.trace != leaderboardJSON {
		t.Errorf("result = %+v", r)
	}
	want := types.RankItem{Nickname: "ali", Score: "10", Award: "gold", IsCurrentUser: true, IsWinner: true}
	if len(r.items) != 1 || r.items[0] != want {
		t.Errorf("items = %+v, want [%+v]", r.items, want)
	}
}

func TestGetRanking_NullLeaderboardIsParseFailure(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodGetCurrentLeaderboard, channel.Bag{
		"statusCode":      int8(0),
		"leaderboardData": "null",
	})
	h.connected(t, svc)

	r := getRanking(t, h.session)
	if r.status != 0 || r.message != "Error on Ranking data parsing!" || r.items != nil {
		t.Errorf("result = %+v", r)
	}
}

func TestGetRanking_ParseFailureKeepsSuccessCode(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodGetCurrentLeaderboard, channel.Bag{
		"statusCode":      int8(0),
		"leaderboardData": "{broken",
	})
	h.connected(t, svc)

	r := getRanking(t, h.session)
	if r.status != 0 || r.message != "Error on Ranking data parsing!" || r.trace != "" || len(r.items) != 0 {
		t.Errorf("result = %+v", r)
	}
	if n := h.metrics.Snapshot().ParseErrors; n != 1 {
		t.Errorf("ParseErrors = %d, want 1", n)
	}
}

func TestGetRanking_AbsentReplyNeedsUpdate(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodGetCurrentLeaderboard, nil)
	h.connected(t, svc)

	r := getRanking(t, h.session)
	if r.status != int(types.StatusUpdateProvider) || r.message != "Get Ranking-data needs to new version of Cafebazaar!" {
		t.Errorf("result = %+v", r)
	}
}

func TestGetRanking_RemoteStatus(t *testing.T) {
	h := newHarness(t)
	svc := newFakeService()
	svc.reply(types.MethodGetCurrentLeaderboard, channel.Bag{"statusCode": int8(1)})
	h.connected(t, svc)

	r := getRanking(t, h.session)
	if r.status != 1 || r.message != "Error on getTournamentRanking" || r.items != nil {
		t.Errorf("result = %+v", r)
	}
}

func TestShowRanking(t *testing.T) {
	leaderboard := navigate.Target{
		URI:     "bazaar://tournament_leaderboard?package_name=" + testHostPackage,
		Package: "com.farsitel.bazaar",
	}
	login := navigate.Target{URI: "bazaar://login", Package: "com.farsitel.bazaar"}

	tests := []struct {
		name        string
		loggedIn    bool
		navErr      error
		wantStatus  types.Status
		wantMessage string
		wantTargets []navigate.Target
	}{
		{
			name:        "shown",
			loggedIn:    true,
			wantStatus:  types.StatusSuccess,
			wantMessage: "Last tournament ranking table shown.",
			wantTargets: []navigate.Target{leaderboard},
		},
		{
			name:        "navigation fails",
			loggedIn:    true,
			navErr:      errors.New("no activity found"),
			wantStatus:  types.StatusUpdateProvider,
			wantMessage: "Get Ranking-data needs to new version of Cafebazaar!",
			wantTargets: []navigate.Target{leaderboard},
		},
		{
			name:        "logged out",
			wantStatus:  types.StatusLoginProvider,
			wantMessage: "Login to Cafebazaar before!",
			wantTargets: []navigate.Target{login},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			svc := newFakeService()
			svc.setLoggedIn(tt.loggedIn)
			cb, results := recordConn()
			h.session.Connect(t.Context(), false, cb)
			h.platform.waitBind(t).connect(svc)
			waitConn(t, results)

			h.nav.Err = tt.navErr
			h.session.ShowRanking(t.Context(), "-1", cb)

			got := waitConn(t, results)
			if got.status != int(tt.wantStatus) || got.message != tt.wantMessage {
				t.Errorf("callback = %+v, want (%d, %q)", got, tt.wantStatus, tt.wantMessage)
			}
			if tt.navErr != nil && got.trace == "" {
				t.Error("expected trace on navigation failure")
			}

			targets := h.nav.Targets()
			if len(targets) != len(tt.wantTargets) {
				t.Fatalf("targets = %+v, want %+v", targets, tt.wantTargets)
			}
			for i := range targets {
				if targets[i] != tt.wantTargets[i] {
					t.Errorf("targets[%d] = %+v, want %+v", i, targets[i], tt.wantTargets[i])
				}
			}
			expectNoConn(t, results)
		})
	}
}

func TestShowRanking_ProviderMissing(t *testing.T) {
	h := newHarness(t)
	h.platform.infoErr = channel.ErrPackageNotFound

	cb, results := recordConn()
	h.session.ShowRanking(t.Context(), "-1", cb)

	got := waitConn(t, results)
	if got.status != int(types.StatusInstallProvider) {
		t.Errorf("status = %d, want %d", got.status, types.StatusInstallProvider)
	}
	targets := h.nav.Targets()
	if len(targets) != 1 || targets[0].URI != "https://cafebazaar.ir/install" {
		t.Errorf("targets = %+v", targets)
	}
}

func TestShowRanking_NotConnected(t *testing.T) {
	h := newHarness(t)

	cb, results := recordConn()
	h.session.ShowRanking(t.Context(), "-1", cb)

	got := waitConn(t, results)
	if got.status != int(types.StatusDisconnected) || got.message != "Connect to service before!" {
		t.Errorf("callback = %+v", got)
	}
}

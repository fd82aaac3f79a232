// Package protocol turns the flat reply bags returned by the game hub
// service into typed, per-operation replies.
//
// Every reply goes through Decode first, which validates the mandatory
// statusCode field. Operation-specific fields are optional and fall back to
// fixed defaults when absent.
package protocol

import (
	"errors"
	"fmt"

	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/types"
)

// Reply bag keys.
const (
	KeyStatusCode      = "statusCode"
	KeyStartTimestamp  = "startTimestamp"
	KeyEndTimestamp    = "endTimestamp"
	KeySessionID       = "sessionId"
	KeyMatchID         = "matchId"
	KeyMetadata        = "metadata"
	KeyLeaderboardData = "leaderboardData"
)

// Defaults used when a success reply omits a field.
const (
	DefaultSessionID = "sessionId"
	DefaultMatchID   = "matchId"
	DefaultMetadata  = "metadata"
)

var (
	// ErrEmptyReply is returned when the service replied with no bag at all.
	ErrEmptyReply = errors.New("empty reply")
	// ErrMissingStatus is returned when the bag has no integer statusCode.
	ErrMissingStatus = errors.New("reply has no integer statusCode")
)

// Reply is a reply bag whose status has been validated.
type Reply struct {
	Status types.Status
	Bag    channel.Bag
}

// Decode validates the mandatory status field of bag.
func Decode(bag channel.Bag) (*Reply, error) {
	if bag == nil {
		return nil, ErrEmptyReply
	}
	if !bag.Has(KeyStatusCode) {
		return nil, ErrMissingStatus
	}
	code, ok := bag.Int(KeyStatusCode)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrMissingStatus, bag[KeyStatusCode])
	}
	return &Reply{Status: types.Status(code), Bag: bag}, nil
}

// OK returns true if the remote reported success.
func (r *Reply) OK() bool {
	return r.Status == types.StatusSuccess
}

// TournamentTimes is the tournaments reply.
type TournamentTimes struct {
	StartTimestamp int64
	EndTimestamp   int64
}

// TournamentTimes extracts the tournament window, defaulting to 0.
func (r *Reply) TournamentTimes() TournamentTimes {
	return TournamentTimes{
		StartTimestamp: r.Bag.Int64Or(KeyStartTimestamp, 0),
		EndTimestamp:   r.Bag.Int64Or(KeyEndTimestamp, 0),
	}
}

// StartMatch is the start match reply.
type StartMatch struct {
	SessionID string
}

// StartMatch extracts the match session id, defaulting to "sessionId".
func (r *Reply) StartMatch() StartMatch {
	return StartMatch{SessionID: r.Bag.StringOr(KeySessionID, DefaultSessionID)}
}

// EndMatch is the end match reply.
type EndMatch struct {
	MatchID  string
	Metadata string
}

// EndMatch extracts the match id and metadata, defaulting to "matchId" and
// "metadata".
func (r *Reply) EndMatch() EndMatch {
	return EndMatch{
		MatchID:  r.Bag.StringOr(KeyMatchID, DefaultMatchID),
		Metadata: r.Bag.StringOr(KeyMetadata, DefaultMetadata),
	}
}

// Leaderboard is the ranking reply. Data is the raw serialized array.
type Leaderboard struct {
	Data string
}

// Leaderboard extracts the raw leaderboard payload. Absent means empty.
func (r *Reply) Leaderboard() Leaderboard {
	return Leaderboard{Data: r.Bag.StringOr(KeyLeaderboardData, "")}
}

// Items parses the leaderboard payload.
func (l Leaderboard) Items() ([]types.RankItem, error) {
	return ParseLeaderboard(l.Data)
}

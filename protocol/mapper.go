package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pithecene-io/gamehub/types"
)

// SyntheticTournamentID is the id of the single tournament the bridge reports.
const SyntheticTournamentID = "-1"

// Tournaments maps a tournament window to the listing handed to callers.
// The provider's window is reported as exactly one synthetic tournament.
func Tournaments(t TournamentTimes) []types.Tournament {
	return []types.Tournament{{
		ID:             SyntheticTournamentID,
		DisplayName:    "Tournament " + SyntheticTournamentID,
		StartTimestamp: t.StartTimestamp,
		EndTimestamp:   t.EndTimestamp,
	}}
}

// rankItemWire mirrors one leaderboard object. Pointers detect missing
// and null fields.
type rankItemWire struct {
	Nickname             *textValue `json:"nickname"`
	Score                *textValue `json:"score"`
	Award                *textValue `json:"award"`
	HasFollowingEllipsis *flagValue `json:"hasFollowingEllipsis"`
	IsCurrentUser        *flagValue `json:"isCurrentUser"`
	IsWinner             *flagValue `json:"isWinner"`
}

// textValue is a text field. Providers send scores both as strings and as
// numbers, so numbers and booleans are kept as their literal JSON text.
type textValue string

func (v *textValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = textValue(s)
		return nil
	}
	if !bytes.Equal(b, []byte("true")) && !bytes.Equal(b, []byte("false")) {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("want string, number or boolean, got %s", b)
		}
	}
	*v = textValue(b)
	return nil
}

// flagValue is a boolean field that also accepts "true" and "false" strings
// in any case.
type flagValue bool

func (v *flagValue) UnmarshalJSON(b []byte) error {
	var x bool
	if err := json.Unmarshal(b, &x); err == nil {
		*v = flagValue(x)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch strings.ToLower(s) {
		case "true":
			*v = true
			return nil
		case "false":
			*v = false
			return nil
		}
	}
	return fmt.Errorf("want boolean, got %s", b)
}

// ParseError reports a malformed leaderboard payload.
type ParseError struct {
	Index int // -1 when the array itself is malformed
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	prefix := "leaderboard"
	if e.Index >= 0 {
		prefix = fmt.Sprintf("leaderboard[%d]", e.Index)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseLeaderboard parses a serialized array of rank objects.
// Every field is required and non-null. Text fields take strings, numbers
// or booleans; flag fields take booleans or "true"/"false" strings.
func ParseLeaderboard(data string) ([]types.RankItem, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, &ParseError{Index: -1, Msg: "not a JSON array", Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Index: -1, Msg: "not a JSON array"}
	}

	items := make([]types.RankItem, 0, len(raw))
	for i, elem := range raw {
		var w rankItemWire
		if err := json.Unmarshal(elem, &w); err != nil {
			return nil, &ParseError{Index: i, Msg: "not a rank object", Err: err}
		}
		if w.Nickname == nil || w.Score == nil || w.Award == nil ||
			w.HasFollowingEllipsis == nil || w.IsCurrentUser == nil || w.IsWinner == nil {
			return nil, &ParseError{Index: i, Msg: "missing field"}
		}
		items = append(items, types.RankItem{
			Nickname:             string(*w.Nickname),
			Score:                string(*w.Score),
			Award:                string(*w.Award),
			HasFollowingEllipsis: bool(*w.HasFollowingEllipsis),
			IsCurrentUser:        bool(*w.IsCurrentUser),
			IsWinner:             bool(*w.IsWinner),
		})
	}
	return items, nil
}

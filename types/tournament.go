package types

// Tournament describes a tournament window reported by the provider.
type Tournament struct {
	ID             string `json:"id" yaml:"id"`
	DisplayName    string `json:"display_name" yaml:"display_name"`
	StartTimestamp int64  `json:"start_timestamp" yaml:"start_timestamp" table:"epoch"`
	EndTimestamp   int64  `json:"end_timestamp" yaml:"end_timestamp" table:"epoch"`
}

// RankItem is a single leaderboard row.
// JSON tags match the provider's leaderboardData payload.
type RankItem struct {
	Nickname             string `json:"nickname" yaml:"nickname"`
	Score                string `json:"score" yaml:"score"`
	Award                string `json:"award" yaml:"award"`
	HasFollowingEllipsis bool   `json:"hasFollowingEllipsis" yaml:"has_following_ellipsis" table:"flag"`
	IsCurrentUser        bool   `json:"isCurrentUser" yaml:"is_current_user" table:"flag"`
	IsWinner             bool   `json:"isWinner" yaml:"is_winner" table:"flag"`
}

// Match is the typed view of a successful match callback.
// The session id is an opaque correlation token owned by the caller.
type Match struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	MatchID   string `json:"match_id" yaml:"match_id"`
	Metadata  string `json:"metadata" yaml:"metadata"`
}

// MatchFromCallback builds a Match from MatchCallback arguments.
// Returns nil unless status is a success, since the positional fields only
// carry match data on the success path.
func MatchFromCallback(status int, message, matchID, metadata string) *Match {
	if Status(status) != StatusSuccess {
		return nil
	}
	return &Match{SessionID: message, MatchID: matchID, Metadata: metadata}
}

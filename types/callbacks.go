package types

// ConnectionCallback receives the outcome of connect, login and show-ranking
// sequences.
type ConnectionCallback func(status int, message, stackTrace string)

// TournamentsCallback receives the tournament listing.
// tournaments is nil on every non-success path.
type TournamentsCallback func(status int, message, stackTrace string, tournaments []Tournament)

// MatchCallback receives start and end match outcomes.
//
// On a successful start the second argument carries the session id, not a
// message; on a successful end it carries the caller's session id. On error
// paths it carries the error message and matchID carries the trace, if any.
type MatchCallback func(status int, message, matchID, metadata string)

// RankingCallback receives the ranking of the current tournament.
// On success stackTrace carries the raw leaderboard payload.
type RankingCallback func(status int, message, stackTrace string, items []RankItem)

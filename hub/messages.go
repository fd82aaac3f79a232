package hub

import "fmt"

// User-facing messages delivered through callbacks.
const (
	msgConnectBefore  = "Connect to service before!"
	msgConnected      = "GameHub service connected."
	msgDisconnected   = "GameHub service disconnected."
	msgBindTimeout    = "GameHub service bind timed out."
	msgTournaments    = "Get Tournaments"
	msgRankingShown   = "Last tournament ranking table shown."
	msgRankingParse   = "Error on Ranking data parsing!"
	msgRankingSuccess = "getTournamentRanking"

	msgErrTournaments = "Error on getTournaments method"
	msgErrStartMatch  = "Error on startTournamentMatch"
	msgErrEndMatch    = "Error on endTournamentMatch"
	msgErrRanking     = "Error on getTournamentRanking"
)

func msgInstall(p Provider) string {
	return fmt.Sprintf("Install %s to support GameHub!", p.Name)
}

func msgUpdate(p Provider) string {
	return fmt.Sprintf("Install new version of %s to support GameHub!", p.Name)
}

func msgUnsupported(p Provider) string {
	return fmt.Sprintf("GameHub service is not supported by installed %s!", p.Name)
}

func msgLogin(p Provider) string {
	return fmt.Sprintf("Login to %s before!", p.Name)
}

func msgRankingUpdate(p Provider) string {
	return fmt.Sprintf("Get Ranking-data needs to new version of %s!", p.Name)
}

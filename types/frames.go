package types

// Frame type discriminants for the provider IPC contract.
const (
	HelloFrameType   = "hello"
	RequestFrameType = "request"
	ReplyFrameType   = "reply"
)

// Remote method names understood by the provider's game hub service.
const (
	MethodIsLogin               = "isLogin"
	MethodGetTournamentTimes    = "getTournamentTimes"
	MethodStartTournamentMatch  = "startTournamentMatch"
	MethodEndTournamentMatch    = "endTournamentMatch"
	MethodGetCurrentLeaderboard = "getCurrentLeaderboard"
)

// HelloFrame is the first frame the provider writes after accepting a
// connection. Receiving it is what turns a bind into a connected event.
type HelloFrame struct {
	// Type is always "hello".
	Type string `msgpack:"type"`
	// ContractVersion is the provider's IPC contract version.
	ContractVersion string `msgpack:"contract_version"`
	// Service is the bound service name.
	Service string `msgpack:"service"`
}

// RequestFrame is a single remote call written by the bridge.
type RequestFrame struct {
	// Type is always "request".
	Type string `msgpack:"type"`
	// ID correlates the reply. Monotonic per connection, starts at 1.
	ID uint64 `msgpack:"id"`
	// Method is the remote method name.
	Method string `msgpack:"method"`
	// Args are the method arguments keyed by parameter name.
	Args map[string]any `msgpack:"args,omitempty"`
}

// ReplyFrame is the provider's answer to a RequestFrame.
type ReplyFrame struct {
	// Type is always "reply".
	Type string `msgpack:"type"`
	// ID matches the request ID.
	ID uint64 `msgpack:"id"`
	// Bag is the flat key/value reply. Absent when the provider returned nothing.
	Bag map[string]any `msgpack:"bag,omitempty"`
	// Error is set when the remote call itself failed.
	Error *string `msgpack:"error,omitempty"`
}

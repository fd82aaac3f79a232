package types

// SessionMeta identifies a bridge session in logs and adapter events.
type SessionMeta struct {
	// SessionID is a unique identifier for the bridge session (not a match session).
	SessionID string
	// HostPackage is the host application identity sent to the provider.
	HostPackage string
	// ProviderPackage is the provider application identity.
	ProviderPackage string
}

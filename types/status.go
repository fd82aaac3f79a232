// Package types defines the status vocabulary, callback surfaces and domain
// records shared by the GameHub bridge packages.
//
//nolint:revive // types is a common Go package naming convention
package types

import "fmt"

// Status is a bridge outcome code.
// The integer value is the level code used both by callbacks and by the
// remote service as the reply's statusCode field.
type Status int

// Status level codes. Values are part of the wire contract and must not change.
const (
	StatusSuccess         Status = 0
	StatusFailure         Status = 1
	StatusDisconnected    Status = 2
	StatusInstallProvider Status = 3
	StatusUpdateProvider  Status = 4
	StatusLoginProvider   Status = 5
)

// LevelCode returns the integer code delivered to callbacks.
func (s Status) LevelCode() int {
	return int(s)
}

// IsKnown returns true if s is one of the defined level codes.
// Remote services may report codes outside this set; they are passed through.
func (s Status) IsKnown() bool {
	return s >= StatusSuccess && s <= StatusLoginProvider
}

// String returns the canonical name of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailure:
		return "FAILURE"
	case StatusDisconnected:
		return "DISCONNECTED"
	case StatusInstallProvider:
		return "INSTALL_PROVIDER"
	case StatusUpdateProvider:
		return "UPDATE_PROVIDER"
	case StatusLoginProvider:
		return "LOGIN_PROVIDER"
	default:
		return fmt.Sprintf("STATUS(%d)", int(s))
	}
}

// NeedsProviderAction returns true if the user must act in the provider
// application (install, update or log in) before the bridge can progress.
func (s Status) NeedsProviderAction() bool {
	return s == StatusInstallProvider || s == StatusUpdateProvider || s == StatusLoginProvider
}

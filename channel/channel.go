// Package channel defines the boundary between the bridge and the platform's
// inter-process channel layer: package presence lookup, service discovery,
// asynchronous binding, and the synchronous request/reply calls exposed by a
// bound game hub service.
package channel

import (
	"context"
	"errors"
)

// ErrPackageNotFound is returned by Platform.PackageInfo when the package is
// not installed.
var ErrPackageNotFound = errors.New("package not found")

// PackageInfo is the installed metadata of an application package.
type PackageInfo struct {
	// Package is the application identity.
	Package string
	// VersionCode is the monotonically increasing build number.
	VersionCode int
}

// BindRequest is the fixed service-discovery descriptor used to bind.
type BindRequest struct {
	// Action names the service capability being requested.
	Action string
	// Package restricts discovery to one application.
	Package string
}

// ServiceInfo describes one service able to satisfy a BindRequest.
type ServiceInfo struct {
	// Package is the owning application.
	Package string
	// Action is the capability the service declares.
	Action string
	// Network is the dial network ("unix" or "tcp").
	Network string
	// Address is the dial address.
	Address string
}

// EventType discriminates binding events.
type EventType int

const (
	// EventConnected is delivered once the service handle is usable.
	EventConnected EventType = iota
	// EventDisconnected is delivered when the service goes away.
	EventDisconnected
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is a binding lifecycle notification.
type Event struct {
	Type EventType
	// Service is the bound handle. Set only for EventConnected.
	Service Service
	// Err is the cause of a disconnect, if known.
	Err error
}

// EventHandler receives binding events.
// It is invoked from the channel layer's own goroutines; implementations must
// hand the event off rather than mutate shared state directly.
type EventHandler func(Event)

// Binding is an established (or pending) bind. Unbind releases it.
// Events already in flight when Unbind is called may still be delivered;
// consumers must tolerate stale events.
type Binding interface {
	Unbind() error
}

// Platform is the host platform's package and service registry.
type Platform interface {
	// PackageInfo returns the installed metadata of pkg, or ErrPackageNotFound.
	PackageInfo(ctx context.Context, pkg string) (PackageInfo, error)
	// QueryServices lists services that can satisfy req. An empty list means
	// no installed service handles the request.
	QueryServices(ctx context.Context, req BindRequest) ([]ServiceInfo, error)
	// Bind starts an asynchronous bind to info. It returns as soon as the
	// bind is initiated; the outcome arrives through handler.
	Bind(ctx context.Context, info ServiceInfo, handler EventHandler) (Binding, error)
}

// Service is a bound game hub service.
// Every call blocks for one round trip. A nil Bag with a nil error means the
// service replied with nothing.
type Service interface {
	IsLogin(ctx context.Context) (bool, error)
	GetTournamentTimes(ctx context.Context, packageName string) (Bag, error)
	StartTournamentMatch(ctx context.Context, packageName, matchID, metadata string) (Bag, error)
	EndTournamentMatch(ctx context.Context, sessionID string, score float32) (Bag, error)
	GetCurrentLeaderboard(ctx context.Context, packageName string) (Bag, error)
}

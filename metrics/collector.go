// Package metrics provides per-session metrics collection for the GameHub
// bridge.
//
// The Collector accumulates counters during the lifetime of one session. It
// has no dependency on the bridge packages: operation names, outcomes and
// statuses are plain strings so the hub can label them freely.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all session metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Connect lifecycle
	ConnectsStarted   int64
	ConnectsSucceeded int64
	ConnectsFailed    int64
	FailedByStatus    map[string]int64
	Disconnects       int64
	BindTimeouts      int64

	// Remote calls, keyed by operation
	Calls          map[string]int64
	ChannelFaults  map[string]int64
	DecodeErrors   map[string]int64
	RemoteFailures map[string]int64
	ParseErrors    int64

	// Navigation
	Navigations        int64
	NavigationFailures int64

	// Adapter notifications
	PublishSuccess int64
	PublishFailure int64

	// Dimensions (informational, set at construction)
	SessionID       string
	HostPackage     string
	ProviderPackage string
}

// Collector accumulates metrics during a session.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	connectsStarted   int64
	connectsSucceeded int64
	connectsFailed    int64
	failedByStatus    map[string]int64
	disconnects       int64
	bindTimeouts      int64

	calls          map[string]int64
	channelFaults  map[string]int64
	decodeErrors   map[string]int64
	remoteFailures map[string]int64
	parseErrors    int64

	navigations        int64
	navigationFailures int64

	publishSuccess int64
	publishFailure int64

	sessionID       string
	hostPackage     string
	providerPackage string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(sessionID, hostPackage, providerPackage string) *Collector {
	return &Collector{
		failedByStatus:  make(map[string]int64),
		calls:           make(map[string]int64),
		channelFaults:   make(map[string]int64),
		decodeErrors:    make(map[string]int64),
		remoteFailures:  make(map[string]int64),
		sessionID:       sessionID,
		hostPackage:     hostPackage,
		providerPackage: providerPackage,
	}
}

// --- Connect lifecycle ---

// IncConnectStarted records a connect attempt.
func (c *Collector) IncConnectStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.connectsStarted++
	c.mu.Unlock()
}

// IncConnectSucceeded records a connect sequence that ended logged in.
func (c *Collector) IncConnectSucceeded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.connectsSucceeded++
	c.mu.Unlock()
}

// IncConnectFailed records a connect sequence that ended with status.
func (c *Collector) IncConnectFailed(status string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.connectsFailed++
	c.failedByStatus[status]++
	c.mu.Unlock()
}

// IncDisconnect records a disconnect delivered by the channel layer.
func (c *Collector) IncDisconnect() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.disconnects++
	c.mu.Unlock()
}

// IncBindTimeout records a bind that never completed.
func (c *Collector) IncBindTimeout() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.bindTimeouts++
	c.mu.Unlock()
}

// --- Remote calls ---
// Every operation invocation counts once in Calls, including calls that
// short-circuit before reaching the service.

// IncCall records an operation invocation.
func (c *Collector) IncCall(op string) {
	if c == nil {
		return
	}
	c.incKey(c.calls, op)
}

// IncChannelFault records a fault raised by the remote-call mechanism.
func (c *Collector) IncChannelFault(op string) {
	if c == nil {
		return
	}
	c.incKey(c.channelFaults, op)
}

// IncDecodeError records an absent or malformed reply.
func (c *Collector) IncDecodeError(op string) {
	if c == nil {
		return
	}
	c.incKey(c.decodeErrors, op)
}

// IncRemoteFailure records a reply carrying a non-success status.
func (c *Collector) IncRemoteFailure(op string) {
	if c == nil {
		return
	}
	c.incKey(c.remoteFailures, op)
}

// IncParseError records an unreadable leaderboard payload.
func (c *Collector) IncParseError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.parseErrors++
	c.mu.Unlock()
}

func (c *Collector) incKey(m map[string]int64, key string) {
	c.mu.Lock()
	m[key]++
	c.mu.Unlock()
}

// --- Navigation ---

// IncNavigation records an external navigation attempt.
func (c *Collector) IncNavigation() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.navigations++
	c.mu.Unlock()
}

// IncNavigationFailure records a navigation the handler refused.
func (c *Collector) IncNavigationFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.navigationFailures++
	c.mu.Unlock()
}

// --- Adapter ---

// IncPublishSuccess records a delivered adapter notification.
func (c *Collector) IncPublishSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.publishSuccess++
	c.mu.Unlock()
}

// IncPublishFailure records an adapter notification that was not delivered.
func (c *Collector) IncPublishFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.publishFailure++
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		ConnectsStarted:   c.connectsStarted,
		ConnectsSucceeded: c.connectsSucceeded,
		ConnectsFailed:    c.connectsFailed,
		FailedByStatus:    copyCounts(c.failedByStatus),
		Disconnects:       c.disconnects,
		BindTimeouts:      c.bindTimeouts,

		Calls:          copyCounts(c.calls),
		ChannelFaults:  copyCounts(c.channelFaults),
		DecodeErrors:   copyCounts(c.decodeErrors),
		RemoteFailures: copyCounts(c.remoteFailures),
		ParseErrors:    c.parseErrors,

		Navigations:        c.navigations,
		NavigationFailures: c.navigationFailures,

		PublishSuccess: c.publishSuccess,
		PublishFailure: c.publishFailure,

		SessionID:       c.sessionID,
		HostPackage:     c.hostPackage,
		ProviderPackage: c.providerPackage,
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Package adapter defines the notification boundary for match lifecycle
// events.
//
// Adapters publish match start and end notifications to downstream systems
// (leaderboard mirrors, analytics, anti-cheat). Publishing is best effort:
// the bridge delivers the match callback first and never fails an operation
// because a notification could not be sent.
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/pithecene-io/gamehub/types"
)

// Event types.
const (
	EventMatchStarted = "match_started"
	EventMatchEnded   = "match_ended"
)

// MatchEvent is the payload published after a successful start or end match.
type MatchEvent struct {
	ContractVersion string   `json:"contract_version"`
	EventType       string   `json:"event_type"`
	BridgeSession   string   `json:"bridge_session"`
	HostPackage     string   `json:"host_package"`
	ProviderPackage string   `json:"provider_package"`
	SessionID       string   `json:"session_id"`
	MatchID         string   `json:"match_id"`
	Metadata        string   `json:"metadata"`
	Score           *float32 `json:"score,omitempty"` // set on match_ended only
	Timestamp       string   `json:"timestamp"`       // RFC 3339
}

// NewMatchEvent builds an event of eventType for match, stamped with now.
func NewMatchEvent(eventType string, meta types.SessionMeta, match types.Match, now time.Time) *MatchEvent {
	return &MatchEvent{
		ContractVersion: types.ContractVersion,
		EventType:       eventType,
		BridgeSession:   meta.SessionID,
		HostPackage:     meta.HostPackage,
		ProviderPackage: meta.ProviderPackage,
		SessionID:       match.SessionID,
		MatchID:         match.MatchID,
		Metadata:        match.Metadata,
		Timestamp:       now.UTC().Format(time.RFC3339Nano),
	}
}

// WithScore returns e with the final score attached.
func (e *MatchEvent) WithScore(score float32) *MatchEvent {
	e.Score = &score
	return e
}

// Adapter publishes match events to a downstream system.
type Adapter interface {
	// Publish sends a match event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *MatchEvent) error

	// Close releases adapter resources.
	Close() error
}

// Backoff returns the delay before retry attempt n (n >= 1):
// 500ms, 1s, 2s, and so on.
func Backoff(n int) time.Duration {
	return time.Duration(1<<uint(n-1)) * 500 * time.Millisecond
}

// Retry runs attempt up to 1+retries times with exponential backoff between
// tries. It stops early when attempt succeeds, when ctx ends, or when stop
// reports the error as permanent. name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, attempt func(context.Context) error, stop func(error) bool) error {
	var lastErr error
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(Backoff(i)):
			}
		}

		lastErr = attempt(ctx)
		if lastErr == nil {
			return nil
		}
		if stop != nil && stop(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}

// Package redis implements a Redis adapter for match notifications.
//
// Each event is published as JSON on a pub/sub channel and the latest state
// of the match session is mirrored into a hash so late subscribers can
// catch up. Retries with exponential backoff on connection errors.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pithecene-io/gamehub/adapter"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "gamehub:matches"

// DefaultKeyPrefix prefixes the per-session match hash.
const DefaultKeyPrefix = "gamehub:match:"

// DefaultTTL is how long a match hash is kept after its last update.
const DefaultTTL = 24 * time.Hour

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis adapter.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: gamehub:matches).
	Channel string
	// KeyPrefix prefixes match hashes (default: gamehub:match:).
	KeyPrefix string
	// TTL is the expiry of match hashes (default 24h).
	TTL time.Duration
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 3).
	Retries int
}

// Adapter publishes match events via Redis.
type Adapter struct {
	config Config
	client *goredis.Client
}

// New creates a Redis adapter from the given config.
// Returns an error if the URL is empty or invalid.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}

	return &Adapter{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// MatchKey returns the hash key holding the state of a match session.
func (a *Adapter) MatchKey(sessionID string) string {
	return a.config.KeyPrefix + sessionID
}

// Publish mirrors the event into the match hash and publishes it as JSON,
// in one MULTI/EXEC transaction.
func (a *Adapter) Publish(ctx context.Context, event *adapter.MatchEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	fields := map[string]any{
		"state":      event.EventType,
		"match_id":   event.MatchID,
		"metadata":   event.Metadata,
		"updated_at": event.Timestamp,
	}
	if event.Score != nil {
		fields["score"] = *event.Score
	}
	key := a.MatchKey(event.SessionID)

	return adapter.Retry(ctx, "redis", a.config.Retries, func(ctx context.Context) error {
		publishCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()

		_, err := a.client.TxPipelined(publishCtx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(publishCtx, key, fields)
			pipe.Expire(publishCtx, key, a.config.TTL)
			pipe.Publish(publishCtx, a.config.Channel, body)
			return nil
		})
		return err
	}, nil)
}

// Close releases adapter resources.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// Verify Adapter implements the adapter interface.
var _ adapter.Adapter = (*Adapter)(nil)

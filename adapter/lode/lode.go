// Package lode provides an adapter that archives match events into a Lode
// dataset, on the local filesystem or in S3.
//
// Records are JSONL, Hive-partitioned by host_package/day/event_type.
package lode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/gamehub/adapter"
)

// DefaultDataset is the dataset id used when none is configured.
const DefaultDataset = "gamehub"

// RecordKindMatchEvent marks archived match events.
const RecordKindMatchEvent = "match_event"

// Backends.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// partitionKeys is the Hive layout shared by the write and read paths.
var partitionKeys = []string{"host_package", "day", "event_type"}

// Config configures the Lode adapter.
type Config struct {
	// Dataset is the Lode dataset id (default "gamehub").
	Dataset string
	// Backend is "fs" or "s3".
	Backend string
	// Path is a directory for fs, or bucket/prefix for s3.
	Path string
	// S3 holds the optional S3 settings. Bucket and Prefix are derived from Path.
	S3 S3Config
}

// Adapter writes each match event as a single-record Lode snapshot.
type Adapter struct {
	dataset lode.Dataset
}

// New creates a Lode adapter for the configured backend.
func New(cfg Config) (*Adapter, error) {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	if cfg.Path == "" {
		return nil, errors.New("lode adapter requires a path")
	}

	switch cfg.Backend {
	case BackendFS:
		return NewWithFactory(cfg.Dataset, lode.NewFSFactory(cfg.Path))
	case BackendS3:
		s3cfg := cfg.S3
		s3cfg.Bucket, s3cfg.Prefix = ParseS3Path(cfg.Path)
		factory, err := newS3Factory(s3cfg)
		if err != nil {
			return nil, err
		}
		return NewWithFactory(cfg.Dataset, factory)
	default:
		return nil, fmt.Errorf("lode adapter: unknown backend %q (must be fs or s3)", cfg.Backend)
	}
}

// NewWithFactory creates a Lode adapter over a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewWithFactory(dataset string, factory lode.StoreFactory) (*Adapter, error) {
	ds, err := NewDataset(dataset, factory)
	if err != nil {
		return nil, fmt.Errorf("lode adapter: %w", err)
	}
	return &Adapter{dataset: ds}, nil
}

// NewDataset opens a dataset with the adapter's layout and codec.
// The read path must use it too so partitions line up.
func NewDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(dataset),
		factory,
		lode.WithHiveLayout(partitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// ParseLocation splits an adapter URL into backend and path.
// "s3://bucket/prefix" selects S3; "file:///dir" and bare paths select fs.
func ParseLocation(raw string) (backend, path string, err error) {
	if !strings.Contains(raw, "://") {
		return BackendFS, raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("lode adapter: invalid URL: %w", err)
	}
	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			return "", "", errors.New("lode adapter: s3 URL requires a bucket")
		}
		return BackendS3, u.Host + strings.TrimSuffix(u.Path, "/"), nil
	case "file":
		return BackendFS, u.Path, nil
	default:
		return "", "", fmt.Errorf("lode adapter: unsupported URL scheme %q", u.Scheme)
	}
}

// Publish archives the event.
func (a *Adapter) Publish(ctx context.Context, event *adapter.MatchEvent) error {
	if _, err := a.dataset.Write(ctx, []any{toRecord(event)}, lode.Metadata{}); err != nil {
		return fmt.Errorf("lode adapter: write %s: %w", event.EventType, err)
	}
	return nil
}

// Close releases adapter resources.
func (a *Adapter) Close() error {
	// Dataset doesn't require explicit close in current Lode API
	return nil
}

// toRecord flattens an event into a Lode record carrying its partition keys.
func toRecord(e *adapter.MatchEvent) map[string]any {
	record := map[string]any{
		"record_kind":      RecordKindMatchEvent,
		"contract_version": e.ContractVersion,
		"event_type":       e.EventType,
		"bridge_session":   e.BridgeSession,
		"host_package":     e.HostPackage,
		"provider_package": e.ProviderPackage,
		"session_id":       e.SessionID,
		"match_id":         e.MatchID,
		"metadata":         e.Metadata,
		"timestamp":        e.Timestamp,
		"day":              deriveDay(e.Timestamp),
	}
	if e.Score != nil {
		record["score"] = float64(*e.Score)
	}
	return record
}

// deriveDay returns the UTC date of an RFC3339 timestamp, or "unknown".
func deriveDay(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return "unknown"
	}
	return t.UTC().Format("2006-01-02")
}

// Verify Adapter implements adapter.Adapter.
var _ adapter.Adapter = (*Adapter)(nil)

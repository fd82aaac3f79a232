package lode

import (
	"testing"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/gamehub/adapter"
	"github.com/pithecene-io/gamehub/iox"
)

// sharedFactory returns a StoreFactory that always returns the given store.
// Needed so the write and read datasets see the same data.
func sharedFactory(store lode.Store) lode.StoreFactory {
	return func() (lode.Store, error) { return store, nil }
}

func testEvent() *adapter.MatchEvent {
	return &adapter.MatchEvent{
		ContractVersion: "1.2.0",
		EventType:       adapter.EventMatchStarted,
		BridgeSession:   "bridge-001",
		HostPackage:     "com.example.game",
		ProviderPackage: "com.farsitel.bazaar",
		SessionID:       "match-sess-001",
		MatchID:         "match-001",
		Metadata:        `{"level":3}`,
		Timestamp:       "2026-02-07T12:00:00Z",
	}
}

func readLatest(t *testing.T, ds lode.Dataset) map[string]any {
	t.Helper()
	latest, err := ds.Latest(t.Context())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	data, err := ds.Read(t.Context(), latest.ID)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("expected 1 record, got %d", len(data))
	}
	record, ok := data[0].(map[string]any)
	if !ok {
		t.Fatalf("record is %T, want map", data[0])
	}
	return record
}

func TestPublish_MatchStarted(t *testing.T) {
	factory := sharedFactory(lode.NewMemory())

	a, err := NewWithFactory("test-dataset", factory)
	if err != nil {
		t.Fatalf("NewWithFactory: %v", err)
	}
	t.Cleanup(iox.CloseFunc(a))

	if err := a.Publish(t.Context(), testEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	ds, err := NewDataset("test-dataset", factory)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	record := readLatest(t, ds)

	want := map[string]string{
		"record_kind":    RecordKindMatchEvent,
		"event_type":     adapter.EventMatchStarted,
		"bridge_session": "bridge-001",
		"host_package":   "com.example.game",
		"session_id":     "match-sess-001",
		"match_id":       "match-001",
		"metadata":       `{"level":3}`,
		"day":            "2026-02-07",
	}
	for k, v := range want {
		if record[k] != v {
			t.Errorf("%s = %v, want %q", k, record[k], v)
		}
	}
	if _, ok := record["score"]; ok {
		t.Errorf("match_started record should carry no score: %v", record)
	}
}

func TestPublish_MatchEndedCarriesScore(t *testing.T) {
	factory := sharedFactory(lode.NewMemory())
	a, err := NewWithFactory(DefaultDataset, factory)
	if err != nil {
		t.Fatalf("NewWithFactory: %v", err)
	}

	e := testEvent()
	e.EventType = adapter.EventMatchEnded
	if err := a.Publish(t.Context(), e.WithScore(1234.5)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	ds, err := NewDataset(DefaultDataset, factory)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	record := readLatest(t, ds)
	if record["event_type"] != adapter.EventMatchEnded {
		t.Errorf("event_type = %v", record["event_type"])
	}
	if record["score"] != float64(1234.5) {
		t.Errorf("score = %v (%T), want 1234.5", record["score"], record["score"])
	}
}

func TestPublish_OneSnapshotPerEvent(t *testing.T) {
	factory := sharedFactory(lode.NewMemory())
	a, err := NewWithFactory(DefaultDataset, factory)
	if err != nil {
		t.Fatalf("NewWithFactory: %v", err)
	}

	for range 3 {
		if err := a.Publish(t.Context(), testEvent()); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	ds, err := NewDataset(DefaultDataset, factory)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	snaps, err := ds.Snapshots(t.Context())
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != 3 {
		t.Errorf("got %d snapshots, want 3", len(snaps))
	}
}

func TestDeriveDay(t *testing.T) {
	tests := []struct {
		ts   string
		want string
	}{
		{"2026-02-07T12:00:00Z", "2026-02-07"},
		{"2026-02-07T23:30:00.123456789-02:00", "2026-02-08"},
		{"not a time", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := deriveDay(tt.ts); got != tt.want {
			t.Errorf("deriveDay(%q) = %q, want %q", tt.ts, got, tt.want)
		}
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw         string
		wantBackend string
		wantPath    string
		wantErr     bool
	}{
		{"/var/lib/gamehub", BackendFS, "/var/lib/gamehub", false},
		{"./archive", BackendFS, "./archive", false},
		{"file:///var/lib/gamehub", BackendFS, "/var/lib/gamehub", false},
		{"s3://my-bucket", BackendS3, "my-bucket", false},
		{"s3://my-bucket/events/", BackendS3, "my-bucket/events", false},
		{"s3:///no-bucket", "", "", true},
		{"gs://bucket", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			backend, path, err := ParseLocation(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q %q", backend, path)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if backend != tt.wantBackend || path != tt.wantPath {
				t.Errorf("got (%q, %q), want (%q, %q)", backend, path, tt.wantBackend, tt.wantPath)
			}
		})
	}
}

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		path       string
		wantBucket string
		wantPrefix string
	}{
		{"bucket", "bucket", ""},
		{"bucket/prefix", "bucket", "prefix"},
		{"bucket/a/b", "bucket", "a/b"},
	}
	for _, tt := range tests {
		bucket, prefix := ParseS3Path(tt.path)
		if bucket != tt.wantBucket || prefix != tt.wantPrefix {
			t.Errorf("ParseS3Path(%q) = (%q, %q), want (%q, %q)", tt.path, bucket, prefix, tt.wantBucket, tt.wantPrefix)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing path", Config{Backend: BackendFS}},
		{"unknown backend", Config{Backend: "gcs", Path: "x"}},
		{"s3 without bucket", Config{Backend: BackendS3, Path: "/prefix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNew_FSBackend(t *testing.T) {
	a, err := New(Config{Backend: BackendFS, Path: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Publish(t.Context(), testEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

package hub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pithecene-io/gamehub/adapter"
	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/metrics"
	"github.com/pithecene-io/gamehub/navigate"
	"github.com/pithecene-io/gamehub/types"
)

const (
	testHostPackage = "com.example.game"
	waitTimeout     = 2 * time.Second
	quietPeriod     = 100 * time.Millisecond
)

// fakePlatform is a scripted channel.Platform.
type fakePlatform struct {
	info     channel.PackageInfo
	infoErr  error
	services []channel.ServiceInfo
	queryErr error
	bindErr  error

	queries atomic.Int32
	bound   chan *fakeBinding
}

func newFakePlatform() *fakePlatform {
	p := DefaultProvider()
	return &fakePlatform{
		info: channel.PackageInfo{Package: p.Package, VersionCode: p.MinimumVersion},
		services: []channel.ServiceInfo{{
			Package: p.Package,
			Action:  p.BindAction,
			Network: "unix",
			Address: "/tmp/gamehub.sock",
		}},
		bound: make(chan *fakeBinding, 8),
	}
}

func (p *fakePlatform) PackageInfo(_ context.Context, _ string) (channel.PackageInfo, error) {
	if p.infoErr != nil {
		return channel.PackageInfo{}, p.infoErr
	}
	return p.info, nil
}

func (p *fakePlatform) QueryServices(_ context.Context, _ channel.BindRequest) ([]channel.ServiceInfo, error) {
	p.queries.Add(1)
	return p.services, p.queryErr
}

func (p *fakePlatform) Bind(_ context.Context, _ channel.ServiceInfo, handler channel.EventHandler) (channel.Binding, error) {
	if p.bindErr != nil {
		return nil, p.bindErr
	}
	b := &fakeBinding{handler: handler}
	p.bound <- b
	return b, nil
}

// waitBind returns the next binding started on p.
func (p *fakePlatform) waitBind(t *testing.T) *fakeBinding {
	t.Helper()
	select {
	case b := <-p.bound:
		return b
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for bind")
		return nil
	}
}

type fakeBinding struct {
	handler channel.EventHandler
	unbinds atomic.Int32
}

func (b *fakeBinding) Unbind() error {
	b.unbinds.Add(1)
	return nil
}

func (b *fakeBinding) connect(svc channel.Service) {
	b.handler(channel.Event{Type: channel.EventConnected, Service: svc})
}

func (b *fakeBinding) disconnect() {
	b.handler(channel.Event{Type: channel.EventDisconnected, Err: errors.New("peer gone")})
}

// fakeService is a scripted channel.Service. Methods without a scripted
// reply answer with a bare success bag.
type fakeService struct {
	mu       sync.Mutex
	loggedIn bool
	loginErr error
	replies  map[string]channel.Bag
	errs     map[string]error
	calls    []string
	args     map[string][]any
}

func newFakeService() *fakeService {
	return &fakeService{
		loggedIn: true,
		replies:  make(map[string]channel.Bag),
		errs:     make(map[string]error),
		args:     make(map[string][]any),
	}
}

func (f *fakeService) setLoggedIn(v bool) {
	f.mu.Lock()
	f.loggedIn = v
	f.mu.Unlock()
}

func (f *fakeService) reply(method string, bag channel.Bag) {
	f.mu.Lock()
	f.replies[method] = bag
	f.mu.Unlock()
}

func (f *fakeService) fail(method string, err error) {
	f.mu.Lock()
	f.errs[method] = err
	f.mu.Unlock()
}

func (f *fakeService) record(method string, args ...any) (channel.Bag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	f.args[method] = args
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	if bag, ok := f.replies[method]; ok {
		return bag, nil
	}
	return channel.Bag{"statusCode": int8(0)}, nil
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeService) argsOf(method string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.args[method]
}

func (f *fakeService) IsLogin(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, types.MethodIsLogin)
	return f.loggedIn, f.loginErr
}

func (f *fakeService) GetTournamentTimes(_ context.Context, packageName string) (channel.Bag, error) {
	return f.record(types.MethodGetTournamentTimes, packageName)
}

func (f *fakeService) StartTournamentMatch(_ context.Context, packageName, matchID, metadata string) (channel.Bag, error) {
	return f.record(types.MethodStartTournamentMatch, packageName, matchID, metadata)
}

func (f *fakeService) EndTournamentMatch(_ context.Context, sessionID string, score float32) (channel.Bag, error) {
	return f.record(types.MethodEndTournamentMatch, sessionID, score)
}

func (f *fakeService) GetCurrentLeaderboard(_ context.Context, packageName string) (channel.Bag, error) {
	return f.record(types.MethodGetCurrentLeaderboard, packageName)
}

// fakePublisher records match events. A non-nil gate holds every
// Publish until it is closed.
type fakePublisher struct {
	gate chan struct{}

	mu     sync.Mutex
	err    error
	events []*adapter.MatchEvent
}

func (p *fakePublisher) Publish(_ context.Context, event *adapter.MatchEvent) error {
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) published() []*adapter.MatchEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*adapter.MatchEvent, len(p.events))
	copy(out, p.events)
	return out
}

// harness bundles a session with its fakes.
type harness struct {
	session   *Session
	platform  *fakePlatform
	nav       *navigate.Recorder
	metrics   *metrics.Collector
	publisher *fakePublisher
}

func newHarness(t *testing.T, mutate ...func(*SessionConfig)) *harness {
	t.Helper()
	h := &harness{
		platform:  newFakePlatform(),
		nav:       &navigate.Recorder{},
		metrics:   metrics.NewCollector("test", testHostPackage, DefaultProvider().Package),
		publisher: &fakePublisher{},
	}
	cfg := SessionConfig{
		Platform:    h.platform,
		HostPackage: testHostPackage,
		SessionID:   "test",
		Navigator:   h.nav,
		Metrics:     h.metrics,
		Publisher:   h.publisher,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	h.session = s
	return h
}

// connected drives a full successful connect against svc.
func (h *harness) connected(t *testing.T, svc *fakeService) *fakeBinding {
	t.Helper()
	cb, results := recordConn()
	h.session.Connect(t.Context(), false, cb)
	b := h.platform.waitBind(t)
	b.connect(svc)
	if got := waitConn(t, results); got.status != 0 {
		t.Fatalf("connect status = %d (%s), want 0", got.status, got.message)
	}
	return b
}

type connResult struct {
	status  int
	message string
	trace   string
}

func recordConn() (types.ConnectionCallback, chan connResult) {
	ch := make(chan connResult, 8)
	return func(status int, message, stackTrace string) {
		ch <- connResult{status: status, message: message, trace: stackTrace}
	}, ch
}

func waitConn(t *testing.T, ch <-chan connResult) connResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for connection callback")
		return connResult{}
	}
}

func expectNoConn(t *testing.T, ch <-chan connResult) {
	t.Helper()
	select {
	case r := <-ch:
		t.Fatalf("unexpected connection callback: %+v", r)
	case <-time.After(quietPeriod):
	}
}

// waitPublished waits until the publisher has seen n events.
func (h *harness) waitPublished(t *testing.T, n int) []*adapter.MatchEvent {
	t.Helper()
	eventually(t, "match notifications", func() bool { return len(h.publisher.published()) >= n })
	return h.publisher.published()
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

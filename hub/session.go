// Package hub implements the GameHub bridge: availability checks, the
// session state machine around the provider's bound service, and the
// request/response operations exposed to the host.
//
// A Session owns one goroutine, its loop. Every state transition runs on
// the loop: channel events and timers post closures into its inbox rather
// than touching state directly. Operations called from other goroutines read
// an atomically published snapshot of the bound service and last Result.
package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pithecene-io/gamehub/adapter"
	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/log"
	"github.com/pithecene-io/gamehub/metrics"
	"github.com/pithecene-io/gamehub/types"
)

// inboxSize is the loop inbox capacity.
const inboxSize = 64

// eventQueueSize is the capacity of the match notification queue.
const eventQueueSize = 64

// snapshot is the state visible outside the loop.
type snapshot struct {
	service channel.Service
	result  types.Result
}

// Session is one bridge session with the provider's game hub service.
type Session struct {
	platform       channel.Platform
	opener         opener
	logger         *log.Logger
	metrics        *metrics.Collector
	publisher      adapter.Adapter
	onStateChange  func(types.Result)
	provider       Provider
	hostPackage    string
	bindTimeout    time.Duration
	publishTimeout time.Duration
	meta           types.SessionMeta

	ctx       context.Context
	cancel    context.CancelFunc
	inbox     chan func()
	events    chan *adapter.MatchEvent
	workers   sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once

	disposed atomic.Bool
	snap     atomic.Pointer[snapshot]

	// Loop-owned.
	binding    channel.Binding
	service    channel.Service
	result     types.Result
	pending    types.ConnectionCallback
	generation uint64
	bindTimer  *time.Timer
}

// NewSession creates a session and starts its loop.
// The session is Unbound until Connect is called.
func NewSession(cfg SessionConfig) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		platform:       cfg.Platform,
		opener:         opener{nav: cfg.Navigator, logger: cfg.Logger, metrics: cfg.Metrics},
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		publisher:      cfg.Publisher,
		onStateChange:  cfg.OnStateChange,
		provider:       cfg.Provider,
		hostPackage:    cfg.HostPackage,
		bindTimeout:    cfg.BindTimeout,
		publishTimeout: cfg.PublishTimeout,
		meta: types.SessionMeta{
			SessionID:       cfg.SessionID,
			HostPackage:     cfg.HostPackage,
			ProviderPackage: cfg.Provider.Package,
		},
		ctx:    ctx,
		cancel: cancel,
		inbox:  make(chan func(), inboxSize),
		done:   make(chan struct{}),
		result: types.NewResult(types.StatusDisconnected, ""),
	}
	s.snap.Store(&snapshot{result: s.result})

	s.workers.Add(1)
	go s.loop()
	if s.publisher != nil {
		s.events = make(chan *adapter.MatchEvent, eventQueueSize)
		s.workers.Add(1)
		go s.publishLoop()
	}
	go func() {
		s.workers.Wait()
		close(s.done)
	}()
	return s, nil
}

func (s *Session) loop() {
	defer s.workers.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return
		case fn := <-s.inbox:
			fn()
		}
	}
}

// post queues fn for the loop. Returns false once the session is closed.
// It blocks while the inbox is full, so the loop itself uses schedule.
func (s *Session) post(fn func()) bool {
	select {
	case s.inbox <- fn:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// schedule queues fn for a later loop turn without blocking the caller.
// closed, if set, runs instead when the session is already closed.
func (s *Session) schedule(fn, closed func()) {
	go func() {
		if !s.post(fn) && closed != nil {
			closed()
		}
	}()
}

// publish makes the loop state visible to other goroutines.
func (s *Session) publish() {
	prev := s.snap.Load()
	s.snap.Store(&snapshot{service: s.service, result: s.result})
	if s.onStateChange != nil && prev.result != s.result {
		s.onStateChange(s.result)
	}
}

// setResult records res as the session Result.
func (s *Session) setResult(res types.Result) {
	s.result = res
	s.publish()
}

// Meta returns the session identity.
func (s *Session) Meta() types.SessionMeta {
	return s.meta
}

// Version returns the bridge version.
func (s *Session) Version() string {
	return types.Version
}

// State returns the last session Result.
// Once disposed, the status is always DISCONNECTED.
func (s *Session) State() types.Result {
	res := s.snap.Load().result
	if s.disposed.Load() {
		res.Status = types.StatusDisconnected
	}
	return res
}

// Bound returns true if a service handle is held and the session is live.
func (s *Session) Bound() bool {
	return !s.disposed.Load() && s.snap.Load().service != nil
}

// Disposed returns true once Dispose has been called.
func (s *Session) Disposed() bool {
	return s.disposed.Load()
}

// Connect checks availability, binds to the game hub service and verifies
// login. cb fires exactly once: synchronously when the availability check
// fails, otherwise later on the session loop.
func (s *Session) Connect(ctx context.Context, showPrompts bool, cb types.ConnectionCallback) {
	s.metrics.IncConnectStarted()
	if s.disposed.Load() {
		s.metrics.IncConnectFailed(types.StatusDisconnected.String())
		types.NewResult(types.StatusDisconnected, msgDisconnected).Call(cb)
		return
	}

	res := checkAvailability(ctx, s.platform, s.opener, s.provider, showPrompts)
	if !res.OK() {
		s.metrics.IncConnectFailed(res.Status.String())
		s.schedule(func() {
			if !s.disposed.Load() {
				s.setResult(res)
			}
		}, nil)
		res.Call(cb)
		return
	}

	s.logger.Debug("GameHub service started.", nil)
	s.schedule(func() { s.bind(showPrompts, res, cb) }, func() {
		s.metrics.IncConnectFailed(types.StatusDisconnected.String())
		types.NewResult(types.StatusDisconnected, msgDisconnected).Call(cb)
	})
}

// bind starts a bind on the loop. Any earlier binding is released first.
func (s *Session) bind(showPrompts bool, res types.Result, cb types.ConnectionCallback) {
	if s.disposed.Load() {
		return
	}
	if prev := s.takePending(); prev != nil {
		s.finishConnect(prev, types.NewResult(types.StatusDisconnected, msgDisconnected))
	}
	s.release()
	s.setResult(res)

	req := channel.BindRequest{Action: s.provider.BindAction, Package: s.provider.Package}
	services, err := s.platform.QueryServices(s.ctx, req)
	if err != nil {
		s.finishConnect(cb, types.Result{Status: types.StatusFailure, Message: err.Error(), StackTrace: trace(err)})
		return
	}
	if len(services) == 0 {
		s.logger.Warn("no service handles bind request", map[string]any{
			"action":  req.Action,
			"package": req.Package,
		})
		s.finishConnect(cb, types.NewResult(types.StatusUpdateProvider, msgUnsupported(s.provider)))
		return
	}

	gen := s.generation
	binding, err := s.platform.Bind(s.ctx, services[0], func(ev channel.Event) {
		s.post(func() { s.handleEvent(gen, showPrompts, ev) })
	})
	if err != nil {
		s.finishConnect(cb, types.Result{Status: types.StatusFailure, Message: err.Error(), StackTrace: trace(err)})
		return
	}

	s.binding = binding
	s.pending = cb
	if s.bindTimeout > 0 {
		s.bindTimer = time.AfterFunc(s.bindTimeout, func() {
			s.post(func() { s.handleBindTimeout(gen) })
		})
	}
	s.logger.Debug("bind started", map[string]any{
		"address":    services[0].Address,
		"generation": gen,
	})
}

// handleEvent applies a binding event. Events from an older binding, or
// arriving after Dispose, are dropped.
func (s *Session) handleEvent(gen uint64, showPrompts bool, ev channel.Event) {
	if s.disposed.Load() || gen != s.generation {
		s.logger.Debug("dropping stale binding event", map[string]any{
			"event":      ev.Type.String(),
			"generation": gen,
		})
		return
	}

	switch ev.Type {
	case channel.EventConnected:
		s.stopBindTimer()
		s.service = ev.Service
		s.setResult(types.NewResult(types.StatusSuccess, ""))
		s.logger.Debug("GameHub service bound.", map[string]any{"generation": gen})
		s.schedule(func() { s.verifyLogin(gen, showPrompts) }, nil)

	case channel.EventDisconnected:
		fields := map[string]any{"generation": gen}
		if ev.Err != nil {
			fields["error"] = ev.Err.Error()
		}
		s.logger.Info(msgDisconnected, fields)
		s.metrics.IncDisconnect()
		s.release()
		s.finishConnect(s.takePending(), types.NewResult(types.StatusDisconnected, msgDisconnected))
	}
}

// verifyLogin is the continuation of a connected event.
func (s *Session) verifyLogin(gen uint64, showPrompts bool) {
	if s.disposed.Load() || gen != s.generation || s.service == nil {
		return
	}

	res := s.checkLogin(s.ctx, s.service, showPrompts)
	if res.OK() {
		res.Message = msgConnected
		s.logger.Info(msgConnected, nil)
	}
	s.finishConnect(s.takePending(), res)
}

func (s *Session) handleBindTimeout(gen uint64) {
	if s.disposed.Load() || gen != s.generation || s.service != nil {
		return
	}
	s.bindTimer = nil
	s.logger.Warn(msgBindTimeout, map[string]any{"timeout": s.bindTimeout.String()})
	s.metrics.IncBindTimeout()
	s.release()
	s.finishConnect(s.takePending(), types.NewResult(types.StatusDisconnected, msgBindTimeout))
}

// finishConnect records res and delivers it to cb, if any.
func (s *Session) finishConnect(cb types.ConnectionCallback, res types.Result) {
	s.setResult(res)
	if cb == nil {
		return
	}
	if res.OK() {
		s.metrics.IncConnectSucceeded()
	} else {
		s.metrics.IncConnectFailed(res.Status.String())
	}
	res.Call(cb)
}

func (s *Session) takePending() types.ConnectionCallback {
	cb := s.pending
	s.pending = nil
	return cb
}

func (s *Session) stopBindTimer() {
	if s.bindTimer != nil {
		s.bindTimer.Stop()
		s.bindTimer = nil
	}
}

// release drops the current binding and handle. Events still in flight
// from it are ignored afterwards.
func (s *Session) release() {
	s.stopBindTimer()
	if s.binding != nil {
		if err := s.binding.Unbind(); err != nil {
			s.logger.Warn("unbind failed", map[string]any{"error": err.Error()})
		}
		s.binding = nil
	}
	s.service = nil
	s.generation++
}

// Dispose ends the session for the host. It is idempotent and one-way:
// pending callbacks are dropped, later events are ignored and every
// operation short-circuits with DISCONNECTED. Remote calls already in
// flight are not cancelled and the binding stays open until Close.
func (s *Session) Dispose() {
	if s.disposed.Swap(true) {
		return
	}
	s.logger.Info("GameHub session disposed.", nil)
	s.schedule(func() {
		s.stopBindTimer()
		s.pending = nil
		s.service = nil
		s.result.Status = types.StatusDisconnected
		s.publish()
	}, nil)
}

// Close disposes the session, releases the binding and stops the loop.
// It does not wait; use Done to observe the loop exit.
func (s *Session) Close() error {
	s.Dispose()
	s.closeOnce.Do(s.cancel)
	return nil
}

// Done is closed once the loop has exited after Close and queued match
// notifications have been delivered.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) shutdown() {
	s.pending = nil
	s.release()
	s.result.Status = types.StatusDisconnected
	s.publish()
	s.logger.Debug("session loop stopped", nil)
}

package socket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/ipc"
	"github.com/pithecene-io/gamehub/types"
)

// binding owns one connection attempt and its lifetime.
type binding struct {
	platform *Platform
	info     channel.ServiceInfo
	handler  channel.EventHandler

	ctx    context.Context
	cancel context.CancelFunc

	unbound atomic.Bool

	mu     sync.Mutex
	client *client
}

func (b *binding) run() {
	logger := b.platform.config.Logger
	c, err := b.connect()
	if err != nil {
		logger.Warn("service bind failed", map[string]any{
			"address": b.info.Address,
			"error":   err.Error(),
		})
		b.emit(channel.Event{Type: channel.EventDisconnected, Err: err})
		return
	}

	b.mu.Lock()
	if b.unbound.Load() {
		b.mu.Unlock()
		c.close(errors.New("unbound"))
		return
	}
	b.client = c
	b.mu.Unlock()

	logger.Debug("service bound", map[string]any{"address": b.info.Address})
	b.emit(channel.Event{Type: channel.EventConnected, Service: c})

	err = c.readLoop()
	b.emit(channel.Event{Type: channel.EventDisconnected, Err: err})
}

// connect dials the service and waits for its hello frame.
func (b *binding) connect() (*client, error) {
	cfg := b.platform.config
	dialCtx, cancel := context.WithTimeout(b.ctx, cfg.DialTimeout)
	defer cancel()

	conn, err := cfg.Dial(dialCtx, b.info.Network, b.info.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", b.info.Network, b.info.Address, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(cfg.DialTimeout))
	dec := ipc.NewFrameDecoder(conn)
	payload, err := dec.ReadFrame()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read hello: %w", err)
	}
	hello, err := ipc.DecodeHello(payload)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if hello.Type != types.HelloFrameType {
		_ = conn.Close()
		return nil, fmt.Errorf("expected hello frame, got %q", hello.Type)
	}
	_ = conn.SetReadDeadline(time.Time{})

	return newClient(conn, dec, cfg.CallTimeout, cfg.Logger), nil
}

func (b *binding) emit(ev channel.Event) {
	if b.unbound.Load() {
		return
	}
	b.handler(ev)
}

// Unbind cancels a pending dial or closes the established connection.
func (b *binding) Unbind() error {
	if b.unbound.Swap(true) {
		return nil
	}
	b.cancel()

	b.mu.Lock()
	c := b.client
	b.mu.Unlock()
	if c != nil {
		c.close(errors.New("unbound"))
	}
	return nil
}

// Package socket implements the channel layer over local stream sockets.
//
// Installed packages are described by YAML manifests in a directory; a
// provider's game hub service listens on the unix or tcp address its
// manifest declares and speaks the ipc framing.
package socket

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/log"
)

// DefaultDialTimeout bounds dialing plus the hello handshake.
const DefaultDialTimeout = 5 * time.Second

// DefaultCallTimeout bounds a single remote call.
const DefaultCallTimeout = 30 * time.Second

// DialFunc dials a service address.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Config configures the socket platform.
type Config struct {
	// ManifestDir holds <package>.yaml manifests (required).
	ManifestDir string
	// DialTimeout bounds dial plus handshake (default 5s).
	DialTimeout time.Duration
	// CallTimeout bounds each remote call (default 30s). Negative disables it.
	CallTimeout time.Duration
	// Dial overrides the dialer. Defaults to net.Dialer.DialContext.
	Dial DialFunc
	// Logger receives channel diagnostics. Defaults to a no-op logger.
	Logger *log.Logger
}

// Platform is a channel.Platform backed by manifests and stream sockets.
type Platform struct {
	config Config
}

// New creates a socket platform from the given config.
func New(cfg Config) (*Platform, error) {
	if cfg.ManifestDir == "" {
		return nil, errors.New("socket platform requires a manifest directory")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.Dial == nil {
		var d net.Dialer
		cfg.Dial = d.DialContext
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}
	return &Platform{config: cfg}, nil
}

// PackageInfo returns the installed metadata of pkg.
func (p *Platform) PackageInfo(_ context.Context, pkg string) (channel.PackageInfo, error) {
	m, err := loadManifest(p.config.ManifestDir, pkg)
	if err != nil {
		return channel.PackageInfo{}, err
	}
	return channel.PackageInfo{Package: m.Package, VersionCode: m.VersionCode}, nil
}

// QueryServices lists services in req.Package's manifest that declare req.Action.
// A missing package yields an empty list, not an error.
func (p *Platform) QueryServices(_ context.Context, req channel.BindRequest) ([]channel.ServiceInfo, error) {
	m, err := loadManifest(p.config.ManifestDir, req.Package)
	if err != nil {
		if errors.Is(err, channel.ErrPackageNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var out []channel.ServiceInfo
	for _, s := range m.Services {
		if s.Action != req.Action {
			continue
		}
		network := s.Network
		if network == "" {
			network = "unix"
		}
		out = append(out, channel.ServiceInfo{
			Package: m.Package,
			Action:  s.Action,
			Network: network,
			Address: s.Address,
		})
	}
	return out, nil
}

// Bind starts dialing info in the background and returns immediately.
// The handler receives EventConnected after the provider's hello frame, and
// EventDisconnected when the dial fails or the connection later drops.
func (p *Platform) Bind(_ context.Context, info channel.ServiceInfo, handler channel.EventHandler) (channel.Binding, error) {
	if handler == nil {
		return nil, errors.New("bind requires an event handler")
	}
	if info.Address == "" {
		return nil, errors.New("bind requires a service address")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &binding{
		platform: p,
		info:     info,
		handler:  handler,
		ctx:      ctx,
		cancel:   cancel,
	}
	go b.run()
	return b, nil
}

// Verify Platform implements the channel platform interface.
var _ channel.Platform = (*Platform)(nil)

package hub

import (
	"errors"
	"time"

	"github.com/pithecene-io/gamehub/adapter"
	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/log"
	"github.com/pithecene-io/gamehub/metrics"
	"github.com/pithecene-io/gamehub/navigate"
	"github.com/pithecene-io/gamehub/types"
)

// DefaultBindTimeout bounds the wait for the connected event after a bind.
const DefaultBindTimeout = 10 * time.Second

// DefaultPublishTimeout bounds a single adapter notification.
const DefaultPublishTimeout = 5 * time.Second

// Provider describes the application that owns the game hub service.
type Provider struct {
	// Name is the user-facing application name used in messages.
	Name string
	// Package is the application identity.
	Package string
	// MinimumVersion is the lowest version code exposing the service.
	MinimumVersion int
	// BindAction is the service capability requested on bind.
	BindAction string
	// InstallURI opens the provider install page. Not package restricted.
	InstallURI string
	// UpdateURI opens the provider's own store page.
	UpdateURI string
	// LoginURI opens the provider login screen.
	LoginURI string
	// LeaderboardURI opens the last tournament leaderboard; %s is replaced
	// by the host package.
	LeaderboardURI string
}

// DefaultProvider returns the Cafebazaar provider.
func DefaultProvider() Provider {
	return Provider{
		Name:           "Cafebazaar",
		Package:        "com.farsitel.bazaar",
		MinimumVersion: 1400700,
		BindAction:     "com.farsitel.bazaar.Game.BIND",
		InstallURI:     "https://cafebazaar.ir/install",
		UpdateURI:      "bazaar://details?id=com.farsitel.bazaar",
		LoginURI:       "bazaar://login",
		LeaderboardURI: "bazaar://tournament_leaderboard?package_name=%s",
	}
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// Platform is the channel layer (required).
	Platform channel.Platform
	// HostPackage is the identity sent to the provider on every call (required).
	HostPackage string
	// Provider defaults to DefaultProvider when Package is empty.
	Provider Provider
	// SessionID correlates logs and notifications. Generated when empty.
	SessionID string

	// Navigator opens prompts. Nil disables navigation.
	Navigator navigate.Navigator
	// Logger defaults to a no-op logger.
	Logger *log.Logger
	// Metrics may be nil.
	Metrics *metrics.Collector
	// Publisher receives match events after successful start/end. May be nil.
	Publisher adapter.Adapter
	// OnStateChange is invoked on the session loop whenever the session
	// Result changes. It must not block.
	OnStateChange func(types.Result)

	// BindTimeout bounds the bind wait (default 10s). Negative disables it.
	BindTimeout time.Duration
	// PublishTimeout bounds each notification (default 5s).
	PublishTimeout time.Duration
}

func (c *SessionConfig) validate() error {
	if c.Platform == nil {
		return errors.New("hub: session requires a platform")
	}
	if c.HostPackage == "" {
		return errors.New("hub: session requires a host package")
	}
	return nil
}

func (c *SessionConfig) applyDefaults() {
	if c.Provider.Package == "" {
		c.Provider = DefaultProvider()
	}
	if c.Logger == nil {
		c.Logger = log.Nop()
	}
	if c.BindTimeout == 0 {
		c.BindTimeout = DefaultBindTimeout
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = DefaultPublishTimeout
	}
}

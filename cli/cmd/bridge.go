package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gamehub/adapter"
	lodeadapter "github.com/pithecene-io/gamehub/adapter/lode"
	"github.com/pithecene-io/gamehub/adapter/redis"
	"github.com/pithecene-io/gamehub/adapter/webhook"
	"github.com/pithecene-io/gamehub/channel/socket"
	"github.com/pithecene-io/gamehub/hub"
	"github.com/pithecene-io/gamehub/iox"
	"github.com/pithecene-io/gamehub/log"
	"github.com/pithecene-io/gamehub/metrics"
	"github.com/pithecene-io/gamehub/navigate"
	"github.com/pithecene-io/gamehub/types"
)

// bridge is the composition root of one CLI invocation: a single session
// wired to the socket platform, the desktop navigator and the optional
// notification adapter.
type bridge struct {
	session   *hub.Session
	logger    *log.Logger
	metrics   *metrics.Collector
	publisher adapter.Adapter
	opts      *sessionOptions
}

// openBridge resolves options and builds the session.
// onState may be nil.
func openBridge(c *cli.Context, onState func(types.Result)) (*bridge, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	opts, err := parseSessionOptions(c, cfg)
	if err != nil {
		return nil, err
	}

	meta := &types.SessionMeta{
		SessionID:       uuid.NewString(),
		HostPackage:     opts.hostPackage,
		ProviderPackage: opts.provider.Package,
	}
	logger, err := log.NewLoggerWithLevel(meta, opts.logLevel)
	if err != nil {
		return nil, err
	}

	platform, err := socket.New(socket.Config{
		ManifestDir: opts.manifestDir,
		DialTimeout: opts.dialTimeout,
		CallTimeout: opts.callTimeout,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	var publisher adapter.Adapter
	if opts.adapter != nil {
		publisher, err = newAdapter(opts.adapter)
		if err != nil {
			return nil, err
		}
	}

	collector := metrics.NewCollector(meta.SessionID, meta.HostPackage, meta.ProviderPackage)
	session, err := hub.NewSession(hub.SessionConfig{
		Platform:      platform,
		HostPackage:   opts.hostPackage,
		Provider:      opts.provider,
		SessionID:     meta.SessionID,
		Navigator:     &navigate.Browser{},
		Logger:        logger,
		Metrics:       collector,
		Publisher:     publisher,
		OnStateChange: onState,
		BindTimeout:   opts.bindTimeout,
	})
	if err != nil {
		if publisher != nil {
			iox.DiscardClose(publisher)
		}
		return nil, err
	}

	return &bridge{
		session:   session,
		logger:    logger,
		metrics:   collector,
		publisher: publisher,
		opts:      opts,
	}, nil
}

// newAdapter creates the notification adapter for choice.
func newAdapter(choice *adapterChoice) (adapter.Adapter, error) {
	switch choice.adapterType {
	case "webhook":
		return webhook.New(webhook.Config{
			URL:     choice.url,
			Headers: choice.headers,
			Timeout: choice.timeout,
			Retries: choice.retries,
		})
	case "redis":
		return redis.New(redis.Config{
			URL:     choice.url,
			Channel: choice.channel,
			Timeout: choice.timeout,
			Retries: choice.retries,
		})
	case "lode":
		backend, path, err := lodeadapter.ParseLocation(choice.url)
		if err != nil {
			return nil, err
		}
		return lodeadapter.New(lodeadapter.Config{
			Dataset: choice.channel,
			Backend: backend,
			Path:    path,
			S3: lodeadapter.S3Config{
				Region:       choice.s3Region,
				Endpoint:     choice.s3Endpoint,
				UsePathStyle: choice.s3PathStyle,
			},
		})
	default:
		return nil, fmt.Errorf("unknown adapter type %q", choice.adapterType)
	}
}

// Close stops the session, waits for its loop to exit and releases the
// adapter.
func (b *bridge) Close() error {
	_ = b.session.Close()
	<-b.session.Done()

	defer iox.DiscardErr(b.logger.Sync)
	return iox.CloseAll(b.publisher)
}

// connect runs Connect and waits for its callback.
func (b *bridge) connect(ctx context.Context) types.Result {
	done := make(chan types.Result, 1)
	b.session.Connect(ctx, b.opts.showPrompts, func(status int, message, stackTrace string) {
		done <- types.Result{Status: types.Status(status), Message: message, StackTrace: stackTrace}
	})
	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return types.NewResult(types.StatusDisconnected, "interrupted")
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

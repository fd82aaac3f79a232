package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	gamehubconfig "github.com/pithecene-io/gamehub/cli/config"
	"github.com/pithecene-io/gamehub/hub"
)

// sessionOptions is the resolved configuration of a CLI bridge session.
type sessionOptions struct {
	hostPackage string
	manifestDir string
	logLevel    string
	bindTimeout time.Duration
	dialTimeout time.Duration
	callTimeout time.Duration
	showPrompts bool
	provider    hub.Provider
	adapter     *adapterChoice
	metrics     string
}

// adapterChoice holds parsed adapter configuration.
type adapterChoice struct {
	adapterType string
	url         string
	channel     string
	headers     map[string]string
	timeout     time.Duration
	retries     int

	// lode only
	s3Region    string
	s3Endpoint  string
	s3PathStyle bool
}

// loadConfig loads the --config file, if any.
func loadConfig(c *cli.Context) (*gamehubconfig.Config, error) {
	path := c.String("config")
	if path == "" {
		return nil, nil
	}
	return gamehubconfig.Load(path)
}

// resolveString returns the flag value when explicitly set, otherwise the
// config value, otherwise the flag default.
func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) || cfgVal == "" {
		return c.String(name)
	}
	return cfgVal
}

// resolveDuration applies the same precedence to duration flags.
func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Duration(name)
	}
	return cfgVal
}

// configVal reads a field of a possibly nil config.
func configVal[T any](cfg *gamehubconfig.Config, get func(*gamehubconfig.Config) T) T {
	var zero T
	if cfg == nil {
		return zero
	}
	return get(cfg)
}

// parseSessionOptions resolves flags against the config file.
func parseSessionOptions(c *cli.Context, cfg *gamehubconfig.Config) (*sessionOptions, error) {
	opts := &sessionOptions{
		hostPackage: resolveString(c, "host-package", configVal(cfg, func(c *gamehubconfig.Config) string { return c.HostPackage })),
		manifestDir: resolveString(c, "manifest-dir", configVal(cfg, func(c *gamehubconfig.Config) string { return c.Platform.ManifestDir })),
		logLevel:    resolveString(c, "log-level", configVal(cfg, func(c *gamehubconfig.Config) string { return c.LogLevel })),
		bindTimeout: resolveDuration(c, "bind-timeout", configVal(cfg, func(c *gamehubconfig.Config) time.Duration { return c.BindTimeout.Duration })),
		dialTimeout: resolveDuration(c, "dial-timeout", configVal(cfg, func(c *gamehubconfig.Config) time.Duration { return c.Platform.DialTimeout.Duration })),
		callTimeout: resolveDuration(c, "call-timeout", configVal(cfg, func(c *gamehubconfig.Config) time.Duration { return c.Platform.CallTimeout.Duration })),
		showPrompts: !c.Bool("no-prompts"),
		provider:    hub.DefaultProvider(),
		metrics:     configVal(cfg, func(c *gamehubconfig.Config) string { return c.Metrics.Listen }),
	}
	if cfg != nil {
		opts.provider = cfg.ResolveProvider(opts.provider)
	}

	if opts.hostPackage == "" {
		return nil, fmt.Errorf("--host-package is required (or host_package in config)")
	}
	if opts.manifestDir == "" {
		return nil, fmt.Errorf("--manifest-dir is required (or platform.manifest_dir in config)")
	}

	adapterType := resolveString(c, "adapter", configVal(cfg, func(c *gamehubconfig.Config) string { return c.Adapter.Type }))
	if adapterType != "" {
		ac, err := parseAdapterConfigWithPrecedence(c, cfg, adapterType)
		if err != nil {
			return nil, err
		}
		opts.adapter = ac
	}

	return opts, nil
}

// parseAdapterConfigWithPrecedence builds the adapter choice: explicit
// flags win, then config values, then flag defaults. Config headers are
// merged under flag headers.
func parseAdapterConfigWithPrecedence(c *cli.Context, cfg *gamehubconfig.Config, adapterType string) (*adapterChoice, error) {
	switch adapterType {
	case "webhook", "redis", "lode":
	default:
		return nil, fmt.Errorf("unknown adapter type %q (must be webhook, redis or lode)", adapterType)
	}

	var ac gamehubconfig.AdapterConfig
	if cfg != nil {
		ac = cfg.Adapter
	}

	choice := &adapterChoice{
		adapterType: adapterType,
		url:         resolveString(c, "adapter-url", ac.URL),
		channel:     resolveString(c, "adapter-channel", ac.Channel),
		timeout:     resolveDuration(c, "adapter-timeout", ac.Timeout.Duration),
		retries:     c.Int("adapter-retries"),
		headers:     make(map[string]string),
		s3Region:    ac.Region,
		s3Endpoint:  ac.Endpoint,
		s3PathStyle: ac.S3PathStyle,
	}
	if !c.IsSet("adapter-retries") && ac.Retries != nil {
		choice.retries = *ac.Retries
	}
	if choice.url == "" {
		return nil, fmt.Errorf("--adapter-url is required when --adapter=%s", adapterType)
	}

	for k, v := range ac.Headers {
		choice.headers[k] = v
	}
	for _, h := range c.StringSlice("adapter-header") {
		k, v, ok := strings.Cut(h, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --adapter-header %q (want key=value)", h)
		}
		choice.headers[k] = v
	}

	return choice, nil
}

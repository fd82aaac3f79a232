package config

import (
	"fmt"
	"time"

	"github.com/pithecene-io/gamehub/hub"
)

// Config represents a gamehub.yaml configuration file.
// All values are optional and act as defaults for gamehub flags.
// CLI flags always override config values.
type Config struct {
	HostPackage string         `yaml:"host_package"`
	LogLevel    string         `yaml:"log_level"`
	Provider    ProviderConfig `yaml:"provider"`
	Platform    PlatformConfig `yaml:"platform"`
	BindTimeout Duration       `yaml:"bind_timeout"`
	Adapter     AdapterConfig  `yaml:"adapter"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

// ProviderConfig overrides fields of the default provider description.
// Empty fields keep the default.
type ProviderConfig struct {
	Name           string `yaml:"name"`
	Package        string `yaml:"package"`
	MinimumVersion int    `yaml:"minimum_version"`
	BindAction     string `yaml:"bind_action"`
	InstallURI     string `yaml:"install_uri"`
	UpdateURI      string `yaml:"update_uri"`
	LoginURI       string `yaml:"login_uri"`
	LeaderboardURI string `yaml:"leaderboard_uri"`
}

// PlatformConfig holds socket platform defaults from the config file.
type PlatformConfig struct {
	ManifestDir string   `yaml:"manifest_dir"`
	DialTimeout Duration `yaml:"dial_timeout"`
	CallTimeout Duration `yaml:"call_timeout"`
}

// AdapterConfig holds adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`

	// Lode S3 settings, used when type is lode and url is s3://.
	Region      string `yaml:"region,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	S3PathStyle bool   `yaml:"s3_path_style,omitempty"`
}

// MetricsConfig holds metrics endpoint defaults from the config file.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// ResolveProvider overlays the configured provider fields onto base.
func (c *Config) ResolveProvider(base hub.Provider) hub.Provider {
	p := c.Provider
	if p.Name != "" {
		base.Name = p.Name
	}
	if p.Package != "" {
		base.Package = p.Package
	}
	if p.MinimumVersion > 0 {
		base.MinimumVersion = p.MinimumVersion
	}
	if p.BindAction != "" {
		base.BindAction = p.BindAction
	}
	if p.InstallURI != "" {
		base.InstallURI = p.InstallURI
	}
	if p.UpdateURI != "" {
		base.UpdateURI = p.UpdateURI
	}
	if p.LoginURI != "" {
		base.LoginURI = p.LoginURI
	}
	if p.LeaderboardURI != "" {
		base.LeaderboardURI = p.LeaderboardURI
	}
	return base
}

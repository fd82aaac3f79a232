package socket

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/gamehub/channel"
)

// ManifestExt is the file extension of package manifests.
const ManifestExt = ".yaml"

// Manifest is an installed package's metadata file, stored as
// <manifest_dir>/<package>.yaml.
//
// Example:
//
//	package: com.farsitel.bazaar
//	version_code: 1400800
//	services:
//	  - action: com.farsitel.bazaar.Game.BIND
//	    network: unix
//	    address: /run/user/1000/bazaar-game.sock
type Manifest struct {
	Package     string            `yaml:"package"`
	VersionCode int               `yaml:"version_code"`
	Services    []ServiceManifest `yaml:"services"`
}

// ServiceManifest declares one bindable service.
type ServiceManifest struct {
	Action  string `yaml:"action"`
	Network string `yaml:"network"`
	Address string `yaml:"address"`
}

// loadManifest reads the manifest for pkg from dir.
// Returns channel.ErrPackageNotFound if no manifest exists.
func loadManifest(dir, pkg string) (*Manifest, error) {
	if pkg == "" || strings.ContainsAny(pkg, `/\`) || pkg == "." || pkg == ".." {
		return nil, fmt.Errorf("invalid package name %q", pkg)
	}

	path := filepath.Join(dir, pkg+ManifestExt)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", pkg, channel.ErrPackageNotFound)
		}
		return nil, fmt.Errorf("cannot read manifest %q: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if m.Package == "" {
		m.Package = pkg
	}
	if m.Package != pkg {
		return nil, fmt.Errorf("manifest %s declares package %q", path, m.Package)
	}
	return &m, nil
}

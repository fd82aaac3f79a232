package hub

import (
	"context"
	"errors"

	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/log"
	"github.com/pithecene-io/gamehub/metrics"
	"github.com/pithecene-io/gamehub/navigate"
	"github.com/pithecene-io/gamehub/types"
)

// CheckAvailability reports whether provider is installed at a version that
// exposes the game hub service. With showPrompts, a failing check opens the
// install or update page. Navigation failures are ignored.
func CheckAvailability(ctx context.Context, platform channel.Platform, nav navigate.Navigator, provider Provider, showPrompts bool) types.Result {
	return checkAvailability(ctx, platform, opener{nav: nav, logger: log.Nop()}, provider, showPrompts)
}

func checkAvailability(ctx context.Context, platform channel.Platform, o opener, provider Provider, showPrompts bool) types.Result {
	info, err := platform.PackageInfo(ctx, provider.Package)
	if err != nil {
		if !errors.Is(err, channel.ErrPackageNotFound) {
			o.logger.Warn("provider lookup failed", map[string]any{
				"package": provider.Package,
				"error":   err.Error(),
			})
		}
		if showPrompts {
			_ = o.open(ctx, navigate.Target{URI: provider.InstallURI})
		}
		return types.NewResult(types.StatusInstallProvider, msgInstall(provider))
	}

	if info.VersionCode < provider.MinimumVersion {
		o.logger.Info("provider too old", map[string]any{
			"version_code":    info.VersionCode,
			"minimum_version": provider.MinimumVersion,
		})
		if showPrompts {
			_ = o.open(ctx, navigate.Target{URI: provider.UpdateURI, Package: provider.Package})
		}
		return types.NewResult(types.StatusUpdateProvider, msgUpdate(provider))
	}

	return types.NewResult(types.StatusSuccess, "")
}

// opener performs best-effort navigation.
type opener struct {
	nav     navigate.Navigator
	logger  *log.Logger
	metrics *metrics.Collector
}

// open navigates to target. The error is logged; most callers drop it.
func (o opener) open(ctx context.Context, target navigate.Target) error {
	if o.nav == nil {
		return nil
	}
	o.metrics.IncNavigation()
	if err := o.nav.Open(ctx, target); err != nil {
		o.metrics.IncNavigationFailure()
		o.logger.Warn("navigation failed", map[string]any{
			"uri":     target.URI,
			"package": target.Package,
			"error":   err.Error(),
		})
		return err
	}
	o.logger.Debug("navigated", map[string]any{"uri": target.URI, "package": target.Package})
	return nil
}

package hub

import (
	"context"

	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/navigate"
	"github.com/pithecene-io/gamehub/types"
)

// IsLogin asks the bound service whether a user is signed in to the
// provider. With showPrompts, a negative answer opens the provider login
// screen.
func (s *Session) IsLogin(ctx context.Context, showPrompts bool) types.Result {
	svc, res := s.boundService()
	if res != nil {
		return *res
	}
	return s.checkLogin(ctx, svc, showPrompts)
}

func (s *Session) checkLogin(ctx context.Context, svc channel.Service, showPrompts bool) types.Result {
	if svc == nil {
		return types.NewResult(types.StatusDisconnected, msgConnectBefore)
	}

	loggedIn, err := svc.IsLogin(ctx)
	var res types.Result
	switch {
	case err != nil:
		s.logger.Warn("login check failed", map[string]any{"error": err.Error()})
		res = types.Result{Status: types.StatusLoginProvider, Message: err.Error(), StackTrace: trace(err)}
	case loggedIn:
		return types.NewResult(types.StatusSuccess, "")
	default:
		res = types.NewResult(types.StatusLoginProvider, msgLogin(s.provider))
	}

	if showPrompts {
		_ = s.opener.open(ctx, navigate.Target{URI: s.provider.LoginURI, Package: s.provider.Package})
	}
	return res
}

// boundService returns the handle operations may use, or the Result to
// report when there is none.
func (s *Session) boundService() (channel.Service, *types.Result) {
	if s.disposed.Load() {
		res := types.NewResult(types.StatusDisconnected, msgConnectBefore)
		return nil, &res
	}
	svc := s.snap.Load().service
	if svc == nil {
		res := types.NewResult(types.StatusDisconnected, msgConnectBefore)
		return nil, &res
	}
	return svc, nil
}

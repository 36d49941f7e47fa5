package application

import (
	"context"

	"github.com/lnshout/shoutout/internal/domain"
	"github.com/lnshout/shoutout/lnurl"
)

// ResolveLightningAddress handles the platform-wide lightning address
// resolution hook. It returns nil (not an error) when no shoutout app
// claims the username, leaving the address to other registered resolvers in
// the chain.
func (s *Service) ResolveLightningAddress(
	ctx context.Context, reqCtx RequestContext, username, routeAppID string,
) (*lnurl.PayRequest, error) {

	app, err := s.resolverApp(ctx, username, routeAppID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, nil
	}

	// Prerequisites: identifier configured and LNURL+LUD-12 eligible.
	if app.Settings.LightningAddressIdentifier == "" {
		return nil, nil
	}
	if !s.IsLnurlEnabled(app) {
		return nil, nil
	}

	meta, _ := s.payRequestMetadata(app, reqCtx.Host)
	return s.buildPayRequest(reqCtx, app.ID, meta)
}

func (s *Service) resolverApp(ctx context.Context, username, routeAppID string) (*domain.App, error) {
	if routeAppID != "" {
		app, err := s.apps.Get(ctx, routeAppID)
		if err != nil {
			return nil, nil
		}
		return app, nil
	}

	apps, err := s.apps.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, app := range apps {
		if app.Settings.LightningAddressIdentifier == username {
			return app, nil
		}
	}
	return nil, nil
}

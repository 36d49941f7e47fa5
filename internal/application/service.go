package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/google/uuid"

	"github.com/lnshout/shoutout/internal/domain"
	"github.com/lnshout/shoutout/internal/ports"
)

// Config carries the deployment-wide knobs of the service.
type Config struct {
	ChainParams     *chaincfg.Params
	DefaultCurrency string
	InvoiceExpiry   time.Duration
	ReceiptsEnabled bool
}

// Service implements the shoutout operations on top of the app and invoice
// repositories, the lightning node client, the hook chain and the event bus.
type Service struct {
	cfg Config

	apps      domain.AppRepository
	invoices  domain.InvoiceRepository
	lightning ports.LightningClient
	hooks     ports.HookService
	bus       ports.EventBus
}

func NewService(
	cfg Config,
	apps domain.AppRepository,
	invoices domain.InvoiceRepository,
	lightning ports.LightningClient,
	hooks ports.HookService,
	bus ports.EventBus,
) *Service {
	if cfg.InvoiceExpiry <= 0 {
		cfg.InvoiceExpiry = 10 * time.Minute
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "SATS"
	}
	return &Service{
		cfg:       cfg,
		apps:      apps,
		invoices:  invoices,
		lightning: lightning,
		hooks:     hooks,
		bus:       bus,
	}
}

// RequestContext captures the pieces of the incoming HTTP request needed to
// build absolute URLs pointing back at this deployment.
type RequestContext struct {
	Scheme   string
	Host     string
	PathBase string
}

// URL builds an absolute URL below the deployment root.
func (r RequestContext) URL(path string) string {
	base := strings.TrimSuffix(r.PathBase, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s%s", r.Scheme, r.Host, base, path)
}

func (s *Service) GetApp(ctx context.Context, appID string) (*domain.App, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		return nil, ErrAppNotFound
	}
	return app, nil
}

// CreateApp bootstraps a new shoutout app with lightning and LNURL (LUD-12)
// enabled by default.
func (s *Service) CreateApp(ctx context.Context, name, currency, lnAddressIdentifier string) (*domain.App, error) {
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{
			"name": "required",
		}}
	}
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	settings := domain.NewAppSettings(strings.ToUpper(currency))
	settings.LightningAddressIdentifier = lnAddressIdentifier

	app := &domain.App{
		ID:       uuid.NewString(),
		Name:     name,
		Settings: settings,
		PaymentMethods: map[domain.PaymentMethod]*domain.PaymentMethodConfig{
			domain.PaymentMethodLightning: {},
			domain.PaymentMethodLNURL:    {LUD12Enabled: true},
		},
		ReceiptsEnabled: s.cfg.ReceiptsEnabled,
	}
	if err := s.apps.Upsert(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// ReceiptsEnabled reports whether a receipt page should be offered for the
// invoice, honoring the per-invoice override over the app default.
func (s *Service) ReceiptsEnabled(app *domain.App, invoice *domain.Invoice) bool {
	if invoice.ReceiptsEnabled != nil {
		return *invoice.ReceiptsEnabled
	}
	return app.ReceiptsEnabled
}

func newInvoiceID() string {
	return uuid.NewString()
}

// randomOrderID mirrors the short random order ids the invoice metadata
// carries for correlation in external systems.
func randomOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

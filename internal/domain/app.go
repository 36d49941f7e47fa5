package domain

import "context"

const (
	AppType  = "Shoutout"
	ItemCode = "shoutout"

	DefaultButtonText = "Shoutout!"
)

// PaymentMethod keys the per-app payment method configuration. Lookups are
// typed instead of the host-style dynamic casting.
type PaymentMethod string

const (
	PaymentMethodLNURL     PaymentMethod = "LNURL"
	PaymentMethodLightning PaymentMethod = "LN"
)

type PaymentMethodConfig struct {
	Excluded bool
	// LUD12Enabled is only meaningful on the LNURL method.
	LUD12Enabled bool
}

// AppSettings is the opaque settings blob attached to an app record.
type AppSettings struct {
	Title                      string
	Currency                   string
	Description                string
	ShowHeader                 bool
	ShowRelativeDate           bool
	ButtonText                 string
	MinAmount                  float64
	LightningAddressIdentifier string
	ExcludeInvoiceID           []string
}

func NewAppSettings(defaultCurrency string) AppSettings {
	return AppSettings{
		Currency:         defaultCurrency,
		ShowHeader:       true,
		ShowRelativeDate: true,
		ButtonText:       DefaultButtonText,
	}
}

func (s AppSettings) IsExcluded(invoiceID string) bool {
	for _, id := range s.ExcludeInvoiceID {
		if id == invoiceID {
			return true
		}
	}
	return false
}

// ToggleExcluded flips the exclusion flag for an invoice id and reports
// whether the invoice is now hidden. Applying it twice restores the
// original state.
func (s *AppSettings) ToggleExcluded(invoiceID string) bool {
	if !s.IsExcluded(invoiceID) {
		s.ExcludeInvoiceID = append([]string{invoiceID}, s.ExcludeInvoiceID...)
		return true
	}

	kept := make([]string, 0, len(s.ExcludeInvoiceID))
	for _, id := range s.ExcludeInvoiceID {
		if id != invoiceID {
			kept = append(kept, id)
		}
	}
	s.ExcludeInvoiceID = kept
	return false
}

type App struct {
	ID       string
	Name     string
	Archived bool
	Settings AppSettings

	PaymentMethods map[PaymentMethod]*PaymentMethodConfig

	// ReceiptsEnabled is the app-wide default, overridable per invoice.
	ReceiptsEnabled bool
}

// Title falls back to the app name when settings carry no explicit title.
func (a *App) Title() string {
	if a.Settings.Title != "" {
		return a.Settings.Title
	}
	return a.Name
}

// SearchTerm tags invoices so the wall query can find them again.
func (a *App) SearchTerm() string {
	return "appid:" + a.ID
}

func (a *App) PaymentMethodConfig(method PaymentMethod) *PaymentMethodConfig {
	if a.PaymentMethods == nil {
		return nil
	}
	return a.PaymentMethods[method]
}

type AppRepository interface {
	Upsert(ctx context.Context, app *App) error
	Get(ctx context.Context, id string) (*App, error)
	List(ctx context.Context) ([]*App, error)
	Close()
}

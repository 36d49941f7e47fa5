package application

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/lnshout/shoutout/internal/domain"
)

// wallStatuses are the "payment accepted, irreversible or probabilistically
// final" invoice states shown on the public wall.
var wallStatuses = []domain.InvoiceStatus{
	domain.InvoiceStatusSettled,
	domain.InvoiceStatusProcessing,
}

// WallEntry is one shoutout on the public wall. Hidden is advisory: the
// query keeps excluded entries so a manager's view can differ from the
// anonymous one; dropping them for anonymous visitors is up to the renderer.
type WallEntry struct {
	InvoiceID string
	Name      string
	Text      string
	Amount    float64
	Currency  string
	Timestamp time.Time
	Hidden    bool
}

// PublicWall lists the shoutouts of settled and processing invoices tagged
// to the app, newest first.
func (s *Service) PublicWall(ctx context.Context, appID string, skip, count int) (*domain.App, []WallEntry, error) {
	app, err := s.GetApp(ctx, appID)
	if err != nil {
		return nil, nil, err
	}
	settings := app.Settings

	invoices, err := s.invoices.Query(ctx, domain.InvoiceQuery{
		SearchTerm:      app.SearchTerm(),
		Statuses:        wallStatuses,
		IncludeArchived: true,
		Skip:            skip,
		Take:            count,
	})
	if err != nil {
		return nil, nil, err
	}

	entries := make([]WallEntry, 0, len(invoices))
	for _, invoice := range invoices {
		shoutout := invoice.Metadata.Shoutout
		if shoutout == nil || shoutout.Text == "" {
			continue
		}

		amount := invoice.Amount
		if invoice.PaidAmountNet > 0 {
			amount = invoice.PaidAmountNet
		}
		if settings.MinAmount > 0 {
			if amount < settings.MinAmount ||
				!strings.EqualFold(invoice.Currency, settings.Currency) {

				continue
			}
		}

		entries = append(entries, WallEntry{
			InvoiceID: invoice.ID,
			Name:      shoutout.Name,
			Text:      shoutout.Text,
			Amount:    amount,
			Currency:  invoice.Currency,
			Timestamp: invoice.CreatedAt,
			Hidden:    settings.IsExcluded(invoice.ID),
		})
	}
	return app, entries, nil
}

// SubmitShoutoutParams is the public wall form input.
type SubmitShoutoutParams struct {
	Name   string
	Text   string
	Amount float64
}

// SubmitShoutout creates a draft invoice carrying the shoutout comment and
// returns it for the checkout redirect.
func (s *Service) SubmitShoutout(ctx context.Context, reqCtx RequestContext, appID string, params SubmitShoutoutParams) (*domain.Invoice, error) {
	app, err := s.GetApp(ctx, appID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	if strings.TrimSpace(params.Text) == "" {
		fields["text"] = "required"
	}
	if params.Amount <= 0 {
		fields["amount"] = "must be greater than zero"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	currency := app.Settings.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	now := time.Now()
	orderURL := reqCtx.URL("/apps/" + app.ID + "/shoutout")
	invoice := &domain.Invoice{
		ID:          newInvoiceID(),
		AppID:       app.ID,
		Currency:    currency,
		Amount:      params.Amount,
		Status:      domain.InvoiceStatusNew,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.InvoiceExpiry),
		SearchTerms: []string{app.SearchTerm()},
		Metadata: domain.InvoiceMetadata{
			ItemCode: domain.ItemCode,
			ItemDesc: app.Title(),
			OrderID:  randomOrderID(),
			OrderURL: orderURL,
			Shoutout: &domain.Shoutout{
				Name: strings.TrimSpace(params.Name),
				Text: truncate(params.Text, CommentLength),
			},
		},
	}
	if err := s.invoices.Add(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

var currencyPattern = regexp.MustCompile(`^[A-Z0-9]{3,8}$`)

// SettingsUpdate mirrors the store-manager settings form.
type SettingsUpdate struct {
	AppName  string
	Archived bool

	Title                      string
	Currency                   string
	Description                string
	ButtonText                 string
	ShowHeader                 bool
	ShowRelativeDate           bool
	MinAmount                  float64
	LightningAddressIdentifier string
	ExcludeInvoiceID           []string
}

// UpdateSettings validates and persists the settings blob together with the
// app name and archived flag.
func (s *Service) UpdateSettings(ctx context.Context, appID string, update SettingsUpdate) (*domain.App, error) {
	app, err := s.GetApp(ctx, appID)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(update.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, &ValidationError{Fields: map[string]string{
			"currency": "invalid currency",
		}}
	}

	app.Name = update.AppName
	app.Archived = update.Archived
	app.Settings = domain.AppSettings{
		Title:                      update.Title,
		Currency:                   currency,
		Description:                update.Description,
		ButtonText:                 update.ButtonText,
		ShowHeader:                 update.ShowHeader,
		ShowRelativeDate:           update.ShowRelativeDate,
		MinAmount:                  update.MinAmount,
		LightningAddressIdentifier: update.LightningAddressIdentifier,
		ExcludeInvoiceID:           update.ExcludeInvoiceID,
	}
	if err := s.apps.Upsert(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// ToggleExcluded flips an invoice's visibility flag and reports whether the
// shoutout is now hidden. Toggling twice restores the original state.
func (s *Service) ToggleExcluded(ctx context.Context, appID, invoiceID string) (bool, error) {
	app, err := s.GetApp(ctx, appID)
	if err != nil {
		return false, err
	}

	hidden := app.Settings.ToggleExcluded(invoiceID)
	if err := s.apps.Upsert(ctx, app); err != nil {
		return false, err
	}
	return hidden, nil
}

package application

import (
	"context"
	"fmt"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/lnshout/shoutout/internal/domain"
	"github.com/lnshout/shoutout/internal/ports"
)

// GetInvoice loads an invoice together with its owning app, for the
// checkout and receipt pages.
func (s *Service) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, *domain.App, error) {
	invoice, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	app, err := s.GetApp(ctx, invoice.AppID)
	if err != nil {
		return nil, nil, err
	}
	return invoice, app, nil
}

// EnsureCheckoutBolt11 lazily generates a plain BOLT11 invoice for a
// SATS-denominated draft invoice created through the wall form, so the
// checkout page has something payable to display. LNURL-created invoices
// already carry their destination.
func (s *Service) EnsureCheckoutBolt11(ctx context.Context, invoice *domain.Invoice, app *domain.App) (string, error) {
	if invoice.Lightning != nil && invoice.Lightning.Destination != "" {
		return invoice.Lightning.Destination, nil
	}
	if invoice.Status != domain.InvoiceStatusNew {
		return "", ErrNotPayable
	}
	if invoice.Currency != "SATS" {
		// Fiat-denominated checkouts would need a rate source; the
		// page falls back to showing the order without an invoice.
		return "", nil
	}
	lnCfg := app.PaymentMethodConfig(domain.PaymentMethodLightning)
	if lnCfg == nil || lnCfg.Excluded {
		return "", nil
	}

	amount := lnwire.MilliSatoshi(invoice.Amount * 1_000)
	lnInvoice, err := s.lightning.CreateInvoice(ctx, ports.CreateInvoiceParams{
		Value:  amount,
		Memo:   invoice.Metadata.ItemDesc,
		Expiry: time.Until(invoice.ExpiresAt),
	})
	if err != nil {
		return "", fmt.Errorf("could not generate invoice: %w", err)
	}

	prompt := &domain.LightningPrompt{
		NodeInvoiceID:   lnInvoice.ID,
		Destination:     lnInvoice.BOLT11,
		PaymentHash:     lnInvoice.PaymentHash,
		Preimage:        lnInvoice.Preimage,
		GeneratedAmount: amount,
	}
	if err := s.invoices.UpdatePrompt(ctx, invoice.ID, prompt); err != nil {
		return "", err
	}
	invoice.Lightning = prompt
	s.publishNewPaymentDetails(invoice, prompt)

	return lnInvoice.BOLT11, nil
}

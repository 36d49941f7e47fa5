package application

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	log "github.com/sirupsen/logrus"

	"github.com/lnshout/shoutout/internal/domain"
	"github.com/lnshout/shoutout/internal/ports"
	"github.com/lnshout/shoutout/lnurl"
)

const (
	// CommentLength bounds LUD-12 comments; longer text is truncated
	// before it is embedded in invoice metadata.
	CommentLength = 2000
)

// Sendable bounds of the pay request: 1 satoshi to 6.12 BTC.
var (
	MinSendable = lnwire.MilliSatoshi(1_000)
	MaxSendable = lnwire.MilliSatoshi(612_000_000_000)
)

// IsLnurlEnabled reports whether both the LNURL and the underlying lightning
// payment methods are configured, neither is excluded, and LUD-12 comment
// support is enabled. Callers must not cache the result: the configuration
// can change between the pay-request fetch and the callback.
func (s *Service) IsLnurlEnabled(app *domain.App) bool {
	lnurlCfg := app.PaymentMethodConfig(domain.PaymentMethodLNURL)
	lnCfg := app.PaymentMethodConfig(domain.PaymentMethodLightning)
	if lnurlCfg == nil || lnCfg == nil {
		return false
	}
	if lnurlCfg.Excluded || lnCfg.Excluded {
		return false
	}
	return lnurlCfg.LUD12Enabled
}

// payRequestMetadata builds the ordered metadata pairs: always one
// text/plain entry, plus a text/identifier entry when a lightning address
// identifier is configured. The consumed address is returned alongside.
func (s *Service) payRequestMetadata(app *domain.App, host string) (lnurl.Metadata, string) {
	meta := lnurl.Metadata{{lnurl.MetadataPlainText, app.Title()}}

	var lnAddress string
	if id := app.Settings.LightningAddressIdentifier; id != "" {
		lnAddress = fmt.Sprintf("%s@%s", id, host)
		meta = append(meta, [2]string{lnurl.MetadataIdentifier, lnAddress})
	}
	return meta, lnAddress
}

// buildPayRequest is pure construction: settings and request context fully
// determine the document.
func (s *Service) buildPayRequest(reqCtx RequestContext, appID string, meta lnurl.Metadata) (*lnurl.PayRequest, error) {
	encoded, err := meta.Encode()
	if err != nil {
		return nil, err
	}

	return &lnurl.PayRequest{
		Tag: lnurl.TagPayRequest,
		Callback: reqCtx.URL(fmt.Sprintf(
			"/api/v1/shoutout/lnurl/%s/pay-callback", appID,
		)),
		MinSendable:    MinSendable,
		MaxSendable:    MaxSendable,
		CommentAllowed: CommentLength,
		Metadata:       encoded,
	}, nil
}

// GetPayRequest serves the LUD-06 document for the pay endpoint.
func (s *Service) GetPayRequest(ctx context.Context, reqCtx RequestContext, appID string) (*lnurl.PayRequest, error) {
	app, err := s.GetApp(ctx, appID)
	if err != nil {
		return nil, err
	}
	if !s.IsLnurlEnabled(app) {
		return nil, ErrLnurlDisabled
	}

	meta, _ := s.payRequestMetadata(app, reqCtx.Host)
	return s.buildPayRequest(reqCtx, app.ID, meta)
}

// CallbackResult is either the plain pay request (no amount supplied) or the
// callback response carrying the generated invoice.
type CallbackResult struct {
	PayRequest *lnurl.PayRequest
	Response   *lnurl.CallbackResponse
}

// Callback runs the LNURL pay callback. Wallets first call it without an
// amount to discover bounds, then with the amount (and optional LUD-12
// comment) to obtain a BOLT11 invoice committing to the pay-request
// metadata via description hash.
func (s *Service) Callback(
	ctx context.Context, reqCtx RequestContext, appID string,
	amount *lnwire.MilliSatoshi, comment string,
) (*CallbackResult, error) {

	app, err := s.GetApp(ctx, appID)
	if err != nil {
		return nil, err
	}
	if !s.IsLnurlEnabled(app) {
		return nil, ErrLnurlDisabled
	}

	meta, lnAddress := s.payRequestMetadata(app, reqCtx.Host)
	payRequest, err := s.buildPayRequest(reqCtx, app.ID, meta)
	if err != nil {
		return nil, err
	}

	if amount == nil {
		return &CallbackResult{PayRequest: payRequest}, nil
	}

	if *amount < MinSendable || *amount > MaxSendable {
		return nil, ErrAmountOutOfBounds
	}

	comment = truncate(comment, CommentLength)

	resp, err := s.payCallback(
		ctx, reqCtx, app, payRequest, *amount, comment, lnAddress,
	)
	if err != nil {
		// Inner failure points report specific reasons; anything else
		// is collapsed into the generic payable-state error.
		if !isCallbackError(err) {
			log.WithError(err).WithField("app", appID).
				Warn("lnurl callback failed")
			err = ErrNotPayable
		}
		return nil, err
	}
	return &CallbackResult{Response: resp}, nil
}

func (s *Service) payCallback(
	ctx context.Context, reqCtx RequestContext, app *domain.App,
	payRequest *lnurl.PayRequest, amount lnwire.MilliSatoshi,
	comment, lnAddress string,
) (*lnurl.CallbackResponse, error) {

	now := time.Now()
	orderURL := reqCtx.URL("/apps/" + app.ID + "/shoutout")
	invoice := &domain.Invoice{
		ID:          newInvoiceID(),
		AppID:       app.ID,
		Currency:    "SATS",
		Amount:      float64(amount.ToSatoshis()),
		Status:      domain.InvoiceStatusNew,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.InvoiceExpiry),
		SearchTerms: []string{app.SearchTerm()},
		Metadata: domain.InvoiceMetadata{
			ItemCode: domain.ItemCode,
			ItemDesc: app.Title(),
			OrderID:  randomOrderID(),
			OrderURL: orderURL,
			Shoutout: &domain.Shoutout{Text: comment},
		},
		Lightning: &domain.LightningPrompt{},
	}
	if err := s.invoices.Add(ctx, invoice); err != nil {
		return nil, fmt.Errorf("could not create invoice: %w", err)
	}

	prompt := invoice.Lightning
	if prompt == nil {
		return nil, ErrLnurlDisabled
	}
	prompt.PayRequest = payRequest
	prompt.ProvidedComment = comment

	modified, err := s.hooks.ApplyFilter(
		ctx, ports.HookModifyLnurlpDescription, payRequest.Metadata,
	)
	if err != nil {
		return nil, err
	}
	description, ok := modified.(string)
	if !ok {
		return nil, ErrInvalidMetadata
	}

	lnInvoice, err := s.lightning.CreateInvoice(ctx, ports.CreateInvoiceParams{
		Value:               amount,
		Memo:                description,
		DescriptionHashOnly: true,
		Expiry:              time.Until(invoice.ExpiresAt),
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate invoice: %w", err)
	}

	// The BOLT11 invoice must commit to sha256(description). On any
	// mismatch nothing is persisted and the wallet sees an error.
	decoded, err := zpay32.Decode(lnInvoice.BOLT11, s.cfg.ChainParams)
	if err != nil {
		return nil, ErrDescriptionHashMismatch
	}
	hash := lnurl.HashDescription(description)
	if decoded.DescriptionHash == nil ||
		!bytes.Equal(decoded.DescriptionHash[:], hash[:]) {

		return nil, ErrDescriptionHashMismatch
	}

	prompt.NodeInvoiceID = lnInvoice.ID
	prompt.Destination = lnInvoice.BOLT11
	prompt.PaymentHash = lnInvoice.PaymentHash
	prompt.Preimage = lnInvoice.Preimage
	prompt.GeneratedAmount = amount
	prompt.ConsumedLightningAddress = lnAddress

	// Single observable commit point of the flow.
	if err := s.invoices.UpdatePrompt(ctx, invoice.ID, prompt); err != nil {
		return nil, fmt.Errorf("could not persist payment prompt: %w", err)
	}
	s.publishNewPaymentDetails(invoice, prompt)

	var successAction *lnurl.SuccessAction
	if s.ReceiptsEnabled(app, invoice) {
		successAction = &lnurl.SuccessAction{
			Tag:         "url",
			Description: "Thanks for your shoutout! Here is your receipt",
			URL:         reqCtx.URL("/i/" + invoice.ID + "/receipt"),
		}
	}

	return &lnurl.CallbackResponse{
		PR:            lnInvoice.BOLT11,
		Routes:        []string{},
		Disposable:    true,
		SuccessAction: successAction,
	}, nil
}

package ports

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"
)

// CreateInvoiceParams describes the BOLT11 invoice to generate on the node.
type CreateInvoiceParams struct {
	Value lnwire.MilliSatoshi

	// Memo is the invoice description. With DescriptionHashOnly set, the
	// invoice commits to sha256(Memo) instead of embedding it verbatim.
	Memo                string
	DescriptionHashOnly bool

	Expiry time.Duration
}

type LightningInvoice struct {
	BOLT11      string
	ID          string
	PaymentHash string
	Preimage    string
}

type LightningInvoiceState struct {
	Settled    bool
	AmountPaid lnwire.MilliSatoshi
	Preimage   string
}

// LightningClient is the node-facing port. Both calls block on the network
// and must honor ctx cancellation.
type LightningClient interface {
	CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*LightningInvoice, error)
	LookupInvoice(ctx context.Context, paymentHash string) (*LightningInvoiceState, error)
}

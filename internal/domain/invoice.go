package domain

import (
	"context"
	"errors"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/lnshout/shoutout/lnurl"
)

var (
	ErrAppNotFound     = errors.New("app not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
)

type InvoiceStatus string

const (
	InvoiceStatusNew        InvoiceStatus = "New"
	InvoiceStatusProcessing InvoiceStatus = "Processing"
	InvoiceStatusSettled    InvoiceStatus = "Settled"
	InvoiceStatusExpired    InvoiceStatus = "Expired"
)

// Shoutout is the comment embedded immutably in invoice metadata at
// creation or callback time.
type Shoutout struct {
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}

type InvoiceMetadata struct {
	ItemCode string    `json:"itemCode,omitempty"`
	ItemDesc string    `json:"itemDesc,omitempty"`
	OrderID  string    `json:"orderId,omitempty"`
	OrderURL string    `json:"orderUrl,omitempty"`
	Shoutout *Shoutout `json:"shoutout,omitempty"`
}

// LightningPrompt is the payment-prompt detail attached to an invoice once
// the LNURL callback bound an amount to it. It is mutated exactly once.
type LightningPrompt struct {
	PayRequest      *lnurl.PayRequest
	ProvidedComment string

	// NodeInvoiceID is the id the lightning node assigned.
	NodeInvoiceID string

	// Destination is the generated BOLT11 invoice string.
	Destination string

	PaymentHash string
	Preimage    string

	GeneratedAmount lnwire.MilliSatoshi

	// ConsumedLightningAddress records which address (if any) the wallet
	// used to reach the callback.
	ConsumedLightningAddress string
}

type Invoice struct {
	ID       string
	AppID    string
	Currency string

	// Amount is denominated in Currency. PaidAmountNet is the settled
	// net amount, zero until settlement.
	Amount        float64
	PaidAmountNet float64

	Status   InvoiceStatus
	Archived bool

	CreatedAt time.Time
	ExpiresAt time.Time

	SearchTerms []string
	Metadata    InvoiceMetadata

	// ReceiptsEnabled overrides the app default when non-nil.
	ReceiptsEnabled *bool

	Lightning *LightningPrompt
}

func (i *Invoice) HasSearchTerm(term string) bool {
	for _, t := range i.SearchTerms {
		if t == term {
			return true
		}
	}
	return false
}

type InvoiceQuery struct {
	SearchTerm      string
	Statuses        []InvoiceStatus
	IncludeArchived bool
	Skip            int
	Take            int
}

type InvoiceRepository interface {
	Add(ctx context.Context, invoice *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)

	// UpdatePrompt persists a mutated payment prompt. This is the single
	// externally observable commit point of the callback flow.
	UpdatePrompt(ctx context.Context, id string, prompt *LightningPrompt) error

	SetStatus(ctx context.Context, id string, status InvoiceStatus, paidNet float64) error

	// Query returns invoices newest first.
	Query(ctx context.Context, query InvoiceQuery) ([]*Invoice, error)

	// ListOverdue returns New or Processing invoices whose expiry passed.
	ListOverdue(ctx context.Context, before time.Time) ([]*Invoice, error)

	Close()
}

// Package lnurl holds the LUD-06/LUD-12 wire types exchanged with wallets
// and the bech32 LNURL string codec.
package lnurl

import "github.com/lightningnetwork/lnd/lnwire"

// TagPayRequest is the LUD-06 tag identifying a payRequest document.
const TagPayRequest = "payRequest"

// PayRequest is the document a wallet fetches before requesting an invoice.
type PayRequest struct {
	// Tag is always TagPayRequest.
	Tag string `json:"tag"`

	// Callback is the URL from LN SERVICE which will accept the pay
	// request parameters.
	Callback string `json:"callback"`

	// MinSendable is the min amount LN SERVICE is willing to receive, can
	// not be less than 1 or more than MaxSendable.
	MinSendable lnwire.MilliSatoshi `json:"minSendable"`

	// MaxSendable is the max amount LN SERVICE is willing to receive.
	MaxSendable lnwire.MilliSatoshi `json:"maxSendable"`

	// CommentAllowed is the LUD-12 maximum comment length the service
	// accepts on the callback. Zero means comments are not supported.
	CommentAllowed int `json:"commentAllowed,omitempty"`

	// Metadata json which must be presented as raw string here, this is
	// required to pass signature verification at a later step.
	Metadata string `json:"metadata"`
}

// CallbackResponse is returned from the callback once an invoice was
// generated for the requested amount.
type CallbackResponse struct {
	// PR is a bech32-serialized lightning invoice.
	PR string `json:"pr"`

	// Routes is always an empty array.
	Routes []string `json:"routes"`

	// Disposable signals that the invoice may only be paid once.
	Disposable bool `json:"disposable"`

	// SuccessAction, if set, is shown by the wallet after settlement.
	SuccessAction *SuccessAction `json:"successAction,omitempty"`
}

// SuccessAction is a LUD-09 style post-payment action. Only the "url" tag
// is produced here.
type SuccessAction struct {
	Tag         string `json:"tag"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// ErrorResponse is the generic LNURL failure envelope.
type ErrorResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Error builds an ErrorResponse with the given reason.
func Error(reason string) *ErrorResponse {
	return &ErrorResponse{Status: "ERROR", Reason: reason}
}

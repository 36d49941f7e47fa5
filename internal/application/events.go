package application

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lnshout/shoutout/internal/domain"
)

// TopicInvoiceNewPaymentDetails announces that an invoice gained a new
// BOLT11 destination the payment watcher should track.
const TopicInvoiceNewPaymentDetails = "invoice.new-payment-details"

type NewPaymentDetailsEvent struct {
	InvoiceID   string    `json:"invoiceId"`
	PaymentHash string    `json:"paymentHash"`
	Destination string    `json:"destination"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (s *Service) publishNewPaymentDetails(invoice *domain.Invoice, prompt *domain.LightningPrompt) {
	payload, err := json.Marshal(NewPaymentDetailsEvent{
		InvoiceID:   invoice.ID,
		PaymentHash: prompt.PaymentHash,
		Destination: prompt.Destination,
		ExpiresAt:   invoice.ExpiresAt,
	})
	if err != nil {
		log.WithError(err).Warn("could not encode payment details event")
		return
	}
	if err := s.bus.Publish(TopicInvoiceNewPaymentDetails, payload); err != nil {
		log.WithError(err).WithField("invoice", invoice.ID).
			Warn("could not publish payment details event")
	}
}

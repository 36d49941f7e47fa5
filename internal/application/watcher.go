package application

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lnshout/shoutout/internal/domain"
	"github.com/lnshout/shoutout/internal/ports"
)

// Watcher tracks freshly announced BOLT11 destinations and settles the
// owning invoice once the node reports payment. It stands in for the host
// platform's payment-watching subsystem.
type Watcher struct {
	invoices  domain.InvoiceRepository
	lightning ports.LightningClient
	bus       ports.EventBus

	pollInterval time.Duration
}

func NewWatcher(
	invoices domain.InvoiceRepository,
	lightning ports.LightningClient,
	bus ports.EventBus,
	pollInterval time.Duration,
) *Watcher {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Watcher{
		invoices:     invoices,
		lightning:    lightning,
		bus:          bus,
		pollInterval: pollInterval,
	}
}

// Start subscribes to new-payment-details events and spawns one polling
// loop per announced invoice. It returns once the subscription is set up.
func (w *Watcher) Start(ctx context.Context) error {
	events, err := w.bus.Subscribe(ctx, TopicInvoiceNewPaymentDetails)
	if err != nil {
		return err
	}

	go func() {
		for ev := range events {
			var details NewPaymentDetailsEvent
			if err := json.Unmarshal(ev.Payload, &details); err != nil {
				log.WithError(err).Warn("dropping malformed payment details event")
				continue
			}
			go w.watch(ctx, details)
		}
	}()
	return nil
}

func (w *Watcher) watch(ctx context.Context, details NewPaymentDetailsEvent) {
	logger := log.WithField("invoice", details.InvoiceID)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		state, err := w.lightning.LookupInvoice(ctx, details.PaymentHash)
		if err != nil {
			logger.WithError(err).Debug("invoice lookup failed")
			continue
		}

		if state.Settled {
			paid := float64(state.AmountPaid.ToSatoshis())
			err := w.invoices.SetStatus(
				ctx, details.InvoiceID,
				domain.InvoiceStatusSettled, paid,
			)
			if err != nil {
				logger.WithError(err).Error("could not settle invoice")
				return
			}
			logger.WithField("paid_sats", paid).Info("invoice settled")
			return
		}

		if time.Now().After(details.ExpiresAt) {
			// The sweeper marks it expired; nothing left to watch.
			return
		}
	}
}

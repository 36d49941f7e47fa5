package application

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/lnshout/shoutout/internal/domain"
)

// Sweeper periodically expires overdue draft invoices so they drop out of
// checkout pages and watcher loops.
type Sweeper struct {
	invoices  domain.InvoiceRepository
	scheduler *gocron.Scheduler
}

func NewSweeper(invoices domain.InvoiceRepository) *Sweeper {
	return &Sweeper{
		invoices:  invoices,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(1).Minute().Do(s.sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) sweep() {
	ctx := context.Background()

	overdue, err := s.invoices.ListOverdue(ctx, time.Now())
	if err != nil {
		log.WithError(err).Warn("could not list overdue invoices")
		return
	}

	for _, invoice := range overdue {
		err := s.invoices.SetStatus(
			ctx, invoice.ID, domain.InvoiceStatusExpired, 0,
		)
		if err != nil {
			log.WithError(err).WithField("invoice", invoice.ID).
				Warn("could not expire invoice")
			continue
		}
		log.WithField("invoice", invoice.ID).Debug("invoice expired")
	}
}

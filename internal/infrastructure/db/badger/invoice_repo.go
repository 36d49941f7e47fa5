package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/lnshout/shoutout/internal/domain"
)

const invoiceStoreDir = "invoices"

type invoiceRepository struct {
	store *badgerhold.Store
}

func NewInvoiceRepository(baseDir string, logger badger.Logger) (domain.InvoiceRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, invoiceStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open invoice store: %s", err)
	}

	return &invoiceRepository{store}, nil
}

func (r *invoiceRepository) Add(ctx context.Context, invoice *domain.Invoice) error {
	if err := r.store.Insert(invoice.ID, *invoice); err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.store.Get(id, &invoice)
	if err == badgerhold.ErrNotFound {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) UpdatePrompt(ctx context.Context, id string, prompt *domain.LightningPrompt) error {
	invoice, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	invoice.Lightning = prompt
	if err := r.store.Update(id, *invoice); err != nil {
		return fmt.Errorf("failed to update payment prompt: %w", err)
	}
	return nil
}

func (r *invoiceRepository) SetStatus(ctx context.Context, id string, status domain.InvoiceStatus, paidNet float64) error {
	invoice, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	invoice.Status = status
	if paidNet > 0 {
		invoice.PaidAmountNet = paidNet
	}
	if err := r.store.Update(id, *invoice); err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Query(ctx context.Context, query domain.InvoiceQuery) ([]*domain.Invoice, error) {
	statuses := make([]interface{}, 0, len(query.Statuses))
	for _, status := range query.Statuses {
		statuses = append(statuses, status)
	}

	q := badgerhold.Where("Status").In(statuses...)
	if query.SearchTerm != "" {
		q = q.And("SearchTerms").Contains(query.SearchTerm)
	}
	if !query.IncludeArchived {
		q = q.And("Archived").Eq(false)
	}
	q = q.SortBy("CreatedAt").Reverse().Skip(query.Skip)
	if query.Take > 0 {
		q = q.Limit(query.Take)
	}

	var invoices []domain.Invoice
	if err := r.store.Find(&invoices, q); err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}

	result := make([]*domain.Invoice, 0, len(invoices))
	for i := range invoices {
		result = append(result, &invoices[i])
	}
	return result, nil
}

func (r *invoiceRepository) ListOverdue(ctx context.Context, before time.Time) ([]*domain.Invoice, error) {
	q := badgerhold.Where("Status").In(
		domain.InvoiceStatusNew, domain.InvoiceStatusProcessing,
	).And("ExpiresAt").Lt(before)

	var invoices []domain.Invoice
	if err := r.store.Find(&invoices, q); err != nil {
		return nil, fmt.Errorf("failed to list overdue invoices: %w", err)
	}

	result := make([]*domain.Invoice, 0, len(invoices))
	for i := range invoices {
		result = append(result, &invoices[i])
	}
	return result, nil
}

func (r *invoiceRepository) Close() {
	// nolint:all
	r.store.Close()
}

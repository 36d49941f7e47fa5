package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"

	"github.com/lnshout/shoutout/internal/domain"
	"github.com/lnshout/shoutout/internal/ports"
)

type memAppRepo struct {
	mu   sync.Mutex
	apps map[string]*domain.App
}

func newMemAppRepo() *memAppRepo {
	return &memAppRepo{apps: make(map[string]*domain.App)}
}

func (r *memAppRepo) Upsert(_ context.Context, app *domain.App) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *app
	r.apps[app.ID] = &clone
	return nil
}

func (r *memAppRepo) Get(_ context.Context, id string) (*domain.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrAppNotFound
	}
	clone := *app
	return &clone, nil
}

func (r *memAppRepo) List(_ context.Context) ([]*domain.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apps := make([]*domain.App, 0, len(r.apps))
	for _, app := range r.apps {
		clone := *app
		apps = append(apps, &clone)
	}
	return apps, nil
}

func (r *memAppRepo) Close() {}

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*domain.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[string]*domain.Invoice)}
}

func (r *memInvoiceRepo) Add(_ context.Context, invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *invoice
	r.invoices[invoice.ID] = &clone
	return nil
}

func (r *memInvoiceRepo) Get(_ context.Context, id string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	clone := *invoice
	return &clone, nil
}

func (r *memInvoiceRepo) UpdatePrompt(_ context.Context, id string, prompt *domain.LightningPrompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	invoice.Lightning = prompt
	return nil
}

func (r *memInvoiceRepo) SetStatus(_ context.Context, id string, status domain.InvoiceStatus, paidNet float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	invoice.Status = status
	if paidNet > 0 {
		invoice.PaidAmountNet = paidNet
	}
	return nil
}

func (r *memInvoiceRepo) Query(_ context.Context, query domain.InvoiceQuery) ([]*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matchStatus := func(status domain.InvoiceStatus) bool {
		if len(query.Statuses) == 0 {
			return true
		}
		for _, s := range query.Statuses {
			if s == status {
				return true
			}
		}
		return false
	}

	var matches []*domain.Invoice
	for _, invoice := range r.invoices {
		if query.SearchTerm != "" && !invoice.HasSearchTerm(query.SearchTerm) {
			continue
		}
		if !matchStatus(invoice.Status) {
			continue
		}
		if invoice.Archived && !query.IncludeArchived {
			continue
		}
		clone := *invoice
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	if query.Skip > 0 {
		if query.Skip >= len(matches) {
			return nil, nil
		}
		matches = matches[query.Skip:]
	}
	if query.Take > 0 && query.Take < len(matches) {
		matches = matches[:query.Take]
	}
	return matches, nil
}

func (r *memInvoiceRepo) ListOverdue(_ context.Context, before time.Time) ([]*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var overdue []*domain.Invoice
	for _, invoice := range r.invoices {
		if invoice.Status != domain.InvoiceStatusNew &&
			invoice.Status != domain.InvoiceStatusProcessing {

			continue
		}
		if invoice.ExpiresAt.Before(before) {
			clone := *invoice
			overdue = append(overdue, &clone)
		}
	}
	return overdue, nil
}

func (r *memInvoiceRepo) Close() {}

// fakeLightning generates real signed BOLT11 invoices so the callback's
// description-hash verification runs against the genuine zpay32 decoder.
type fakeLightning struct {
	mu      sync.Mutex
	privKey *btcec.PrivateKey

	// corruptHash makes generated invoices commit to the wrong
	// description hash.
	corruptHash bool

	failCreate bool

	created []ports.CreateInvoiceParams
	states  map[string]*ports.LightningInvoiceState
}

func newFakeLightning() *fakeLightning {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		panic(err)
	}
	return &fakeLightning{
		privKey: privKey,
		states:  make(map[string]*ports.LightningInvoiceState),
	}
}

func (f *fakeLightning) signer() zpay32.MessageSigner {
	return zpay32.MessageSigner{
		SignCompact: func(msg []byte) ([]byte, error) {
			hash := chainhash.HashB(msg)
			return ecdsa.SignCompact(f.privKey, hash, true), nil
		},
	}
}

func (f *fakeLightning) CreateInvoice(_ context.Context, params ports.CreateInvoiceParams) (*ports.LightningInvoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate {
		return nil, fmt.Errorf("node unavailable")
	}
	f.created = append(f.created, params)

	var paymentHash [32]byte
	if _, err := rand.Read(paymentHash[:]); err != nil {
		return nil, err
	}

	options := []func(*zpay32.Invoice){
		zpay32.Amount(params.Value),
		zpay32.Expiry(params.Expiry),
	}
	if params.DescriptionHashOnly {
		descHash := sha256.Sum256([]byte(params.Memo))
		if f.corruptHash {
			descHash[0] ^= 0xff
		}
		options = append(options, zpay32.DescriptionHash(descHash))
	} else {
		options = append(options, zpay32.Description(params.Memo))
	}

	invoice, err := zpay32.NewInvoice(
		&chaincfg.RegressionNetParams, paymentHash, time.Now(),
		options...,
	)
	if err != nil {
		return nil, err
	}
	encoded, err := invoice.Encode(f.signer())
	if err != nil {
		return nil, err
	}

	id := hex.EncodeToString(paymentHash[:])
	return &ports.LightningInvoice{
		BOLT11:      encoded,
		ID:          id,
		PaymentHash: id,
	}, nil
}

func (f *fakeLightning) LookupInvoice(_ context.Context, paymentHash string) (*ports.LightningInvoiceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.states[paymentHash]; ok {
		return state, nil
	}
	return &ports.LightningInvoiceState{}, nil
}

func (f *fakeLightning) settle(paymentHash string, paid lnwire.MilliSatoshi) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[paymentHash] = &ports.LightningInvoiceState{
		Settled:    true,
		AmountPaid: paid,
	}
}

type passthroughHooks struct {
	filter func(value interface{}) (interface{}, error)
}

func (h *passthroughHooks) ApplyFilter(_ context.Context, _ string, value interface{}) (interface{}, error) {
	if h.filter != nil {
		return h.filter(value)
	}
	return value, nil
}

// memBus records published events and feeds them to subscribers.
type memBus struct {
	mu        sync.Mutex
	published map[string][][]byte
	subs      map[string][]chan ports.Event
}

func newMemBus() *memBus {
	return &memBus{
		published: make(map[string][][]byte),
		subs:      make(map[string][]chan ports.Event),
	}
}

func (b *memBus) Publish(topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[topic] = append(b.published[topic], payload)
	for _, sub := range b.subs[topic] {
		sub <- ports.Event{ID: fmt.Sprint(len(b.published[topic])), Payload: payload}
	}
	return nil
}

func (b *memBus) Subscribe(_ context.Context, topic string) (<-chan ports.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := make(chan ports.Event, 16)
	b.subs[topic] = append(b.subs[topic], sub)
	return sub, nil
}

func (b *memBus) Close() error { return nil }

func (b *memBus) publishedOn(topic string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.published[topic]...)
}

type testEnv struct {
	svc       *Service
	apps      *memAppRepo
	invoices  *memInvoiceRepo
	lightning *fakeLightning
	hooks     *passthroughHooks
	bus       *memBus
}

func newTestEnv() *testEnv {
	env := &testEnv{
		apps:      newMemAppRepo(),
		invoices:  newMemInvoiceRepo(),
		lightning: newFakeLightning(),
		hooks:     &passthroughHooks{},
		bus:       newMemBus(),
	}
	env.svc = NewService(
		Config{
			ChainParams:     &chaincfg.RegressionNetParams,
			DefaultCurrency: "SATS",
			InvoiceExpiry:   10 * time.Minute,
			ReceiptsEnabled: true,
		},
		env.apps, env.invoices, env.lightning, env.hooks, env.bus,
	)
	return env
}

// newTestApp stores an LNURL-eligible app.
func (e *testEnv) newTestApp(id string) *domain.App {
	app := &domain.App{
		ID:       id,
		Name:     "Test Wall",
		Settings: domain.NewAppSettings("SATS"),
		PaymentMethods: map[domain.PaymentMethod]*domain.PaymentMethodConfig{
			domain.PaymentMethodLightning: {},
			domain.PaymentMethodLNURL:     {LUD12Enabled: true},
		},
		ReceiptsEnabled: true,
	}
	if err := e.apps.Upsert(context.Background(), app); err != nil {
		panic(err)
	}
	return app
}

func testRequestContext() RequestContext {
	return RequestContext{Scheme: "https", Host: "shoutout.example.com"}
}

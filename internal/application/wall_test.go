package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lnshout/shoutout/internal/domain"
)

func (e *testEnv) addWallInvoice(t *testing.T, app *domain.App, id string, amount float64, text string, status domain.InvoiceStatus, age time.Duration) {
	t.Helper()

	now := time.Now()
	err := e.invoices.Add(context.Background(), &domain.Invoice{
		ID:          id,
		AppID:       app.ID,
		Currency:    "SATS",
		Amount:      amount,
		Status:      status,
		CreatedAt:   now.Add(-age),
		ExpiresAt:   now.Add(10 * time.Minute),
		SearchTerms: []string{app.SearchTerm()},
		Metadata: domain.InvoiceMetadata{
			ItemCode: domain.ItemCode,
			Shoutout: &domain.Shoutout{Name: "tester", Text: text},
		},
	})
	require.NoError(t, err)
}

func TestPublicWallOrdering(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")

	env.addWallInvoice(t, app, "inv-old", 100, "oldest", domain.InvoiceStatusSettled, 3*time.Hour)
	env.addWallInvoice(t, app, "inv-mid", 100, "middle", domain.InvoiceStatusProcessing, 2*time.Hour)
	env.addWallInvoice(t, app, "inv-new", 100, "newest", domain.InvoiceStatusSettled, time.Hour)

	_, entries, err := env.svc.PublicWall(context.Background(), app.ID, 0, 50)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "newest", entries[0].Text)
	require.Equal(t, "middle", entries[1].Text)
	require.Equal(t, "oldest", entries[2].Text)
}

func TestPublicWallSkipsUnpaidAndEmpty(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")

	env.addWallInvoice(t, app, "inv-paid", 100, "paid", domain.InvoiceStatusSettled, time.Hour)
	env.addWallInvoice(t, app, "inv-draft", 100, "draft", domain.InvoiceStatusNew, time.Hour)
	env.addWallInvoice(t, app, "inv-expired", 100, "expired", domain.InvoiceStatusExpired, time.Hour)
	env.addWallInvoice(t, app, "inv-silent", 100, "", domain.InvoiceStatusSettled, time.Hour)

	_, entries, err := env.svc.PublicWall(context.Background(), app.ID, 0, 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "paid", entries[0].Text)
}

func TestPublicWallMinAmountFilter(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")
	app.Settings.MinAmount = 1000
	require.NoError(t, env.apps.Upsert(context.Background(), app))

	env.addWallInvoice(t, app, "inv-small", 500, "too small", domain.InvoiceStatusSettled, 2*time.Hour)
	env.addWallInvoice(t, app, "inv-big", 1500, "big enough", domain.InvoiceStatusSettled, time.Hour)

	_, entries, err := env.svc.PublicWall(context.Background(), app.ID, 0, 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "big enough", entries[0].Text)
}

func TestPublicWallPrefersPaidAmount(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")

	env.addWallInvoice(t, app, "inv1", 100, "overpaid", domain.InvoiceStatusSettled, time.Hour)
	require.NoError(t, env.invoices.SetStatus(
		context.Background(), "inv1", domain.InvoiceStatusSettled, 250,
	))

	_, entries, err := env.svc.PublicWall(context.Background(), app.ID, 0, 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, float64(250), entries[0].Amount)
}

func TestPublicWallMarksHidden(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")

	env.addWallInvoice(t, app, "inv1", 100, "visible", domain.InvoiceStatusSettled, 2*time.Hour)
	env.addWallInvoice(t, app, "inv2", 100, "hidden", domain.InvoiceStatusSettled, time.Hour)

	hidden, err := env.svc.ToggleExcluded(context.Background(), app.ID, "inv2")
	require.NoError(t, err)
	require.True(t, hidden)

	_, entries, err := env.svc.PublicWall(context.Background(), app.ID, 0, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.True(t, entries[0].Hidden)
	require.False(t, entries[1].Hidden)
}

func TestToggleExcludedTwiceRestores(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")

	hidden, err := env.svc.ToggleExcluded(context.Background(), app.ID, "inv1")
	require.NoError(t, err)
	require.True(t, hidden)

	hidden, err = env.svc.ToggleExcluded(context.Background(), app.ID, "inv1")
	require.NoError(t, err)
	require.False(t, hidden)

	stored, err := env.apps.Get(context.Background(), app.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Settings.ExcludeInvoiceID)
}

func TestSubmitShoutout(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")

	invoice, err := env.svc.SubmitShoutout(
		context.Background(), testRequestContext(), app.ID,
		SubmitShoutoutParams{Name: "  alice  ", Text: "hello wall", Amount: 42},
	)
	require.NoError(t, err)

	require.Equal(t, domain.InvoiceStatusNew, invoice.Status)
	require.Equal(t, "SATS", invoice.Currency)
	require.Equal(t, float64(42), invoice.Amount)
	require.Equal(t, "alice", invoice.Metadata.Shoutout.Name)
	require.Equal(t, "hello wall", invoice.Metadata.Shoutout.Text)
	require.True(t, invoice.HasSearchTerm(app.SearchTerm()))
}

func TestSubmitShoutoutValidation(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")

	_, err := env.svc.SubmitShoutout(
		context.Background(), testRequestContext(), app.ID,
		SubmitShoutoutParams{Text: "   ", Amount: 0},
	)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.Contains(t, validation.Fields, "text")
	require.Contains(t, validation.Fields, "amount")
	require.Empty(t, env.invoices.invoices)
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")

	updated, err := env.svc.UpdateSettings(context.Background(), app.ID, SettingsUpdate{
		AppName:                    "Renamed",
		Title:                      "My Wall",
		Currency:                   "sats",
		MinAmount:                  21,
		LightningAddressIdentifier: "donate",
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, "SATS", updated.Settings.Currency)
	require.Equal(t, "My Wall", updated.Settings.Title)
	require.Equal(t, float64(21), updated.Settings.MinAmount)
}

func TestUpdateSettingsInvalidCurrency(t *testing.T) {
	env := newTestEnv()
	app := env.newTestApp("app1")

	_, err := env.svc.UpdateSettings(context.Background(), app.ID, SettingsUpdate{
		Currency: "not a currency!",
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.Contains(t, validation.Fields, "currency")
}

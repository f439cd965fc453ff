package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bitbucket.org/mmdatafocus/meatshop_console/apiclient"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/shoptest"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	backend *shoptest.Backend
	rosita  models.Party
	sale    models.Document
	lomo    models.Product
}

func newFixture() fixture {
	b := shoptest.New()
	rosita := b.AddParty(models.PartyKindClient, "Rosita")
	lomo := b.AddProduct("Lomo", dec("12.5"))
	sale := b.AddDocument(models.Document{
		Kind: models.DocumentKindSale, Party: rosita, Date: "2024-05-01",
		Total: dec("35"), Paid: dec("10"), Balance: dec("25"),
	})
	return fixture{backend: b, rosita: rosita, sale: sale, lomo: lomo}
}

func TestRecordPayment_SubmitsAndRefetches(t *testing.T) {
	f := newFixture()
	input := &models.NewPayment{PartyId: f.rosita.ID, DocumentId: f.sale.ID, Amount: utils.NewFormDecimal(dec("10")), Date: "2024-05-02"}

	result, err := RecordPayment(context.Background(), f.backend, models.DocumentKindSale, input)
	require.NoError(t, err)

	require.Len(t, result.Documents, 1)
	assert.True(t, result.Documents[0].Balance.Equal(dec("15")))
	assert.Equal(t, models.DocumentStatusPartial, result.Documents[0].Status)
	assert.Equal(t, []models.Party{f.rosita}, result.PartiesWithDebt)
	assert.Equal(t, 1, f.backend.CallCount("RecordPayment"))
	assert.Equal(t, 2, f.backend.CallCount("ListDocuments"))
}

func TestRecordPayment_SettlesDocument(t *testing.T) {
	f := newFixture()
	input := &models.NewPayment{}
	input.SelectDocument(f.sale)
	input.Date = "2024-05-02"

	result, err := RecordPayment(context.Background(), f.backend, models.DocumentKindSale, input)
	require.NoError(t, err)
	assert.True(t, result.Documents[0].Balance.IsZero())
	assert.Equal(t, models.DocumentStatusPaid, result.Documents[0].Status)
	assert.Empty(t, result.PartiesWithDebt)
}

func TestRecordPayment_RejectsAmountAboveBalance(t *testing.T) {
	f := newFixture()
	input := &models.NewPayment{PartyId: f.rosita.ID, Amount: utils.NewFormDecimal(dec("25.01")), Date: "2024-05-02"}

	_, err := RecordPayment(context.Background(), f.backend, models.DocumentKindSale, input)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPaymentExceedsBalance)
	assert.True(t, models.IsValidationError(err))
	assert.Equal(t, 0, f.backend.CallCount("RecordPayment"))
}

func TestRecordPayment_UpstreamFailureIsNotRetried(t *testing.T) {
	f := newFixture()
	f.backend.Fail["RecordPayment"] = &apiclient.APIError{StatusCode: 500, Method: "POST", Path: "/ventas/pago", Message: "boom"}
	input := &models.NewPayment{PartyId: f.rosita.ID, Amount: utils.NewFormDecimal(dec("5")), Date: "2024-05-02"}

	_, err := RecordPayment(context.Background(), f.backend, models.DocumentKindSale, input)
	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Equal(t, 1, f.backend.CallCount("RecordPayment"))
}

func TestRecordPayment_InFlight(t *testing.T) {
	f := newFixture()
	release, err := AcquireSubmissionLock(context.Background(), paymentScreen(models.DocumentKindSale), f.rosita.ID)
	require.NoError(t, err)

	input := &models.NewPayment{PartyId: f.rosita.ID, Amount: utils.NewFormDecimal(dec("5")), Date: "2024-05-02"}
	_, err = RecordPayment(context.Background(), f.backend, models.DocumentKindSale, input)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Equal(t, 0, f.backend.CallCount("RecordPayment"))

	release()
	_, err = RecordPayment(context.Background(), f.backend, models.DocumentKindSale, input)
	assert.NoError(t, err)
}

func TestSubmissionLock_OnePerKey(t *testing.T) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	obtained := 0
	releases := []func(){}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := AcquireSubmissionLock(context.Background(), "payment:purchase", "s1")
			if err != nil {
				return
			}
			mu.Lock()
			obtained++
			releases = append(releases, release)
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, obtained)
	for _, r := range releases {
		r()
	}

	other, err := AcquireSubmissionLock(context.Background(), "payment:purchase", "s2")
	require.NoError(t, err)
	other()
}

func TestCreateDocument_SubmitsAndRefetches(t *testing.T) {
	f := newFixture()
	input := &models.NewDocument{
		PartyId: f.rosita.ID,
		Date:    "2024-05-03",
		Lines: []*models.NewDocumentLine{
			{ProductId: f.lomo.ID, Quantity: utils.NewFormDecimal(dec("2")), UnitPrice: utils.NewFormDecimal(dec("10"))},
		},
		InitialPayment: utils.NewFormDecimal(dec("20")),
	}
	products, err := models.ListProducts(context.Background(), f.backend)
	require.NoError(t, err)

	result, err := CreateDocument(context.Background(), f.backend, models.DocumentKindSale, input, models.ProductListLookup(products), nil)
	require.NoError(t, err)

	assert.True(t, result.Document.Total.Equal(dec("20")))
	assert.Equal(t, models.DocumentStatusPaid, result.Document.Status)
	assert.Len(t, result.Documents, 2)
	assert.Equal(t, 1, f.backend.CallCount("CreateDocument"))
}

func TestCreateDocument_ValidationErrorIsNotWrapped(t *testing.T) {
	f := newFixture()
	input := &models.NewDocument{
		PartyId: f.rosita.ID,
		Date:    "2024-05-03",
		Lines: []*models.NewDocumentLine{
			{ProductId: f.lomo.ID, Quantity: utils.NewFormDecimal(dec("13")), UnitPrice: utils.NewFormDecimal(dec("10"))},
		},
	}
	products, err := models.ListProducts(context.Background(), f.backend)
	require.NoError(t, err)

	_, err = CreateDocument(context.Background(), f.backend, models.DocumentKindSale, input, models.ProductListLookup(products), nil)
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "lte", verr.Fields["lines[0].quantity"])
	assert.Equal(t, 0, f.backend.CallCount("CreateDocument"))
}

// pausingBackend blocks the first ListDocuments call until resume is closed.
type pausingBackend struct {
	*shoptest.Backend
	once    sync.Once
	entered chan struct{}
	resume  chan struct{}
}

func (p *pausingBackend) ListDocuments(ctx context.Context, kind models.DocumentKind, filter models.PeriodFilter) ([]models.Document, error) {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.entered)
		<-p.resume
	}
	return p.Backend.ListDocuments(ctx, kind, filter)
}

func TestRecordPayment_BalanceIsReadUnderTheLock(t *testing.T) {
	f := newFixture()
	b := &pausingBackend{Backend: f.backend, entered: make(chan struct{}), resume: make(chan struct{})}
	pay := func() *models.NewPayment {
		return &models.NewPayment{PartyId: f.rosita.ID, Amount: utils.NewFormDecimal(dec("20")), Date: "2024-05-02"}
	}

	done := make(chan error, 1)
	go func() {
		_, err := RecordPayment(context.Background(), b, models.DocumentKindSale, pay())
		done <- err
	}()
	<-b.entered

	_, err := RecordPayment(context.Background(), b, models.DocumentKindSale, pay())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(b.resume)
	require.NoError(t, <-done)

	_, err = RecordPayment(context.Background(), b, models.DocumentKindSale, pay())
	assert.ErrorIs(t, err, models.ErrPaymentExceedsBalance)
	assert.Equal(t, 1, f.backend.CallCount("RecordPayment"))

	docs, err := f.backend.ListDocuments(context.Background(), models.DocumentKindSale, nil)
	require.NoError(t, err)
	assert.True(t, docs[0].Balance.Equal(dec("5")))
}

package reports

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/shoptest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seededBackend() *shoptest.Backend {
	b := shoptest.New()
	rosita := b.AddParty(models.PartyKindClient, "Rosita")
	pedro := b.AddParty(models.PartyKindClient, "Pedro")
	sur := b.AddParty(models.PartyKindSupplier, "Frigorifico Sur")
	b.AddProduct("Lomo", dec("12.5"))

	for i := 0; i < 6; i++ {
		party := rosita
		if i%2 == 1 {
			party = pedro
		}
		paid := "10"
		if i == 0 {
			paid = "4"
		}
		b.AddDocument(models.Document{Kind: models.DocumentKindSale, Party: party, Date: "2024-05-01", Total: dec("10"), Paid: dec(paid), Balance: dec("10").Sub(dec(paid))})
	}
	b.AddDocument(models.Document{Kind: models.DocumentKindPurchase, Party: sur, Date: "2024-05-01", Total: dec("30"), Paid: dec("20"), Balance: dec("10")})
	b.AddDocument(models.Document{Kind: models.DocumentKindPurchase, Party: sur, Date: "2024-05-02", Total: dec("15"), Paid: dec("15"), Balance: dec("0")})
	return b
}

func TestAggregate_AllSections(t *testing.T) {
	b := seededBackend()

	var mu sync.Mutex
	seen := map[Section]int{}
	d := Aggregate(context.Background(), b, nil, func(u SectionUpdate) {
		mu.Lock()
		defer mu.Unlock()
		assert.NoError(t, u.Err)
		seen[u.Section]++
	})

	assert.Empty(t, d.Errors)
	assert.Len(t, seen, 4)
	for _, s := range Sections {
		assert.Equal(t, 1, seen[s], s)
	}

	require.NotNil(t, d.Summary)
	assert.Equal(t, "60", d.Summary.Sales.Total.String())
	assert.Equal(t, "45", d.Summary.Purchases.Total.String())
	assert.Equal(t, "15", d.Profit().String())
	assert.InDelta(t, 33.333, d.MarginPercent(), 0.001)

	assert.Len(t, d.RecentSales, RecentSalesCount)
	require.Len(t, d.ClientsWithBalance, 1)
	assert.Equal(t, "6", d.ClientsWithBalance[0].Balance.String())
	require.Len(t, d.SuppliersToPay, 1)
	assert.Equal(t, "Frigorifico Sur", d.SuppliersToPay[0].Party.Name)
	assert.Equal(t, 1, d.ActiveProducts())
	assert.True(t, d.Exportable())
}

func TestAggregate_FailedSectionDoesNotBlockOthers(t *testing.T) {
	b := seededBackend()
	b.Fail["GetSummary"] = errors.New("summary unavailable")

	var failed []Section
	d := Aggregate(context.Background(), b, nil, func(u SectionUpdate) {
		if u.Err != nil {
			failed = append(failed, u.Section)
		}
	})

	assert.Equal(t, []Section{SectionSummary}, failed)
	assert.Equal(t, "summary unavailable", d.Errors[SectionSummary])
	assert.Nil(t, d.Summary)
	assert.NotNil(t, d.Inventory)
	assert.Len(t, d.RecentSales, RecentSalesCount)
	assert.False(t, d.Exportable())

	_, err := DashboardCSV(d)
	assert.ErrorIs(t, err, ErrDashboardIncomplete)
}

func TestMarginPercent_IsNotGuarded(t *testing.T) {
	d := &Dashboard{Summary: &models.Summary{Sales: models.SummaryTotals{Total: dec("50")}}}
	assert.True(t, math.IsInf(d.MarginPercent(), 1))
	assert.Equal(t, "Infinity", FormatPercent(d.MarginPercent()))

	d.Summary.Sales.Total = decimal.Zero
	assert.True(t, math.IsNaN(d.MarginPercent()))
	assert.Equal(t, "NaN", FormatPercent(d.MarginPercent()))

	assert.Equal(t, "-Infinity", FormatPercent(math.Inf(-1)))
	assert.Equal(t, "12.50", FormatPercent(12.5))
}

func TestDashboard_MarshalJSONAddsDerivedFields(t *testing.T) {
	d := &Dashboard{Summary: &models.Summary{
		Sales:     models.SummaryTotals{Total: dec("150")},
		Purchases: models.SummaryTotals{Total: dec("100")},
	}}
	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"profit":50`)
	assert.Contains(t, string(data), `"margin_percent":"50.00"`)
	assert.Contains(t, string(data), `"active_products":0`)
}

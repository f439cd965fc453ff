package reports

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const RecentSalesCount = 5

type Section string

const (
	SectionSummary   Section = "summary"
	SectionInventory Section = "inventory"
	SectionSales     Section = "sales"
	SectionPurchases Section = "purchases"
)

var Sections = []Section{SectionSummary, SectionInventory, SectionSales, SectionPurchases}

var ErrDashboardIncomplete = errors.New("summary and inventory are required to export the dashboard")

// Dashboard is filled section by section; a section that failed stays empty and has an entry in Errors.
type Dashboard struct {
	Period             string                  `json:"period"`
	GeneratedAt        time.Time               `json:"generated_at"`
	Summary            *models.Summary         `json:"summary"`
	Inventory          *models.InventoryReport `json:"inventory"`
	RecentSales        []models.Document       `json:"recent_sales"`
	ClientsWithBalance []models.Document       `json:"clients_with_balance"`
	SuppliersToPay     []models.Document       `json:"suppliers_to_pay"`
	Errors             map[Section]string      `json:"errors,omitempty"`
}

// SectionUpdate is handed to the caller as soon as a section has arrived or failed.
type SectionUpdate struct {
	Section Section
	Data    interface{}
	Err     error
}

func (d *Dashboard) salesTotal() decimal.Decimal {
	if d.Summary == nil {
		return decimal.Zero
	}
	return d.Summary.Sales.Total
}

func (d *Dashboard) purchasesTotal() decimal.Decimal {
	if d.Summary == nil {
		return decimal.Zero
	}
	return d.Summary.Purchases.Total
}

// Profit is sales minus purchases for the period.
func (d *Dashboard) Profit() decimal.Decimal {
	return d.salesTotal().Sub(d.purchasesTotal())
}

// MarginPercent is profit over purchases. Zero purchases give +Inf, -Inf or NaN.
func (d *Dashboard) MarginPercent() float64 {
	profit, _ := d.Profit().Float64()
	purchases, _ := d.purchasesTotal().Float64()
	return profit / purchases * 100
}

func (d *Dashboard) ActiveProducts() int {
	if d.Inventory == nil {
		return 0
	}
	return len(d.Inventory.Products)
}

// Exportable reports whether the sections every export needs are present.
func (d *Dashboard) Exportable() bool {
	return d.Summary != nil && d.Inventory != nil
}

// FormatPercent renders a float for JSON and exports; Inf and NaN are spelled out.
func FormatPercent(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (d *Dashboard) MarshalJSON() ([]byte, error) {
	type dashboard Dashboard
	return json.Marshal(struct {
		*dashboard
		Profit         decimal.Decimal `json:"profit"`
		MarginPercent  string          `json:"margin_percent"`
		ActiveProducts int             `json:"active_products"`
	}{
		dashboard:      (*dashboard)(d),
		Profit:         d.Profit(),
		MarginPercent:  FormatPercent(d.MarginPercent()),
		ActiveProducts: d.ActiveProducts(),
	})
}

// Aggregate fetches the four dashboard sections concurrently. A failing section does not stop the
// others. onSection, when set, is called once per section in arrival order, never concurrently.
func Aggregate(ctx context.Context, b models.Backend, filter models.PeriodFilter, onSection func(SectionUpdate)) *Dashboard {
	started := time.Now()
	dashboard := &Dashboard{
		Period:             models.PeriodLabel(filter),
		GeneratedAt:        started,
		RecentSales:        []models.Document{},
		ClientsWithBalance: []models.Document{},
		SuppliersToPay:     []models.Document{},
	}
	var mu sync.Mutex
	store := func(section Section, data interface{}, err error, apply func()) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			config.LogError(config.GetLogger(), "dashboardReport.go", "Aggregate", string(section), models.PeriodKey(filter), err)
			if dashboard.Errors == nil {
				dashboard.Errors = make(map[Section]string)
			}
			dashboard.Errors[section] = err.Error()
		} else {
			apply()
		}
		if onSection != nil {
			onSection(SectionUpdate{Section: section, Data: data, Err: err})
		}
	}

	// plain Group: one failure must not cancel the other fetches
	var g errgroup.Group
	g.Go(func() error {
		summary, err := models.GetSummary(ctx, b, filter)
		store(SectionSummary, summary, err, func() { dashboard.Summary = summary })
		return err
	})
	g.Go(func() error {
		inventory, err := models.GetInventoryReport(ctx, b, filter)
		store(SectionInventory, inventory, err, func() { dashboard.Inventory = inventory })
		return err
	})
	g.Go(func() error {
		sales, err := models.ListDocuments(ctx, b, models.DocumentKindSale, filter)
		var section map[string][]models.Document
		if err == nil {
			section = map[string][]models.Document{
				"recent_sales":         models.RecentDocuments(sales, RecentSalesCount),
				"clients_with_balance": models.DocumentsWithBalance(sales),
			}
		}
		store(SectionSales, section, err, func() {
			dashboard.RecentSales = section["recent_sales"]
			dashboard.ClientsWithBalance = section["clients_with_balance"]
		})
		return err
	})
	g.Go(func() error {
		purchases, err := models.ListDocuments(ctx, b, models.DocumentKindPurchase, filter)
		var toPay []models.Document
		if err == nil {
			toPay = models.DocumentsWithBalance(purchases)
		}
		store(SectionPurchases, map[string][]models.Document{"suppliers_to_pay": toPay}, err, func() {
			dashboard.SuppliersToPay = toPay
		})
		return err
	})
	_ = g.Wait()

	logSlowReport(ctx, "dashboard", started, map[string]any{"period": models.PeriodKey(filter), "errors": len(dashboard.Errors)})
	return dashboard
}

package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"github.com/shopspring/decimal"
)

type ChartSeries struct {
	Label string            `json:"label"`
	Data  []decimal.Decimal `json:"data"`
}

type Chart struct {
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// InventoryView is the inventory screen: the report plus the data behind its two charts.
type InventoryView struct {
	*models.InventoryReport
	PeriodLabel string `json:"period_label"`
	StockChart  Chart  `json:"stock_chart"`
	MoneyChart  Chart  `json:"purchases_vs_sales_chart"`
}

// StockChart plots available, sold and purchased quantities per product.
func StockChart(report *models.InventoryReport) Chart {
	chart := Chart{Labels: make([]string, 0, len(report.Products))}
	available := ChartSeries{Label: "Available", Data: make([]decimal.Decimal, 0, len(report.Products))}
	sold := ChartSeries{Label: "Sold", Data: make([]decimal.Decimal, 0, len(report.Products))}
	purchased := ChartSeries{Label: "Purchased", Data: make([]decimal.Decimal, 0, len(report.Products))}
	for _, p := range report.Products {
		chart.Labels = append(chart.Labels, p.Product)
		available.Data = append(available.Data, p.Available)
		sold.Data = append(sold.Data, p.Sold)
		purchased.Data = append(purchased.Data, p.Purchased)
	}
	chart.Series = []ChartSeries{available, sold, purchased}
	return chart
}

// PurchasesVsSalesChart compares the money spent and earned in the period.
func PurchasesVsSalesChart(report *models.InventoryReport) Chart {
	return Chart{
		Labels: []string{"Purchase Value", "Sales Value"},
		Series: []ChartSeries{{
			Label: "Amount",
			Data:  []decimal.Decimal{report.PurchasesVsSales.PurchasedAmount, report.PurchasesVsSales.SoldAmount},
		}},
	}
}

func BuildInventoryView(report *models.InventoryReport, filter models.PeriodFilter) *InventoryView {
	label := models.PeriodLabel(filter)
	if filter == nil && report.Period != (models.PeriodStamp{}) {
		label = report.Period.String()
	}
	return &InventoryView{
		InventoryReport: report,
		PeriodLabel:     label,
		StockChart:      StockChart(report),
		MoneyChart:      PurchasesVsSalesChart(report),
	}
}

func GetInventoryView(ctx context.Context, b models.Backend, filter models.PeriodFilter) (*InventoryView, error) {
	started := time.Now()
	report, err := models.GetInventoryReport(ctx, b, filter)
	if err != nil {
		return nil, err
	}
	logSlowReport(ctx, "inventory", started, map[string]any{"period": models.PeriodKey(filter)})
	return BuildInventoryView(report, filter), nil
}

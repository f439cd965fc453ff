package models

import (
	"context"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/shopspring/decimal"
)

type SummaryTotals struct {
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Balance decimal.Decimal `json:"balance"`
}

// Summary is the period totals computed by the shop API.
type Summary struct {
	Sales     SummaryTotals `json:"sales"`
	Purchases SummaryTotals `json:"purchases"`
}

type InventoryLine struct {
	Product       string          `json:"product"`
	Available     decimal.Decimal `json:"available"`
	Purchased     decimal.Decimal `json:"purchased"`
	Sold          decimal.Decimal `json:"sold"`
	PurchaseValue decimal.Decimal `json:"purchase_value"`
	SalesValue    decimal.Decimal `json:"sales_value"`
}

type PurchasesVsSales struct {
	PurchasedKg     decimal.Decimal `json:"purchased_kg"`
	PurchasedAmount decimal.Decimal `json:"purchased_amount"`
	SoldKg          decimal.Decimal `json:"sold_kg"`
	SoldAmount      decimal.Decimal `json:"sold_amount"`
	Profit          decimal.Decimal `json:"profit"`
}

type InventoryReport struct {
	Period           PeriodStamp      `json:"period"`
	Products         []InventoryLine  `json:"products"`
	PurchasesVsSales PurchasesVsSales `json:"purchases_vs_sales"`
}

func GetSummary(ctx context.Context, b Backend, filter PeriodFilter) (*Summary, error) {
	scope := PeriodKey(filter)
	cached, err := utils.RetrieveRedisObject[Summary](ctx, scope)
	if err != nil {
		config.LogError(config.GetLogger(), "report.go", "GetSummary", "RetrieveRedisObject", scope, err)
	}
	if cached != nil {
		return cached, nil
	}
	summary, err := b.GetSummary(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedisObject(ctx, summary, scope); err != nil {
		config.LogError(config.GetLogger(), "report.go", "GetSummary", "StoreRedisObject", scope, err)
	}
	return summary, nil
}

func GetInventoryReport(ctx context.Context, b Backend, filter PeriodFilter) (*InventoryReport, error) {
	scope := PeriodKey(filter)
	cached, err := utils.RetrieveRedisObject[InventoryReport](ctx, scope)
	if err != nil {
		config.LogError(config.GetLogger(), "report.go", "GetInventoryReport", "RetrieveRedisObject", scope, err)
	}
	if cached != nil {
		return cached, nil
	}
	report, err := b.GetInventoryReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	if report.Products == nil {
		report.Products = []InventoryLine{}
	}
	if err := utils.StoreRedisObject(ctx, report, scope); err != nil {
		config.LogError(config.GetLogger(), "report.go", "GetInventoryReport", "StoreRedisObject", scope, err)
	}
	return report, nil
}

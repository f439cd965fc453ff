package reports

import (
	"bytes"
	"encoding/csv"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/shopspring/decimal"
)

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func moneyWithCurrency(v decimal.Decimal) string {
	return v.StringFixed(2) + " " + config.CurrencyLabel()
}

func kilograms(v decimal.Decimal) string {
	return v.String() + " Kg"
}

func inventoryRow(p models.InventoryLine) []string {
	return []string{
		p.Product,
		p.Available.String(),
		p.Purchased.String(),
		p.Sold.String(),
		money(p.PurchaseValue),
		money(p.SalesValue),
	}
}

func balanceRows(docs []models.Document) [][]string {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{d.Party.Name, money(d.Balance)})
	}
	return rows
}

func recentSaleRows(docs []models.Document) [][]string {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{d.Party.Name, utils.FormatDisplayDate(d.Date), money(d.Total)})
	}
	return rows
}

var inventoryHeader = []string{"Product", "Available", "Purchased", "Sold", "Purchase Value", "Sales Value"}

// DashboardCSV writes summary, inventory, recent sales, clients with balance and suppliers to pay, in that order.
func DashboardCSV(d *Dashboard) ([]byte, error) {
	if !d.Exportable() {
		return nil, ErrDashboardIncomplete
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Dashboard Report"},
		{},
		{"Summary"},
		{"Total Sales", moneyWithCurrency(d.salesTotal())},
		{"Total Purchases", moneyWithCurrency(d.purchasesTotal())},
		{"Profit", moneyWithCurrency(d.Profit())},
		{},
		{"Inventory"},
		inventoryHeader,
	}
	for _, p := range d.Inventory.Products {
		records = append(records, inventoryRow(p))
	}

	records = append(records, []string{}, []string{"Recent Sales"}, []string{"Client", "Date", "Total"})
	records = append(records, recentSaleRows(d.RecentSales)...)

	records = append(records, []string{}, []string{"Clients with Balance"}, []string{"Client", "Balance"})
	records = append(records, balanceRows(d.ClientsWithBalance)...)

	records = append(records, []string{}, []string{"Suppliers to Payment"}, []string{"Supplier", "Balance"})
	records = append(records, balanceRows(d.SuppliersToPay)...)

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InventoryCSV is the inventory screen export, in Spanish like the screen itself.
func InventoryCSV(view *InventoryView) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Producto", "Cantidad Disponible", "Cantidad Comprada", "Cantidad Vendida", "Valor Compras", "Valor Ventas"},
	}
	for _, p := range view.Products {
		records = append(records, inventoryRow(p))
	}
	pvs := view.InventoryReport.PurchasesVsSales
	records = append(records,
		[]string{},
		[]string{"Resumen"},
		[]string{"Fecha", view.PeriodLabel},
		[]string{"Total Compras", kilograms(pvs.PurchasedKg), moneyWithCurrency(pvs.PurchasedAmount)},
		[]string{"Total Ventas", kilograms(pvs.SoldKg), moneyWithCurrency(pvs.SoldAmount)},
		[]string{"Ganancia", moneyWithCurrency(pvs.Profit)},
	)
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

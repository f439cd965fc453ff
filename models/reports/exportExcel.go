package reports

import (
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func num(v decimal.Decimal) float64 {
	return v.InexactFloat64()
}

type sheet struct {
	name string
	rows [][]interface{}
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	if len(s.rows) > 0 {
		last, err := excelize.CoordinatesToCellName(len(s.rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(s.name, "A", "A", 32)
}

// DashboardXLSX writes one sheet per dashboard section.
func DashboardXLSX(d *Dashboard) ([]byte, error) {
	if !d.Exportable() {
		return nil, ErrDashboardIncomplete
	}

	summary := sheet{name: "Summary", rows: [][]interface{}{
		{"Dashboard Report", d.Period},
		{"Total Sales", num(d.salesTotal())},
		{"Total Purchases", num(d.purchasesTotal())},
		{"Profit", num(d.Profit())},
		{"Margin %", FormatPercent(d.MarginPercent())},
		{"Active Products", d.ActiveProducts()},
	}}

	inventory := sheet{name: "Inventory", rows: [][]interface{}{
		{"Product", "Available", "Purchased", "Sold", "Purchase Value", "Sales Value"},
	}}
	for _, p := range d.Inventory.Products {
		inventory.rows = append(inventory.rows, []interface{}{
			p.Product, num(p.Available), num(p.Purchased), num(p.Sold), num(p.PurchaseValue), num(p.SalesValue),
		})
	}

	recent := sheet{name: "Recent Sales", rows: [][]interface{}{{"Client", "Date", "Total"}}}
	for _, s := range d.RecentSales {
		recent.rows = append(recent.rows, []interface{}{s.Party.Name, utils.FormatDisplayDate(s.Date), num(s.Total)})
	}

	clients := sheet{name: "Clients with Balance", rows: [][]interface{}{{"Client", "Balance"}}}
	for _, s := range d.ClientsWithBalance {
		clients.rows = append(clients.rows, []interface{}{s.Party.Name, num(s.Balance)})
	}

	suppliers := sheet{name: "Suppliers to Payment", rows: [][]interface{}{{"Supplier", "Balance"}}}
	for _, p := range d.SuppliersToPay {
		suppliers.rows = append(suppliers.rows, []interface{}{p.Party.Name, num(p.Balance)})
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, s := range []sheet{summary, inventory, recent, clients, suppliers} {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package reports

import (
	"bytes"
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixtureDashboard() *Dashboard {
	rosita := models.Party{ID: "c1", Name: "Rosita"}
	sur := models.Party{ID: "s1", Name: "Frigorifico Sur"}
	sale := models.Document{ID: "v1", Party: rosita, Date: "2024-05-01", Total: dec("35"), Paid: dec("10"), Balance: dec("25")}
	return &Dashboard{
		Period: "05/2024",
		Summary: &models.Summary{
			Sales:     models.SummaryTotals{Total: dec("100")},
			Purchases: models.SummaryTotals{Total: dec("60")},
		},
		Inventory: &models.InventoryReport{
			Products: []models.InventoryLine{{
				Product: "Lomo", Available: dec("12.5"), Purchased: dec("20"), Sold: dec("7.5"),
				PurchaseValue: dec("800"), SalesValue: dec("450"),
			}},
			PurchasesVsSales: models.PurchasesVsSales{
				PurchasedKg: dec("20"), PurchasedAmount: dec("800"), SoldKg: dec("7.5"), SoldAmount: dec("450"), Profit: dec("-350"),
			},
		},
		RecentSales:        []models.Document{sale},
		ClientsWithBalance: []models.Document{sale},
		SuppliersToPay:     []models.Document{{ID: "c1", Party: sur, Total: dec("30"), Balance: dec("10")}},
	}
}

func TestDashboardCSV_SectionsInOrder(t *testing.T) {
	t.Setenv("CURRENCY_LABEL", "Bs")
	data, err := DashboardCSV(fixtureDashboard())
	require.NoError(t, err)

	expected := "Dashboard Report\n" +
		"\n" +
		"Summary\n" +
		"Total Sales,100.00 Bs\n" +
		"Total Purchases,60.00 Bs\n" +
		"Profit,40.00 Bs\n" +
		"\n" +
		"Inventory\n" +
		"Product,Available,Purchased,Sold,Purchase Value,Sales Value\n" +
		"Lomo,12.5,20,7.5,800.00,450.00\n" +
		"\n" +
		"Recent Sales\n" +
		"Client,Date,Total\n" +
		"Rosita,01/05/2024,35.00\n" +
		"\n" +
		"Clients with Balance\n" +
		"Client,Balance\n" +
		"Rosita,25.00\n" +
		"\n" +
		"Suppliers to Payment\n" +
		"Supplier,Balance\n" +
		"Frigorifico Sur,10.00\n"
	assert.Equal(t, expected, string(data))
}

func TestDashboardCSV_QuotesNamesWithCommas(t *testing.T) {
	d := fixtureDashboard()
	d.Inventory.Products[0].Product = "Pecho, especial"
	data, err := DashboardCSV(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"Pecho, especial\",12.5,20,7.5,800.00,450.00\n")
}

func TestInventoryCSV(t *testing.T) {
	t.Setenv("CURRENCY_LABEL", "Bs")
	d := fixtureDashboard()
	view := BuildInventoryView(d.Inventory, models.MonthFilter{Year: 2024, Month: 5})

	data, err := InventoryCSV(view)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, bytes.HasPrefix(data, []byte("Producto,Cantidad Disponible,Cantidad Comprada,Cantidad Vendida,Valor Compras,Valor Ventas\n")))
	assert.Contains(t, out, "Lomo,12.5,20,7.5,800.00,450.00\n")
	assert.Contains(t, out, "\nResumen\nFecha,05/2024\n")
	assert.Contains(t, out, "Total Compras,20 Kg,800.00 Bs\n")
	assert.Contains(t, out, "Total Ventas,7.5 Kg,450.00 Bs\n")
	assert.Contains(t, out, "Ganancia,-350.00 Bs\n")
}

func TestInventoryView_Charts(t *testing.T) {
	view := BuildInventoryView(fixtureDashboard().Inventory, nil)
	assert.Equal(t, "All", view.PeriodLabel)
	assert.Equal(t, []string{"Lomo"}, view.StockChart.Labels)
	require.Len(t, view.StockChart.Series, 3)
	assert.Equal(t, "Available", view.StockChart.Series[0].Label)
	assert.Equal(t, "7.5", view.StockChart.Series[1].Data[0].String())
	assert.Equal(t, "800", view.MoneyChart.Series[0].Data[0].String())
}

func TestPDFExports(t *testing.T) {
	data, err := DashboardPDF(fixtureDashboard())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	view := BuildInventoryView(fixtureDashboard().Inventory, models.YearFilter{Year: 2024})
	data, err = InventoryPDF(view)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestDashboardXLSX_OneSheetPerSection(t *testing.T) {
	data, err := DashboardXLSX(fixtureDashboard())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Inventory", "Recent Sales", "Clients with Balance", "Suppliers to Payment"}, f.GetSheetList())
	v, err := f.GetCellValue("Inventory", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Lomo", v)
	v, err = f.GetCellValue("Suppliers to Payment", "B2")
	require.NoError(t, err)
	assert.Equal(t, "10", v)
}

func TestExportDashboard_FileNames(t *testing.T) {
	export, err := ExportDashboard(context.Background(), fixtureDashboard(), FormatCSV, "month-2024-05")
	require.NoError(t, err)
	assert.Equal(t, "dashboard-report-month-2024-05.csv", export.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", export.ContentType)
	assert.Empty(t, export.ArchiveURL)

	_, err = ExportInventory(context.Background(), BuildInventoryView(fixtureDashboard().Inventory, nil), FormatXLSX, "all")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

package reports

import (
	"bytes"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/go-pdf/fpdf"
)

const (
	pdfMarginLeft = 14.0
	pdfRowHeight  = 7.0
)

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPdfWriter() *pdfWriter {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginLeft, 15, pdfMarginLeft)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	// core fonts are cp1252; accents in product names need translating
	return &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (w *pdfWriter) heading(size float64, text string) {
	w.pdf.SetFont("Helvetica", "B", size)
	w.pdf.CellFormat(0, size*0.6, w.tr(text), "", 1, "L", false, 0, "")
	w.pdf.Ln(2)
}

func (w *pdfWriter) line(text string) {
	w.pdf.SetFont("Helvetica", "", 10)
	w.pdf.CellFormat(0, pdfRowHeight, w.tr(text), "", 1, "L", false, 0, "")
}

// table draws a header row on a grey fill and the body rows below it; widths are in mm.
func (w *pdfWriter) table(headers []string, widths []float64, rows [][]string) {
	w.pdf.SetFont("Helvetica", "B", 9)
	w.pdf.SetFillColor(41, 128, 185)
	w.pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		w.pdf.CellFormat(widths[i], pdfRowHeight, w.tr(h), "1", 0, "C", true, 0, "")
	}
	w.pdf.Ln(-1)

	w.pdf.SetFont("Helvetica", "", 9)
	w.pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			w.pdf.CellFormat(widths[i], pdfRowHeight, w.tr(cell), "1", 0, align, false, 0, "")
		}
		w.pdf.Ln(-1)
	}
	w.pdf.Ln(5)
}

func (w *pdfWriter) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var inventoryWidths = []float64{52, 22, 24, 22, 31, 31}

func inventoryRows(products []models.InventoryLine) [][]string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, inventoryRow(p))
	}
	return rows
}

// DashboardPDF lays out title, date, summary and inventory; then recent sales and clients
// with balance on a second page; then suppliers to pay on a third.
func DashboardPDF(d *Dashboard) ([]byte, error) {
	if !d.Exportable() {
		return nil, ErrDashboardIncomplete
	}
	w := newPdfWriter()

	w.heading(18, "Dashboard Report")
	w.line("Date: " + utils.Now().Format("02/01/2006"))
	w.line("Period: " + d.Period)
	w.pdf.Ln(3)

	w.heading(14, "Summary")
	w.line("Total Sales: " + moneyWithCurrency(d.salesTotal()))
	w.line("Total Purchases: " + moneyWithCurrency(d.purchasesTotal()))
	w.line("Profit: " + moneyWithCurrency(d.Profit()))
	w.pdf.Ln(3)

	w.heading(14, "Inventory")
	w.table(inventoryHeader, inventoryWidths, inventoryRows(d.Inventory.Products))

	w.pdf.AddPage()
	w.heading(14, "Recent Sales")
	w.table([]string{"Client", "Date", "Total"}, []float64{90, 46, 46}, recentSaleRows(d.RecentSales))

	w.heading(14, "Clients with Balance")
	w.table([]string{"Client", "Balance"}, []float64{120, 62}, balanceRows(d.ClientsWithBalance))

	w.pdf.AddPage()
	w.heading(14, "Suppliers to Payment")
	w.table([]string{"Supplier", "Balance"}, []float64{120, 62}, balanceRows(d.SuppliersToPay))

	return w.bytes()
}

// InventoryPDF is the inventory screen export.
func InventoryPDF(view *InventoryView) ([]byte, error) {
	w := newPdfWriter()

	w.heading(16, "Reporte de Inventario")
	w.line("Fecha: " + view.PeriodLabel)
	w.pdf.Ln(3)

	w.table(
		[]string{"Producto", "Disponible", "Comprado", "Vendido", "Valor Compras", "Valor Ventas"},
		inventoryWidths,
		inventoryRows(view.Products),
	)

	pvs := view.InventoryReport.PurchasesVsSales
	w.heading(12, "Resumen:")
	w.line("Total Compras: " + kilograms(pvs.PurchasedKg) + " - " + moneyWithCurrency(pvs.PurchasedAmount))
	w.line("Total Ventas: " + kilograms(pvs.SoldKg) + " - " + moneyWithCurrency(pvs.SoldAmount))
	w.line("Ganancia: " + moneyWithCurrency(pvs.Profit))

	return w.bytes()
}

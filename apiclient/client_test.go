package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const purchasesJSON = `[
  {
    "_id": "c1",
    "proveedorId": {"_id": "s1", "nombre": "Frigorifico Sur", "telefono": "71234567", "direccion": "Av. Blanco Galindo"},
    "productos": [
      {"productoId": {"_id": "p1", "nombre": "Lomo", "cantidadDisponible": 40}, "cantidad": 2, "precio": 10, "subtotal": 20, "_id": "l1"},
      {"productoId": null, "cantidad": 3, "precio": 5, "subtotal": 15, "_id": "l2"}
    ],
    "total": 35,
    "montoPagado": 10,
    "saldo": 25,
    "estado": "Parcial",
    "fechaCompra": "2024-05-01T00:00:00.000Z",
    "pagos": [{"monto": 10, "fecha": "2024-05-01", "_id": "pg1"}],
    "createdAt": "2024-05-01T10:00:00.000Z",
    "updatedAt": "2024-05-01T10:00:00.000Z"
  }
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/api/", 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsEmptyBaseURL(t *testing.T) {
	_, err := NewClient("  ", time.Second)
	assert.Error(t, err)
}

func TestListDocuments_DecodesPurchases(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/compras", r.URL.Path)
		assert.Equal(t, "05", r.URL.Query().Get("mes"))
		assert.Equal(t, "2024", r.URL.Query().Get("anio"))
		assert.Empty(t, r.URL.Query().Get("dia"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, purchasesJSON)
	})

	docs, err := c.ListDocuments(context.Background(), models.DocumentKindPurchase, models.MonthFilter{Year: 2024, Month: time.May})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "c1", doc.ID)
	assert.Equal(t, models.DocumentKindPurchase, doc.Kind)
	assert.Equal(t, "s1", doc.Party.ID)
	assert.Equal(t, "Frigorifico Sur", doc.Party.Name)
	assert.Equal(t, models.PartyKindSupplier, doc.Party.Kind)
	assert.Equal(t, "2024-05-01T00:00:00.000Z", doc.Date)
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(35)))
	assert.True(t, doc.Balance.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, models.DocumentStatusPartial, doc.Status)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "Lomo", doc.Lines[0].ProductName)
	assert.Equal(t, "", doc.Lines[1].ProductId)
	require.Len(t, doc.Payments, 1)
	assert.True(t, doc.Payments[0].Amount.Equal(decimal.NewFromInt(10)))
}

func TestCreateDocument_SendsSaleShape(t *testing.T) {
	var received map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ventas", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"_id": "v1", "clienteId": "c9", "productos": [], "total": 20, "montoPagado": 0, "saldo": 20, "estado": "Pendiente", "fechaVenta": "2024-05-02"}`)
	})

	ctx := utils.SetIdempotencyKeyInContext(context.Background(), "key-1")
	doc, err := c.CreateDocument(ctx, models.DocumentKindSale, models.DocumentSubmission{
		PartyId: "c9",
		Date:    "2024-05-02",
		Lines: []models.LineItem{{
			ProductId: "p1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(10), Subtotal: decimal.NewFromInt(20),
		}},
		InitialPayment: decimal.Zero,
	})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "v1", doc.ID)
	assert.Equal(t, "c9", doc.Party.ID)

	assert.Equal(t, "c9", received["clienteId"])
	assert.Equal(t, "2024-05-02", received["fechaVenta"])
	assert.NotContains(t, received, "proveedorId")
	assert.Equal(t, float64(0), received["pago"])
	lines := received["productos"].([]interface{})
	require.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})
	assert.Equal(t, "p1", line["productoId"])
	assert.Equal(t, float64(2), line["cantidad"])
	assert.Equal(t, float64(20), line["subtotal"])
}

func TestRecordPayment_OmitsDocumentWhenAggregate(t *testing.T) {
	var received map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/compras/pago", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	})

	err := c.RecordPayment(context.Background(), models.DocumentKindPurchase, models.PaymentSubmission{
		PartyId: "s1",
		Amount:  decimal.NewFromInt(15),
		Date:    "2024-05-03",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", received["proveedorId"])
	assert.Equal(t, float64(15), received["montoPago"])
	assert.Equal(t, "2024-05-03", received["fechaPago"])
	assert.NotContains(t, received, "compraId")
}

func TestDo_ReturnsAPIErrorOnNon2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message": "Cliente no encontrado"}`)
	})

	err := c.DeleteParty(context.Background(), models.PartyKindClient, "missing")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/clientes/missing", apiErr.Path)
	assert.Equal(t, "Cliente no encontrado", apiErr.Message)
	assert.True(t, IsNotFound(err))
}

func TestGetInventoryReport_AcceptsStringPeriodParts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/inventario/reporte-inventario", r.URL.Path)
		assert.Equal(t, "2024", r.URL.Query().Get("anio"))
		_, _ = io.WriteString(w, `{
		  "fechaFiltro": {"dia": null, "mes": "05", "anio": 2024},
		  "productos": [{"producto": "Lomo", "cantidadDisponible": 12.5, "cantidadComprada": 20, "cantidadVendida": 7.5, "valorCompras": 800, "valorVentas": 450}],
		  "comprasVsVentas": {"totalComprasKg": 20, "totalComprasDinero": 800, "totalVentasKg": 7.5, "totalVentasDinero": 450, "ganancia": -350}
		}`)
	})

	report, err := c.GetInventoryReport(context.Background(), models.YearFilter{Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, models.PeriodStamp{Month: 5, Year: 2024}, report.Period)
	require.Len(t, report.Products, 1)
	assert.Equal(t, "Lomo", report.Products[0].Product)
	assert.True(t, report.Products[0].Available.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, report.PurchasesVsSales.Profit.Equal(decimal.NewFromInt(-350)))
}

func TestGetSummary_MapsTotals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"ventas": {"totalVentas": 500, "totalPagado": 300, "totalSaldo": 200}, "compras": {"totalCompras": 400, "totalPagado": 400, "totalSaldo": 0}}`)
	})

	summary, err := c.GetSummary(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, summary.Sales.Total.Equal(decimal.NewFromInt(500)))
	assert.True(t, summary.Sales.Balance.Equal(decimal.NewFromInt(200)))
	assert.True(t, summary.Purchases.Paid.Equal(decimal.NewFromInt(400)))
}

func TestErrorMessage_TruncatesOnRuneBoundary(t *testing.T) {
	msg := errorMessage([]byte(strings.Repeat("ñ", 250)))
	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, 200, utf8.RuneCountInString(msg))

	assert.Equal(t, "Año inválido", errorMessage([]byte(`{"error": "Año inválido"}`)))
}

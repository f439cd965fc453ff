package apiclient

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"github.com/shopspring/decimal"
)

type partyDTO struct {
	ID        string `json:"_id,omitempty"`
	Nombre    string `json:"nombre"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
}

func (p *partyDTO) toModel(kind models.PartyKind) models.Party {
	if p == nil {
		return models.Party{Kind: kind}
	}
	return models.Party{ID: p.ID, Kind: kind, Name: p.Nombre, Phone: p.Telefono, Address: p.Direccion}
}

// partyRef is a document's party: populated when listed, sometimes a bare id when just created.
type partyRef struct {
	partyDTO
}

func (r *partyRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	return json.Unmarshal(data, &r.partyDTO)
}

func (r *partyRef) toModel(kind models.PartyKind) models.Party {
	if r == nil {
		return models.Party{Kind: kind}
	}
	return r.partyDTO.toModel(kind)
}

func newPartyDTO(input models.NewParty) partyDTO {
	return partyDTO{Nombre: input.Name, Telefono: input.Phone, Direccion: input.Address}
}

type productDTO struct {
	ID                 string          `json:"_id,omitempty"`
	Nombre             string          `json:"nombre"`
	CantidadDisponible decimal.Decimal `json:"cantidadDisponible"`
}

func (p *productDTO) toModel() models.Product {
	if p == nil {
		return models.Product{}
	}
	return models.Product{ID: p.ID, Name: p.Nombre, Available: p.CantidadDisponible}
}

// productRef is a line's productoId: populated as an object when read, a bare id when written.
type productRef struct {
	productDTO
}

func (r *productRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	return json.Unmarshal(data, &r.productDTO)
}

type lineDTO struct {
	ID         string          `json:"_id,omitempty"`
	ProductoId productRef      `json:"productoId"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Precio     decimal.Decimal `json:"precio"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type newLineDTO struct {
	ProductoId string          `json:"productoId"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Precio     decimal.Decimal `json:"precio"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type paymentDTO struct {
	ID    string          `json:"_id,omitempty"`
	Monto decimal.Decimal `json:"monto"`
	Fecha string          `json:"fecha"`
}

// documentDTO carries both shapes: purchases fill proveedorId/fechaCompra, sales clienteId/fechaVenta.
type documentDTO struct {
	ID          string          `json:"_id"`
	ProveedorId *partyRef       `json:"proveedorId,omitempty"`
	ClienteId   *partyRef       `json:"clienteId,omitempty"`
	Productos   []lineDTO       `json:"productos"`
	Total       decimal.Decimal `json:"total"`
	MontoPagado decimal.Decimal `json:"montoPagado"`
	Saldo       decimal.Decimal `json:"saldo"`
	Estado      string          `json:"estado"`
	FechaCompra string          `json:"fechaCompra,omitempty"`
	FechaVenta  string          `json:"fechaVenta,omitempty"`
	Pagos       []paymentDTO    `json:"pagos"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (d *documentDTO) toModel(kind models.DocumentKind) models.Document {
	doc := models.Document{
		ID:        d.ID,
		Kind:      kind,
		Total:     d.Total,
		Paid:      d.MontoPagado,
		Balance:   d.Saldo,
		Status:    models.ParseDocumentStatus(d.Estado),
		Lines:     make([]models.LineItem, 0, len(d.Productos)),
		Payments:  make([]models.Payment, 0, len(d.Pagos)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if kind == models.DocumentKindSale {
		doc.Party = d.ClienteId.toModel(models.PartyKindClient)
		doc.Date = d.FechaVenta
	} else {
		doc.Party = d.ProveedorId.toModel(models.PartyKindSupplier)
		doc.Date = d.FechaCompra
	}
	for _, l := range d.Productos {
		product := l.ProductoId.toModel()
		doc.Lines = append(doc.Lines, models.LineItem{
			ProductId:   product.ID,
			ProductName: product.Name,
			Available:   product.Available,
			Quantity:    l.Cantidad,
			UnitPrice:   l.Precio,
			Subtotal:    l.Subtotal,
		})
	}
	for _, p := range d.Pagos {
		doc.Payments = append(doc.Payments, models.Payment{ID: p.ID, Amount: p.Monto, Date: p.Fecha})
	}
	return doc
}

type newDocumentDTO struct {
	ProveedorId string          `json:"proveedorId,omitempty"`
	ClienteId   string          `json:"clienteId,omitempty"`
	Productos   []newLineDTO    `json:"productos"`
	FechaCompra string          `json:"fechaCompra,omitempty"`
	FechaVenta  string          `json:"fechaVenta,omitempty"`
	Pago        decimal.Decimal `json:"pago"`
}

func newDocumentRequest(kind models.DocumentKind, s models.DocumentSubmission) newDocumentDTO {
	dto := newDocumentDTO{
		Productos: make([]newLineDTO, 0, len(s.Lines)),
		Pago:      s.InitialPayment,
	}
	if kind == models.DocumentKindSale {
		dto.ClienteId, dto.FechaVenta = s.PartyId, s.Date
	} else {
		dto.ProveedorId, dto.FechaCompra = s.PartyId, s.Date
	}
	for _, l := range s.Lines {
		dto.Productos = append(dto.Productos, newLineDTO{
			ProductoId: l.ProductId,
			Cantidad:   l.Quantity,
			Precio:     l.UnitPrice,
			Subtotal:   l.Subtotal,
		})
	}
	return dto
}

type newPaymentDTO struct {
	ProveedorId string          `json:"proveedorId,omitempty"`
	ClienteId   string          `json:"clienteId,omitempty"`
	CompraId    string          `json:"compraId,omitempty"`
	VentaId     string          `json:"ventaId,omitempty"`
	MontoPago   decimal.Decimal `json:"montoPago"`
	FechaPago   string          `json:"fechaPago"`
}

func newPaymentRequest(kind models.DocumentKind, s models.PaymentSubmission) newPaymentDTO {
	dto := newPaymentDTO{MontoPago: s.Amount, FechaPago: s.Date}
	if kind == models.DocumentKindSale {
		dto.ClienteId, dto.VentaId = s.PartyId, s.DocumentId
	} else {
		dto.ProveedorId, dto.CompraId = s.PartyId, s.DocumentId
	}
	return dto
}

type summaryDTO struct {
	Ventas struct {
		TotalVentas decimal.Decimal `json:"totalVentas"`
		TotalPagado decimal.Decimal `json:"totalPagado"`
		TotalSaldo  decimal.Decimal `json:"totalSaldo"`
	} `json:"ventas"`
	Compras struct {
		TotalCompras decimal.Decimal `json:"totalCompras"`
		TotalPagado  decimal.Decimal `json:"totalPagado"`
		TotalSaldo   decimal.Decimal `json:"totalSaldo"`
	} `json:"compras"`
}

func (s *summaryDTO) toModel() *models.Summary {
	return &models.Summary{
		Sales: models.SummaryTotals{
			Total:   s.Ventas.TotalVentas,
			Paid:    s.Ventas.TotalPagado,
			Balance: s.Ventas.TotalSaldo,
		},
		Purchases: models.SummaryTotals{
			Total:   s.Compras.TotalCompras,
			Paid:    s.Compras.TotalPagado,
			Balance: s.Compras.TotalSaldo,
		},
	}
}

// flexInt accepts 5, "05" and null.
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = flexInt(n)
	return nil
}

type inventoryDTO struct {
	FechaFiltro struct {
		Dia  flexInt `json:"dia"`
		Mes  flexInt `json:"mes"`
		Anio flexInt `json:"anio"`
	} `json:"fechaFiltro"`
	Productos []struct {
		Producto           string          `json:"producto"`
		CantidadDisponible decimal.Decimal `json:"cantidadDisponible"`
		CantidadComprada   decimal.Decimal `json:"cantidadComprada"`
		CantidadVendida    decimal.Decimal `json:"cantidadVendida"`
		ValorCompras       decimal.Decimal `json:"valorCompras"`
		ValorVentas        decimal.Decimal `json:"valorVentas"`
	} `json:"productos"`
	ComprasVsVentas struct {
		TotalComprasKg     decimal.Decimal `json:"totalComprasKg"`
		TotalComprasDinero decimal.Decimal `json:"totalComprasDinero"`
		TotalVentasKg      decimal.Decimal `json:"totalVentasKg"`
		TotalVentasDinero  decimal.Decimal `json:"totalVentasDinero"`
		Ganancia           decimal.Decimal `json:"ganancia"`
	} `json:"comprasVsVentas"`
}

func (r *inventoryDTO) toModel() *models.InventoryReport {
	report := &models.InventoryReport{
		Period: models.PeriodStamp{
			Day:   int(r.FechaFiltro.Dia),
			Month: int(r.FechaFiltro.Mes),
			Year:  int(r.FechaFiltro.Anio),
		},
		Products: make([]models.InventoryLine, 0, len(r.Productos)),
		PurchasesVsSales: models.PurchasesVsSales{
			PurchasedKg:     r.ComprasVsVentas.TotalComprasKg,
			PurchasedAmount: r.ComprasVsVentas.TotalComprasDinero,
			SoldKg:          r.ComprasVsVentas.TotalVentasKg,
			SoldAmount:      r.ComprasVsVentas.TotalVentasDinero,
			Profit:          r.ComprasVsVentas.Ganancia,
		},
	}
	for _, p := range r.Productos {
		report.Products = append(report.Products, models.InventoryLine{
			Product:       p.Producto,
			Available:     p.CantidadDisponible,
			Purchased:     p.CantidadComprada,
			Sold:          p.CantidadVendida,
			PurchaseValue: p.ValorCompras,
			SalesValue:    p.ValorVentas,
		})
	}
	return report
}

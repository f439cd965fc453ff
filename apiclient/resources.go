package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
)

var _ models.Backend = (*Client)(nil)

func partyPath(kind models.PartyKind) string {
	if kind == models.PartyKindSupplier {
		return "/proveedores"
	}
	return "/clientes"
}

func documentPath(kind models.DocumentKind) string {
	if kind == models.DocumentKindSale {
		return "/ventas"
	}
	return "/compras"
}

/* parties */

func (c *Client) ListParties(ctx context.Context, kind models.PartyKind) ([]models.Party, error) {
	var dtos []partyDTO
	if err := c.do(ctx, http.MethodGet, partyPath(kind), nil, nil, &dtos); err != nil {
		return nil, err
	}
	parties := make([]models.Party, 0, len(dtos))
	for i := range dtos {
		parties = append(parties, dtos[i].toModel(kind))
	}
	return parties, nil
}

// the API answers mutations with the stored object, or with nothing
func (c *Client) sendParty(ctx context.Context, method, path string, kind models.PartyKind, input models.NewParty) (*models.Party, error) {
	var dto partyDTO
	if err := c.do(ctx, method, path, nil, newPartyDTO(input), &dto); err != nil {
		return nil, err
	}
	if dto.ID == "" && dto.Nombre == "" {
		return nil, nil
	}
	party := dto.toModel(kind)
	return &party, nil
}

func (c *Client) CreateParty(ctx context.Context, kind models.PartyKind, input models.NewParty) (*models.Party, error) {
	return c.sendParty(ctx, http.MethodPost, partyPath(kind), kind, input)
}

func (c *Client) UpdateParty(ctx context.Context, kind models.PartyKind, id string, input models.NewParty) (*models.Party, error) {
	return c.sendParty(ctx, http.MethodPut, partyPath(kind)+"/"+url.PathEscape(id), kind, input)
}

func (c *Client) DeleteParty(ctx context.Context, kind models.PartyKind, id string) error {
	return c.do(ctx, http.MethodDelete, partyPath(kind)+"/"+url.PathEscape(id), nil, nil, nil)
}

/* products */

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, http.MethodGet, "/productos", nil, nil, &dtos); err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(dtos))
	for i := range dtos {
		products = append(products, dtos[i].toModel())
	}
	return products, nil
}

func (c *Client) sendProduct(ctx context.Context, method, path string, input models.NewProduct) (*models.Product, error) {
	var dto productDTO
	body := productDTO{Nombre: input.Name, CantidadDisponible: input.Available.Decimal}
	if err := c.do(ctx, method, path, nil, body, &dto); err != nil {
		return nil, err
	}
	if dto.ID == "" && dto.Nombre == "" {
		return nil, nil
	}
	product := dto.toModel()
	return &product, nil
}

func (c *Client) CreateProduct(ctx context.Context, input models.NewProduct) (*models.Product, error) {
	return c.sendProduct(ctx, http.MethodPost, "/productos", input)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, input models.NewProduct) (*models.Product, error) {
	return c.sendProduct(ctx, http.MethodPut, "/productos/"+url.PathEscape(id), input)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/productos/"+url.PathEscape(id), nil, nil, nil)
}

/* documents */

func (c *Client) ListDocuments(ctx context.Context, kind models.DocumentKind, filter models.PeriodFilter) ([]models.Document, error) {
	var dtos []documentDTO
	if err := c.do(ctx, http.MethodGet, documentPath(kind), periodValues(models.PeriodParams(filter)), nil, &dtos); err != nil {
		return nil, err
	}
	docs := make([]models.Document, 0, len(dtos))
	for i := range dtos {
		docs = append(docs, dtos[i].toModel(kind))
	}
	return docs, nil
}

func (c *Client) CreateDocument(ctx context.Context, kind models.DocumentKind, submission models.DocumentSubmission) (*models.Document, error) {
	var dto documentDTO
	if err := c.do(ctx, http.MethodPost, documentPath(kind), nil, newDocumentRequest(kind, submission), &dto); err != nil {
		return nil, err
	}
	if dto.ID == "" {
		return nil, nil
	}
	doc := dto.toModel(kind)
	return &doc, nil
}

func (c *Client) RecordPayment(ctx context.Context, kind models.DocumentKind, submission models.PaymentSubmission) error {
	return c.do(ctx, http.MethodPost, documentPath(kind)+"/pago", nil, newPaymentRequest(kind, submission), nil)
}

/* reports */

func (c *Client) GetSummary(ctx context.Context, filter models.PeriodFilter) (*models.Summary, error) {
	var dto summaryDTO
	if err := c.do(ctx, http.MethodGet, "/reportes/summary", periodValues(models.PeriodParams(filter)), nil, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

func (c *Client) GetInventoryReport(ctx context.Context, filter models.PeriodFilter) (*models.InventoryReport, error) {
	var dto inventoryDTO
	if err := c.do(ctx, http.MethodGet, "/inventario/reporte-inventario", periodValues(models.PeriodParams(filter)), nil, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

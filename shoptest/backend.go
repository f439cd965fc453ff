// Package shoptest provides an in-memory shop API for tests.
package shoptest

import (
	"context"
	"fmt"
	"sync"

	"bitbucket.org/mmdatafocus/meatshop_console/apiclient"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"github.com/shopspring/decimal"
)

// Backend implements models.Backend over plain slices. Stock and balances move the way
// the real API moves them.
type Backend struct {
	mu        sync.Mutex
	seq       int
	parties   map[models.PartyKind][]models.Party
	products  []models.Product
	documents map[models.DocumentKind][]models.Document

	// Fail makes the named method return the error, e.g. Fail["GetSummary"].
	Fail  map[string]error
	Calls map[string]int
}

func New() *Backend {
	return &Backend{
		parties:   make(map[models.PartyKind][]models.Party),
		documents: make(map[models.DocumentKind][]models.Document),
		Fail:      make(map[string]error),
		Calls:     make(map[string]int),
	}
}

var _ models.Backend = (*Backend)(nil)

func (b *Backend) nextId(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s%d", prefix, b.seq)
}

// call counts the invocation and returns the injected failure, if any.
func (b *Backend) call(name string) error {
	b.Calls[name]++
	return b.Fail[name]
}

func (b *Backend) CallCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Calls[name]
}

func notFound(path string) error {
	return &apiclient.APIError{StatusCode: 404, Method: "GET", Path: path, Message: "not found"}
}

/* seeding */

func (b *Backend) AddParty(kind models.PartyKind, name string) models.Party {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := models.Party{ID: b.nextId(string(kind[0:1])), Kind: kind, Name: name}
	b.parties[kind] = append(b.parties[kind], p)
	return p
}

func (b *Backend) AddProduct(name string, available decimal.Decimal) models.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := models.Product{ID: b.nextId("p"), Name: name, Available: available}
	b.products = append(b.products, p)
	return p
}

// AddDocument stores a document as is, without touching stock.
func (b *Backend) AddDocument(doc models.Document) models.Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	if doc.ID == "" {
		doc.ID = b.nextId(string(doc.Kind[0:1]) + "d")
	}
	doc.Status = models.StatusFor(doc.Total, doc.Paid)
	b.documents[doc.Kind] = append(b.documents[doc.Kind], doc)
	return doc
}

/* parties */

func (b *Backend) ListParties(ctx context.Context, kind models.PartyKind) ([]models.Party, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("ListParties"); err != nil {
		return nil, err
	}
	return append([]models.Party{}, b.parties[kind]...), nil
}

func (b *Backend) CreateParty(ctx context.Context, kind models.PartyKind, input models.NewParty) (*models.Party, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("CreateParty"); err != nil {
		return nil, err
	}
	p := models.Party{ID: b.nextId(string(kind[0:1])), Kind: kind, Name: input.Name, Phone: input.Phone, Address: input.Address}
	b.parties[kind] = append(b.parties[kind], p)
	return &p, nil
}

func (b *Backend) UpdateParty(ctx context.Context, kind models.PartyKind, id string, input models.NewParty) (*models.Party, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("UpdateParty"); err != nil {
		return nil, err
	}
	for i := range b.parties[kind] {
		p := &b.parties[kind][i]
		if p.ID == id {
			p.Name, p.Phone, p.Address = input.Name, input.Phone, input.Address
			result := *p
			return &result, nil
		}
	}
	return nil, notFound("/" + string(kind) + "/" + id)
}

func (b *Backend) DeleteParty(ctx context.Context, kind models.PartyKind, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("DeleteParty"); err != nil {
		return err
	}
	for i, p := range b.parties[kind] {
		if p.ID == id {
			b.parties[kind] = append(b.parties[kind][:i], b.parties[kind][i+1:]...)
			return nil
		}
	}
	return notFound("/" + string(kind) + "/" + id)
}

/* products */

func (b *Backend) ListProducts(ctx context.Context) ([]models.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("ListProducts"); err != nil {
		return nil, err
	}
	return append([]models.Product{}, b.products...), nil
}

func (b *Backend) CreateProduct(ctx context.Context, input models.NewProduct) (*models.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("CreateProduct"); err != nil {
		return nil, err
	}
	p := models.Product{ID: b.nextId("p"), Name: input.Name, Available: input.Available.Decimal}
	b.products = append(b.products, p)
	return &p, nil
}

func (b *Backend) UpdateProduct(ctx context.Context, id string, input models.NewProduct) (*models.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("UpdateProduct"); err != nil {
		return nil, err
	}
	for i := range b.products {
		if b.products[i].ID == id {
			b.products[i].Name = input.Name
			b.products[i].Available = input.Available.Decimal
			result := b.products[i]
			return &result, nil
		}
	}
	return nil, notFound("/productos/" + id)
}

func (b *Backend) DeleteProduct(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("DeleteProduct"); err != nil {
		return err
	}
	for i, p := range b.products {
		if p.ID == id {
			b.products = append(b.products[:i], b.products[i+1:]...)
			return nil
		}
	}
	return notFound("/productos/" + id)
}

/* documents */

func (b *Backend) ListDocuments(ctx context.Context, kind models.DocumentKind, filter models.PeriodFilter) ([]models.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("ListDocuments"); err != nil {
		return nil, err
	}
	return append([]models.Document{}, b.documents[kind]...), nil
}

func (b *Backend) findParty(kind models.PartyKind, id string) (models.Party, bool) {
	for _, p := range b.parties[kind] {
		if p.ID == id {
			return p, true
		}
	}
	return models.Party{}, false
}

func (b *Backend) CreateDocument(ctx context.Context, kind models.DocumentKind, submission models.DocumentSubmission) (*models.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("CreateDocument"); err != nil {
		return nil, err
	}
	party, ok := b.findParty(kind.PartyKind(), submission.PartyId)
	if !ok {
		return nil, notFound("/" + string(kind.PartyKind()) + "/" + submission.PartyId)
	}
	for _, l := range submission.Lines {
		for i := range b.products {
			if b.products[i].ID != l.ProductId {
				continue
			}
			if kind == models.DocumentKindSale {
				b.products[i].Available = b.products[i].Available.Sub(l.Quantity)
			} else {
				b.products[i].Available = b.products[i].Available.Add(l.Quantity)
			}
		}
	}
	total := models.LinesTotal(submission.Lines)
	doc := models.Document{
		ID:      b.nextId(string(kind[0:1]) + "d"),
		Kind:    kind,
		Party:   party,
		Date:    submission.Date,
		Lines:   submission.Lines,
		Total:   total,
		Paid:    submission.InitialPayment,
		Balance: models.ComputeBalance(total, submission.InitialPayment),
		Status:  models.StatusFor(total, submission.InitialPayment),
	}
	if submission.InitialPayment.IsPositive() {
		doc.Payments = []models.Payment{{ID: b.nextId("pay"), Amount: submission.InitialPayment, Date: submission.Date}}
	}
	// newest first, like the real API
	b.documents[kind] = append([]models.Document{doc}, b.documents[kind]...)
	return &doc, nil
}

func (b *Backend) applyPayment(doc *models.Document, amount decimal.Decimal, date string) {
	doc.Paid = doc.Paid.Add(amount)
	doc.Balance = models.ComputeBalance(doc.Total, doc.Paid)
	doc.Status = models.StatusFor(doc.Total, doc.Paid)
	doc.Payments = append(doc.Payments, models.Payment{ID: b.nextId("pay"), Amount: amount, Date: date})
}

// RecordPayment applies to the document, or spreads the amount over the party's open documents oldest first.
func (b *Backend) RecordPayment(ctx context.Context, kind models.DocumentKind, submission models.PaymentSubmission) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("RecordPayment"); err != nil {
		return err
	}
	docs := b.documents[kind]
	if submission.DocumentId != "" {
		for i := range docs {
			if docs[i].ID == submission.DocumentId {
				b.applyPayment(&docs[i], submission.Amount, submission.Date)
				return nil
			}
		}
		return notFound("/pago/" + submission.DocumentId)
	}
	remaining := submission.Amount
	for i := len(docs) - 1; i >= 0 && remaining.IsPositive(); i-- {
		if docs[i].Party.ID != submission.PartyId || !docs[i].HasBalance() {
			continue
		}
		amount := decimal.Min(remaining, docs[i].Balance)
		b.applyPayment(&docs[i], amount, submission.Date)
		remaining = remaining.Sub(amount)
	}
	return nil
}

/* reports */

func totals(docs []models.Document) models.SummaryTotals {
	var t models.SummaryTotals
	for _, d := range docs {
		t.Total = t.Total.Add(d.Total)
		t.Paid = t.Paid.Add(d.Paid)
		t.Balance = t.Balance.Add(d.Balance)
	}
	return t
}

func (b *Backend) GetSummary(ctx context.Context, filter models.PeriodFilter) (*models.Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("GetSummary"); err != nil {
		return nil, err
	}
	return &models.Summary{
		Sales:     totals(b.documents[models.DocumentKindSale]),
		Purchases: totals(b.documents[models.DocumentKindPurchase]),
	}, nil
}

func (b *Backend) GetInventoryReport(ctx context.Context, filter models.PeriodFilter) (*models.InventoryReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("GetInventoryReport"); err != nil {
		return nil, err
	}
	report := &models.InventoryReport{Products: []models.InventoryLine{}}
	if filter != nil {
		report.Period = filter.Stamp()
	}
	for _, p := range b.products {
		line := models.InventoryLine{Product: p.Name, Available: p.Available}
		for _, d := range b.documents[models.DocumentKindPurchase] {
			for _, l := range d.Lines {
				if l.ProductId == p.ID {
					line.Purchased = line.Purchased.Add(l.Quantity)
					line.PurchaseValue = line.PurchaseValue.Add(l.Subtotal)
				}
			}
		}
		for _, d := range b.documents[models.DocumentKindSale] {
			for _, l := range d.Lines {
				if l.ProductId == p.ID {
					line.Sold = line.Sold.Add(l.Quantity)
					line.SalesValue = line.SalesValue.Add(l.Subtotal)
				}
			}
		}
		report.Products = append(report.Products, line)
		pvs := &report.PurchasesVsSales
		pvs.PurchasedKg = pvs.PurchasedKg.Add(line.Purchased)
		pvs.PurchasedAmount = pvs.PurchasedAmount.Add(line.PurchaseValue)
		pvs.SoldKg = pvs.SoldKg.Add(line.Sold)
		pvs.SoldAmount = pvs.SoldAmount.Add(line.SalesValue)
	}
	report.PurchasesVsSales.Profit = report.PurchasesVsSales.SoldAmount.Sub(report.PurchasesVsSales.PurchasedAmount)
	return report, nil
}

package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// Document is a purchase or a sale.
type Document struct {
	ID        string          `json:"id"`
	Kind      DocumentKind    `json:"kind"`
	Party     Party           `json:"party"`
	Date      string          `json:"date"`
	Lines     []LineItem      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Balance   decimal.Decimal `json:"balance"`
	Status    DocumentStatus  `json:"status"`
	Payments  []Payment       `json:"payments"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (d Document) HasBalance() bool {
	return d.Balance.IsPositive()
}

// PaymentsTotal sums the payment ledger; it matches Paid unless the API is inconsistent.
func (d Document) PaymentsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// DocumentDetail is a document with its payment ledger summed.
type DocumentDetail struct {
	Document
	PaymentsTotal decimal.Decimal `json:"payments_total"`
}

func NewDocumentDetail(d Document) DocumentDetail {
	return DocumentDetail{Document: d, PaymentsTotal: d.PaymentsTotal()}
}

// ComputeBalance is total minus what has been paid.
func ComputeBalance(total, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(paid)
}

func StatusFor(total, paid decimal.Decimal) DocumentStatus {
	switch {
	case !ComputeBalance(total, paid).IsPositive():
		return DocumentStatusPaid
	case paid.IsPositive():
		return DocumentStatusPartial
	default:
		return DocumentStatusPending
	}
}

// DocumentsWithBalance keeps the documents that still owe money.
func DocumentsWithBalance(docs []Document) []Document {
	result := make([]Document, 0)
	for _, d := range docs {
		if d.HasBalance() {
			result = append(result, d)
		}
	}
	return result
}

// PartiesWithDebt lists each party with at least one open document once, in order of first appearance.
func PartiesWithDebt(docs []Document) []Party {
	var ids []string
	parties := make(map[string]Party)
	for _, d := range docs {
		if !d.HasBalance() {
			continue
		}
		ids = append(ids, d.Party.ID)
		if _, ok := parties[d.Party.ID]; !ok {
			parties[d.Party.ID] = d.Party
		}
	}
	result := make([]Party, 0, len(parties))
	for _, id := range utils.UniqueSlice(ids) {
		result = append(result, parties[id])
	}
	return result
}

// OpenDocuments are the party's documents with a positive balance.
func OpenDocuments(docs []Document, partyId string) []Document {
	result := make([]Document, 0)
	for _, d := range docs {
		if d.Party.ID == partyId && d.HasBalance() {
			result = append(result, d)
		}
	}
	return result
}

// RecentDocuments returns the first n documents in the order the API returned them.
func RecentDocuments(docs []Document, n int) []Document {
	if len(docs) < n {
		n = len(docs)
	}
	result := make([]Document, n)
	copy(result, docs[:n])
	return result
}

func FindDocument(docs []Document, id string) (*Document, error) {
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func documentScope(kind DocumentKind, filter PeriodFilter) string {
	return string(kind) + ":" + PeriodKey(filter)
}

func ListDocuments(ctx context.Context, b Backend, kind DocumentKind, filter PeriodFilter) ([]Document, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid document kind %q", kind)
	}
	scope := documentScope(kind, filter)
	cached, ok, err := utils.RetrieveRedisList[Document](ctx, scope)
	if err != nil {
		config.LogError(config.GetLogger(), "document.go", "ListDocuments", "RetrieveRedisList", scope, err)
	}
	if ok {
		return cached, nil
	}

	docs, err := b.ListDocuments(ctx, kind, filter)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Kind = kind
		docs[i].Party.Kind = kind.PartyKind()
	}
	if err := utils.StoreRedisList(ctx, docs, scope); err != nil {
		config.LogError(config.GetLogger(), "document.go", "ListDocuments", "StoreRedisList", scope, err)
	}
	return docs, nil
}

func GetDocument(ctx context.Context, b Backend, kind DocumentKind, id string) (*Document, error) {
	docs, err := ListDocuments(ctx, b, kind, nil)
	if err != nil {
		return nil, err
	}
	return FindDocument(docs, id)
}

/* drafting and submission */

type NewDocumentLine struct {
	ProductId string            `json:"product_id" validate:"required"`
	Quantity  utils.FormDecimal `json:"quantity" validate:"gt=0"`
	UnitPrice utils.FormDecimal `json:"unit_price" validate:"gt=0"`
}

type NewDocument struct {
	PartyId        string             `json:"party_id" validate:"required"`
	Date           string             `json:"date" validate:"required,datetime=2006-01-02"`
	Lines          []*NewDocumentLine `json:"lines" validate:"required,min=1,dive,required"`
	InitialPayment utils.FormDecimal  `json:"initial_payment" validate:"gte=0"`
}

// DocumentPreview is a draft run through the line-item editor.
type DocumentPreview struct {
	Kind           DocumentKind    `json:"kind"`
	Lines          []LineItem      `json:"lines"`
	Total          decimal.Decimal `json:"total"`
	InitialPayment decimal.Decimal `json:"initial_payment"`
	Balance        decimal.Decimal `json:"balance"`
	Status         DocumentStatus  `json:"status"`
}

// ProductLookup resolves product ids in order; errs[i] is set when ids[i] cannot be resolved.
type ProductLookup func(ctx context.Context, ids []string) ([]*Product, []error)

// ProductListLookup resolves ids against an already fetched product list.
func ProductListLookup(products []Product) ProductLookup {
	byId := make(map[string]Product, len(products))
	for _, p := range products {
		byId[p.ID] = p
	}
	return func(ctx context.Context, ids []string) ([]*Product, []error) {
		results := make([]*Product, len(ids))
		errs := make([]error, len(ids))
		for i, id := range ids {
			if p, ok := byId[id]; ok {
				results[i] = &p
			} else {
				errs[i] = utils.ErrorRecordNotFound
			}
		}
		return results, errs
	}
}

// resolveProducts pads the lookup results so both slices have one entry per id.
func resolveProducts(ctx context.Context, lookup ProductLookup, ids []string) ([]*Product, []error) {
	products, errs := lookup(ctx, ids)
	if len(products) < len(ids) {
		products = append(products, make([]*Product, len(ids)-len(products))...)
	}
	if len(errs) < len(ids) {
		errs = append(errs, make([]error, len(ids)-len(errs))...)
	}
	return products, errs
}

func (input *NewDocument) normalize() {
	input.PartyId = strings.TrimSpace(input.PartyId)
	input.Date = strings.TrimSpace(input.Date)
	if input.Date == "" {
		input.Date = utils.Today()
	}
}

func (input *NewDocument) productIds() []string {
	ids := make([]string, len(input.Lines))
	for i, l := range input.Lines {
		if l != nil {
			ids[i] = strings.TrimSpace(l.ProductId)
		}
	}
	return ids
}

func unknownProduct(index int, id string) error {
	return &ValidationError{
		Message: fmt.Sprintf("product %q not found", id),
		Fields:  map[string]string{fmt.Sprintf("lines[%d].product_id", index): "exists"},
		Err:     utils.ErrorRecordNotFound,
	}
}

// PreviewDocument runs a draft through the editor: values are clamped, nothing is rejected
// except unknown products and, for sales, products without stock.
func PreviewDocument(ctx context.Context, kind DocumentKind, input *NewDocument, lookup ProductLookup) (*DocumentPreview, error) {
	editor := NewLineItemEditor(kind)
	products, errs := resolveProducts(ctx, lookup, input.productIds())
	for i, l := range input.Lines {
		if l == nil {
			continue
		}
		if errs[i] != nil || products[i] == nil {
			return nil, unknownProduct(i, l.ProductId)
		}
		if err := editor.AddLine(*products[i]); err != nil {
			return nil, newValidationError(fmt.Sprintf("lines[%d].product_id", i), err)
		}
		idx := editor.Len() - 1
		if !l.Quantity.IsZero() {
			if err := editor.UpdateLine(idx, LineFieldQuantity, l.Quantity.Decimal); err != nil {
				return nil, err
			}
		}
		if !l.UnitPrice.IsZero() {
			if err := editor.UpdateLine(idx, LineFieldUnitPrice, l.UnitPrice.Decimal); err != nil {
				return nil, err
			}
		}
	}

	total := editor.Total()
	payment := decimal.Min(decimal.Max(decimal.Zero, input.InitialPayment.Decimal), total)
	return &DocumentPreview{
		Kind:           kind,
		Lines:          editor.Lines(),
		Total:          total,
		InitialPayment: payment,
		Balance:        ComputeBalance(total, payment),
		Status:         StatusFor(total, payment),
	}, nil
}

// BuildDocumentSubmission validates a new document and resolves its lines.
func BuildDocumentSubmission(ctx context.Context, kind DocumentKind, input *NewDocument, lookup ProductLookup) (*DocumentSubmission, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid document kind %q", kind)
	}
	input.normalize()
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if utils.IsFutureDate(input.Date) {
		return nil, newValidationError("date", ErrDateInFuture)
	}

	products, errs := resolveProducts(ctx, lookup, input.productIds())
	lines := make([]LineItem, 0, len(input.Lines))
	for i, l := range input.Lines {
		if errs[i] != nil || products[i] == nil {
			return nil, unknownProduct(i, l.ProductId)
		}
		product := products[i]
		if kind == DocumentKindSale && l.Quantity.GreaterThan(product.Available) {
			return nil, &ValidationError{
				Message: fmt.Sprintf("%s: only %s available", product.Name, product.Available.String()),
				Fields:  map[string]string{fmt.Sprintf("lines[%d].quantity", i): "lte"},
				Err:     ErrInsufficientStock,
			}
		}
		line := LineItem{
			ProductId:   product.ID,
			ProductName: product.Name,
			Available:   product.Available,
			Quantity:    l.Quantity.Decimal,
			UnitPrice:   l.UnitPrice.Decimal,
		}
		line.recompute()
		lines = append(lines, line)
	}

	total := LinesTotal(lines)
	if input.InitialPayment.GreaterThan(total) {
		return nil, newValidationError("initial_payment", ErrInitialPaymentExceedsTotal)
	}
	return &DocumentSubmission{
		PartyId:        input.PartyId,
		Date:           input.Date,
		Lines:          lines,
		InitialPayment: input.InitialPayment.Decimal,
	}, nil
}

// CreateDocument validates, submits and returns the new document. The party must exist.
func CreateDocument(ctx context.Context, b Backend, kind DocumentKind, input *NewDocument, lookup ProductLookup) (*Document, error) {
	submission, err := BuildDocumentSubmission(ctx, kind, input, lookup)
	if err != nil {
		return nil, err
	}
	party, err := GetParty(ctx, b, kind.PartyKind(), submission.PartyId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, &ValidationError{
				Message: kind.PartyKind().Label() + " not found",
				Fields:  map[string]string{"party_id": "exists"},
				Err:     err,
			}
		}
		return nil, err
	}

	doc, err := b.CreateDocument(ctx, kind, *submission)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		total := LinesTotal(submission.Lines)
		doc = &Document{
			Party:   *party,
			Date:    submission.Date,
			Lines:   submission.Lines,
			Total:   total,
			Paid:    submission.InitialPayment,
			Balance: ComputeBalance(total, submission.InitialPayment),
			Status:  StatusFor(total, submission.InitialPayment),
		}
	}
	doc.Kind = kind
	if doc.Party.Name == "" {
		doc.Party = *party
	}
	if len(doc.Lines) == len(submission.Lines) {
		for i := range doc.Lines {
			if doc.Lines[i].ProductName == "" {
				doc.Lines[i].ProductName = submission.Lines[i].ProductName
			}
		}
	}

	afterMutation(ctx, mutation{
		action:      ActionTypeCreate,
		resource:    string(kind),
		referenceId: doc.ID,
		after:       doc,
		description: fmt.Sprintf("%s for %s created with total %s %s.", kind.Label(), party.Name, config.CurrencyLabel(), doc.Total.StringFixed(2)),
	})
	return doc, nil
}

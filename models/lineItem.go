package models

import (
	"github.com/shopspring/decimal"
)

// MinLineValue is the smallest quantity or unit price a line accepts.
var MinLineValue = decimal.New(1, -2)

type LineItem struct {
	ProductId   string `json:"product_id"`
	ProductName string `json:"product_name"`
	// stock snapshot taken when the product was picked
	Available decimal.Decimal `json:"available"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (l *LineItem) recompute() {
	l.Subtotal = l.Quantity.Mul(l.UnitPrice)
}

// LinesTotal sums the subtotals.
func LinesTotal(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// LineItemEditor holds the lines of a document being drafted.
type LineItemEditor struct {
	kind  DocumentKind
	lines []LineItem
}

func NewLineItemEditor(kind DocumentKind) *LineItemEditor {
	return &LineItemEditor{kind: kind}
}

func (e *LineItemEditor) Kind() DocumentKind {
	return e.kind
}

func (e *LineItemEditor) Len() int {
	return len(e.lines)
}

// AddLine appends a placeholder line for product. Purchase lines start empty;
// sale lines start at one unit (never above the stock) and a zero price.
func (e *LineItemEditor) AddLine(product Product) error {
	line := LineItem{
		ProductId:   product.ID,
		ProductName: product.Name,
		Available:   product.Available,
	}
	if e.kind == DocumentKindSale {
		if !product.InStock() {
			return ErrOutOfStock
		}
		line.Quantity = decimal.Min(decimal.NewFromInt(1), product.Available)
	}
	line.recompute()
	e.lines = append(e.lines, line)
	return nil
}

func (e *LineItemEditor) RemoveLine(index int) error {
	if index < 0 || index >= len(e.lines) {
		return ErrLineIndexOutOfRange
	}
	e.lines = append(e.lines[:index], e.lines[index+1:]...)
	return nil
}

// UpdateLine sets a field, clamping it to MinLineValue and, for sale quantities, to the stock snapshot.
func (e *LineItemEditor) UpdateLine(index int, field LineField, value decimal.Decimal) error {
	if index < 0 || index >= len(e.lines) {
		return ErrLineIndexOutOfRange
	}
	line := &e.lines[index]
	value = decimal.Max(MinLineValue, value)
	switch field {
	case LineFieldQuantity:
		if e.kind == DocumentKindSale {
			value = decimal.Min(value, line.Available)
		}
		line.Quantity = value
	case LineFieldUnitPrice:
		line.UnitPrice = value
	default:
		return ErrInvalidLineField
	}
	line.recompute()
	return nil
}

// Total is recomputed from the current lines on every call.
func (e *LineItemEditor) Total() decimal.Decimal {
	return LinesTotal(e.lines)
}

func (e *LineItemEditor) Lines() []LineItem {
	lines := make([]LineItem, len(e.lines))
	copy(lines, e.lines)
	return lines
}

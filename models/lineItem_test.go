package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineItemEditor_TotalFollowsEveryChange(t *testing.T) {
	e := NewLineItemEditor(DocumentKindPurchase)
	require.NoError(t, e.AddLine(Product{ID: "p1", Name: "Lomo"}))
	require.NoError(t, e.AddLine(Product{ID: "p2", Name: "Costilla"}))
	assert.True(t, e.Total().IsZero(), "purchase lines start empty")

	require.NoError(t, e.UpdateLine(0, LineFieldQuantity, d("2")))
	require.NoError(t, e.UpdateLine(0, LineFieldUnitPrice, d("10")))
	require.NoError(t, e.UpdateLine(1, LineFieldQuantity, d("3")))
	require.NoError(t, e.UpdateLine(1, LineFieldUnitPrice, d("5")))
	assert.Equal(t, "35", e.Total().String())

	require.NoError(t, e.RemoveLine(0))
	assert.Equal(t, "15", e.Total().String())
	assert.Equal(t, 1, e.Len())
}

func TestLineItemEditor_SaleClampsToStock(t *testing.T) {
	e := NewLineItemEditor(DocumentKindSale)
	require.NoError(t, e.AddLine(Product{ID: "p1", Name: "Lomo", Available: d("4.5")}))

	lines := e.Lines()
	assert.Equal(t, "1", lines[0].Quantity.String(), "sale lines start at one unit")
	assert.True(t, lines[0].UnitPrice.IsZero())

	require.NoError(t, e.UpdateLine(0, LineFieldQuantity, d("10")))
	assert.Equal(t, "4.5", e.Lines()[0].Quantity.String())

	require.NoError(t, e.UpdateLine(0, LineFieldQuantity, d("-3")))
	assert.Equal(t, "0.01", e.Lines()[0].Quantity.String())

	require.NoError(t, e.UpdateLine(0, LineFieldUnitPrice, d("0")))
	assert.Equal(t, "0.01", e.Lines()[0].UnitPrice.String())
	assert.Equal(t, "0.0001", e.Total().String())
}

func TestLineItemEditor_PurchaseQuantityIsNotCapped(t *testing.T) {
	e := NewLineItemEditor(DocumentKindPurchase)
	require.NoError(t, e.AddLine(Product{ID: "p1", Available: d("1")}))
	require.NoError(t, e.UpdateLine(0, LineFieldQuantity, d("250")))
	assert.Equal(t, "250", e.Lines()[0].Quantity.String())
}

func TestLineItemEditor_SaleStartsBelowOneWhenStockIsLow(t *testing.T) {
	e := NewLineItemEditor(DocumentKindSale)
	require.NoError(t, e.AddLine(Product{ID: "p1", Available: d("0.4")}))
	assert.Equal(t, "0.4", e.Lines()[0].Quantity.String())
}

func TestLineItemEditor_Errors(t *testing.T) {
	e := NewLineItemEditor(DocumentKindSale)
	assert.ErrorIs(t, e.AddLine(Product{ID: "p1", Available: decimal.Zero}), ErrOutOfStock)
	assert.ErrorIs(t, e.RemoveLine(0), ErrLineIndexOutOfRange)
	assert.ErrorIs(t, e.UpdateLine(-1, LineFieldQuantity, d("1")), ErrLineIndexOutOfRange)

	require.NoError(t, e.AddLine(Product{ID: "p2", Available: d("3")}))
	assert.ErrorIs(t, e.UpdateLine(0, LineField("discount"), d("1")), ErrInvalidLineField)
}

func TestLineItemEditor_LinesReturnsCopy(t *testing.T) {
	e := NewLineItemEditor(DocumentKindPurchase)
	require.NoError(t, e.AddLine(Product{ID: "p1"}))
	lines := e.Lines()
	lines[0].ProductId = "changed"
	assert.Equal(t, "p1", e.Lines()[0].ProductId)
}

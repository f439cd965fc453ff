package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutstandingBalance(t *testing.T) {
	docs := []Document{doc("d1", "a", "35", "10"), doc("d2", "a", "20", "0"), doc("d3", "b", "50", "0")}

	total, err := OutstandingBalance(docs, "a", "")
	require.NoError(t, err)
	assert.Equal(t, "45", total.String())

	single, err := OutstandingBalance(docs, "a", "d1")
	require.NoError(t, err)
	assert.Equal(t, "25", single.String())

	_, err = OutstandingBalance(docs, "a", "d3")
	assert.ErrorIs(t, err, ErrDocumentPartyMismatch)
}

func TestNewPayment_Validate(t *testing.T) {
	fixToday(t, 2024, time.May, 10)
	docs := []Document{doc("d1", "a", "35", "10"), doc("d2", "a", "20", "0"), doc("d3", "c", "5", "5")}

	p := &NewPayment{PartyId: "a", Amount: fd("10"), Date: "2024-05-10"}
	sub, err := p.Validate(docs)
	require.NoError(t, err)
	assert.Equal(t, "10", sub.Amount.String())
	assert.Empty(t, sub.DocumentId)

	p = &NewPayment{PartyId: "a", DocumentId: "none", Amount: fd("45")}
	sub, err = p.Validate(docs)
	require.NoError(t, err, "the whole party balance may be paid")
	assert.Empty(t, sub.DocumentId)
	assert.Equal(t, "2024-05-10", sub.Date)

	cases := []struct {
		name  string
		input NewPayment
		is    error
		field string
	}{
		{"zero", NewPayment{PartyId: "a", Amount: fd("0")}, nil, "amount"},
		{"negative", NewPayment{PartyId: "a", Amount: fd("-5")}, nil, "amount"},
		{"above party balance", NewPayment{PartyId: "a", Amount: fd("45.01")}, ErrPaymentExceedsBalance, "amount"},
		{"above document balance", NewPayment{PartyId: "a", DocumentId: "d1", Amount: fd("26")}, ErrPaymentExceedsBalance, "amount"},
		{"nothing owed", NewPayment{PartyId: "c", Amount: fd("1")}, ErrNoOutstandingBalance, "amount"},
		{"foreign document", NewPayment{PartyId: "c", DocumentId: "d1", Amount: fd("1")}, ErrDocumentPartyMismatch, "document_id"},
		{"future date", NewPayment{PartyId: "a", Amount: fd("1"), Date: "2024-06-01"}, ErrDateInFuture, "date"},
		{"no party", NewPayment{Amount: fd("1")}, nil, "party_id"},
	}
	for _, tc := range cases {
		input := tc.input
		_, err := input.Validate(docs)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, tc.name)
		assert.Contains(t, ve.Fields, tc.field, tc.name)
		if tc.is != nil {
			assert.ErrorIs(t, err, tc.is, tc.name)
		}
	}
}

func TestNewPayment_SelectDocumentPrefillsBalance(t *testing.T) {
	p := &NewPayment{}
	p.SelectDocument(doc("d1", "a", "35", "10"))
	assert.Equal(t, "a", p.PartyId)
	assert.Equal(t, "d1", p.DocumentId)
	assert.Equal(t, "25", p.Amount.String())
}

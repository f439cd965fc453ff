package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/shopspring/decimal"
)

// NewPayment is the payment form. Without a document the amount applies to the party's total balance.
type NewPayment struct {
	PartyId    string            `json:"party_id" validate:"required"`
	DocumentId string            `json:"document_id"`
	Amount     utils.FormDecimal `json:"amount" validate:"gt=0"`
	Date       string            `json:"date" validate:"required,datetime=2006-01-02"`
}

func (input *NewPayment) normalize() {
	input.PartyId = strings.TrimSpace(input.PartyId)
	input.DocumentId = strings.TrimSpace(input.DocumentId)
	if input.DocumentId == "none" {
		input.DocumentId = ""
	}
	input.Date = strings.TrimSpace(input.Date)
	if input.Date == "" {
		input.Date = utils.Today()
	}
}

// SelectDocument targets one document and pre-fills the amount with its balance.
func (input *NewPayment) SelectDocument(doc Document) {
	input.PartyId = doc.Party.ID
	input.DocumentId = doc.ID
	input.Amount = utils.NewFormDecimal(doc.Balance)
}

// OutstandingBalance is the balance a payment is checked against: the selected
// document's, or the sum over all of the party's documents.
func OutstandingBalance(docs []Document, partyId, documentId string) (decimal.Decimal, error) {
	if documentId != "" {
		doc, err := FindDocument(docs, documentId)
		if err != nil {
			return decimal.Zero, err
		}
		if doc.Party.ID != partyId {
			return decimal.Zero, ErrDocumentPartyMismatch
		}
		return doc.Balance, nil
	}
	total := decimal.Zero
	for _, d := range docs {
		if d.Party.ID == partyId {
			total = total.Add(d.Balance)
		}
	}
	return total, nil
}

// Validate checks the form against docs and returns what should be submitted.
func (input *NewPayment) Validate(docs []Document) (*PaymentSubmission, error) {
	input.normalize()
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if utils.IsFutureDate(input.Date) {
		return nil, newValidationError("date", ErrDateInFuture)
	}
	outstanding, err := OutstandingBalance(docs, input.PartyId, input.DocumentId)
	if err != nil {
		if errors.Is(err, ErrDocumentPartyMismatch) {
			return nil, newValidationError("document_id", err)
		}
		return nil, &ValidationError{
			Message: "document not found",
			Fields:  map[string]string{"document_id": "exists"},
			Err:     err,
		}
	}
	if !outstanding.IsPositive() {
		return nil, newValidationError("amount", ErrNoOutstandingBalance)
	}
	if input.Amount.GreaterThan(outstanding) {
		return nil, &ValidationError{
			Message: fmt.Sprintf("%s (%s %s)", ErrPaymentExceedsBalance.Error(), config.CurrencyLabel(), outstanding.StringFixed(2)),
			Fields:  map[string]string{"amount": "lte"},
			Err:     ErrPaymentExceedsBalance,
		}
	}
	return &PaymentSubmission{
		PartyId:    input.PartyId,
		DocumentId: input.DocumentId,
		Amount:     input.Amount.Decimal,
		Date:       input.Date,
	}, nil
}

// SubmitPayment sends an already validated payment.
func SubmitPayment(ctx context.Context, b Backend, kind DocumentKind, submission PaymentSubmission) error {
	if err := b.RecordPayment(ctx, kind, submission); err != nil {
		return err
	}
	referenceId := submission.DocumentId
	if referenceId == "" {
		referenceId = submission.PartyId
	}
	afterMutation(ctx, mutation{
		action:      ActionTypePayment,
		resource:    string(kind),
		referenceId: referenceId,
		after:       submission,
		description: fmt.Sprintf("%s payment of %s %s recorded.", kind.Label(), config.CurrencyLabel(), submission.Amount.StringFixed(2)),
	})
	return nil
}

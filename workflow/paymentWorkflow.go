package workflow

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
)

// PaymentResult is the refetched collection after a payment went through.
type PaymentResult struct {
	Documents       []models.Document `json:"documents"`
	PartiesWithDebt []models.Party    `json:"parties_with_debt"`
}

func paymentScreen(kind models.DocumentKind) string {
	return "payment:" + string(kind)
}

// RecordPayment takes the party's in-flight flag, validates the form against the current balances, submits it and refetches the whole collection.
// Nothing is patched locally and a failed submission is not retried.
func RecordPayment(ctx context.Context, b models.Backend, kind models.DocumentKind, input *models.NewPayment) (*PaymentResult, error) {
	logger := config.GetLogger()

	release, err := AcquireSubmissionLock(ctx, paymentScreen(kind), strings.TrimSpace(input.PartyId))
	if err != nil {
		return nil, err
	}
	defer release()

	// balances are read under the lock
	docs, err := models.ListDocuments(ctx, b, kind, nil)
	if err != nil {
		config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "ListDocuments", kind, err)
		return nil, fmt.Errorf("load documents: %w", err)
	}
	submission, err := input.Validate(docs)
	if err != nil {
		return nil, err
	}

	if err := models.SubmitPayment(ctx, b, kind, *submission); err != nil {
		config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "SubmitPayment", submission, err)
		return nil, fmt.Errorf("record payment: %w", err)
	}

	docs, err = models.ListDocuments(ctx, b, kind, nil)
	if err != nil {
		config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "ListDocuments after payment", kind, err)
		return nil, fmt.Errorf("reload documents: %w", err)
	}
	return &PaymentResult{
		Documents:       docs,
		PartiesWithDebt: models.PartiesWithDebt(docs),
	}, nil
}

package workflow

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
)

type DocumentResult struct {
	Document  *models.Document  `json:"document"`
	Documents []models.Document `json:"documents"`
}

func documentScreen(kind models.DocumentKind) string {
	return "document:" + string(kind)
}

// CreateDocument submits a purchase or sale under the party's in-flight flag and refetches the collection
// for the given period.
func CreateDocument(ctx context.Context, b models.Backend, kind models.DocumentKind, input *models.NewDocument, lookup models.ProductLookup, filter models.PeriodFilter) (*DocumentResult, error) {
	logger := config.GetLogger()

	release, err := AcquireSubmissionLock(ctx, documentScreen(kind), strings.TrimSpace(input.PartyId))
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := models.CreateDocument(ctx, b, kind, input, lookup)
	if err != nil {
		if !models.IsValidationError(err) {
			config.LogError(logger, "documentWorkflow.go", "CreateDocument", "models.CreateDocument", input, err)
			return nil, fmt.Errorf("create %s: %w", kind, err)
		}
		return nil, err
	}

	docs, err := models.ListDocuments(ctx, b, kind, filter)
	if err != nil {
		config.LogError(logger, "documentWorkflow.go", "CreateDocument", "ListDocuments after create", kind, err)
		return nil, fmt.Errorf("reload documents: %w", err)
	}
	return &DocumentResult{Document: doc, Documents: docs}, nil
}

package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// Backend is the shop API as the console sees it. The HTTP implementation lives in apiclient.
type Backend interface {
	ListParties(ctx context.Context, kind PartyKind) ([]Party, error)
	CreateParty(ctx context.Context, kind PartyKind, input NewParty) (*Party, error)
	UpdateParty(ctx context.Context, kind PartyKind, id string, input NewParty) (*Party, error)
	DeleteParty(ctx context.Context, kind PartyKind, id string) error

	ListProducts(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, input NewProduct) (*Product, error)
	UpdateProduct(ctx context.Context, id string, input NewProduct) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListDocuments(ctx context.Context, kind DocumentKind, filter PeriodFilter) ([]Document, error)
	CreateDocument(ctx context.Context, kind DocumentKind, submission DocumentSubmission) (*Document, error)
	RecordPayment(ctx context.Context, kind DocumentKind, submission PaymentSubmission) error

	GetSummary(ctx context.Context, filter PeriodFilter) (*Summary, error)
	GetInventoryReport(ctx context.Context, filter PeriodFilter) (*InventoryReport, error)
}

// DocumentSubmission is a validated document ready to be sent.
type DocumentSubmission struct {
	PartyId        string
	Date           string
	Lines          []LineItem
	InitialPayment decimal.Decimal
}

// PaymentSubmission is a validated payment ready to be sent. An empty DocumentId
// lets the server spread the amount over the party's open documents.
type PaymentSubmission struct {
	PartyId    string
	DocumentId string
	Amount     decimal.Decimal
	Date       string
}

package models

import (
	"errors"
	"strings"
)

type PartyKind string

const (
	PartyKindClient   PartyKind = "client"
	PartyKindSupplier PartyKind = "supplier"
)

func (k PartyKind) IsValid() bool {
	return k == PartyKindClient || k == PartyKindSupplier
}

func (k PartyKind) Label() string {
	if k == PartyKindSupplier {
		return "Supplier"
	}
	return "Client"
}

// convert path or query input to enum type
func (k *PartyKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "client", "clients":
		*k = PartyKindClient
	case "supplier", "suppliers":
		*k = PartyKindSupplier
	default:
		return errors.New("invalid party kind")
	}
	return nil
}

type DocumentKind string

const (
	DocumentKindPurchase DocumentKind = "purchase"
	DocumentKindSale     DocumentKind = "sale"
)

func (k DocumentKind) IsValid() bool {
	return k == DocumentKindPurchase || k == DocumentKindSale
}

// PartyKind is the counterparty of the document: suppliers sell to us, clients buy from us.
func (k DocumentKind) PartyKind() PartyKind {
	if k == DocumentKindSale {
		return PartyKindClient
	}
	return PartyKindSupplier
}

func (k DocumentKind) Label() string {
	if k == DocumentKindSale {
		return "Sale"
	}
	return "Purchase"
}

func (k *DocumentKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "purchase", "purchases":
		*k = DocumentKindPurchase
	case "sale", "sales":
		*k = DocumentKindSale
	default:
		return errors.New("invalid document kind")
	}
	return nil
}

type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusPartial DocumentStatus = "partial"
	DocumentStatusPaid    DocumentStatus = "paid"
)

// ParseDocumentStatus maps the labels the shop API stores to a status; unknown labels are kept as is.
func ParseDocumentStatus(label string) DocumentStatus {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "pagado", "paid":
		return DocumentStatusPaid
	case "parcial", "partial":
		return DocumentStatusPartial
	case "pendiente", "pending", "":
		return DocumentStatusPending
	default:
		return DocumentStatus(label)
	}
}

// LineField names the editable numeric field of a line item.
type LineField string

const (
	LineFieldQuantity  LineField = "quantity"
	LineFieldUnitPrice LineField = "unit_price"
)

func (f LineField) IsValid() bool {
	return f == LineFieldQuantity || f == LineFieldUnitPrice
}

type ActionType string

const (
	ActionTypeCreate  ActionType = "CREATE"
	ActionTypeUpdate  ActionType = "UPDATE"
	ActionTypeDelete  ActionType = "DELETE"
	ActionTypePayment ActionType = "PAYMENT"
)

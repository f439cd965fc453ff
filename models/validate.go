package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	// money and quantities travel as JSON numbers, both to the shop API and to the console
	decimal.MarshalJSONWithoutQuotes = true

	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// numeric tags (gt, gte, lte) compare decimals as float64
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch v := field.Interface().(type) {
		case decimal.Decimal:
			f, _ := v.Float64()
			return f
		case utils.FormDecimal:
			f, _ := v.Decimal.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{}, utils.FormDecimal{})
}

var (
	ErrOutOfStock                 = errors.New("product is out of stock")
	ErrInsufficientStock          = errors.New("quantity exceeds available stock")
	ErrLineIndexOutOfRange        = errors.New("line index out of range")
	ErrInvalidLineField           = errors.New("invalid line field")
	ErrDateInFuture               = errors.New("date cannot be in the future")
	ErrInitialPaymentExceedsTotal = errors.New("initial payment cannot exceed the total")
	ErrPaymentExceedsBalance      = errors.New("payment amount exceeds the outstanding balance")
	ErrNoOutstandingBalance       = errors.New("party has no outstanding balance")
	ErrDocumentPartyMismatch      = errors.New("document does not belong to the party")
	ErrInvalidPeriodFilter        = errors.New("invalid period filter")
)

// ValidationError is an input problem detected before anything is submitted.
// Fields maps the offending json field to the failed rule.
type ValidationError struct {
	Message string
	Fields  map[string]string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid input (" + strings.Join(parts, ", ") + ")"
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field string, err error) *ValidationError {
	return &ValidationError{
		Message: err.Error(),
		Fields:  map[string]string{field: err.Error()},
		Err:     err,
	}
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validateStruct(input interface{}) error {
	if err := validate.Struct(input); err != nil {
		if fields := utils.ProcessValidationErrors(err); fields != nil {
			return &ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

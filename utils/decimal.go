package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// currency markers stripped from typed amounts
var currencyMarkers = []string{"Bs.", "bs.", "BS.", "BOB", "bob", "Bs", "bs", "BS"}

// 1,234 or 1,234,567.50: commas only as thousands groups
var groupedThousands = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

func trimCurrency(s string) string {
	s = strings.TrimSpace(s)
	for _, marker := range currencyMarkers {
		if strings.HasPrefix(s, marker) {
			return strings.TrimSpace(strings.TrimPrefix(s, marker))
		}
		if strings.HasSuffix(s, marker) {
			return strings.TrimSpace(strings.TrimSuffix(s, marker))
		}
	}
	return s
}

// ParseDecimal accepts numbers and user-formatted strings like "Bs 1,234.50".
// Anything that is not a plain number after the currency marker and thousands groups are removed is rejected,
// "10,5" and "12abc3" are errors.
func ParseDecimal(i interface{}) (decimal.Decimal, error) {
	switch v := i.(type) {
	case string:
		s := trimCurrency(v)
		sign := ""
		if strings.HasPrefix(s, "-") {
			sign = "-"
			s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
		}
		if groupedThousands.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		}
		if s == "" || strings.ContainsAny(s, ",+-eE") {
			return decimal.Zero, fmt.Errorf("invalid value %q", v)
		}
		d, err := decimal.NewFromString(sign + s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid value %q", v)
		}
		return d, nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, fmt.Errorf("invalid value")
	}
}

// FormDecimal is a decimal typed into a form: it unmarshals from a JSON number,
// a formatted string or an empty string (zero).
type FormDecimal struct {
	decimal.Decimal
}

func NewFormDecimal(d decimal.Decimal) FormDecimal {
	return FormDecimal{Decimal: d}
}

func (d *FormDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		d.Decimal = decimal.Zero
		return nil
	}
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	val, err := ParseDecimal(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", string(data), err)
	}
	d.Decimal = val
	return nil
}

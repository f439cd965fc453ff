package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/utils"
)

const (
	MinFilterYear = 2000
	MaxFilterYear = 2100
)

// PeriodFilter narrows lists and reports to a day, a month or a year.
// A nil PeriodFilter means no restriction.
type PeriodFilter interface {
	// Params are the query parameters understood by the shop API.
	Params() map[string]string
	// Key identifies the period in cache keys and file names.
	Key() string
	Label() string
	// Stamp breaks the period into day/month/year parts; absent parts are zero.
	Stamp() PeriodStamp
	isPeriodFilter()
}

type DayFilter struct {
	Date time.Time
}

type MonthFilter struct {
	Year  int
	Month time.Month
}

type YearFilter struct {
	Year int
}

// PeriodStamp is a period flattened to its parts.
type PeriodStamp struct {
	Day   int `json:"day,omitempty"`
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

// String renders d/m/yyyy, leaving out the parts that are not set.
func (s PeriodStamp) String() string {
	var parts []string
	if s.Day > 0 {
		parts = append(parts, strconv.Itoa(s.Day))
	}
	if s.Month > 0 {
		parts = append(parts, strconv.Itoa(s.Month))
	}
	if s.Year > 0 {
		parts = append(parts, strconv.Itoa(s.Year))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "/")
}

func (f DayFilter) Params() map[string]string {
	return map[string]string{
		"dia":  fmt.Sprintf("%02d", f.Date.Day()),
		"mes":  fmt.Sprintf("%02d", int(f.Date.Month())),
		"anio": strconv.Itoa(f.Date.Year()),
	}
}

func (f DayFilter) Key() string   { return "day-" + f.Date.Format(utils.DateLayout) }
func (f DayFilter) Label() string { return f.Date.Format("02/01/2006") }

func (f DayFilter) Stamp() PeriodStamp {
	return PeriodStamp{Day: f.Date.Day(), Month: int(f.Date.Month()), Year: f.Date.Year()}
}

func (DayFilter) isPeriodFilter() {}

func (f MonthFilter) Params() map[string]string {
	return map[string]string{
		"mes":  fmt.Sprintf("%02d", int(f.Month)),
		"anio": strconv.Itoa(f.Year),
	}
}

func (f MonthFilter) Key() string   { return fmt.Sprintf("month-%04d-%02d", f.Year, int(f.Month)) }
func (f MonthFilter) Label() string { return fmt.Sprintf("%02d/%04d", int(f.Month), f.Year) }

func (f MonthFilter) Stamp() PeriodStamp {
	return PeriodStamp{Month: int(f.Month), Year: f.Year}
}

func (MonthFilter) isPeriodFilter() {}

func (f YearFilter) Params() map[string]string {
	return map[string]string{"anio": strconv.Itoa(f.Year)}
}

func (f YearFilter) Key() string        { return fmt.Sprintf("year-%04d", f.Year) }
func (f YearFilter) Label() string      { return strconv.Itoa(f.Year) }
func (f YearFilter) Stamp() PeriodStamp { return PeriodStamp{Year: f.Year} }

func (YearFilter) isPeriodFilter() {}

// PeriodKey is Key() that tolerates a nil filter.
func PeriodKey(f PeriodFilter) string {
	if f == nil {
		return "all"
	}
	return f.Key()
}

// PeriodLabel is Label() that tolerates a nil filter.
func PeriodLabel(f PeriodFilter) string {
	if f == nil {
		return "All"
	}
	return f.Label()
}

// PeriodParams is Params() that tolerates a nil filter.
func PeriodParams(f PeriodFilter) map[string]string {
	if f == nil {
		return nil
	}
	return f.Params()
}

func invalidPeriod(kind, value string) error {
	return &ValidationError{
		Message: fmt.Sprintf("invalid %s filter %q", kind, value),
		Fields:  map[string]string{"period": kind},
		Err:     ErrInvalidPeriodFilter,
	}
}

func checkYear(kind, value string, year int) error {
	if year < MinFilterYear || year > MaxFilterYear {
		return invalidPeriod(kind, value)
	}
	return nil
}

// ParsePeriodFilter builds a filter from a kind (day, month, year) and its value
// (YYYY-MM-DD, YYYY-MM, YYYY). An empty kind or value yields a nil filter.
func ParsePeriodFilter(kind, value string) (PeriodFilter, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	value = strings.TrimSpace(value)
	if kind == "" || kind == "all" || value == "" {
		return nil, nil
	}
	switch kind {
	case "day", "dia":
		t, err := time.Parse(utils.DateLayout, value)
		if err != nil {
			return nil, invalidPeriod(kind, value)
		}
		if err := checkYear(kind, value, t.Year()); err != nil {
			return nil, err
		}
		return DayFilter{Date: t}, nil
	case "month", "mes":
		t, err := time.Parse("2006-01", value)
		if err != nil {
			return nil, invalidPeriod(kind, value)
		}
		if err := checkYear(kind, value, t.Year()); err != nil {
			return nil, err
		}
		return MonthFilter{Year: t.Year(), Month: t.Month()}, nil
	case "year", "anio", "año":
		year, err := strconv.Atoi(value)
		if err != nil {
			return nil, invalidPeriod(kind, value)
		}
		if err := checkYear(kind, value, year); err != nil {
			return nil, err
		}
		return YearFilter{Year: year}, nil
	default:
		return nil, invalidPeriod(kind, value)
	}
}

// ParsePeriodQuery reads period/value, or else the split dia/mes/anio parts the shop API uses.
func ParsePeriodQuery(get func(string) string) (PeriodFilter, error) {
	if kind := get("period"); kind != "" {
		return ParsePeriodFilter(kind, get("value"))
	}
	dia, mes, anio := get("dia"), get("mes"), get("anio")
	switch {
	case dia != "" && mes != "" && anio != "":
		return ParsePeriodFilter("day", fmt.Sprintf("%s-%s-%s", pad(anio, 4), pad(mes, 2), pad(dia, 2)))
	case mes != "" && anio != "":
		return ParsePeriodFilter("month", fmt.Sprintf("%s-%s", pad(anio, 4), pad(mes, 2)))
	case anio != "":
		return ParsePeriodFilter("year", anio)
	case dia != "" || mes != "":
		return nil, invalidPeriod("period", dia+mes)
	}
	return nil, nil
}

func pad(s string, width int) string {
	s = strings.TrimSpace(s)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriodFilter(t *testing.T) {
	cases := []struct {
		kind, value string
		params      map[string]string
		label       string
	}{
		{"day", "2024-05-01", map[string]string{"dia": "01", "mes": "05", "anio": "2024"}, "01/05/2024"},
		{"mes", "2024-05", map[string]string{"mes": "05", "anio": "2024"}, "05/2024"},
		{"año", "2024", map[string]string{"anio": "2024"}, "2024"},
	}
	for _, tc := range cases {
		f, err := ParsePeriodFilter(tc.kind, tc.value)
		require.NoError(t, err, tc.kind)
		assert.Equal(t, tc.params, f.Params(), tc.kind)
		assert.Equal(t, tc.label, f.Label(), tc.kind)
	}
}

func TestParsePeriodFilter_Rejects(t *testing.T) {
	for _, tc := range [][2]string{
		{"day", "01/05/2024"},
		{"month", "2024-13"},
		{"year", "1999"},
		{"year", "2101"},
		{"week", "2024-W01"},
	} {
		_, err := ParsePeriodFilter(tc[0], tc[1])
		assert.ErrorIs(t, err, ErrInvalidPeriodFilter, "%s %s", tc[0], tc[1])
	}
}

func TestParsePeriodFilter_EmptyMeansNoFilter(t *testing.T) {
	f, err := ParsePeriodFilter("", "")
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Equal(t, "all", PeriodKey(f))
	assert.Nil(t, PeriodParams(f))
}

func TestParsePeriodQuery_SplitParts(t *testing.T) {
	query := map[string]string{"dia": "1", "mes": "5", "anio": "2024"}
	f, err := ParsePeriodQuery(func(k string) string { return query[k] })
	require.NoError(t, err)
	assert.Equal(t, DayFilter{Date: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)}, f)
	assert.Equal(t, PeriodStamp{Day: 1, Month: 5, Year: 2024}, f.Stamp())

	query = map[string]string{"mes": "5"}
	_, err = ParsePeriodQuery(func(k string) string { return query[k] })
	assert.ErrorIs(t, err, ErrInvalidPeriodFilter)
}

func TestPeriodStamp_String(t *testing.T) {
	assert.Equal(t, "1/5/2024", PeriodStamp{Day: 1, Month: 5, Year: 2024}.String())
	assert.Equal(t, "2024", PeriodStamp{Year: 2024}.String())
	assert.Equal(t, "-", PeriodStamp{}.String())
}

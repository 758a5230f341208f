package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R 0.00"},
		{"5", "R 5.00"},
		{"220", "R 220.00"},
		{"1234.56", "R 1,234.56"},
		{"1234.565", "R 1,234.57"},
		{"7150", "R 7,150.00"},
		{"1234567.8", "R 1,234,567.80"},
		{"-1500.5", "R -1,500.50"},
		{"-0.001", "R 0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, "18 October 2026", Date(time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1 January 2027", Date(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, "20 October 2026", Date(d))

	d, err = ParseDate("2026-10-20T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, d.Hour())

	_, err = ParseDate("20/10/2026")
	assert.Error(t, err)
}

func TestTime(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"13:05", "1:05 PM"},
		{"00:30", "12:30 AM"},
		{"12:00", "12:00 PM"},
		{"09:15", "9:15 AM"},
		{"9:15", "9:15 AM"},
		{"23:59", "11:59 PM"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Time(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "1305", "24:00", "12:60", "ab:cd", "12:5", "123:00", "-1:00"} {
		t.Run(in, func(t *testing.T) {
			_, err := Time(in)
			assert.ErrorIs(t, err, ErrInvalidTime)
		})
	}
}

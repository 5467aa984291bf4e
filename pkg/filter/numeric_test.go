package filter_test

import (
	"math"
	"testing"

	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/filter/operator"
	"github.com/stretchr/testify/assert"
)

func TestParseNumericLenient(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1500000", 1500000},
		{"1500000 GBP", 1500000},
		{"  42", 42},
		{"-3.5", -3.5},
		{"+7", 7},
		{".5", 0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"1e", 1},
		{"1e+", 1},
		{"2024-25", 2024},
		{"12 years", 12},
		{"£1.5m", 0},
		{"$1,500", 0},
		{"1,500", 1},
		{".", 0},
		{"-", 0},
		{"", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, filter.ParseNumericLenient(tt.input))
		})
	}

	t.Run("infinity", func(t *testing.T) {
		assert.True(t, math.IsInf(filter.ParseNumericLenient("Infinity"), 1))
		assert.True(t, math.IsInf(filter.ParseNumericLenient("-Infinity"), -1))
	})
}

func TestParseRange(t *testing.T) {
	lo, hi := filter.ParseRange("5-10")
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 10.0, hi)

	lo, hi = filter.ParseRange("5-")
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 0.0, hi)

	lo, hi = filter.ParseRange("-5-10")
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 5.0, hi)
}

func TestCompareNumeric(t *testing.T) {
	tests := []struct {
		name     string
		fieldVal string
		op       string
		operand  string
		expected bool
	}{
		{"gt true", "12", operator.Gt, "10", true},
		{"gt equal", "10", operator.Gt, "10", false},
		{"gte equal", "10", operator.Gte, "10", true},
		{"lt", "2022", operator.Lt, "2023", true},
		{"lte equal", "2023", operator.Lte, "2023", true},
		{"contains is equality", "2024", operator.Contains, "2024", true},
		{"contains is not substring", "2024", operator.Contains, "202", false},
		{"range lower bound", "5", operator.Range, "5-10", true},
		{"range upper bound", "10", operator.Range, "5-10", true},
		{"range below", "4.9", operator.Range, "5-10", false},
		{"range above", "12", operator.Range, "5-10", false},
		{"reversed range", "7", operator.Range, "10-5", false},
		{"absent field is zero", "", operator.Lt, "5", true},
		{"absent field equals zero", "", operator.Contains, "0", true},
		{"unparseable operand is zero", "3", operator.Gt, "lots", true},
		{"suffix ignored", "1500000 GBP", operator.Gt, "1000000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, filter.CompareNumeric(tt.fieldVal, tt.op, tt.operand))
		})
	}
}

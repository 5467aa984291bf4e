package filter_test

import (
	"testing"

	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/filter/operator"
	"github.com/stretchr/testify/assert"
)

func term(v string) filter.Filter {
	return filter.Filter{Bare: true, Op: operator.Contains, Value: v}
}

func clause(field, op, value string) filter.Filter {
	return filter.Filter{Field: field, Op: op, Value: value}
}

func and(filters ...filter.Filter) filter.Filter {
	return filter.Filter{Logic: filter.LogicAnd, Filters: filters}
}

func or(filters ...filter.Filter) filter.Filter {
	return filter.Filter{Logic: filter.LogicOr, Filters: filters}
}

func not(f filter.Filter) filter.Filter {
	return filter.Filter{Logic: filter.LogicNot, Filters: []filter.Filter{f}}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected filter.Filter
	}{
		{"empty", "", filter.Filter{}},
		{"bare term", "hospital", term("hospital")},
		{"field contains", "entity:hospital", clause("entity", operator.Contains, "hospital")},
		{"field name is lowercased and trimmed", " Entity : Hospital", clause("entity", operator.Contains, "Hospital")},
		{"greater or equal", "year:>=2024", clause("year", operator.Gte, "2024")},
		{"less or equal", "year:<=2023", clause("year", operator.Lte, "2023")},
		{"greater", "value:>2000000", clause("value", operator.Gt, "2000000")},
		{"less", "year:<2023", clause("year", operator.Lt, "2023")},
		{"spaces around operator", "year: >= 2024", clause("year", operator.Gte, "2024")},
		{"range", "experience:5-10", clause("experience", operator.Range, "5-10")},
		{"comparison wins over range", "year:>2020-01", clause("year", operator.Gt, "2020-01")},
		{"multi word value", "name:hospital tower", clause("name", operator.Contains, "hospital tower")},
		{"multi word spacing kept", "name:hospital   tower", clause("name", operator.Contains, "hospital   tower")},
		{"multi word bare term", "hospital tower", term("hospital tower")},
		{"colon at start is a bare term", ":foo", term(":foo")},
		{"only first colon splits", "description:note: urgent", clause("description", operator.Contains, "note: urgent")},

		{"and", "a and b", and(term("a"), term("b"))},
		{"or", "a or b or c", or(term("a"), term("b"), term("c"))},
		{"and binds tighter than or", "a and b or c", or(and(term("a"), term("b")), term("c"))},
		{"and binds tighter than or on the right", "a or b and c", or(term("a"), and(term("b"), term("c")))},
		{"not binds tightest", "not a and b", and(not(term("a")), term("b"))},
		{"not of a group", "not (a and b)", not(and(term("a"), term("b")))},
		{"double not", "not not a", not(not(term("a")))},
		{"group", "(uk or usa) and year:2024", and(or(term("uk"), term("usa")), clause("year", operator.Contains, "2024"))},
		{"adjacent factors are anded", "(uk or usa) hospital", and(or(term("uk"), term("usa")), term("hospital"))},

		{"trailing and", "a and", term("a")},
		{"leading or", "or a", term("a")},
		{"repeated and", "a and and b", and(term("a"), term("b"))},
		{"lone not", "not", term("not")},
		{"trailing not", "a and not", and(term("a"), term("not"))},
		{"not inside a clause", "hospital not commercial", term("hospital not commercial")},
		{"missing close paren", "(a or b", or(term("a"), term("b"))},
		{"stray close paren", "a) and b", and(term("a"), term("b"))},
		{"stray paren before or", "a) or b", or(term("a"), term("b"))},
		{"stray paren after group", "(a or b)) or c", or(or(term("a"), term("b")), term("c"))},
		{"leading stray paren", ") a", term("a")},
		{"underscore is a field name", "_:acme", clause("_", operator.Contains, "acme")},
		{"empty group", "()", filter.Filter{}},
		{"not of empty group", "not ()", not(filter.Filter{})},
		{"only operators", "and or", filter.Filter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, &tt.expected, filter.Parse(tt.input))
		})
	}
}

func TestParseRangeGating(t *testing.T) {
	isRange := func(field string) bool { return field == "experience" }

	t.Run("range capable field", func(t *testing.T) {
		f := filter.Parse("experience:5-10", filter.WithRangeFields(isRange))
		assert.Equal(t, operator.Range, f.Op)
	})

	t.Run("text field keeps hyphen", func(t *testing.T) {
		f := filter.Parse("client:acme-corp", filter.WithRangeFields(isRange))
		assert.Equal(t, operator.Contains, f.Op)
		assert.Equal(t, "acme-corp", f.Value)
	})

	t.Run("legacy heuristic without gating", func(t *testing.T) {
		f := filter.Parse("client:acme-corp")
		assert.Equal(t, operator.Range, f.Op)
	})

	t.Run("legacy option overrides gating", func(t *testing.T) {
		f := filter.Parse("client:acme-corp", filter.WithRangeFields(isRange), filter.WithLegacyRange())
		assert.Equal(t, operator.Range, f.Op)
	})

	t.Run("bare terms never become ranges", func(t *testing.T) {
		f := filter.Parse("acme-corp")
		assert.Equal(t, operator.Contains, f.Op)
	})
}

func TestFilterString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hospital", "hospital"},
		{"year:>=2024", "year:>=2024"},
		{"experience:5-10", "experience:5-10"},
		{"a and b or c", "(a AND b) OR c"},
		{"not (a or b)", "NOT (a OR b)"},
		{"not ()", "NOT ()"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, filter.Parse(tt.input).String())
		})
	}
}

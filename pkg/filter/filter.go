package filter

import (
	"strings"

	"github.com/bascanada/proposalviewer/pkg/filter/operator"
)

type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
	LogicNot LogicOperator = "NOT"
)

// Resolver decides a single clause against one record.
// field is the lowercased field name, or "" for a bare term.
type Resolver interface {
	Resolve(field, op, operand string) bool
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(field, op, operand string) bool

func (f ResolverFunc) Resolve(field, op, operand string) bool {
	return f(field, op, operand)
}

// Filter represents a recursive filter AST node.
// It can be either a leaf node (clause) or a branch node (group).
type Filter struct {
	// --- Leaf Node (Clause) ---
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	Op    string `json:"op,omitempty" yaml:"op,omitempty"` // contains, gt, gte, lt, lte, range
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	// Bare marks a term typed without a field, searched across every
	// searchable attribute of a record.
	Bare bool `json:"bare,omitempty" yaml:"bare,omitempty"`

	// --- Branch Node (Group) ---
	Logic   LogicOperator `json:"logic,omitempty" yaml:"logic,omitempty"`
	Filters []Filter      `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// IsEmpty reports whether the filter has neither a clause nor a group,
// which matches everything.
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.Field == "" && !f.Bare && f.Logic == "")
}

// Match evaluates the filter against one record through its resolver.
func (f *Filter) Match(r Resolver) bool {
	if f == nil {
		return true
	}

	if f.Logic != "" {
		return f.matchBranch(r)
	}

	if f.Bare {
		return r.Resolve("", f.Op, f.Value)
	}
	if f.Field != "" {
		return r.Resolve(f.Field, f.Op, f.Value)
	}

	// Empty filter matches everything
	return true
}

func (f *Filter) matchBranch(r Resolver) bool {
	if len(f.Filters) == 0 {
		return f.Logic != LogicNot
	}

	switch f.Logic {
	case LogicAnd:
		for i := range f.Filters {
			if !f.Filters[i].Match(r) {
				return false
			}
		}
		return true

	case LogicOr:
		for i := range f.Filters {
			if f.Filters[i].Match(r) {
				return true
			}
		}
		return false

	case LogicNot:
		// NOT inverts the result of all children ANDed together
		for i := range f.Filters {
			if !f.Filters[i].Match(r) {
				return true
			}
		}
		return false
	}

	return true
}

// String renders the filter back to expression syntax with explicit grouping.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return ""
	}

	if f.Logic == "" {
		value := operator.Symbol(f.Op) + f.Value
		if f.Bare {
			return value
		}
		return f.Field + ":" + value
	}

	parts := make([]string, 0, len(f.Filters))
	for i := range f.Filters {
		s := f.Filters[i].String()
		if s == "" || f.Filters[i].Logic == LogicAnd || f.Filters[i].Logic == LogicOr {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}

	if f.Logic == LogicNot {
		return "NOT " + strings.Join(parts, " AND ")
	}
	return strings.Join(parts, " "+string(f.Logic)+" ")
}

package proposal

import (
	"fmt"
	"strings"

	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/filter/operator"
)

// Kind is how a field's values are compared.
type Kind int

const (
	// Text fields match contains as a case-insensitive substring.
	Text Kind = iota
	// Numeric fields compare with ParseNumericLenient; contains means equality.
	Numeric
	// NumericRange fields are Numeric fields that also accept min-max ranges.
	NumericRange
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case NumericRange:
		return "numeric-range"
	default:
		return "text"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Field is one registry entry: the names a filter may use and how to read
// the attribute off a record.
type Field[T any] struct {
	Name        string
	Aliases     []string
	Kind        Kind
	Searchable  bool // included in bare term search
	Description string
	Values      func(T) []string
}

// FieldInfo describes a registered field for listings.
type FieldInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Searchable  bool     `json:"searchable" yaml:"searchable"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Registry is the closed set of filterable fields of one record kind.
type Registry[T any] struct {
	fields []Field[T]
	index  map[string]int
}

// NewRegistry builds a registry. It panics when two fields share a name,
// since registries are declared statically.
func NewRegistry[T any](fields ...Field[T]) *Registry[T] {
	r := &Registry[T]{fields: fields, index: map[string]int{}}
	for i, f := range fields {
		for _, name := range append([]string{f.Name}, f.Aliases...) {
			key := strings.ToLower(name)
			if _, dup := r.index[key]; dup {
				panic(fmt.Sprintf("proposal: field name %q registered twice", key))
			}
			r.index[key] = i
		}
	}
	return r
}

// Lookup finds a field by any of its names, case-insensitively.
func (r *Registry[T]) Lookup(name string) (Field[T], bool) {
	i, ok := r.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Field[T]{}, false
	}
	return r.fields[i], true
}

// IsRange reports whether name is a range capable field.
func (r *Registry[T]) IsRange(name string) bool {
	f, ok := r.Lookup(name)
	return ok && f.Kind == NumericRange
}

// Fields lists the registered fields in declaration order.
func (r *Registry[T]) Fields() []FieldInfo {
	infos := make([]FieldInfo, 0, len(r.fields))
	for _, f := range r.fields {
		infos = append(infos, FieldInfo{
			Name:        f.Name,
			Aliases:     f.Aliases,
			Kind:        f.Kind,
			Searchable:  f.Searchable,
			Description: f.Description,
		})
	}
	return infos
}

// Names returns every accepted field name, aliases included.
func (r *Registry[T]) Names() []string {
	var names []string
	for _, f := range r.fields {
		names = append(names, f.Name)
		names = append(names, f.Aliases...)
	}
	return names
}

// Parse parses filter text with range detection limited to this registry's
// range capable fields. Later options override that default.
func (r *Registry[T]) Parse(text string, opts ...filter.Option) *filter.Filter {
	return filter.Parse(filter.Normalize(text), r.options(opts)...)
}

// Filter returns the records matching text, in their original order.
func (r *Registry[T]) Filter(records []T, text string, opts ...filter.Option) []T {
	return filter.Apply(records, text, r.Resolver, r.options(opts)...)
}

func (r *Registry[T]) options(opts []filter.Option) []filter.Option {
	return append([]filter.Option{filter.WithRangeFields(r.IsRange)}, opts...)
}

// Resolver returns the clause resolver of a single record.
func (r *Registry[T]) Resolver(rec T) filter.Resolver {
	return filter.ResolverFunc(func(field, op, operand string) bool {
		return r.resolve(rec, field, op, operand)
	})
}

func (r *Registry[T]) resolve(rec T, field, op, operand string) bool {
	if field == "" {
		for _, f := range r.fields {
			if f.Searchable && containsAny(f.Values(rec), operand) {
				return true
			}
		}
		return false
	}

	f, ok := r.Lookup(field)
	if !ok {
		// Unknown fields have no value
		if op == operator.Contains {
			return false
		}
		return filter.CompareNumeric("", op, operand)
	}

	values := present(f.Values(rec))

	if f.Kind == Numeric || f.Kind == NumericRange {
		if len(values) == 0 {
			// Absent values never contain anything, they only order as 0
			if op == operator.Contains {
				return false
			}
			return filter.CompareNumeric("", op, operand)
		}
		return filter.CompareNumeric(values[0], op, operand)
	}

	if op == operator.Contains {
		return containsAny(values, operand)
	}

	if len(values) == 0 {
		return filter.CompareNumeric("", op, operand)
	}
	for _, v := range values {
		if filter.CompareNumeric(v, op, operand) {
			return true
		}
	}
	return false
}

func present(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// containsAny reports whether operand is a case-insensitive substring of a
// non-empty value.
func containsAny(values []string, operand string) bool {
	operand = strings.ToLower(operand)
	for _, v := range values {
		if v != "" && strings.Contains(strings.ToLower(v), operand) {
			return true
		}
	}
	return false
}

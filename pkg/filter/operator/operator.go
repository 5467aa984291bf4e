// Package operator defines the supported clause operators.
package operator

const (
	Contains = "contains"
	// Comparison operators, written as a value prefix (year:>=2020)
	Gt  = "gt"  // >
	Gte = "gte" // >=
	Lt  = "lt"  // <
	Lte = "lte" // <=
	// Range is an inclusive min-max pair written as min-max
	Range = "range"
)

// Prefixes lists the comparison prefixes in detection order.
// Longer symbols come first so ">=" is not read as ">" followed by "=".
var Prefixes = []struct {
	Symbol string
	Op     string
}{
	{">=", Gte},
	{"<=", Lte},
	{">", Gt},
	{"<", Lt},
}

// Symbol returns the prefix written for op, or "" for operators without one.
func Symbol(op string) string {
	for _, p := range Prefixes {
		if p.Op == op {
			return p.Symbol
		}
	}
	return ""
}

// IsOrdering reports whether op is one of the four comparison operators.
func IsOrdering(op string) bool {
	return Symbol(op) != ""
}

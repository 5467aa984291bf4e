// Package ty holds small shared helper types.
package ty

import "sort"

// MS is a shorthand for map[string]string
type MS map[string]string

// Merge copies every entry of ms2 into ms, overwriting existing keys.
func (ms *MS) Merge(ms2 MS) {
	if *ms == nil {
		*ms = MS{}
	}
	for k, v := range ms2 {
		(*ms)[k] = v
	}
}

// Keys returns the keys in sorted order.
func (ms MS) Keys() []string {
	keys := make([]string, 0, len(ms))
	for k := range ms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

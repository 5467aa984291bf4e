package printer

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.Bold, color.FgCyan)
	fieldColor  = color.New(color.FgYellow)
	logicColor  = color.New(color.Bold, color.FgMagenta)
	mutedColor  = color.New(color.Faint)
)

// Default returns fallback when value is empty.
// Usage in template: {{Default .Client "-"}}
func Default(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(n int, s string) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// Services splits a semicolon separated services list.
func Services(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Years formats years of experience without a trailing .0.
func Years(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Highlight renders s in the field color when color is enabled.
func Highlight(s string) string {
	return fieldColor.Sprint(s)
}

// Trim removes leading and trailing whitespace from a string.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

func GetTemplateFunctionsMap() template.FuncMap {
	return template.FuncMap{
		"Default":   Default,
		"Truncate":  Truncate,
		"Services":  Services,
		"Join":      strings.Join,
		"Years":     Years,
		"Highlight": Highlight,
		"Trim":      Trim,
	}
}

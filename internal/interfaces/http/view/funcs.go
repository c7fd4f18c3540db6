package view

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// baseFuncs are available to every template. "t" and "title" are
// placeholders replaced per render with the request's locale.
func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"t":           func(key string, args ...any) string { return key },
		"title":       titleFunc(language.English),
		"formatMoney": formatMoney,
		"formatDate":  formatDate,
		"truncate":    truncate,
		"deref":       deref,
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"seq":         seq,
		"dict":        dict,
		"lower":       strings.ToLower,
	}
}

func titleFunc(tag language.Tag) func(string) string {
	caser := cases.Title(tag)
	return func(s string) string {
		return caser.String(s)
	}
}

// formatMoney formats an amount with thousand separators and two decimals.
// Example: 1234.5 -> "1,234.50"
func formatMoney(v any) string {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return ""
		}
		d = *x
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case string:
		parsed, err := decimal.NewFromString(x)
		if err != nil {
			return x
		}
		d = parsed
	default:
		return fmt.Sprint(v)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + decPart
}

// formatDate renders a date as YYYY-MM-DD; nil and zero times render empty
func formatDate(v any) string {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	case string:
		return x
	}
	return ""
}

func truncate(s string, max int) string {
	const suffix = "..."
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= len(suffix) {
		return string(runes[:max])
	}
	return string(runes[:max-len(suffix)]) + suffix
}

// deref turns an optional id into a comparable value; nil becomes 0
func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// seq returns 1..n, for page links
func seq(n int) []int {
	if n <= 0 {
		return []int{}
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func dict(pairs ...any) map[string]any {
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if key, ok := pairs[i].(string); ok {
			out[key] = pairs[i+1]
		}
	}
	return out
}

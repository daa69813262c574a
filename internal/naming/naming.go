// Package naming converts between Go identifiers and script-facing names.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LowerCamel converts a Go identifier to the camelCase name scripts see.
// A leading acronym is lowered as a whole:
//
//	"SumFields"  -> "sumFields"
//	"ID"         -> "id"
//	"HTTPServer" -> "httpServer"
//	"URLs"       -> "urls"
func LowerCamel(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	if !unicode.IsUpper(runes[0]) {
		return name
	}

	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 1 || n == len(runes):
		// single leading capital, or all caps
	case n > 1 && runes[n] == 's' && n+1 == len(runes):
		// plural acronym: lower the whole word
		n = len(runes)
	default:
		// the last capital starts the next word
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// Pascal converts a camelCase, snake_case or kebab-case name to the
// exported Go form:
//
//	"sumFields"  -> "SumFields"
//	"sum_fields" -> "SumFields"
//	"get-data"   -> "GetData"
func Pascal(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	nextUpper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			nextUpper = true
			continue
		}
		if nextUpper {
			b.WriteRune(unicode.ToUpper(r))
			nextUpper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsExported reports whether name is an exported Go identifier.
func IsExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

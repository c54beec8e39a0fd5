package keywords

import (
	"strings"
	"unicode"
)

// SplitCamelCase splits camelCase and PascalCase identifiers into
// lower-cased words. Acronym runs stay together until a case transition:
// "HTTPServer" -> ["http", "server"], "fooBarBaz" -> ["foo", "bar", "baz"].
func SplitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	runes := []rune(s)
	var words []string
	start := 0

	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := false
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			boundary = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// End of an acronym run: "HTTPServer" splits before the 'S'.
			boundary = true
		case unicode.IsDigit(prev) != unicode.IsDigit(cur):
			boundary = true
		}
		if boundary {
			words = append(words, strings.ToLower(string(runes[start:i])))
			start = i
		}
	}
	words = append(words, strings.ToLower(string(runes[start:])))

	out := words[:0]
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// SplitSnakeCase splits snake_case and kebab-case identifiers into
// lower-cased words.
func SplitSnakeCase(s string) []string {
	var words []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	}) {
		words = append(words, strings.ToLower(w))
	}
	return words
}

// SubTokens decomposes an identifier into all its camelCase and snake_case
// word parts, lower-cased and de-duplicated. The undecomposed identifier
// itself is not included.
func SubTokens(s string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(w string) {
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}

	for _, part := range SplitSnakeCase(s) {
		for _, w := range SplitCamelCase(part) {
			add(w)
		}
	}
	return out
}

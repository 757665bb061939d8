package schema

import (
	"strings"
	"unicode"
)

// ToWireKey converts an internal snake_case name to its camelCase wire form:
// event_bridge -> eventBridge, seller_sku -> sellerSku. Acronym tokens are
// lower-cased as one unit before joining. All-digit keys are returned as is.
func ToWireKey(name string) string {
	if isIndexKey(name) {
		return name
	}
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.Grow(len(name))
	for i, word := range words {
		if i == 0 {
			builder.WriteString(word)
			continue
		}
		builder.WriteString(capitalize(word))
	}
	return builder.String()
}

// ToInternalKey converts a wire key (camelCase or PascalCase, with or without
// acronyms) to snake_case: AmazonOrderId -> amazon_order_id,
// ASINList -> asin_list, eventBridge -> event_bridge.
func ToInternalKey(key string) string {
	if isIndexKey(key) {
		return key
	}
	return strings.Join(splitWords(key), "_")
}

// splitWords tokenizes on separators and case boundaries and returns the
// lower-cased tokens.
func splitWords(name string) []string {
	segments := strings.FieldsFunc(strings.TrimSpace(name), func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	words := make([]string, 0, len(segments))
	for _, segment := range segments {
		for _, word := range splitCaseBoundaries(segment) {
			words = append(words, strings.ToLower(word))
		}
	}
	return words
}

func splitCaseBoundaries(segment string) []string {
	runes := []rune(segment)
	if len(runes) == 0 {
		return nil
	}
	words := []string{}
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, current := runes[i-1], runes[i]
		boundary := false
		switch {
		case unicode.IsUpper(current) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			boundary = true
		case unicode.IsUpper(current) && unicode.IsUpper(prev) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// ASINList: the last capital of a run starts the next word.
			boundary = true
		}
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func isIndexKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

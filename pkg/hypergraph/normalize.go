package hypergraph

import (
	"strings"
	"unicode"
)

// NormalizeID computes the stable node id for a raw label: Unicode-aware
// trim, lowercase, collapse internal whitespace, and — if the result is a
// single ASCII-alphabetic word of at least 4 characters — apply a light
// singularizer so "entities" and "entity" refer to the same node.
//
// NormalizeID is idempotent: NormalizeID(NormalizeID(x)) == NormalizeID(x).
func NormalizeID(label string) string {
	trimmed := strings.TrimSpace(label)
	lowered := strings.ToLower(trimmed)
	collapsed := collapseWhitespace(lowered)
	if isSingleASCIIWord(collapsed) && len(collapsed) >= 4 {
		return singularize(collapsed)
	}
	return collapsed
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func isSingleASCIIWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// singularize applies the rule set from spec.md §4.1:
//
//	*ies  -> *y
//	*ches|*shes|*xes|*ses|*zes -> drop "es"
//	*ss   -> unchanged
//	*s    -> drop trailing "s"
func singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "xes"), strings.HasSuffix(word, "ses"),
		strings.HasSuffix(word, "zes"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "ss"):
		return word
	case strings.HasSuffix(word, "s") && len(word) > 1:
		return word[:len(word)-1]
	default:
		return word
	}
}

package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTerm derives the canonical identity key for a raw vocabulary term.
//
// The term is NFKC-composed, case-folded and trimmed. Every rune that is not a
// letter, digit, whitespace, hyphen or apostrophe is dropped, typographic
// apostrophes fold to ASCII, and whitespace runs collapse to a single space.
// Two raw terms denote the same item iff their normalized forms are equal.
//
// The rules are part of the stored data format: changing them requires a
// migration that re-keys existing items.
func NormalizeTerm(term string) string {
	folded := cases.Fold().String(norm.NFKC.String(term))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '’' || r == '‘' || r == 'ʼ':
			b.WriteRune('\'')
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '\'':
			b.WriteRune(r)
		case unicode.IsMark(r):
			// combining marks that survived composition belong to their letter
			b.WriteRune(r)
		}
	}

	return collapseSpaces(b.String())
}

// MeaningKey returns the case-insensitive comparison key for a meaning.
// Meanings compare equal when they differ only in case or whitespace.
func MeaningKey(meaning string) string {
	return cases.Fold().String(collapseSpaces(norm.NFKC.String(meaning)))
}

// CleanMeanings trims every meaning, drops empty ones and collapses
// duplicates case-insensitively, keeping the first spelling seen.
func CleanMeanings(meanings []string) []string {
	return UnionMeanings(nil, meanings)
}

// UnionMeanings returns existing followed by every incoming meaning not
// already present, compared with MeaningKey.
func UnionMeanings(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	add := func(m string) {
		m = strings.TrimSpace(m)
		if m == "" {
			return
		}
		key := MeaningKey(m)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}

	for _, m := range existing {
		add(m)
	}
	for _, m := range incoming {
		add(m)
	}

	return out
}

// CleanTags trims, lower-cases and de-duplicates tags, preserving order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = collapseSpaces(cases.Fold().String(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

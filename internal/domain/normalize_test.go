package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTerm(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already canonical", input: "resilient", expected: "resilient"},
		{name: "mixed case", input: "Resilient", expected: "resilient"},
		{name: "trailing punctuation", input: "Resilient!!!", expected: "resilient"},
		{name: "surrounding whitespace", input: "  resilient \t", expected: "resilient"},
		{name: "internal whitespace collapsed", input: "give   up\non", expected: "give up on"},
		{name: "hyphen kept", input: "Well-Known", expected: "well-known"},
		{name: "apostrophe kept", input: "don't", expected: "don't"},
		{name: "typographic apostrophe folded", input: "don’t", expected: "don't"},
		{name: "punctuation between words", input: "cause , effect", expected: "cause effect"},
		{name: "digits kept", input: "Catch-22", expected: "catch-22"},
		{name: "fullwidth letters composed", input: "ＡＢＣ", expected: "abc"},
		{name: "vietnamese diacritics kept", input: "Xin Chào", expected: "xin chào"},
		{name: "only punctuation", input: "?!.", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, NormalizeTerm(tc.input), "NormalizeTerm(%q)", tc.input)
		})
	}
}

func TestNormalizeTermIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Resilient!!!", "  Give  UP ", "don’t", "Ｃａｆé", "a - b", "x́y"}
	for _, in := range inputs {
		once := NormalizeTerm(in)
		twice := NormalizeTerm(once)
		assert.Equal(t, once, twice, "NormalizeTerm not idempotent for %q", in)
	}
}

func TestUnionMeanings(t *testing.T) {
	t.Parallel()

	existing := []string{"able to recover", "Tough"}
	incoming := []string{"tough", "  flexible ", "ABLE TO  RECOVER", ""}

	got := UnionMeanings(existing, incoming)
	assert.Equal(t, []string{"able to recover", "Tough", "flexible"}, got)
}

func TestCleanTags(t *testing.T) {
	t.Parallel()

	got := CleanTags([]string{"IELTS", " ielts", "", "Band 7 "})
	assert.Equal(t, []string{"ielts", "band 7"}, got)
}

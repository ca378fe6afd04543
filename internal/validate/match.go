package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// containsKeyword matches text against keywords case-insensitively.
// Phrases containing a space match as substrings; single words must sit on
// word boundaries, so "use" does not match "user".
func containsKeyword(text string, keywords ...string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	offset := 0
	for {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)
		if boundaryBefore(text, start, word) && boundaryAfter(text, end, word) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

// boundaryBefore mirrors \b at the start of word: a transition between a
// word and a non-word character.
func boundaryBefore(text string, start int, word string) bool {
	first, _ := utf8.DecodeRuneInString(word)
	prevWord := false
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		prevWord = isWordRune(prev)
	}
	return prevWord != isWordRune(first)
}

func boundaryAfter(text string, end int, word string) bool {
	last, _ := utf8.DecodeLastRuneInString(word)
	nextWord := false
	if end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		nextWord = isWordRune(next)
	}
	return nextWord != isWordRune(last)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// containsSubstring is a plain lower-case substring test.
func containsSubstring(text string, needles ...string) bool {
	lower := strings.ToLower(text)
	for _, needle := range needles {
		if strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

var (
	timeReferenceKeywords = []string{
		"past week", "past month", "past 3 months", "past 6 months",
		"past year", "last 7 days", "last 30 days", "last 12 months",
		"per week", "per month", "in the past",
		"last", "recently", "within the",
	}
	usageKeywords = []string{
		"purchase", "purchased", "purchasing",
		"buy", "bought", "buying",
		"use", "used", "using",
		"tried", "trying",
	}
)

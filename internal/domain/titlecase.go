package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Word characters are ASCII letters and digits, Latin-1 letters (À-ÿ), and the
// marks . _ ' ʼ ’ so that abbreviations and elisions stay inside one token.
var (
	acronymPattern    = regexp.MustCompile(`^(?:[A-Za-zÀ-ÿ]\.){2,}$`)
	allLettersPattern = regexp.MustCompile(`^[A-Za-zÀ-ÿ'’ʼ]+$`)
)

// smallWords stay lowercase unless they are the first or last word
var smallWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "but": {}, "by": {}, "even": {},
	"for": {}, "from": {}, "if": {}, "in": {}, "into": {}, "'n": {}, "n'": {}, "'n'": {},
	"ʼn": {}, "nʼ": {}, "ʼnʼ": {}, "’n": {}, "n’": {}, "’n’": {}, "nor": {}, "now": {},
	"of": {}, "off": {}, "on": {}, "or": {}, "out": {}, "so": {}, "than": {}, "that": {},
	"the": {}, "to": {}, "top": {}, "up": {}, "upon": {}, "w": {}, "when": {}, "with": {},
	"yet": {},
}

func isTitleLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= 'À' && r <= 'ÿ')
}

func isTitleWordRune(r rune) bool {
	if isTitleLetter(r) || (r >= '0' && r <= '9') {
		return true
	}
	switch r {
	case '.', '_', '\'', 'ʼ', '’':
		return true
	}
	return false
}

// splitTitleTokens splits s into maximal runs of word and non-word runes.
// Concatenating the result yields s again.
func splitTitleTokens(s string) []string {
	var tokens []string
	start := 0
	prevWord := false
	for i, r := range s {
		word := isTitleWordRune(r)
		if i > 0 && word != prevWord {
			tokens = append(tokens, s[start:i])
			start = i
		}
		prevWord = word
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isWordToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !isTitleWordRune(r) {
			return false
		}
	}
	return true
}

// capitalizeFirstLetter uppercases the first letter in token and leaves the rest alone
func capitalizeFirstLetter(token string) string {
	for i, r := range token {
		if isTitleLetter(r) {
			return token[:i] + string(unicode.ToUpper(r)) + token[i+len(string(r)):]
		}
	}
	return token
}

// TitleCase converts a food description to display title case. The first and
// last words are always capitalized, small words in between are lowercased,
// dotted acronyms like "u.s.a." are uppercased, and separators are kept as-is.
func TitleCase(s string) string {
	tokens := splitTitleTokens(s)

	first, last := -1, len(tokens)
	for i, token := range tokens {
		if isWordToken(token) {
			first = i
			break
		}
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		if isWordToken(tokens[i]) {
			last = i
			break
		}
	}

	// Casers carry state, so each call gets its own.
	lower := cases.Lower(language.Und)
	upper := cases.Upper(language.Und)

	var b strings.Builder
	b.Grow(len(s))
	for i, token := range tokens {
		switch {
		case acronymPattern.MatchString(token):
			token = upper.String(token)
		case i == first || i == last:
			token = capitalizeFirstLetter(token)
		case isSmallWord(lower.String(token)):
			token = lower.String(token)
		case allLettersPattern.MatchString(token):
			token = capitalizeFirstLetter(token)
		}
		b.WriteString(token)
	}
	return b.String()
}

func isSmallWord(lowered string) bool {
	_, ok := smallWords[lowered]
	return ok
}

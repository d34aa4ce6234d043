package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const maxQueryLength = 100

var (
	// characters the FDC proxy rejects with a 400
	specialCharsPattern = regexp.MustCompile(`[#%+@!^*()=\[\]{}<>|\\~` + "`" + `"]`)
	multiSpacePattern   = regexp.MustCompile(`\s+`)
	keywordTrimChars    = ",.;:!?\"'()"
)

// QueryPreprocessor cleans free-text food queries before they reach the FDC
// search endpoint or the local keyword search.
type QueryPreprocessor struct {
	log   *zap.Logger
	debug bool
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(log *zap.Logger, debug bool) *QueryPreprocessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryPreprocessor{log: log.Named("query"), debug: debug}
}

// PrepareFDCQuery strips characters the FDC cannot take, collapses
// whitespace and caps the length at a word boundary. The cap never splits a
// multi-byte character.
func (p *QueryPreprocessor) PrepareFDCQuery(query string) string {
	original := query

	cleaned := strings.ReplaceAll(query, "&", " and ")
	cleaned = specialCharsPattern.ReplaceAllString(cleaned, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) > maxQueryLength {
		cut := maxQueryLength
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > maxQueryLength/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	if p.debug {
		p.log.Info("prepared fdc query", zap.String("input", original), zap.String("output", cleaned))
	}
	return cleaned
}

// Keywords splits a local search query into lowercase keywords, dropping
// surrounding punctuation and repeats. Order is preserved.
func (p *QueryPreprocessor) Keywords(query string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, keywordTrimChars)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}

	if p.debug {
		p.log.Info("split keywords", zap.String("input", query), zap.Strings("keywords", keywords))
	}
	return keywords
}

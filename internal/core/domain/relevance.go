package domain

import (
	"regexp"
	"strings"
)

// aiToken matches "ai" as a standalone word. A bare substring check would
// admit "air" or "said"; the word boundary keeps the gate strict.
var aiToken = regexp.MustCompile(`(?i)\bai\b`)

// IsRelevant reports whether a record's text explicitly mentions AI.
// It concatenates title, summary and all abstracts (null-safe) and accepts
// the record if the text contains the phrase "artificial intelligence"
// (case-insensitive) or the standalone token "ai".
//
// The filter gates first-time admission only. Records already in the store
// are always updated regardless of relevance, so status and history changes
// keep flowing for previously-admitted borderline bills.
func IsRelevant(title, summary string, abstracts []string) bool {
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte(' ')
	b.WriteString(summary)
	for _, a := range abstracts {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	text := b.String()

	if strings.Contains(strings.ToLower(text), "artificial intelligence") {
		return true
	}
	return aiToken.MatchString(text)
}

// backfillPattern is the broader filter used by the historical backfill,
// which also admits bills about algorithmic and automated decision systems.
var backfillPattern = regexp.MustCompile(`(?i)artificial intelligence|generative ai|automated decision|algorithm`)

// IsBackfillRelevant reports whether any of the given texts passes the
// broader historical backfill filter.
func IsBackfillRelevant(texts ...string) bool {
	for _, t := range texts {
		if backfillPattern.MatchString(t) {
			return true
		}
	}
	return false
}

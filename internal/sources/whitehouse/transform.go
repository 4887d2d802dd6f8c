package whitehouse

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

// The content API emits local timestamps without a zone suffix.
const dateLayout = "2006-01-02T15:04:05"

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	spacePattern  = regexp.MustCompile(`\s+`)
	numberPattern = regexp.MustCompile(`(?i)executive order\s+(?:no\.?\s*)?(\d{4,5})`)
)

// stripHTML flattens rendered markup into plain text.
func stripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// orderNumber extracts the published order number from title or body
// text, or returns "".
func orderNumber(texts ...string) string {
	for _, t := range texts {
		if m := numberPattern.FindStringSubmatch(t); m != nil {
			return m[1]
		}
	}
	return ""
}

// orderID builds the stored identifier: the order number when published,
// otherwise the page slug.
func orderID(number, slug string) string {
	if number != "" {
		return "eo-federal-" + number
	}
	return "eo-federal-" + slug
}

// topicKeywords maps derived topic tags to their trigger phrases.
var topicKeywords = map[string][]string{
	"artificial-intelligence": {"artificial intelligence", " ai "},
	"privacy":                 {"privacy", "personal data"},
	"cybersecurity":           {"cybersecurity", "cyber security"},
	"workforce":               {"workforce", "employment"},
	"national-security":       {"national security", "defense"},
}

// deriveTopics tags an order from its combined text.
func deriveTopics(text string) []string {
	lower := " " + strings.ToLower(text) + " "
	var topics []string
	for topic, phrases := range topicKeywords {
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				topics = append(topics, topic)
				break
			}
		}
	}
	// Map iteration order varies; sort so stored tags are stable.
	sort.Strings(topics)
	return topics
}

// transformAction maps one listed action to the stored record.
func transformAction(act action) *domain.ExecutiveOrder {
	title := stripHTML(act.Title.Rendered)
	summary := stripHTML(act.Excerpt.Rendered)
	fullText := stripHTML(act.Content.Rendered)
	number := orderNumber(title, fullText)

	record := &domain.ExecutiveOrder{
		ID:           orderID(number, act.Slug),
		OrderNumber:  number,
		Title:        title,
		Jurisdiction: "federal",
		Summary:      summary,
		FullText:     fullText,
		Topics:       deriveTopics(title + " " + summary + " " + fullText),
		SourceURL:    act.Link,
	}
	if record.Summary != "" {
		record.SummarySource = domain.SummaryFromUpstream
	}
	if signed, err := time.Parse(dateLayout, act.Date); err == nil {
		record.DateSigned = &signed
	}
	return record
}

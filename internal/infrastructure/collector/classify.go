package collector

import (
	"regexp"
	"strings"

	"ContentMachine/internal/domain"
)

// Engagement thresholds for ClassifyPriority.
const (
	criticalEngagement = 1000
	highEngagement     = 250
	mediumEngagement   = 50
)

const maxKeywords = 8

var (
	transactionalTerms = []string{"buy", "pricing", "price", "purchase", "hire", "subscription", "license", "discount"}
	commercialTerms    = []string{" vs ", "versus", "best ", "alternative", "compare", "comparison", "review", "benchmark"}
	navigationalTerms  = []string{"docs", "documentation", "homepage", "official", "download", "login", "changelog", "release notes"}
)

var wordPattern = regexp.MustCompile(`[a-z0-9][a-z0-9+#]*(?:[.\-][a-z0-9+#]+)*`)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "you": {}, "your": {}, "are": {}, "how": {},
	"what": {}, "why": {}, "when": {}, "this": {}, "that": {}, "from": {}, "into": {}, "not": {},
	"can": {}, "use": {}, "using": {}, "does": {}, "have": {}, "has": {}, "was": {}, "but": {},
	"all": {}, "any": {}, "our": {}, "out": {}, "new": {}, "get": {}, "its": {}, "about": {},
	"show": {}, "ask": {}, "than": {}, "there": {}, "their": {}, "will": {}, "just": {},
	"to": {}, "in": {}, "of": {}, "on": {}, "is": {}, "it": {}, "an": {}, "at": {}, "by": {},
	"or": {}, "be": {}, "do": {}, "if": {}, "as": {}, "we": {}, "my": {}, "me": {}, "so": {},
}

// ClassifyIntent guesses the search intent behind text from its wording.
func ClassifyIntent(text string) domain.IntentClass {
	t := " " + strings.ToLower(text) + " "
	switch {
	case containsAny(t, transactionalTerms):
		return domain.IntentTransactional
	case containsAny(t, commercialTerms):
		return domain.IntentCommercial
	case containsAny(t, navigationalTerms):
		return domain.IntentNavigational
	default:
		return domain.IntentInformational
	}
}

// ClassifyPriority maps an engagement count (votes, stars, comments) to a
// priority bucket.
func ClassifyPriority(engagement int) domain.Priority {
	switch {
	case engagement >= criticalEngagement:
		return domain.PriorityCritical
	case engagement >= highEngagement:
		return domain.PriorityHigh
	case engagement >= mediumEngagement:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// Keywords extracts up to eight distinct lowercase terms from text, skipping
// stop words and terms shorter than two characters.
func Keywords(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// matchesFocus reports whether text mentions any keyword of focus. An empty
// focus matches everything.
func matchesFocus(text, focus string) bool {
	terms := Keywords(focus)
	if len(terms) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

package content

import (
	"regexp"
	"strings"

	"ContentMachine/internal/domain"
)

// The functions in this file are best-effort text heuristics. They look at
// surface patterns only and say nothing about whether the content is correct.

var (
	firstPersonPattern  = regexp.MustCompile(`(?i)\b(?:i|we)\s+(?:built|implemented|tested|deployed|measured|benchmarked|migrated|ran|shipped|learned|found|used)\b|\bin (?:my|our) experience\b`)
	numberedStepPattern = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+\S`)
	limitationPattern   = regexp.MustCompile(`(?i)\b(?:limitations?|trade-?offs?|caveats?|drawbacks?|downsides?|pitfalls?)\b`)
	yearPattern         = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// CountCodeBlocks counts fenced code blocks. An unclosed trailing fence is
// not counted.
func CountCodeBlocks(body string) int {
	fences := 0
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fences++
		}
	}
	return fences / 2
}

// HasFirstPersonImplementation looks for phrases like "we deployed" or
// "in my experience". Quoted or hypothetical usage also matches.
func HasFirstPersonImplementation(body string) bool {
	return firstPersonPattern.MatchString(body)
}

// HasImplementationSteps reports three or more numbered list items.
func HasImplementationSteps(body string) bool {
	return len(numberedStepPattern.FindAllStringIndex(body, 3)) >= 3
}

// DiscussesLimitations looks for vocabulary such as "trade-off" or "caveat".
func DiscussesLimitations(body string) bool {
	return limitationPattern.MatchString(body)
}

// MentionsDates reports any four-digit year between 1900 and 2099.
func MentionsDates(body string) bool {
	return yearPattern.MatchString(body)
}

// ExpertiseScore is a 0-10 estimate built from code blocks, heading count and
// length. It rewards structure, not accuracy.
func ExpertiseScore(body string) int {
	score := 2 * CountCodeBlocks(body)
	count := 0
	for range headings(strings.Split(body, "\n")) {
		count++
	}
	if count >= 3 {
		score += 2
	}
	words := len(strings.Fields(body))
	switch {
	case words >= 2000:
		score += 4
	case words >= 1000:
		score += 2
	}
	if score > 10 {
		score = 10
	}
	return score
}

// DeriveTrustSignals applies every heuristic above to body.
func DeriveTrustSignals(body string) domain.TrustSignals {
	blocks := CountCodeBlocks(body)
	citations := len(ExtractCitations(body))
	return domain.TrustSignals{
		Experience: domain.ExperienceSignals{
			FirstPersonLanguage: HasFirstPersonImplementation(body),
			ImplementationSteps: HasImplementationSteps(body),
		},
		Expertise: domain.ExpertiseSignals{
			CodeExamples:   blocks > 0,
			CodeBlockCount: blocks,
			Score:          ExpertiseScore(body),
		},
		Authoritativeness: domain.AuthoritativenessSignals{
			HasCitations:  citations > 0,
			CitationCount: citations,
		},
		Trustworthiness: domain.TrustworthinessSignals{
			DiscussesLimitations: DiscussesLimitations(body),
			MentionsDates:        MentionsDates(body),
		},
	}
}

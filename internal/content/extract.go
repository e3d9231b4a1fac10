package content

import (
	"iter"
	"regexp"
	"strings"

	"ContentMachine/internal/domain"
)

// urlPattern is the fixed citation rule: an http(s) URL up to whitespace,
// quotes, angle brackets, parentheses or square brackets.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"'()\[\]{}]+`)

var headingPattern = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*\s*$`)

// ExtractCitations returns the distinct URLs in body in order of first
// appearance. Trailing sentence punctuation is not part of a URL.
func ExtractCitations(body string) []string {
	matches := urlPattern.FindAllString(body, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:!?*_`")
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// ExtractFAQ pairs every markdown heading phrased as a question with the
// first paragraph that follows it. Headings without an answer paragraph
// before the next heading are skipped; repeated questions keep the first.
func ExtractFAQ(body string) []domain.FAQEntry {
	lines := strings.Split(body, "\n")
	seen := map[string]struct{}{}
	var out []domain.FAQEntry

	for i, heading := range headings(lines) {
		question := strings.TrimSpace(heading)
		if !strings.HasSuffix(question, "?") {
			continue
		}
		answer := paragraphAfter(lines, i+1)
		if answer == "" {
			continue
		}
		key := strings.ToLower(question)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, domain.FAQEntry{Question: question, Answer: answer})
	}
	return out
}

// headings yields the line index and text of every markdown heading outside
// fenced code.
func headings(lines []string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		inFence := false
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "```") {
				inFence = !inFence
				continue
			}
			if inFence {
				continue
			}
			m := headingPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if !yield(i, m[1]) {
				return
			}
		}
	}
}

// paragraphAfter joins the first block of prose lines starting at from,
// skipping blank lines and fenced code. It stops at the next heading.
func paragraphAfter(lines []string, from int) string {
	var parts []string
	inFence := false
	for i := from; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "```") {
			if len(parts) > 0 {
				break
			}
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if headingPattern.MatchString(line) {
			break
		}
		if line == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

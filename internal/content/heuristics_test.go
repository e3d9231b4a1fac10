package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// These tests pin the surface patterns each heuristic reacts to. A positive
// result is a signal only; none of them verify the content itself.

func TestCountCodeBlocks(t *testing.T) {
	assert.Equal(t, 0, CountCodeBlocks("no code"))
	assert.Equal(t, 2, CountCodeBlocks("```go\na\n```\ntext\n```\nb\n```"))
	assert.Equal(t, 1, CountCodeBlocks("```\na\n```\n```\nunclosed"))
}

func TestHasFirstPersonImplementation(t *testing.T) {
	assert.True(t, HasFirstPersonImplementation("Last year we deployed this to production."))
	assert.True(t, HasFirstPersonImplementation("In my experience the cache helps."))
	assert.False(t, HasFirstPersonImplementation("The cache can be deployed anywhere."))
}

func TestHasImplementationSteps(t *testing.T) {
	assert.True(t, HasImplementationSteps("1. install\n2. configure\n3) run\n"))
	assert.False(t, HasImplementationSteps("1. install\n2. run\n"))
}

func TestDiscussesLimitationsAndDates(t *testing.T) {
	assert.True(t, DiscussesLimitations("One trade-off is memory."))
	assert.False(t, DiscussesLimitations("It is perfect."))
	assert.True(t, MentionsDates("Released in 2024."))
	assert.False(t, MentionsDates("Port 8080 is open."))
}

func TestExpertiseScore_IsBounded(t *testing.T) {
	body := strings.Repeat("```\nx\n```\n", 10) + "# a\n# b\n# c\n" + strings.Repeat("word ", 2500)
	assert.Equal(t, 10, ExpertiseScore(body))
	assert.Equal(t, 0, ExpertiseScore("short"))
}

func TestExpertiseScore_SkipsFencedHeadings(t *testing.T) {
	fenced := "```sh\n# one\n# two\n# three\n```\n"
	assert.Equal(t, 2, ExpertiseScore(fenced))
	assert.Equal(t, 4, ExpertiseScore(fenced+"# a\n# b\n# c\n"))
}

func TestDeriveTrustSignals(t *testing.T) {
	body := "We built it in 2023.\n\n```go\nfmt.Println()\n```\n\nSee https://go.dev. One caveat: memory."
	ts := DeriveTrustSignals(body)

	assert.True(t, ts.Experience.FirstPersonLanguage)
	assert.False(t, ts.Experience.ImplementationSteps)
	assert.True(t, ts.Expertise.CodeExamples)
	assert.Equal(t, 1, ts.Expertise.CodeBlockCount)
	assert.True(t, ts.Authoritativeness.HasCitations)
	assert.Equal(t, 1, ts.Authoritativeness.CitationCount)
	assert.True(t, ts.Trustworthiness.DiscussesLimitations)
	assert.True(t, ts.Trustworthiness.MentionsDates)
}

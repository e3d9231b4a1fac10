package usecase

import (
	"fmt"
	"strings"

	"ContentMachine/internal/domain"
)

const synthesisSchemaHint = `{"research":[{"keywords":["string"],"intent":"informational|navigational|commercial|transactional","clusterLabel":"string","entities":["string"],"sourceIds":["string"]}]}`

const planningSchemaHint = `{"clusters":[{"pillarTopic":"string","pillarKeyword":"string","subtopics":[{"topic":"string","keywords":["string"],"intent":"informational|navigational|commercial|transactional","contentType":"string","priority":"low|medium|high|critical"}],"authorityScore":0,"competitionLevel":"low|medium|high","businessAlignment":0,"researchIds":["string"]}]}`

type promptRecord struct {
	ID       string             `json:"id"`
	Source   string             `json:"source"`
	Text     string             `json:"text"`
	Tags     []string           `json:"tags"`
	Intent   domain.IntentClass `json:"intent"`
	Priority domain.Priority    `json:"priority"`
}

func synthesisPrompt(records []domain.SignalRecord) string {
	items := make([]promptRecord, 0, len(records))
	for _, r := range records {
		items = append(items, promptRecord{
			ID:       r.ID,
			Source:   r.Source,
			Text:     r.RawText,
			Tags:     r.Tags,
			Intent:   r.IntentClass,
			Priority: r.Priority,
		})
	}

	var b strings.Builder
	b.WriteString("You are a research analyst merging developer signals into research data.\n")
	b.WriteString("Group records that describe the same need. For every group return keywords, ")
	b.WriteString("the dominant search intent, a short cluster label, named entities and the ids of the records it came from.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- keywords MUST be chosen from the tags of the referenced records.\n")
	b.WriteString("- sourceIds MUST reference ids from the input; never invent records.\n")
	b.WriteString("- Respond with JSON only, exactly matching this shape:\n")
	b.WriteString(synthesisSchemaHint)
	b.WriteString("\n\nRecords:\n")
	b.WriteString(mustJSON(items))
	return b.String()
}

func planningPrompt(data []domain.ResearchDatum) string {
	var b strings.Builder
	b.WriteString("You are a content strategist planning topic clusters.\n")
	b.WriteString("Group the research data into clusters, each with a pillar topic, a pillar keyword and supporting subtopics.\n")
	b.WriteString("Score every cluster: authorityScore 0-10, competitionLevel low|medium|high, businessAlignment 0-10.\n")
	b.WriteString("researchIds MUST reference ids from the input.\n")
	b.WriteString("Respond with JSON only, exactly matching this shape:\n")
	b.WriteString(planningSchemaHint)
	b.WriteString("\n\nResearch data:\n")
	b.WriteString(mustJSON(data))
	return b.String()
}

func generationPrompt(cluster domain.TopicCluster, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a long-form technical article in Markdown titled %q.\n", title)
	fmt.Fprintf(&b, "Primary keyword: %s.\n", cluster.PillarKeyword)
	if len(cluster.Subtopics) > 0 {
		b.WriteString("Cover these subtopics, each under its own heading:\n")
		for _, st := range cluster.Subtopics {
			fmt.Fprintf(&b, "- %s (%s, %s intent)", st.Topic, st.ContentType, st.Intent)
			if len(st.Keywords) > 0 {
				fmt.Fprintf(&b, " keywords: %s", strings.Join(st.Keywords, ", "))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("Include working code examples in fenced blocks, cite primary sources with full URLs, ")
	b.WriteString("discuss trade-offs, and end with a FAQ section whose headings are phrased as questions.\n")
	b.WriteString("Return only the article body.")
	return b.String()
}

package content

import (
	"encoding/json"
	"strings"

	"ContentMachine/internal/domain"
)

const (
	schemaContext   = "https://schema.org"
	typeTechArticle = "TechArticle"
	typeArticle     = "Article"
)

// MetadataInput is everything BuildStructuredData reads.
type MetadataInput struct {
	Title   string
	Author  string
	SiteURL string
	Slug    string
	Body    string
	Cluster domain.TopicCluster
	Signals domain.TrustSignals
}

type jsonLDPerson struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type jsonLDAnswer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type jsonLDQuestion struct {
	Type           string       `json:"@type"`
	Name           string       `json:"name"`
	AcceptedAnswer jsonLDAnswer `json:"acceptedAnswer"`
}

type jsonLDNode struct {
	Type       string           `json:"@type"`
	Headline   string           `json:"headline,omitempty"`
	URL        string           `json:"url,omitempty"`
	Author     *jsonLDPerson    `json:"author,omitempty"`
	Keywords   string           `json:"keywords,omitempty"`
	Citation   []string         `json:"citation,omitempty"`
	MainEntity []jsonLDQuestion `json:"mainEntity,omitempty"`
}

type jsonLDDocument struct {
	Context string       `json:"@context"`
	Graph   []jsonLDNode `json:"@graph"`
}

// BuildStructuredData derives the full metadata set from the input. The
// result depends only on the input, so repeated calls never accumulate.
func BuildStructuredData(in MetadataInput) (domain.StructuredData, error) {
	sd := domain.StructuredData{
		Type:      typeArticle,
		Headline:  in.Title,
		Author:    in.Author,
		Keywords:  clusterKeywords(in.Cluster),
		Citations: ExtractCitations(in.Body),
		FAQ:       ExtractFAQ(in.Body),
	}
	if in.Signals.Expertise.CodeExamples {
		sd.Type = typeTechArticle
	}

	article := jsonLDNode{
		Type:     sd.Type,
		Headline: sd.Headline,
		Keywords: strings.Join(sd.Keywords, ", "),
		Citation: sd.Citations,
	}
	if in.SiteURL != "" && in.Slug != "" {
		article.URL = strings.TrimRight(in.SiteURL, "/") + "/" + in.Slug
	}
	if sd.Author != "" {
		article.Author = &jsonLDPerson{Type: "Person", Name: sd.Author}
	}

	doc := jsonLDDocument{Context: schemaContext, Graph: []jsonLDNode{article}}
	if len(sd.FAQ) > 0 {
		faq := jsonLDNode{Type: "FAQPage"}
		for _, entry := range sd.FAQ {
			faq.MainEntity = append(faq.MainEntity, jsonLDQuestion{
				Type:           "Question",
				Name:           entry.Question,
				AcceptedAnswer: jsonLDAnswer{Type: "Answer", Text: entry.Answer},
			})
		}
		doc.Graph = append(doc.Graph, faq)
	}

	markup, err := json.Marshal(doc)
	if err != nil {
		return domain.StructuredData{}, err
	}
	sd.Markup = string(markup)
	return sd, nil
}

// clusterKeywords lists the pillar keyword then subtopic keywords, without
// case-insensitive duplicates.
func clusterKeywords(c domain.TopicCluster) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(k string) {
		k = strings.TrimSpace(k)
		if k == "" {
			return
		}
		key := strings.ToLower(k)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, k)
	}
	add(c.PillarKeyword)
	for _, st := range c.Subtopics {
		for _, k := range st.Keywords {
			add(k)
		}
	}
	return out
}

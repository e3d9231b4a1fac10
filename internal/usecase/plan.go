package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/ports"
)

type planningResponse struct {
	Clusters []clusterItem `json:"clusters"`
}

type subtopicItem struct {
	Topic       string   `json:"topic"`
	Keywords    []string `json:"keywords"`
	Intent      string   `json:"intent"`
	ContentType string   `json:"contentType"`
	Priority    string   `json:"priority"`
}

// Score fields are pointers so a missing score is distinguishable from zero.
type clusterItem struct {
	PillarTopic       string         `json:"pillarTopic"`
	PillarKeyword     string         `json:"pillarKeyword"`
	Subtopics         []subtopicItem `json:"subtopics"`
	AuthorityScore    *float64       `json:"authorityScore"`
	CompetitionLevel  string         `json:"competitionLevel"`
	BusinessAlignment *float64       `json:"businessAlignment"`
	ResearchIDs       []string       `json:"researchIds"`
}

// Planner groups research data into scored topic clusters.
type Planner struct {
	gen    ports.TextGenerator
	logger *slog.Logger
}

// NewPlanner wires the generative capability.
func NewPlanner(gen ports.TextGenerator, logger *slog.Logger) *Planner {
	return &Planner{gen: gen, logger: logger}
}

// Plan asks the model for clusters and rejects any cluster with missing or
// out-of-range scores, an unknown competition level or no known research ids.
// Clusters are ordered by authority then business alignment, both descending;
// ties keep the order in which their earliest research datum appears in data.
func (p *Planner) Plan(ctx context.Context, data []domain.ResearchDatum) ([]domain.TopicCluster, error) {
	if len(data) == 0 {
		return nil, nil
	}

	raw, err := p.gen.Complete(ctx, planningPrompt(data), planningSchemaHint)
	if err != nil {
		return nil, fmt.Errorf("plan clusters: %w", err)
	}

	resp, err := decodeStrict[planningResponse](domain.StagePlanning, raw)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, len(data))
	for i, d := range data {
		position[d.ID] = i
	}

	type ranked struct {
		cluster domain.TopicCluster
		first   int
	}
	var candidates []ranked
	for i, item := range resp.Clusters {
		cluster, first, err := item.toCluster(position)
		if err != nil {
			p.warn("rejecting cluster", "index", i, "pillarTopic", item.PillarTopic, "reason", err)
			continue
		}
		candidates = append(candidates, ranked{cluster: cluster, first: first})
	}

	if len(candidates) == 0 {
		return nil, schemaErr(domain.StagePlanning, "no valid topic cluster in response", nil)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.cluster.AuthorityScore != b.cluster.AuthorityScore {
			return a.cluster.AuthorityScore > b.cluster.AuthorityScore
		}
		if a.cluster.BusinessAlignment != b.cluster.BusinessAlignment {
			return a.cluster.BusinessAlignment > b.cluster.BusinessAlignment
		}
		return a.first < b.first
	})

	clusters := make([]domain.TopicCluster, len(candidates))
	for i, c := range candidates {
		clusters[i] = c.cluster
	}
	return clusters, nil
}

// toCluster validates the item and returns the index of its earliest
// referenced research datum.
func (item clusterItem) toCluster(position map[string]int) (domain.TopicCluster, int, error) {
	pillar := strings.TrimSpace(item.PillarTopic)
	if pillar == "" {
		return domain.TopicCluster{}, 0, fmt.Errorf("pillarTopic is required")
	}
	if item.AuthorityScore == nil || item.BusinessAlignment == nil {
		return domain.TopicCluster{}, 0, fmt.Errorf("scores are required")
	}
	if !inScoreRange(*item.AuthorityScore) {
		return domain.TopicCluster{}, 0, fmt.Errorf("authorityScore %v out of range", *item.AuthorityScore)
	}
	if !inScoreRange(*item.BusinessAlignment) {
		return domain.TopicCluster{}, 0, fmt.Errorf("businessAlignment %v out of range", *item.BusinessAlignment)
	}
	level := domain.CompetitionLevel(strings.ToLower(strings.TrimSpace(item.CompetitionLevel)))
	if !level.Valid() {
		return domain.TopicCluster{}, 0, fmt.Errorf("unknown competitionLevel %q", item.CompetitionLevel)
	}

	first := -1
	var ids []string
	seen := map[string]struct{}{}
	for _, id := range item.ResearchIDs {
		pos, ok := position[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if first < 0 || pos < first {
			first = pos
		}
	}
	if len(ids) == 0 {
		return domain.TopicCluster{}, 0, fmt.Errorf("no known researchIds")
	}

	subtopics := make([]domain.Subtopic, 0, len(item.Subtopics))
	for _, st := range item.Subtopics {
		sub, err := st.toSubtopic()
		if err != nil {
			return domain.TopicCluster{}, 0, err
		}
		subtopics = append(subtopics, sub)
	}

	keyword := strings.TrimSpace(item.PillarKeyword)
	if keyword == "" {
		keyword = strings.ToLower(pillar)
	}

	return domain.TopicCluster{
		PillarTopic:       pillar,
		PillarKeyword:     keyword,
		Subtopics:         subtopics,
		AuthorityScore:    *item.AuthorityScore,
		CompetitionLevel:  level,
		BusinessAlignment: *item.BusinessAlignment,
		ResearchIDs:       ids,
	}, first, nil
}

func (st subtopicItem) toSubtopic() (domain.Subtopic, error) {
	topic := strings.TrimSpace(st.Topic)
	if topic == "" {
		return domain.Subtopic{}, fmt.Errorf("subtopic topic is required")
	}

	intent := domain.IntentClass(st.Intent)
	if st.Intent == "" {
		intent = domain.IntentInformational
	}
	if !intent.Valid() {
		return domain.Subtopic{}, fmt.Errorf("subtopic %q: unknown intent %q", topic, st.Intent)
	}

	priority := domain.Priority(st.Priority)
	if st.Priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return domain.Subtopic{}, fmt.Errorf("subtopic %q: unknown priority %q", topic, st.Priority)
	}

	contentType := strings.TrimSpace(st.ContentType)
	if contentType == "" {
		contentType = "guide"
	}

	return domain.Subtopic{
		Topic:       topic,
		Keywords:    normalizeTerms(st.Keywords),
		Intent:      intent,
		ContentType: contentType,
		Priority:    priority,
	}, nil
}

func inScoreRange(v float64) bool {
	return v >= domain.MinScore && v <= domain.MaxScore
}

func (p *Planner) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

package usecase

import (
	"fmt"

	"ContentMachine/internal/content"
	"ContentMachine/internal/domain"
)

// Optimizer attaches structured metadata to generated artifacts.
type Optimizer struct {
	author  string
	siteURL string
}

// NewOptimizer sets the author and site URL written into the markup.
func NewOptimizer(author, siteURL string) *Optimizer {
	return &Optimizer{author: author, siteURL: siteURL}
}

// Optimize rebuilds StructuredData from the body, cluster and trust signals.
// Body and TrustSignals are returned unchanged, and since nothing is appended
// to the previous metadata, running it twice yields the same result.
func (o *Optimizer) Optimize(a domain.ContentArtifact) (domain.ContentArtifact, error) {
	sd, err := content.BuildStructuredData(content.MetadataInput{
		Title:   a.Title,
		Author:  o.author,
		SiteURL: o.siteURL,
		Slug:    a.Slug,
		Body:    a.Body,
		Cluster: a.SourceCluster,
		Signals: a.TrustSignals,
	})
	if err != nil {
		return a, fmt.Errorf("optimize %s: %w", a.Slug, err)
	}
	a.StructuredData = sd
	return a, nil
}

package core

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"

	"github.com/google/uuid"

	"github.com/agenthands/linkaudit/internal/config"
	"github.com/agenthands/linkaudit/internal/core/classify"
	"github.com/agenthands/linkaudit/internal/core/cluster"
	"github.com/agenthands/linkaudit/internal/core/common"
	"github.com/agenthands/linkaudit/internal/core/content"
	"github.com/agenthands/linkaudit/internal/core/graph"
	"github.com/agenthands/linkaudit/internal/core/model"
	"github.com/agenthands/linkaudit/internal/core/normalize"
	"github.com/agenthands/linkaudit/internal/core/recommend"
	"github.com/agenthands/linkaudit/internal/core/score"
	"github.com/agenthands/linkaudit/internal/core/zones"
	"github.com/agenthands/linkaudit/internal/driver"
	"github.com/agenthands/linkaudit/internal/llm"
)

// Auditor runs the full internal-linking audit pipeline. Driver, LLM
// and Embedder are all optional: without a driver results are not
// persisted, without an LLM zone detection is skipped, and without an
// embedder semantic clustering degrades to a skip reason.
type Auditor struct {
	Config   *config.Config
	Driver   driver.GraphDriver
	LLM      llm.LLMClient
	Embedder llm.EmbedderClient
}

func NewAuditor(cfg *config.Config, graphDriver driver.GraphDriver, llmClient llm.LLMClient, embedderClient llm.EmbedderClient) *Auditor {
	return &Auditor{
		Config:   cfg,
		Driver:   graphDriver,
		LLM:      llmClient,
		Embedder: embedderClient,
	}
}

func (a *Auditor) BuildIndices(ctx context.Context) error {
	if a.Driver == nil {
		return nil
	}
	return a.Driver.BuildIndices(ctx)
}

// Analyze runs a complete audit over a link export and its optional
// content export. Per-row problems are reported in the result; the only
// fatal input error is exceeding the row cap.
func (a *Auditor) Analyze(ctx context.Context, raw []model.RawEdge, metas []model.PageMetadata) (*model.AnalysisResult, error) {
	cfg := a.Config

	norm, err := normalize.Edges(raw, normalize.Options{
		MaxRows:     cfg.Audit.MaxRows,
		ScopePrefix: cfg.Audit.ScopePrefix,
	})
	if err != nil {
		return nil, err
	}

	rules, err := classify.New(cfg.Classifier, a.detectContentZones(ctx, raw), cfg.Concurrency.Classify)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}
	rules.Apply(norm.Edges)

	x := graph.NewIndex()
	graph.CountDegrees(x, norm.Edges)

	integrator := content.New(cfg.Content)
	integrator.Merge(x, metas, &norm.Stats)
	pages := x.Pages()
	integrator.Apply(pages)

	scorer := score.New(cfg.Scoring)
	scorer.ScoreEdges(norm.Edges, score.NewAnchorTally())
	siteScore := scorer.ScorePages(pages, norm.Edges)

	root := a.siteRoot(pages)
	orphans := graph.Orphans(pages, root)
	graph.AssignTiers(pages)

	result := &model.AnalysisResult{
		RunID:     uuid.New().String(),
		SiteRoot:  root,
		Edges:     norm.Edges,
		Pages:     pages,
		SiteScore: siteScore,
		Stats:     norm.Stats,
	}
	result.Stats.OrphanCount = len(orphans)
	result.Stats.AvgQualityScore = siteScore
	result.EditorialRatio, result.AvgEditorialLinks = siteRatios(norm.Edges, pages)

	a.fillEmbeddings(ctx, pages)

	var missingLinks []model.Recommendation
	engine := cluster.New(cfg.Semantic)
	if reason := engine.Gate(pages); reason != "" {
		result.ClusteringSkipped = reason
	} else {
		result.Clusters = engine.BuildClusters(pages)
		missingLinks = engine.MissingLinks(result.Clusters, pages, norm.Edges)
	}

	byURL := make(map[string]*model.PageNode, len(pages))
	for _, p := range pages {
		byURL[p.URL] = p
	}
	result.Recommendations = recommend.Aggregate(
		recommend.FromOrphans(orphans, byURL),
		recommend.FromThinContent(pages),
		recommend.FromRepetitiveAnchors(norm.Edges),
		recommend.FromCoherence(pages),
		recommend.FromSiteRatio(root, result.EditorialRatio),
		missingLinks,
	)

	if a.Driver != nil {
		if err := a.persist(ctx, result); err != nil {
			// Persistence is a convenience, not part of the audit contract.
			log.Printf("failed to persist run %s: %v", result.RunID, err)
		}
	}

	return result, nil
}

// detectContentZones asks the LLM for this site's content-zone
// selectors. Any failure falls back to the pattern tables alone.
func (a *Auditor) detectContentZones(ctx context.Context, raw []model.RawEdge) []string {
	if a.LLM == nil {
		return nil
	}

	detector := zones.NewDetector(a.LLM, a.Config.Audit.ZoneSamplePages)
	det, err := detector.Detect(ctx, raw)
	if err != nil {
		log.Printf("zone detection failed, using pattern tables only: %v", err)
		return nil
	}
	if det == nil {
		return nil
	}

	// Detected selectors are literal strings, not patterns.
	quoted := make([]string, 0, len(det.ContentZones))
	for _, z := range det.ContentZones {
		quoted = append(quoted, regexp.QuoteMeta(z))
	}
	return quoted
}

// fillEmbeddings embeds title and H1 for pages that arrived without a
// vector. Failures leave the page unembedded, which the clustering gate
// then reports.
func (a *Auditor) fillEmbeddings(ctx context.Context, pages []*model.PageNode) {
	if a.Embedder == nil || !a.Config.Semantic.Enabled {
		return
	}

	for _, p := range pages {
		if len(p.Embedding) > 0 || (p.Title == "" && p.H1 == "") {
			continue
		}
		vec, err := a.Embedder.Embed(ctx, p.Title+" "+p.H1)
		if err != nil {
			log.Printf("failed to embed %s: %v", p.URL, err)
			continue
		}
		p.Embedding = vec
	}
}

func (a *Auditor) siteRoot(pages []*model.PageNode) string {
	if a.Config.Audit.SiteRoot != "" {
		if normalized, err := common.NormalizeURL(a.Config.Audit.SiteRoot); err == nil {
			return normalized
		}
		return a.Config.Audit.SiteRoot
	}
	for _, p := range pages {
		if u, err := url.Parse(p.URL); err == nil && u.Host != "" {
			return u.Scheme + "://" + u.Host + "/"
		}
	}
	return ""
}

// siteRatios returns the editorial share of all internal links and the
// mean number of editorial links per page.
func siteRatios(edges []model.LinkEdge, pages []*model.PageNode) (float64, float64) {
	if len(edges) == 0 || len(pages) == 0 {
		return 0, 0
	}
	editorial := 0
	for _, e := range edges {
		if e.Category == model.CategoryEditorial {
			editorial++
		}
	}
	return float64(editorial) / float64(len(edges)), float64(editorial) / float64(len(pages))
}

func (a *Auditor) persist(ctx context.Context, result *model.AnalysisResult) error {
	for _, p := range result.Pages {
		params := map[string]interface{}{
			"run_id":               result.RunID,
			"url":                  p.URL,
			"title":                p.Title,
			"h1":                   p.H1,
			"word_count":           nilableInt(p.WordCount),
			"thin_content":         p.ThinContent,
			"coherence":            string(p.Coherence),
			"conversion_type":      p.ConversionType,
			"in_degree_editorial":  p.InDegreeEditorial,
			"out_degree_editorial": p.OutDegreeEditorial,
			"out_degree_internal":  p.OutDegreeInternal,
			"connectivity_tier":    p.ConnectivityTier,
			"editorial_ratio":      p.EditorialRatio,
			"quality_score":        p.QualityScore,
			"cluster_id":           nilableInt(p.ClusterID),
		}
		if _, err := a.Driver.ExecuteQuery(ctx, driver.SavePageNodeQuery, params); err != nil {
			return fmt.Errorf("failed to save page %s: %w", p.URL, err)
		}
	}

	for _, e := range result.Edges {
		params := map[string]interface{}{
			"run_id":       result.RunID,
			"source":       e.Source,
			"destination":  e.Destination,
			"anchor":       e.Anchor,
			"dom_path":     e.DOMPath,
			"category":     string(e.Category),
			"anchor_score": nilableInt(e.AnchorScore),
			"anchor_flags": e.AnchorFlags,
		}
		if _, err := a.Driver.ExecuteQuery(ctx, driver.SaveLinkEdgeQuery, params); err != nil {
			return fmt.Errorf("failed to save edge %s -> %s: %w", e.Source, e.Destination, err)
		}
	}

	for _, c := range result.Clusters {
		params := map[string]interface{}{
			"run_id":           result.RunID,
			"id":               c.ID,
			"pillar_candidate": c.PillarCandidate,
			"size":             len(c.Members),
			"members":          c.Members,
		}
		if _, err := a.Driver.ExecuteQuery(ctx, driver.SaveClusterQuery, params); err != nil {
			return fmt.Errorf("failed to save cluster %d: %w", c.ID, err)
		}
	}

	return nil
}

func nilableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"

	"github.com/agenthands/linkaudit/internal/config"
	"github.com/agenthands/linkaudit/internal/core/cluster"
	"github.com/agenthands/linkaudit/internal/core/model"
)

type mockLLM struct {
	Response string
	Err      error
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type mockEmbedder struct {
	Vectors map[string][]float32
	Err     error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if vec, ok := m.Vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0}, nil
}

type fakeDriver struct {
	queries []string
}

func (f *fakeDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	f.queries = append(f.queries, query)
	return neo4j.EagerResult{}, nil
}

func (f *fakeDriver) BuildIndices(ctx context.Context) error { return nil }
func (f *fakeDriver) Close(ctx context.Context) error        { return nil }

func vec(deg float64) []float32 {
	r := deg * math.Pi / 180
	return []float32{float32(math.Cos(r)), float32(math.Sin(r))}
}

func intp(v int) *int { return &v }

func siteEdges() []model.RawEdge {
	return []model.RawEdge{
		{Source: "https://shop.fr/", Destination: "https://shop.fr/guide", Anchor: "découvrez notre guide complet"},
		{Source: "https://shop.fr/", Destination: "https://shop.fr/produits", Anchor: "nos produits artisanaux"},
		{Source: "https://shop.fr/guide", Destination: "https://shop.fr/produits", Anchor: "produits faits main"},
		{Source: "https://shop.fr/", Destination: "https://shop.fr/contact", Anchor: "Contact", Origin: "footer"},
		// Exact duplicate of the first row.
		{Source: "https://shop.fr/", Destination: "https://shop.fr/guide", Anchor: "découvrez notre guide complet"},
		// External link.
		{Source: "https://shop.fr/", Destination: "https://other.com/x", Anchor: "partenaire"},
	}
}

func siteMetas() []model.PageMetadata {
	return []model.PageMetadata{
		{URL: "https://shop.fr/", Title: "Boutique artisanale", H1: "Boutique artisanale", WordCount: intp(600)},
		{URL: "https://shop.fr/guide", Title: "Guide des produits", H1: "Guide des produits", WordCount: intp(900)},
		{URL: "https://shop.fr/produits", Title: "Nos produits", H1: "Nos produits", WordCount: intp(700)},
		{URL: "https://shop.fr/contact", Title: "Contactez-nous", H1: "Contactez-nous", WordCount: intp(90)},
		// Known to the CMS but linked from nowhere.
		{URL: "https://shop.fr/ancienne-promo", Title: "Promo", WordCount: intp(500)},
	}
}

func TestAnalyze_FullPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.Semantic.Enabled = false
	a := NewAuditor(cfg, nil, nil, nil)

	res, err := a.Analyze(context.Background(), siteEdges(), siteMetas())
	assert.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "https://shop.fr/", res.SiteRoot)

	assert.Equal(t, 1, res.Stats.DuplicatesRemoved)
	assert.Equal(t, 1, res.Stats.ExternalLinks)
	assert.Len(t, res.Edges, 4)

	root := res.Page("https://shop.fr/")
	assert.Equal(t, 3, root.OutDegreeInternal)
	assert.Equal(t, 2, root.OutDegreeEditorial)

	// The footer link is mechanical, so /contact stays an orphan.
	contact := res.Page("https://shop.fr/contact")
	assert.Equal(t, 0, contact.InDegreeEditorial)
	assert.Equal(t, "contact", contact.ConversionType)
	assert.True(t, contact.ThinContent)

	assert.Equal(t, 2, res.Stats.OrphanCount)
	assert.Equal(t, cluster.SkipDisabled, res.ClusteringSkipped)
	assert.Greater(t, res.SiteScore, 0.0)
	assert.InDelta(t, 0.75, res.EditorialRatio, 1e-9) // 3 editorial of 4 internal
}

func TestAnalyze_OrphanConversionPageRanksFirst(t *testing.T) {
	cfg := config.Default()
	cfg.Semantic.Enabled = false
	a := NewAuditor(cfg, nil, nil, nil)

	res, err := a.Analyze(context.Background(), siteEdges(), siteMetas())
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Recommendations)

	// An orphaned thin conversion page produces the most urgent findings.
	first := res.Recommendations[0]
	assert.Equal(t, model.PriorityHigh, first.Priority)
	assert.Equal(t, "https://shop.fr/contact", first.TargetURL)

	var kinds []model.RecommendationKind
	for _, r := range res.Recommendations {
		if r.TargetURL == "https://shop.fr/contact" {
			kinds = append(kinds, r.Kind)
		}
	}
	assert.Contains(t, kinds, model.RecOrphan)
	assert.Contains(t, kinds, model.RecThinContent)
}

func TestAnalyze_ClusteringWithProvidedEmbeddings(t *testing.T) {
	cfg := config.Default()
	a := NewAuditor(cfg, nil, nil, nil)

	edges := []model.RawEdge{
		{Source: "https://e.com/", Destination: "https://e.com/the/vert", Anchor: "guide du thé vert"},
		{Source: "https://e.com/", Destination: "https://e.com/the/noir", Anchor: "guide du thé noir"},
		{Source: "https://e.com/", Destination: "https://e.com/the/blanc", Anchor: "guide du thé blanc"},
		{Source: "https://e.com/the/vert", Destination: "https://e.com/the/noir", Anchor: "notre guide du thé noir"},
	}
	metas := []model.PageMetadata{
		{URL: "https://e.com/", Embedding: vec(90)},
		{URL: "https://e.com/the/vert", Embedding: vec(0), WordCount: intp(900)},
		{URL: "https://e.com/the/noir", Embedding: vec(10), WordCount: intp(800)},
		{URL: "https://e.com/the/blanc", Embedding: vec(20), WordCount: intp(700)},
	}

	res, err := a.Analyze(context.Background(), edges, metas)
	assert.NoError(t, err)
	assert.Empty(t, res.ClusteringSkipped)
	assert.Len(t, res.Clusters, 1)
	assert.Equal(t, []string{"https://e.com/the/blanc", "https://e.com/the/noir", "https://e.com/the/vert"},
		res.Clusters[0].Members)

	// vert -> noir exists; the pairs touching blanc are proposed.
	var missing []model.Recommendation
	for _, r := range res.Recommendations {
		if r.Kind == model.RecMissingSemantic {
			missing = append(missing, r)
		}
	}
	assert.Len(t, missing, 2)
	for _, r := range missing {
		assert.Equal(t, model.PriorityMedium, r.Priority)
	}
}

func TestAnalyze_EmbedderFillsMissingVectors(t *testing.T) {
	cfg := config.Default()
	embedder := &mockEmbedder{Vectors: map[string][]float32{
		"Accueil Accueil":     vec(90),
		"Thé vert Thé vert":   vec(0),
		"Thé noir Thé noir":   vec(10),
		"Thé blanc Thé blanc": vec(20),
	}}
	a := NewAuditor(cfg, nil, nil, embedder)

	edges := []model.RawEdge{
		{Source: "https://e.com/", Destination: "https://e.com/vert", Anchor: "le thé vert en détail"},
		{Source: "https://e.com/", Destination: "https://e.com/noir", Anchor: "le thé noir en détail"},
		{Source: "https://e.com/", Destination: "https://e.com/blanc", Anchor: "le thé blanc en détail"},
	}
	metas := []model.PageMetadata{
		{URL: "https://e.com/", Title: "Accueil", H1: "Accueil"},
		{URL: "https://e.com/vert", Title: "Thé vert", H1: "Thé vert"},
		{URL: "https://e.com/noir", Title: "Thé noir", H1: "Thé noir"},
		{URL: "https://e.com/blanc", Title: "Thé blanc", H1: "Thé blanc"},
	}

	res, err := a.Analyze(context.Background(), edges, metas)
	assert.NoError(t, err)
	assert.Empty(t, res.ClusteringSkipped)
	assert.Len(t, res.Clusters, 1)
}

func TestAnalyze_ClusteringSkipReasons(t *testing.T) {
	cfg := config.Default()
	a := NewAuditor(cfg, nil, nil, nil)

	// No embeddings anywhere and no embedder configured.
	res, err := a.Analyze(context.Background(), siteEdges(), siteMetas())
	assert.NoError(t, err)
	assert.Equal(t, cluster.SkipMissingEmbeddings, res.ClusteringSkipped)
	assert.Empty(t, res.Clusters)

	// A failing embedder leaves pages unembedded and degrades the same way.
	a = NewAuditor(cfg, nil, nil, &mockEmbedder{Err: fmt.Errorf("quota exceeded")})
	res, err = a.Analyze(context.Background(), siteEdges(), siteMetas())
	assert.NoError(t, err)
	assert.Equal(t, cluster.SkipMissingEmbeddings, res.ClusteringSkipped)
}

func TestAnalyze_RowCapIsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Audit.MaxRows = 2
	a := NewAuditor(cfg, nil, nil, nil)

	_, err := a.Analyze(context.Background(), siteEdges(), nil)
	var capErr *model.CapacityError
	assert.True(t, errors.As(err, &capErr))
	assert.Equal(t, 2, capErr.Limit)
}

func TestAnalyze_ZoneDetectionFeedsClassifier(t *testing.T) {
	cfg := config.Default()
	cfg.Semantic.Enabled = false
	llmClient := &mockLLM{Response: `{"content_zones": ["article.main"], "mechanical_zones": ["div.related"]}`}
	a := NewAuditor(cfg, nil, llmClient, nil)

	edges := []model.RawEdge{
		// Sidebar widget link: zone rule fires once the allowlist exists.
		{Source: "https://e.com/a", Destination: "https://e.com/b", Anchor: "nos meilleures offres", DOMPath: "aside.widget > ul"},
		{Source: "https://e.com/a", Destination: "https://e.com/c", Anchor: "analyse approfondie du marché", DOMPath: "article.main > p"},
	}
	res, err := a.Analyze(context.Background(), edges, nil)
	assert.NoError(t, err)

	assert.Equal(t, model.CategoryMechanical, res.Edges[0].Category)
	assert.Equal(t, model.CategoryEditorial, res.Edges[1].Category)
}

func TestAnalyze_PersistsWhenDriverConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Semantic.Enabled = false
	fd := &fakeDriver{}
	a := NewAuditor(cfg, fd, nil, nil)

	_, err := a.Analyze(context.Background(), siteEdges(), siteMetas())
	assert.NoError(t, err)
	// Five pages plus four edges saved.
	assert.Len(t, fd.queries, 9)
}

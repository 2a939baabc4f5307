package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/linkaudit/internal/core/model"
)

func intp(v int) *int { return &v }

func TestFromOrphans_ConversionPagesRankHigher(t *testing.T) {
	byURL := map[string]*model.PageNode{
		"https://e.com/contact": {URL: "https://e.com/contact", ConversionType: "contact"},
		"https://e.com/blog/x":  {URL: "https://e.com/blog/x"},
	}
	recs := FromOrphans([]string{"https://e.com/blog/x", "https://e.com/contact"}, byURL)

	assert.Len(t, recs, 2)
	assert.Equal(t, model.PriorityMedium, recs[0].Priority)
	assert.Equal(t, model.PriorityHigh, recs[1].Priority)
	assert.Equal(t, "contact", recs[1].Details["conversion_type"])
	assert.Equal(t, model.RecOrphan, recs[0].Kind)
}

func TestFromThinContent(t *testing.T) {
	pages := []*model.PageNode{
		{URL: "https://e.com/a", ThinContent: true, WordCount: intp(90), InDegreeEditorial: 0},
		{URL: "https://e.com/b", ThinContent: true, WordCount: intp(150), InDegreeEditorial: 4},
		{URL: "https://e.com/c", WordCount: intp(900)},
	}
	recs := FromThinContent(pages)

	assert.Len(t, recs, 2)
	assert.Equal(t, model.PriorityHigh, recs[0].Priority)
	assert.Equal(t, model.PriorityLow, recs[1].Priority)
	assert.Equal(t, "90", recs[0].Details["word_count"])
}

func TestFromRepetitiveAnchors_CollapsesEdges(t *testing.T) {
	flagged := func(src string) model.LinkEdge {
		return model.LinkEdge{
			Source: src, Destination: "https://e.com/produits", Anchor: "produits bio",
			Category: model.CategoryEditorial, AnchorFlags: []string{model.FlagOverOptimized},
		}
	}
	edges := []model.LinkEdge{
		flagged("https://e.com/p6"),
		flagged("https://e.com/p7"),
		{Source: "https://e.com/p1", Destination: "https://e.com/produits", Anchor: "produits bio", Category: model.CategoryEditorial},
	}
	recs := FromRepetitiveAnchors(edges)

	assert.Len(t, recs, 1)
	assert.Equal(t, "https://e.com/produits", recs[0].TargetURL)
	assert.Equal(t, "produits bio", recs[0].Details["anchor"])
	assert.Equal(t, "2", recs[0].Details["source_count"])
	assert.Equal(t, model.PriorityMedium, recs[0].Priority)
}

func TestFromCoherence(t *testing.T) {
	pages := []*model.PageNode{
		{URL: "https://e.com/devis", Coherence: model.CoherenceDifferent, ConversionType: "quote"},
		{URL: "https://e.com/blog", Coherence: model.CoherenceDifferent},
		{URL: "https://e.com/ok", Coherence: model.CoherenceSimilar},
		{URL: "https://e.com/no-h1", Coherence: model.CoherenceMissing},
	}
	recs := FromCoherence(pages)

	assert.Len(t, recs, 2)
	assert.Equal(t, model.PriorityMedium, recs[0].Priority)
	assert.Equal(t, model.PriorityLow, recs[1].Priority)
}

func TestFromSiteRatio(t *testing.T) {
	assert.Empty(t, FromSiteRatio("https://e.com/", 0.5))
	assert.Empty(t, FromSiteRatio("https://e.com/", 0.8))

	recs := FromSiteRatio("https://e.com/", 0.3)
	assert.Len(t, recs, 1)
	assert.Equal(t, model.PriorityHigh, recs[0].Priority)
	assert.Equal(t, "https://e.com/", recs[0].TargetURL)
	assert.Equal(t, model.RecLowEditorialRatio, recs[0].Kind)
}

func TestAggregate_DedupeAndOrder(t *testing.T) {
	a := []model.Recommendation{
		{Kind: model.RecThinContent, Priority: model.PriorityLow, TargetURL: "https://e.com/z"},
		{Kind: model.RecOrphan, Priority: model.PriorityHigh, TargetURL: "https://e.com/b"},
	}
	b := []model.Recommendation{
		// Duplicate of the orphan above, dropped.
		{Kind: model.RecOrphan, Priority: model.PriorityMedium, TargetURL: "https://e.com/b"},
		{Kind: model.RecOrphan, Priority: model.PriorityHigh, TargetURL: "https://e.com/a"},
		// No priority set, falls back to the per-kind default.
		{Kind: model.RecMissingSemantic, TargetURL: "https://e.com/a", Destination: "https://e.com/b"},
	}
	out := Aggregate(a, b)

	assert.Len(t, out, 4)
	assert.Equal(t, "https://e.com/a", out[0].TargetURL)
	assert.Equal(t, "https://e.com/b", out[1].TargetURL)
	assert.Equal(t, model.PriorityHigh, out[1].Priority)
	assert.Equal(t, model.PriorityMedium, out[2].Priority)
	assert.Equal(t, model.RecMissingSemantic, out[2].Kind)
	assert.Equal(t, model.RecThinContent, out[3].Kind)
}

func TestAggregate_SameKindDifferentDestinationKept(t *testing.T) {
	recs := []model.Recommendation{
		{Kind: model.RecMissingSemantic, TargetURL: "https://e.com/a", Destination: "https://e.com/b"},
		{Kind: model.RecMissingSemantic, TargetURL: "https://e.com/a", Destination: "https://e.com/c"},
	}
	assert.Len(t, Aggregate(recs), 2)
}

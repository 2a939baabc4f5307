package recommend

import (
	"fmt"
	"sort"

	"github.com/agenthands/linkaudit/internal/core/model"
)

// LowEditorialRatio is the site-wide editorial share under which the
// internal linking is considered navigation-dominated.
const LowEditorialRatio = 0.5

// FromOrphans emits one recommendation per orphaned page. An orphaned
// conversion page is priority high, any other orphan is medium.
func FromOrphans(orphans []string, byURL map[string]*model.PageNode) []model.Recommendation {
	recs := make([]model.Recommendation, 0, len(orphans))
	for _, url := range orphans {
		prio := model.PriorityMedium
		detail := map[string]string{}
		if p, ok := byURL[url]; ok && p.ConversionType != "" {
			prio = model.PriorityHigh
			detail["conversion_type"] = p.ConversionType
		}
		recs = append(recs, model.Recommendation{
			Kind:      model.RecOrphan,
			Priority:  prio,
			TargetURL: url,
			Problem: model.Problem{
				Code: "orphan_page",
				Text: "page receives no editorial links from the rest of the site",
			},
			SuggestedAction: "link to this page from thematically related content",
			Details:         detail,
		})
	}
	return recs
}

// FromThinContent flags thin pages. Thin with zero editorial in-links
// is priority high, thin but linked is low.
func FromThinContent(pages []*model.PageNode) []model.Recommendation {
	var recs []model.Recommendation
	for _, p := range pages {
		if !p.ThinContent {
			continue
		}
		prio := model.PriorityLow
		if p.InDegreeEditorial == 0 {
			prio = model.PriorityHigh
		}
		recs = append(recs, model.Recommendation{
			Kind:      model.RecThinContent,
			Priority:  prio,
			TargetURL: p.URL,
			Problem: model.Problem{
				Code: "thin_content",
				Text: fmt.Sprintf("page has %d words, under the thin-content threshold", words(p)),
			},
			SuggestedAction: "expand the page or merge it into a stronger one",
			Details:         map[string]string{"word_count": fmt.Sprintf("%d", words(p))},
		})
	}
	return recs
}

// FromRepetitiveAnchors emits one recommendation per destination whose
// incoming anchor text is over-optimized. The flag lives on individual
// edges; this collapses them to the (anchor, destination) pair with a
// source count.
func FromRepetitiveAnchors(edges []model.LinkEdge) []model.Recommendation {
	type key struct{ anchor, dest string }
	sources := make(map[key]map[string]struct{})

	for _, e := range edges {
		if !hasFlag(e, model.FlagOverOptimized) {
			continue
		}
		k := key{anchor: e.Anchor, dest: e.Destination}
		if sources[k] == nil {
			sources[k] = make(map[string]struct{})
		}
		sources[k][e.Source] = struct{}{}
	}

	keys := make([]key, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dest != keys[j].dest {
			return keys[i].dest < keys[j].dest
		}
		return keys[i].anchor < keys[j].anchor
	})

	recs := make([]model.Recommendation, 0, len(keys))
	for _, k := range keys {
		recs = append(recs, model.Recommendation{
			Kind:      model.RecRepetitiveAnchor,
			Priority:  model.PriorityMedium,
			TargetURL: k.dest,
			Problem: model.Problem{
				Code: "repetitive_anchor",
				Text: fmt.Sprintf("anchor %q is reused by too many different pages toward this destination", k.anchor),
			},
			SuggestedAction: "vary the anchor text across linking pages",
			Details: map[string]string{
				"anchor":       k.anchor,
				"source_count": fmt.Sprintf("%d", len(sources[k])),
			},
		})
	}
	return recs
}

// FromCoherence flags pages whose title and H1 disagree. The mismatch
// is priority medium on conversion pages, low elsewhere.
func FromCoherence(pages []*model.PageNode) []model.Recommendation {
	var recs []model.Recommendation
	for _, p := range pages {
		if p.Coherence != model.CoherenceDifferent {
			continue
		}
		prio := model.PriorityLow
		if p.ConversionType != "" {
			prio = model.PriorityMedium
		}
		recs = append(recs, model.Recommendation{
			Kind:      model.RecTitleH1Mismatch,
			Priority:  prio,
			TargetURL: p.URL,
			Problem: model.Problem{
				Code: "title_h1_mismatch",
				Text: "title and H1 describe different things",
			},
			SuggestedAction: "align the H1 with the title's topic",
		})
	}
	return recs
}

// FromSiteRatio emits a single site-wide recommendation when editorial
// links are a minority of the internal link graph.
func FromSiteRatio(siteRoot string, ratio float64) []model.Recommendation {
	if ratio >= LowEditorialRatio {
		return nil
	}
	return []model.Recommendation{{
		Kind:      model.RecLowEditorialRatio,
		Priority:  model.PriorityHigh,
		TargetURL: siteRoot,
		Problem: model.Problem{
			Code: "low_editorial_ratio",
			Text: fmt.Sprintf("only %.0f%% of internal links are editorial", ratio*100),
		},
		SuggestedAction: "add in-content links; navigation alone does not transfer topical relevance",
		Details:         map[string]string{"editorial_ratio": fmt.Sprintf("%.4f", ratio)},
	}}
}

// defaultPriority covers kinds whose producers have no page context.
var defaultPriority = map[model.RecommendationKind]model.Priority{
	model.RecMissingSemantic: model.PriorityMedium,
}

var priorityRank = map[model.Priority]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
}

// Aggregate merges the per-stage recommendation streams: fills default
// priorities, drops duplicates on (kind, target, destination) keeping
// the first occurrence, and orders by priority then target URL. The
// sort is stable so equal entries keep their stage order.
func Aggregate(streams ...[]model.Recommendation) []model.Recommendation {
	seen := make(map[string]struct{})
	var out []model.Recommendation

	for _, stream := range streams {
		for _, r := range stream {
			if r.Priority == "" {
				r.Priority = defaultPriority[r.Kind]
			}
			key := string(r.Kind) + "\x00" + r.TargetURL + "\x00" + r.Destination
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if priorityRank[out[i].Priority] != priorityRank[out[j].Priority] {
			return priorityRank[out[i].Priority] < priorityRank[out[j].Priority]
		}
		return out[i].TargetURL < out[j].TargetURL
	})
	return out
}

func hasFlag(e model.LinkEdge, flag string) bool {
	for _, f := range e.AnchorFlags {
		if f == flag {
			return true
		}
	}
	return false
}

func words(p *model.PageNode) int {
	if p.WordCount == nil {
		return 0
	}
	return *p.WordCount
}

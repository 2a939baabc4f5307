package content

import (
	"strings"

	"github.com/agenthands/linkaudit/internal/config"
	"github.com/agenthands/linkaudit/internal/core/common"
	"github.com/agenthands/linkaudit/internal/core/graph"
	"github.com/agenthands/linkaudit/internal/core/model"
)

type Integrator struct {
	cfg config.ContentConfig
}

func New(cfg config.ContentConfig) *Integrator {
	return &Integrator{cfg: cfg}
}

// Merge folds page metadata records into the index. A metadata URL with
// no page in the link export gets a stub node: content exports routinely
// include pages the link export never reached, and that is exactly what
// orphan analysis wants to see. Malformed URLs are soft errors.
func (g *Integrator) Merge(x *graph.Index, metas []model.PageMetadata, stats *model.RunStats) {
	for i, m := range metas {
		url, err := common.NormalizeURL(m.URL)
		if err != nil {
			stats.Issues = append(stats.Issues, model.RowIssue{
				Row: i + 1, Reason: model.ReasonMalformedURL, Detail: err.Error(),
			})
			continue
		}

		n := x.Node(url)
		if m.Title != "" {
			n.Title = m.Title
		}
		if m.H1 != "" {
			n.H1 = m.H1
		}
		if m.WordCount != nil {
			wc := *m.WordCount
			n.WordCount = &wc
		}
		if len(m.Embedding) > 0 {
			n.Embedding = m.Embedding
		}
	}
}

// Apply computes the per-page content signals over the whole index:
// thin-content flag, title/H1 coherence bucket and conversion category.
func (g *Integrator) Apply(pages []*model.PageNode) {
	for _, p := range pages {
		p.ThinContent = p.WordCount != nil && *p.WordCount < g.cfg.ThinContentWords
		p.Coherence = g.coherence(p.Title, p.H1)
		p.ConversionType = g.classifyConversion(p.URL, p.Title)
	}
}

// coherence buckets title/H1 agreement by token overlap. A missing tag
// is reported as such, never lumped in with "different".
func (g *Integrator) coherence(title, h1 string) model.CoherenceBucket {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(h1) == "" {
		return model.CoherenceMissing
	}

	sim := tokenOverlap(title, h1)
	switch {
	case sim >= g.cfg.CoherenceIdentical:
		return model.CoherenceIdentical
	case sim >= g.cfg.CoherenceSimilar:
		return model.CoherenceSimilar
	default:
		return model.CoherenceDifferent
	}
}

// tokenOverlap is Jaccard similarity over lower-cased whitespace tokens.
func tokenOverlap(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for w := range ta {
		if _, ok := tb[w]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

// classifyConversion matches URL and title against the taxonomy in
// declaration order; a page lands in at most one category.
func (g *Integrator) classifyConversion(url, title string) string {
	haystack := strings.ToLower(url + " " + title)
	for _, rule := range g.cfg.ConversionTaxonomy {
		for _, pat := range rule.Patterns {
			if strings.Contains(haystack, pat) {
				return rule.Category
			}
		}
	}
	return ""
}

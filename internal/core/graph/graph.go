package graph

import (
	"sort"

	"github.com/agenthands/linkaudit/internal/core/model"
)

// Index owns the PageNode set for a run. Nodes are created lazily the
// first time a URL is mentioned and never removed; later stages only
// fill additional fields.
type Index struct {
	nodes map[string]*model.PageNode
}

func NewIndex() *Index {
	return &Index{nodes: make(map[string]*model.PageNode)}
}

// Node returns the page for a normalized URL, creating it on first use.
func (x *Index) Node(url string) *model.PageNode {
	n, ok := x.nodes[url]
	if !ok {
		n = &model.PageNode{URL: url}
		x.nodes[url] = n
	}
	return n
}

// Lookup returns the page if it already exists.
func (x *Index) Lookup(url string) (*model.PageNode, bool) {
	n, ok := x.nodes[url]
	return n, ok
}

// Pages returns every node sorted by URL for deterministic output.
func (x *Index) Pages() []*model.PageNode {
	pages := make([]*model.PageNode, 0, len(x.nodes))
	for _, n := range x.nodes {
		pages = append(pages, n)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].URL < pages[j].URL })
	return pages
}

// CountDegrees walks the classified edge set once and accumulates
// degrees: every internal edge raises the source's internal out-degree,
// editorial edges additionally raise editorial out- and in-degrees.
// A single pass over edges, so cycles in the graph are harmless.
func CountDegrees(x *Index, edges []model.LinkEdge) {
	for _, e := range edges {
		src := x.Node(e.Source)
		dst := x.Node(e.Destination)

		src.OutDegreeInternal++
		if e.Category == model.CategoryEditorial {
			src.OutDegreeEditorial++
			dst.InDegreeEditorial++
		}
	}
}

// Orphans returns pages with zero editorial in-links, excluding the site
// root, sorted by URL.
func Orphans(pages []*model.PageNode, siteRoot string) []string {
	var orphans []string
	for _, p := range pages {
		if p.InDegreeEditorial == 0 && p.URL != siteRoot {
			orphans = append(orphans, p.URL)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// AssignTiers buckets pages into four connectivity bands by editorial
// in-degree quantile. Tier 1 is the least linked band, tier 4 the most.
// Tiers inform report prioritization only; nothing downstream branches
// on them.
func AssignTiers(pages []*model.PageNode) {
	if len(pages) == 0 {
		return
	}

	degrees := make([]int, len(pages))
	for i, p := range pages {
		degrees[i] = p.InDegreeEditorial
	}
	sort.Ints(degrees)

	q1 := quantile(degrees, 0.25)
	q2 := quantile(degrees, 0.50)
	q3 := quantile(degrees, 0.75)

	for _, p := range pages {
		switch d := p.InDegreeEditorial; {
		case d <= q1:
			p.ConnectivityTier = 1
		case d <= q2:
			p.ConnectivityTier = 2
		case d <= q3:
			p.ConnectivityTier = 3
		default:
			p.ConnectivityTier = 4
		}
	}
}

// quantile uses nearest-rank on a sorted slice.
func quantile(sorted []int, q float64) int {
	idx := int(q*float64(len(sorted))+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

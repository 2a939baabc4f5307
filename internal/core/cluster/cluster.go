package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/agenthands/linkaudit/internal/config"
	"github.com/agenthands/linkaudit/internal/core/model"
)

// Skip reasons surfaced verbatim in the analysis result when semantic
// clustering cannot run. Skipping is a soft degradation: the rest of
// the audit is unaffected.
const (
	SkipDisabled          = "semantic clustering disabled in configuration"
	SkipMissingEmbeddings = "one or more pages have no embedding"
	SkipTooManyPages      = "page count exceeds semantic analysis ceiling"
)

// Engine groups pages into thematic clusters by embedding similarity
// and proposes links between similar pages that the site never made.
type Engine struct {
	cfg config.SemanticConfig
}

func New(cfg config.SemanticConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Gate reports why clustering cannot run for this page set, or "" when
// it can. Partial embeddings disable the whole stage rather than
// producing clusters from a biased subset.
func (e *Engine) Gate(pages []*model.PageNode) string {
	if !e.cfg.Enabled {
		return SkipDisabled
	}
	if len(pages) > e.cfg.MaxPages {
		return SkipTooManyPages
	}
	for _, p := range pages {
		if len(p.Embedding) == 0 {
			return SkipMissingEmbeddings
		}
	}
	return ""
}

// BuildClusters computes the transitive closure of the "similarity
// above threshold" relation over page embeddings and keeps components
// with at least MinClusterSize members. Pages in smaller components
// keep a nil ClusterID. Input order must be deterministic; cluster IDs
// are assigned by the URL of each cluster's first member.
func (e *Engine) BuildClusters(pages []*model.PageNode) []model.Cluster {
	if len(pages) < e.cfg.MinClusterSize {
		return nil
	}

	uf := newUnionFind(len(pages))
	for i := 0; i < len(pages); i++ {
		for j := i + 1; j < len(pages); j++ {
			if Cosine(pages[i].Embedding, pages[j].Embedding) > e.cfg.SimilarityThreshold {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range pages {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	var kept [][]int
	for _, members := range groups {
		if len(members) < e.cfg.MinClusterSize {
			continue
		}
		sort.Slice(members, func(a, b int) bool { return pages[members[a]].URL < pages[members[b]].URL })
		kept = append(kept, members)
	}
	sort.Slice(kept, func(a, b int) bool { return pages[kept[a][0]].URL < pages[kept[b][0]].URL })

	clusters := make([]model.Cluster, 0, len(kept))
	for idx, members := range kept {
		id := idx + 1
		c := model.Cluster{ID: id}
		nodes := make([]*model.PageNode, len(members))
		for i, m := range members {
			nodes[i] = pages[m]
			nodes[i].ClusterID = &id
			c.Members = append(c.Members, nodes[i].URL)
		}
		c.Centroid = centroid(nodes)
		c.PillarCandidate = pillar(nodes)
		clusters = append(clusters, c)
	}
	return clusters
}

// MissingLinks proposes editorial links between same-cluster page pairs
// whose similarity clears the threshold but which are not linked in
// either direction. The proposed source is the better-connected page of
// the pair so that authority flows toward the weaker one. Proposals
// are ranked by similarity and capped per source page.
func (e *Engine) MissingLinks(clusters []model.Cluster, pages []*model.PageNode, edges []model.LinkEdge) []model.Recommendation {
	byURL := make(map[string]*model.PageNode, len(pages))
	for _, p := range pages {
		byURL[p.URL] = p
	}

	linked := make(map[string]struct{})
	for _, ed := range edges {
		if ed.Category == model.CategoryEditorial {
			linked[ed.Source+"\x00"+ed.Destination] = struct{}{}
		}
	}

	type proposal struct {
		src, dst *model.PageNode
		sim      float64
	}
	var proposals []proposal

	for _, c := range clusters {
		for i := 0; i < len(c.Members); i++ {
			for j := i + 1; j < len(c.Members); j++ {
				a, b := byURL[c.Members[i]], byURL[c.Members[j]]
				if a == nil || b == nil {
					continue
				}
				sim := Cosine(a.Embedding, b.Embedding)
				if sim <= e.cfg.SimilarityThreshold {
					continue
				}
				if _, ok := linked[a.URL+"\x00"+b.URL]; ok {
					continue
				}
				if _, ok := linked[b.URL+"\x00"+a.URL]; ok {
					continue
				}
				src, dst := a, b
				if b.InDegreeEditorial > a.InDegreeEditorial {
					src, dst = b, a
				}
				proposals = append(proposals, proposal{src: src, dst: dst, sim: sim})
			}
		}
	}

	sort.Slice(proposals, func(a, b int) bool {
		if proposals[a].sim != proposals[b].sim {
			return proposals[a].sim > proposals[b].sim
		}
		if proposals[a].src.URL != proposals[b].src.URL {
			return proposals[a].src.URL < proposals[b].src.URL
		}
		return proposals[a].dst.URL < proposals[b].dst.URL
	})

	perPage := make(map[string]int)
	var recs []model.Recommendation
	for _, p := range proposals {
		if perPage[p.src.URL] >= e.cfg.MaxRecsPerPage {
			continue
		}
		perPage[p.src.URL]++
		recs = append(recs, model.Recommendation{
			Kind:        model.RecMissingSemantic,
			TargetURL:   p.src.URL,
			Destination: p.dst.URL,
			Problem: model.Problem{
				Code: "missing_semantic_link",
				Text: fmt.Sprintf("pages are thematically close (similarity %.2f) but not linked", p.sim),
			},
			SuggestedAction: fmt.Sprintf("add an editorial link from %s to %s with a descriptive anchor", p.src.URL, p.dst.URL),
			Details:         map[string]string{"similarity": fmt.Sprintf("%.4f", p.sim)},
		})
	}
	return recs
}

// Cosine returns the cosine similarity of two embedding vectors. A
// dimension mismatch or zero vector yields 0, never an error: embedding
// providers are inconsistent and a bad vector should not sink a run.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func centroid(nodes []*model.PageNode) []float32 {
	if len(nodes) == 0 || len(nodes[0].Embedding) == 0 {
		return nil
	}
	dim := len(nodes[0].Embedding)
	sum := make([]float64, dim)
	for _, n := range nodes {
		if len(n.Embedding) != dim {
			continue
		}
		for i, v := range n.Embedding {
			sum[i] += float64(v)
		}
	}
	out := make([]float32, dim)
	for i := range sum {
		out[i] = float32(sum[i] / float64(len(nodes)))
	}
	return out
}

// pillar picks the page best placed to head the cluster: most editorial
// in-links, then longest content, then lowest URL.
func pillar(nodes []*model.PageNode) string {
	best := nodes[0]
	for _, n := range nodes[1:] {
		switch {
		case n.InDegreeEditorial != best.InDegreeEditorial:
			if n.InDegreeEditorial > best.InDegreeEditorial {
				best = n
			}
		case words(n) != words(best):
			if words(n) > words(best) {
				best = n
			}
		case n.URL < best.URL:
			best = n
		}
	}
	return best.URL
}

func words(p *model.PageNode) int {
	if p.WordCount == nil {
		return 0
	}
	return *p.WordCount
}

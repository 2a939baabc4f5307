package model

// PageMetadata is one row of a crawler content export for a single URL.
// Every field except URL is optional.
type PageMetadata struct {
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	H1        string    `json:"h1,omitempty"`
	WordCount *int      `json:"word_count,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

type CoherenceBucket string

const (
	CoherenceIdentical CoherenceBucket = "identical"
	CoherenceSimilar   CoherenceBucket = "similar"
	CoherenceDifferent CoherenceBucket = "different"
	CoherenceMissing   CoherenceBucket = "missing_tag"
)

// PageNode is keyed by normalized URL. Nodes are created lazily the
// first time an edge or metadata record mentions the URL and are only
// ever mutated additively: each pipeline stage fills the fields it owns.
type PageNode struct {
	URL                string          `json:"url"`
	InDegreeEditorial  int             `json:"in_degree_editorial"`
	OutDegreeEditorial int             `json:"out_degree_editorial"`
	OutDegreeInternal  int             `json:"out_degree_internal"`
	Title              string          `json:"title,omitempty"`
	H1                 string          `json:"h1,omitempty"`
	WordCount          *int            `json:"word_count,omitempty"`
	ThinContent        bool            `json:"thin_content"`
	Coherence          CoherenceBucket `json:"coherence,omitempty"`
	ConversionType     string          `json:"conversion_type,omitempty"`
	Embedding          []float32       `json:"embedding,omitempty"`
	ClusterID          *int            `json:"cluster_id,omitempty"`
	ConnectivityTier   int             `json:"connectivity_tier"`
	EditorialRatio     float64         `json:"editorial_ratio"`
	QualityScore       float64         `json:"quality_score"`
}

// EditorialOutRatio is editorial out-links over all internal out-links
// from the page. Pages that link out nowhere have no ratio (returns 0).
func (p *PageNode) EditorialOutRatio() float64 {
	if p.OutDegreeInternal == 0 {
		return 0
	}
	return float64(p.OutDegreeEditorial) / float64(p.OutDegreeInternal)
}

// Cluster is a set of thematically similar pages, immutable once built.
type Cluster struct {
	ID              int       `json:"id"`
	Members         []string  `json:"members"`
	Centroid        []float32 `json:"centroid,omitempty"`
	PillarCandidate string    `json:"pillar_candidate"`
}

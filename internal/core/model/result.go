package model

// RowIssue records one skipped input row. Soft errors never abort a run;
// they are tallied here and surfaced in RunStats.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

const (
	ReasonMalformedURL = "malformed_url"
	ReasonMissingField = "missing_field"
	ReasonOutOfScope   = "out_of_scope"
	ReasonExternal     = "external"
	ReasonSelfLink     = "self_link"
	ReasonDuplicate    = "duplicate"
)

type RunStats struct {
	RowsParsed        int            `json:"rows_parsed"`
	RowsDropped       int            `json:"rows_dropped"`
	DropReasons       map[string]int `json:"drop_reasons,omitempty"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	ExternalLinks     int            `json:"external_links"`
	OrphanCount       int            `json:"orphan_count"`
	AvgQualityScore   float64        `json:"avg_quality_score"`
	Issues            []RowIssue     `json:"issues,omitempty"`
}

// AnalysisResult is the single output of a run, consumed by report
// renderers and the persistence layer.
type AnalysisResult struct {
	RunID             string           `json:"run_id"`
	SiteRoot          string           `json:"site_root,omitempty"`
	Edges             []LinkEdge       `json:"edges"`
	Pages             []*PageNode      `json:"pages"`
	Clusters          []Cluster        `json:"clusters,omitempty"`
	ClusteringSkipped string           `json:"clustering_skipped,omitempty"`
	Recommendations   []Recommendation `json:"recommendations"`
	SiteScore         float64          `json:"site_score"`
	EditorialRatio    float64          `json:"editorial_ratio"`
	AvgEditorialLinks float64          `json:"avg_editorial_links_per_page"`
	Stats             RunStats         `json:"stats"`
}

// Page returns the node for a normalized URL, or nil.
func (r *AnalysisResult) Page(url string) *PageNode {
	for _, p := range r.Pages {
		if p.URL == url {
			return p
		}
	}
	return nil
}

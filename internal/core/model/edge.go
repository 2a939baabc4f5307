package model

type Category string

const (
	CategoryEditorial  Category = "editorial"
	CategoryMechanical Category = "mechanical"
	CategoryAmbiguous  Category = "ambiguous"
)

// RawEdge is one row of a crawler link export, before normalization.
type RawEdge struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Anchor      string `json:"anchor"`
	Origin      string `json:"origin,omitempty"`
	DOMPath     string `json:"dom_path,omitempty"`
}

// LinkEdge is a normalized, deduplicated internal link. Category is set
// exactly once by the classifier; AnchorScore stays nil until the scorer
// runs (and only editorial edges are scored).
type LinkEdge struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Anchor      string   `json:"anchor"`
	Origin      string   `json:"origin,omitempty"`
	DOMPath     string   `json:"dom_path,omitempty"`
	Category    Category `json:"category,omitempty"`
	AnchorScore *int     `json:"anchor_score,omitempty"`
	AnchorFlags []string `json:"anchor_flags,omitempty"`
}

const (
	FlagTooShort      = "too_short"
	FlagTooLong       = "too_long"
	FlagOverOptimized = "over_optimized"
	FlagURLAnchor     = "url_anchor"
)

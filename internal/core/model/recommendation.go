package model

type RecommendationKind string

const (
	RecOrphan            RecommendationKind = "orphan"
	RecRepetitiveAnchor  RecommendationKind = "repetitive-anchor"
	RecThinContent       RecommendationKind = "thin-content"
	RecTitleH1Mismatch   RecommendationKind = "title-h1-mismatch"
	RecMissingSemantic   RecommendationKind = "missing-semantic-link"
	RecLowEditorialRatio RecommendationKind = "low-editorial-ratio"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Problem struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// Recommendation is one actionable finding. Stages that know the page
// context set Priority themselves; the aggregator fills a per-kind
// default for the rest, deduplicates and orders.
type Recommendation struct {
	Kind            RecommendationKind `json:"kind"`
	Priority        Priority           `json:"priority"`
	TargetURL       string             `json:"target_url"`
	Destination     string             `json:"destination,omitempty"`
	Problem         Problem            `json:"problem"`
	SuggestedAction string             `json:"suggested_action"`
	Details         map[string]string  `json:"details,omitempty"`
}

package score

import (
	"sort"
	"strings"

	"github.com/agenthands/linkaudit/internal/config"
	"github.com/agenthands/linkaudit/internal/core/model"
)

// AnchorTally tracks, per normalized anchor text and destination, which
// distinct source pages used it. It is an explicit accumulator passed
// through the scorer so re-runs over the same edges are deterministic.
type AnchorTally struct {
	sources map[string]map[string]struct{}
}

func NewAnchorTally() *AnchorTally {
	return &AnchorTally{sources: make(map[string]map[string]struct{})}
}

// Add records one use of anchor toward dest from source and returns the
// number of distinct source pages seen so far for that (anchor, dest)
// pair. Reusing an anchor from the same source never inflates the count.
func (t *AnchorTally) Add(anchor, dest, source string) int {
	key := anchor + "\x00" + dest
	set, ok := t.sources[key]
	if !ok {
		set = make(map[string]struct{})
		t.sources[key] = set
	}
	set[source] = struct{}{}
	return len(set)
}

type Scorer struct {
	cfg config.ScoringConfig
}

func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// ScoreEdges flags and scores every editorial anchor in place, feeding
// the tally in input order. Mechanical and ambiguous edges keep a nil
// score.
func (s *Scorer) ScoreEdges(edges []model.LinkEdge, tally *AnchorTally) {
	for i := range edges {
		if edges[i].Category != model.CategoryEditorial {
			continue
		}

		anchor := strings.ToLower(strings.TrimSpace(edges[i].Anchor))
		var flags []string

		if len([]rune(anchor)) < s.cfg.MinAnchorChars {
			flags = append(flags, model.FlagTooShort)
		}
		if len(strings.Fields(anchor)) > s.cfg.MaxAnchorWords {
			flags = append(flags, model.FlagTooLong)
		}
		if strings.HasPrefix(anchor, "http://") || strings.HasPrefix(anchor, "https://") || strings.HasPrefix(anchor, "www.") {
			flags = append(flags, model.FlagURLAnchor)
		}
		if tally.Add(anchor, edges[i].Destination, edges[i].Source) > s.cfg.MaxAnchorRepetition {
			flags = append(flags, model.FlagOverOptimized)
		}

		score := 100
		for _, f := range flags {
			switch f {
			case model.FlagTooShort:
				score -= s.cfg.PenaltyTooShort
			case model.FlagTooLong:
				score -= s.cfg.PenaltyTooLong
			case model.FlagOverOptimized:
				score -= s.cfg.PenaltyOverOptimized
			case model.FlagURLAnchor:
				score -= s.cfg.PenaltyURLAnchor
			}
		}
		if score < 0 {
			score = 0
		}

		edges[i].AnchorScore = &score
		edges[i].AnchorFlags = flags
	}
}

// PageScore buckets the page's editorial ratio into a base score, then
// scales it by the mean anchor score of the page's editorial anchors.
// Capped at 100: an earlier version of the formula could overshoot when
// generous weights met a high ratio.
func (s *Scorer) PageScore(ratio float64, anchorScores []int) float64 {
	base := s.cfg.RatioBaseScores[len(s.cfg.RatioBreakpoints)]
	for i, bp := range s.cfg.RatioBreakpoints {
		if ratio < bp {
			base = s.cfg.RatioBaseScores[i]
			break
		}
	}

	if len(anchorScores) > 0 {
		sum := 0
		for _, a := range anchorScores {
			sum += a
		}
		base *= float64(sum) / float64(len(anchorScores)) / 100
	}

	if base > 100 {
		base = 100
	}
	if base < 0 {
		base = 0
	}
	return base
}

// ScorePages fills EditorialRatio and QualityScore on every page that
// has internal out-links and returns the site-level mean. Pages are
// walked in URL order so reported aggregates are stable across runs.
func (s *Scorer) ScorePages(pages []*model.PageNode, edges []model.LinkEdge) float64 {
	anchorsBySource := make(map[string][]int)
	for _, e := range edges {
		if e.Category == model.CategoryEditorial && e.AnchorScore != nil {
			anchorsBySource[e.Source] = append(anchorsBySource[e.Source], *e.AnchorScore)
		}
	}

	ordered := make([]*model.PageNode, len(pages))
	copy(ordered, pages)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].URL < ordered[j].URL })

	var sum float64
	var scored int
	for _, p := range ordered {
		if p.OutDegreeInternal == 0 {
			continue
		}
		p.EditorialRatio = p.EditorialOutRatio()
		p.QualityScore = s.PageScore(p.EditorialRatio, anchorsBySource[p.URL])
		sum += p.QualityScore
		scored++
	}

	if scored == 0 {
		return 0
	}
	return sum / float64(scored)
}

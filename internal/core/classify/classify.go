package classify

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/agenthands/linkaudit/internal/config"
	"github.com/agenthands/linkaudit/internal/core/model"
)

// Rules holds the compiled classification tables. Classification is a
// pure function of (edge, Rules), so edges can be classified in any
// order or in parallel.
type Rules struct {
	origins      []string
	anchorRes    []*regexp.Regexp
	zoneRes      []*regexp.Regexp
	contentZones []*regexp.Regexp
	workers      int
}

// New compiles the configured pattern tables. contentZones is the
// content-zone allowlist supplied by the zone detector; when empty, the
// structural rule is disabled and only origin and anchor signals apply.
func New(cfg config.ClassifierConfig, contentZones []string, workers int) (*Rules, error) {
	r := &Rules{origins: cfg.MechanicalOrigins, workers: workers}

	var err error
	if r.anchorRes, err = compileAll(cfg.MechanicalAnchorPatterns); err != nil {
		return nil, fmt.Errorf("mechanical anchor patterns: %w", err)
	}
	if r.zoneRes, err = compileAll(cfg.MechanicalZonePatterns); err != nil {
		return nil, fmt.Errorf("mechanical zone patterns: %w", err)
	}
	if r.contentZones, err = compileAll(contentZones); err != nil {
		return nil, fmt.Errorf("content zone allowlist: %w", err)
	}
	return r, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern '%s': %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// Classify assigns a category using a fixed rule order; the first rule
// that fires wins, so a given edge always classifies the same way.
func (r *Rules) Classify(edge model.LinkEdge) model.Category {
	// 1. Crawler-provided origin hint.
	origin := strings.ToLower(edge.Origin)
	if origin != "" {
		for _, o := range r.origins {
			if strings.Contains(origin, o) {
				return model.CategoryMechanical
			}
		}
	}

	// 2. Mechanical anchor phrasing. A textual signal beats structural
	// placement: "read more" is mechanical wherever the template puts it.
	anchor := strings.ToLower(strings.TrimSpace(edge.Anchor))
	for _, re := range r.anchorRes {
		if re.MatchString(anchor) {
			return model.CategoryMechanical
		}
	}

	// 3. Structural zone, only when a content-zone allowlist exists.
	if len(r.contentZones) > 0 && edge.DOMPath != "" {
		if matchesAny(r.zoneRes, edge.DOMPath) && !matchesAny(r.contentZones, edge.DOMPath) {
			return model.CategoryMechanical
		}
	}

	// 4. Empty or purely symbolic anchors are kept for auditing but
	// excluded from editorial counts.
	if !hasAlphanumeric(anchor) {
		return model.CategoryAmbiguous
	}

	return model.CategoryEditorial
}

// Apply classifies every edge in place, fanning out across workers when
// configured. Each goroutine owns a disjoint slice range.
func (r *Rules) Apply(edges []model.LinkEdge) {
	if r.workers <= 1 || len(edges) < r.workers*2 {
		for i := range edges {
			edges[i].Category = r.Classify(edges[i])
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (len(edges) + r.workers - 1) / r.workers
	for start := 0; start < len(edges); start += chunk {
		end := start + chunk
		if end > len(edges) {
			end = len(edges)
		}
		wg.Add(1)
		go func(part []model.LinkEdge) {
			defer wg.Done()
			for i := range part {
				part[i].Category = r.Classify(part[i])
			}
		}(edges[start:end])
	}
	wg.Wait()
}

func matchesAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

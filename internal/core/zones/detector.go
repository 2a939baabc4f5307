package zones

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/linkaudit/internal/core/common"
	"github.com/agenthands/linkaudit/internal/core/model"
	"github.com/agenthands/linkaudit/internal/llm"
)

const detectPrompt = `You are auditing the internal linking of a website.
Below is a sample of DOM paths where internal links were found, one per line.
Classify the recurring zone selectors into two lists:
- "content_zones": selectors that wrap editorial content (articles, main text)
- "mechanical_zones": selectors for navigation, headers, footers, sidebars, pagination

Respond with JSON only, in the form:
{"content_zones": ["..."], "mechanical_zones": ["..."]}

DOM paths:
%s`

// Detection is the LLM's verdict on which DOM zones of this site carry
// editorial links. ContentZones feeds the classifier allowlist.
type Detection struct {
	ContentZones    []string `json:"content_zones"`
	MechanicalZones []string `json:"mechanical_zones"`
}

// Detector asks an LLM to infer site-specific link zones from a sample
// of the DOM paths seen in the link export. Pattern tables cover the
// common cases; this covers sites with unusual markup.
type Detector struct {
	LLM         llm.LLMClient
	SamplePages int
}

func NewDetector(llmClient llm.LLMClient, samplePages int) *Detector {
	return &Detector{LLM: llmClient, SamplePages: samplePages}
}

// Detect samples DOM paths from up to SamplePages source pages and
// returns the inferred zones. A nil detection with nil error means the
// export carries no DOM paths and there is nothing to infer.
func (d *Detector) Detect(ctx context.Context, edges []model.RawEdge) (*Detection, error) {
	paths := d.samplePaths(edges)
	if len(paths) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(detectPrompt, strings.Join(paths, "\n"))
	response, err := d.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate zone detection: %w", err)
	}

	result, err := common.ParseJSON[Detection](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse zone detection: %w", err)
	}
	return &result, nil
}

// samplePaths takes the distinct DOM paths of the first SamplePages
// source pages in URL order, so the sample is deterministic for a given
// export.
func (d *Detector) samplePaths(edges []model.RawEdge) []string {
	byPage := make(map[string]map[string]struct{})
	for _, e := range edges {
		if e.DOMPath == "" {
			continue
		}
		if byPage[e.Source] == nil {
			byPage[e.Source] = make(map[string]struct{})
		}
		byPage[e.Source][e.DOMPath] = struct{}{}
	}

	pages := make([]string, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	if d.SamplePages > 0 && len(pages) > d.SamplePages {
		pages = pages[:d.SamplePages]
	}

	seen := make(map[string]struct{})
	var paths []string
	for _, p := range pages {
		pagePaths := make([]string, 0, len(byPage[p]))
		for dp := range byPage[p] {
			pagePaths = append(pagePaths, dp)
		}
		sort.Strings(pagePaths)
		for _, dp := range pagePaths {
			if _, ok := seen[dp]; ok {
				continue
			}
			seen[dp] = struct{}{}
			paths = append(paths, dp)
		}
	}
	return paths
}

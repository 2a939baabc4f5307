package normalize

import (
	"strings"

	"github.com/agenthands/linkaudit/internal/core/common"
	"github.com/agenthands/linkaudit/internal/core/model"
)

type Options struct {
	// MaxRows is a hard cap on the raw input. Exceeding it fails the run:
	// truncating would silently corrupt degree and orphan statistics.
	MaxRows int
	// ScopePrefix keeps an edge when either endpoint starts with the
	// prefix. One-sided on purpose: edges reaching into the audited
	// section from outside it still matter for orphan detection.
	ScopePrefix string
}

type Result struct {
	Edges []model.LinkEdge
	Stats model.RunStats
}

// Edges validates and canonicalizes raw link rows into a deduplicated
// edge set. Per-row failures are recorded as issues and skipped; only
// the row cap aborts the run.
func Edges(raw []model.RawEdge, opts Options) (*Result, error) {
	if opts.MaxRows > 0 && len(raw) > opts.MaxRows {
		return nil, &model.CapacityError{Limit: opts.MaxRows, Seen: len(raw)}
	}

	res := &Result{
		Stats: model.RunStats{
			RowsParsed:  len(raw),
			DropReasons: make(map[string]int),
		},
	}

	seen := make(map[string]struct{}, len(raw))

	for i, row := range raw {
		line := i + 1

		if strings.TrimSpace(row.Source) == "" || strings.TrimSpace(row.Destination) == "" {
			res.drop(line, model.ReasonMissingField, "source or destination missing")
			continue
		}

		source, err := common.NormalizeURL(row.Source)
		if err != nil {
			res.drop(line, model.ReasonMalformedURL, err.Error())
			continue
		}
		dest, err := common.NormalizeURL(row.Destination)
		if err != nil {
			res.drop(line, model.ReasonMalformedURL, err.Error())
			continue
		}

		if !common.SameHost(source, dest) {
			res.Stats.ExternalLinks++
			res.drop(line, model.ReasonExternal, "")
			continue
		}

		if opts.ScopePrefix != "" &&
			!strings.HasPrefix(source, opts.ScopePrefix) &&
			!strings.HasPrefix(dest, opts.ScopePrefix) {
			res.drop(line, model.ReasonOutOfScope, "")
			continue
		}

		if source == dest {
			res.drop(line, model.ReasonSelfLink, "")
			continue
		}

		anchor := strings.TrimSpace(row.Anchor)
		key := source + "\x00" + dest + "\x00" + anchor + "\x00" + row.DOMPath
		if _, dup := seen[key]; dup {
			res.Stats.DuplicatesRemoved++
			res.drop(line, model.ReasonDuplicate, "")
			continue
		}
		seen[key] = struct{}{}

		res.Edges = append(res.Edges, model.LinkEdge{
			Source:      source,
			Destination: dest,
			Anchor:      anchor,
			Origin:      strings.ToLower(strings.TrimSpace(row.Origin)),
			DOMPath:     row.DOMPath,
		})
	}

	return res, nil
}

func (r *Result) drop(line int, reason, detail string) {
	r.Stats.RowsDropped++
	r.Stats.DropReasons[reason]++
	// External, scope and duplicate drops are expected bulk outcomes, not
	// data problems; only real row defects become issues.
	if reason == model.ReasonMalformedURL || reason == model.ReasonMissingField {
		r.Stats.Issues = append(r.Stats.Issues, model.RowIssue{Row: line, Reason: reason, Detail: detail})
	}
}

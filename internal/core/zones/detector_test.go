package zones

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/linkaudit/internal/core/model"
)

func TestDetect_ParsesFencedJSON(t *testing.T) {
	mock := &MockLLMClient{Response: "```json\n" +
		`{"content_zones": ["article.post-body"], "mechanical_zones": ["div#mega-menu"]}` +
		"\n```"}
	d := NewDetector(mock, 5)

	edges := []model.RawEdge{
		{Source: "https://e.com/a", Destination: "https://e.com/b", DOMPath: "article.post-body > p"},
		{Source: "https://e.com/a", Destination: "https://e.com/c", DOMPath: "div#mega-menu > ul"},
	}
	det, err := d.Detect(context.Background(), edges)

	assert.NoError(t, err)
	assert.Equal(t, []string{"article.post-body"}, det.ContentZones)
	assert.Equal(t, []string{"div#mega-menu"}, det.MechanicalZones)
	assert.Contains(t, mock.LastPrompt, "article.post-body > p")
}

func TestDetect_NoDOMPathsNothingToDo(t *testing.T) {
	mock := &MockLLMClient{Response: "{}"}
	d := NewDetector(mock, 5)

	det, err := d.Detect(context.Background(), []model.RawEdge{
		{Source: "https://e.com/a", Destination: "https://e.com/b"},
	})

	assert.NoError(t, err)
	assert.Nil(t, det)
	assert.Empty(t, mock.LastPrompt)
}

func TestDetect_GenerateFailure(t *testing.T) {
	mock := &MockLLMClient{Err: fmt.Errorf("provider down")}
	d := NewDetector(mock, 5)

	_, err := d.Detect(context.Background(), []model.RawEdge{
		{Source: "https://e.com/a", Destination: "https://e.com/b", DOMPath: "main > p"},
	})
	assert.Error(t, err)
}

func TestSamplePaths_BoundedAndDeterministic(t *testing.T) {
	d := NewDetector(&MockLLMClient{}, 2)

	var edges []model.RawEdge
	for _, src := range []string{"https://e.com/c", "https://e.com/a", "https://e.com/b"} {
		edges = append(edges,
			model.RawEdge{Source: src, DOMPath: "main > article"},
			model.RawEdge{Source: src, DOMPath: "footer > ul." + strings.TrimPrefix(src, "https://e.com/")},
		)
	}
	paths := d.samplePaths(edges)

	// Only the first two pages by URL contribute, shared paths appear once.
	assert.Equal(t, []string{"footer > ul.a", "main > article", "footer > ul.b"}, paths)
}

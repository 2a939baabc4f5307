package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
[audit]
max_rows = 1000
scope_prefix = "https://e.com/blog"

[semantic]
enabled = false
`), 0o644)
	assert.NoError(t, err)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 1000, cfg.Audit.MaxRows)
	assert.Equal(t, "https://e.com/blog", cfg.Audit.ScopePrefix)
	assert.False(t, cfg.Semantic.Enabled)

	// Untouched sections keep their defaults.
	assert.Equal(t, 300, cfg.Content.ThinContentWords)
	assert.Equal(t, 0.85, cfg.Semantic.SimilarityThreshold)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	assert.Error(t, err)
}

func TestValidate_BadAnchorPattern(t *testing.T) {
	cfg := Default()
	cfg.Classifier.MechanicalAnchorPatterns = append(cfg.Classifier.MechanicalAnchorPatterns, "([unclosed")
	assert.Error(t, cfg.Validate())
}

func TestValidate_RatioTables(t *testing.T) {
	cfg := Default()
	cfg.Scoring.RatioBreakpoints = []float64{0.30, 0.15}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scoring.RatioBreakpoints = []float64{0.15, 1.5}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scoring.RatioBaseScores = []float64{10, 30}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scoring.RatioBaseScores = []float64{10, 30, 50, 70, 150}
	assert.Error(t, cfg.Validate())
}

func TestValidate_SemanticBounds(t *testing.T) {
	cfg := Default()
	cfg.Semantic.SimilarityThreshold = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Semantic.MinClusterSize = 1
	assert.Error(t, cfg.Validate())
}

func TestValidate_ConversionTaxonomy(t *testing.T) {
	cfg := Default()
	cfg.Content.ConversionTaxonomy = append(cfg.Content.ConversionTaxonomy, ConversionRule{Category: "contact"})
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Content.ConversionTaxonomy = append(cfg.Content.ConversionTaxonomy, ConversionRule{})
	assert.Error(t, cfg.Validate())
}

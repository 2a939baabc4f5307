package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ConcurrencyConfig struct {
	Classify int `toml:"classify"`
}

type ClassifierConfig struct {
	MechanicalOrigins        []string `toml:"mechanical_origins"`
	MechanicalAnchorPatterns []string `toml:"mechanical_anchor_patterns"`
	MechanicalZonePatterns   []string `toml:"mechanical_zone_patterns"`
}

type ScoringConfig struct {
	MinAnchorChars       int `toml:"min_anchor_chars"`
	MaxAnchorWords       int `toml:"max_anchor_words"`
	MaxAnchorRepetition  int `toml:"max_anchor_repetition"`
	PenaltyTooShort      int `toml:"penalty_too_short"`
	PenaltyTooLong       int `toml:"penalty_too_long"`
	PenaltyOverOptimized int `toml:"penalty_over_optimized"`
	PenaltyURLAnchor     int `toml:"penalty_url_anchor"`
	// RatioBreakpoints must be strictly increasing fractions in (0,1);
	// RatioBaseScores has one more entry than breakpoints.
	RatioBreakpoints []float64 `toml:"ratio_breakpoints"`
	RatioBaseScores  []float64 `toml:"ratio_base_scores"`
}

type ConversionRule struct {
	Category string   `toml:"category"`
	Patterns []string `toml:"patterns"`
}

type ContentConfig struct {
	ThinContentWords   int              `toml:"thin_content_words"`
	CoherenceIdentical float64          `toml:"coherence_identical"`
	CoherenceSimilar   float64          `toml:"coherence_similar"`
	ConversionTaxonomy []ConversionRule `toml:"conversion_taxonomy"`
}

type SemanticConfig struct {
	Enabled             bool    `toml:"enabled"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MinClusterSize      int     `toml:"min_cluster_size"`
	MaxPages            int     `toml:"max_pages"`
	MaxRecsPerPage      int     `toml:"max_recommendations_per_page"`
}

type AuditConfig struct {
	MaxRows         int    `toml:"max_rows"`
	ScopePrefix     string `toml:"scope_prefix"`
	SiteRoot        string `toml:"site_root"`
	ZoneSamplePages int    `toml:"zone_sample_pages"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Classifier  ClassifierConfig  `toml:"classifier"`
	Scoring     ScoringConfig     `toml:"scoring"`
	Content     ContentConfig     `toml:"content"`
	Semantic    SemanticConfig    `toml:"semantic"`
	Audit       AuditConfig       `toml:"audit"`
}

// Default returns the built-in configuration. The pattern tables carry
// both French and English variants because the crawler exports this tool
// grew up on were localized.
func Default() *Config {
	return &Config{
		Concurrency: ConcurrencyConfig{Classify: 1},
		Classifier: ClassifierConfig{
			MechanicalOrigins: []string{
				"navigation", "nav", "menu", "header", "footer",
				"breadcrumb", "pagination", "en-tête", "pied de page",
			},
			MechanicalAnchorPatterns: []string{
				`^(accueil|home|menu|navigation)$`,
				`^(suivant|précédent|next|previous|page \d+)$`,
				`^(lire la suite|en savoir plus|voir plus|read more|more)$`,
				`^(contact|à propos|mentions légales|cgv|politique|privacy)$`,
				`^\d+$`,
				`^(cliquez ici|cliquer ici|ici|click here|here)$`,
				`^(retour|back|retour accueil)$`,
				`^(passer au contenu|skip to content)$`,
				`^(voir tout|see all|view all)$`,
			},
			MechanicalZonePatterns: []string{
				`(header|footer|nav|navigation|menu)`,
				`(breadcrumb|pagination|pager)`,
				`(sidebar|widget|aside)`,
				`role=["']?(navigation|menu|banner|contentinfo)["']?`,
			},
		},
		Scoring: ScoringConfig{
			MinAnchorChars:       4,
			MaxAnchorWords:       8,
			MaxAnchorRepetition:  5,
			PenaltyTooShort:      15,
			PenaltyTooLong:       10,
			PenaltyOverOptimized: 20,
			PenaltyURLAnchor:     25,
			RatioBreakpoints:     []float64{0.15, 0.30, 0.50, 0.70},
			RatioBaseScores:      []float64{10, 30, 50, 70, 90},
		},
		Content: ContentConfig{
			ThinContentWords:   300,
			CoherenceIdentical: 0.95,
			CoherenceSimilar:   0.70,
			ConversionTaxonomy: []ConversionRule{
				{Category: "contact", Patterns: []string{"contact", "nous-contacter", "contactez", "get-in-touch"}},
				{Category: "purchase", Patterns: []string{"achat", "acheter", "buy", "purchase", "commande", "commander", "order"}},
				{Category: "signup", Patterns: []string{"inscription", "register", "signup", "sign-up", "s-inscrire"}},
				{Category: "quote", Patterns: []string{"devis", "quote", "estimation", "demande", "request"}},
				{Category: "pricing", Patterns: []string{"prix", "pricing", "tarifs", "rates", "cost"}},
				{Category: "demo", Patterns: []string{"demo", "demonstration", "essai", "trial"}},
			},
		},
		Semantic: SemanticConfig{
			Enabled:             true,
			SimilarityThreshold: 0.85,
			MinClusterSize:      3,
			MaxPages:            2000,
			MaxRecsPerPage:      3,
		},
		Audit: AuditConfig{
			MaxRows:         500000,
			ZoneSamplePages: 5,
		},
	}
}

// Load reads TOML over the defaults, so a partial file only overrides
// the keys it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate is the fatal-at-startup gate: a config that fails here must
// never reach the pipeline.
func (c *Config) Validate() error {
	for _, p := range c.Classifier.MechanicalAnchorPatterns {
		if _, err := regexp.Compile(`(?i)` + p); err != nil {
			return fmt.Errorf("invalid mechanical anchor pattern '%s': %w", p, err)
		}
	}
	for _, p := range c.Classifier.MechanicalZonePatterns {
		if _, err := regexp.Compile(`(?i)` + p); err != nil {
			return fmt.Errorf("invalid mechanical zone pattern '%s': %w", p, err)
		}
	}

	bps := c.Scoring.RatioBreakpoints
	if len(c.Scoring.RatioBaseScores) != len(bps)+1 {
		return fmt.Errorf("ratio_base_scores needs %d entries for %d breakpoints, got %d",
			len(bps)+1, len(bps), len(c.Scoring.RatioBaseScores))
	}
	for i, b := range bps {
		if b <= 0 || b >= 1 {
			return fmt.Errorf("ratio breakpoint %g out of range (0,1)", b)
		}
		if i > 0 && b <= bps[i-1] {
			return fmt.Errorf("ratio breakpoints must be strictly increasing, got %g after %g", b, bps[i-1])
		}
	}
	for _, s := range c.Scoring.RatioBaseScores {
		if s < 0 || s > 100 {
			return fmt.Errorf("ratio base score %g out of range [0,100]", s)
		}
	}

	if t := c.Semantic.SimilarityThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("similarity threshold %g out of range (0,1]", t)
	}
	if c.Semantic.MinClusterSize < 2 {
		return fmt.Errorf("min cluster size must be at least 2, got %d", c.Semantic.MinClusterSize)
	}
	if c.Content.CoherenceSimilar > c.Content.CoherenceIdentical {
		return fmt.Errorf("coherence_similar (%g) must not exceed coherence_identical (%g)",
			c.Content.CoherenceSimilar, c.Content.CoherenceIdentical)
	}
	if c.Audit.MaxRows <= 0 {
		return fmt.Errorf("max_rows must be positive, got %d", c.Audit.MaxRows)
	}

	seen := map[string]bool{}
	for _, rule := range c.Content.ConversionTaxonomy {
		if rule.Category == "" {
			return fmt.Errorf("conversion taxonomy entry with empty category")
		}
		if seen[rule.Category] {
			return fmt.Errorf("duplicate conversion category '%s'", rule.Category)
		}
		seen[rule.Category] = true
	}

	return nil
}

package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/linkaudit/internal/config"
	"github.com/agenthands/linkaudit/internal/core"
	"github.com/agenthands/linkaudit/internal/core/model"
	"github.com/agenthands/linkaudit/internal/driver"
	"github.com/agenthands/linkaudit/internal/llm"
)

type Server struct {
	Auditor *core.Auditor
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using built-in defaults", cfgPath, err)
		cfg = config.Default()
	}

	// Env vars win over file values (simple override logic)
	if envProvider := os.Getenv("LLM_PROVIDER"); envProvider != "" {
		cfg.LLM.Provider = envProvider
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		cfg.LLM.Model = envModel
	}
	if envEmbeddingModel := os.Getenv("LLM_EMBEDDING_MODEL"); envEmbeddingModel != "" {
		cfg.LLM.EmbeddingModel = envEmbeddingModel
	}
	if envAPIKey := os.Getenv("LLM_API_KEY"); envAPIKey != "" {
		cfg.LLM.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("LLM_BASE_URL"); envBaseURL != "" {
		cfg.LLM.BaseURL = envBaseURL
	}
	if envURI := os.Getenv("MEMGRAPH_URI"); envURI != "" {
		cfg.Memgraph.URI = envURI
	}
	if envUser := os.Getenv("MEMGRAPH_USER"); envUser != "" {
		cfg.Memgraph.User = envUser
	}
	if envPass := os.Getenv("MEMGRAPH_PASSWORD"); envPass != "" {
		cfg.Memgraph.Password = envPass
	}
	if envScope := os.Getenv("AUDIT_SCOPE_PREFIX"); envScope != "" {
		cfg.Audit.ScopePrefix = envScope
	}
	if envRoot := os.Getenv("AUDIT_SITE_ROOT"); envRoot != "" {
		cfg.Audit.SiteRoot = envRoot
	}

	// Persistence is optional: without a Memgraph URI, results are only
	// returned over HTTP.
	var graphDriver driver.GraphDriver
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			log.Fatalf("Failed to connect to Memgraph: %v", err)
		}
		graphDriver = d
	} else {
		log.Println("MEMGRAPH_URI not set, running without persistence")
	}

	// The LLM is optional too: without it the classifier relies on its
	// pattern tables and clustering needs embeddings in the input.
	var llmClient llm.LLMClient
	var embedderClient llm.EmbedderClient
	if cfg.LLM.Provider != "" {
		llmClient, embedderClient, err = llm.NewClient(context.Background(), cfg.LLM)
		if err != nil {
			log.Fatalf("Failed to initialize LLM client: %v", err)
		}
		if embedderClient != nil {
			embedderClient = llm.NewCachingEmbedder(embedderClient)
		}
	} else {
		log.Println("No LLM provider configured, zone detection disabled")
	}

	a := core.NewAuditor(cfg, graphDriver, llmClient, embedderClient)
	if err := a.BuildIndices(context.Background()); err != nil {
		log.Printf("Warning: failed to build indices: %v", err)
	}

	return &Server{Auditor: a}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/audit", s.Audit)
	r.GET("/health", s.Health)

	return r
}

type AuditRequest struct {
	Edges       []model.RawEdge      `json:"edges"`
	Pages       []model.PageMetadata `json:"pages"`
	SiteRoot    string               `json:"site_root"`
	ScopePrefix string               `json:"scope_prefix"`
}

func (s *Server) Audit(c *gin.Context) {
	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Edges) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No edges provided"})
		return
	}

	auditor := s.Auditor
	if req.SiteRoot != "" || req.ScopePrefix != "" {
		cfg := *auditor.Config
		if req.SiteRoot != "" {
			cfg.Audit.SiteRoot = req.SiteRoot
		}
		if req.ScopePrefix != "" {
			cfg.Audit.ScopePrefix = req.ScopePrefix
		}
		auditor = core.NewAuditor(&cfg, auditor.Driver, auditor.LLM, auditor.Embedder)
	}

	result, err := auditor.Analyze(c.Request.Context(), req.Edges, req.Pages)
	if err != nil {
		var capErr *model.CapacityError
		if errors.As(err, &capErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": capErr.Error()})
			return
		}
		log.Printf("Failed to run audit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run audit"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

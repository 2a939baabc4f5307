package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/linkaudit/internal/config"
	"github.com/agenthands/linkaudit/internal/core"
	"github.com/agenthands/linkaudit/internal/core/model"
)

// Batch mode: audit a crawler export from the command line, no server
// and no database. Reads JSON arrays of link rows and page metadata,
// writes the full analysis result to stdout.
func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	linksPath := flag.String("links", "", "path to the link export (JSON array of edges)")
	pagesPath := flag.String("pages", "", "path to the content export (JSON array of pages, optional)")
	cfgPath := flag.String("config", "", "path to a TOML config file (optional)")
	scope := flag.String("scope", "", "URL prefix restricting the audit scope")
	root := flag.String("root", "", "site root URL, excluded from orphan detection")
	pretty := flag.Bool("pretty", false, "indent the JSON output")
	flag.Parse()

	if *linksPath == "" {
		fmt.Fprintln(os.Stderr, "usage: audit -links links.json [-pages pages.json] [-config config.toml]")
		os.Exit(2)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}
	if *scope != "" {
		cfg.Audit.ScopePrefix = *scope
	}
	if *root != "" {
		cfg.Audit.SiteRoot = *root
	}

	var edges []model.RawEdge
	if err := readJSON(*linksPath, &edges); err != nil {
		log.Fatalf("Failed to read link export: %v", err)
	}

	var pages []model.PageMetadata
	if *pagesPath != "" {
		if err := readJSON(*pagesPath, &pages); err != nil {
			log.Fatalf("Failed to read content export: %v", err)
		}
	}

	auditor := core.NewAuditor(cfg, nil, nil, nil)
	result, err := auditor.Analyze(context.Background(), edges, pages)
	if err != nil {
		log.Fatalf("Audit failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

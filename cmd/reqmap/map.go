package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"reqmap/internal/config"
	"reqmap/internal/index"
	"reqmap/internal/logging"
	"reqmap/internal/relevance"
	"reqmap/internal/requirement"
)

var (
	mapRequirement string
	mapIndexPath   string
	mapOut         string
	mapFormat      string
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Rank codebase files by relevance to a requirement",
	Long: `Map a requirement onto the code index and produce a change proposal.

Keywords are extracted from the requirement's summary, description,
acceptance criteria, labels, components, sub-tasks and comments, then
scored against indexed element names and file text. The ranked result
is written as a draft proposal for review.

Examples:
  reqmap map --requirement PROJ-42.json
  reqmap map --requirement PROJ-42.json --index build/code_index.json
  reqmap map --requirement PROJ-42.json --out proposal.json --format=human`,
	Run: runMap,
}

func init() {
	mapCmd.Flags().StringVar(&mapRequirement, "requirement", "", "Requirement JSON file (required)")
	mapCmd.Flags().StringVar(&mapIndexPath, "index", "", "Code index JSON (default from config)")
	mapCmd.Flags().StringVar(&mapOut, "out", "", "Proposal output path (default .reqmap/proposal-<ID>.json)")
	mapCmd.Flags().StringVar(&mapFormat, "format", "json", "Output format (json, human)")
	mapCmd.MarkFlagRequired("requirement")
	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) {
	start := time.Now()

	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg.Logging, mapFormat)
	ruleset := mustLoadRuleset(repoRoot, cfg)

	req, err := requirement.Load(mapRequirement)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading requirement: %v\n", err)
		os.Exit(1)
	}

	indexPath := mapIndexPath
	if indexPath == "" {
		indexPath = filepath.Join(repoRoot, cfg.Index.Path)
	}
	idx := mustLoadIndex(repoRoot, cfg, indexPath, logger)

	ranker := relevance.NewRanker(cfg.Mapping, ruleset)
	prop := ranker.Rank(newContext(), req, idx)

	out := mapOut
	if out == "" {
		out = filepath.Join(repoRoot, ".reqmap", "proposal-"+req.ID+".json")
	}
	if err := prop.Save(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving proposal: %v\n", err)
		os.Exit(1)
	}

	printResult(prop, mapFormat)

	logger.Info("mapping completed", map[string]interface{}{
		"requirementId": req.ID,
		"candidates":    len(prop.Candidates),
		"proposal":      out,
		"duration":      time.Since(start).Milliseconds(),
	})
}

// mustLoadIndex reads the code index JSON, falling back to the sqlite
// cache when the JSON is gone. A fresh JSON load refreshes the cache.
func mustLoadIndex(repoRoot string, cfg *config.Config, path string, logger *logging.Logger) *index.CodeIndex {
	idx, err := index.Load(path)
	if err == nil {
		if cfg.Index.CacheEnabled {
			cacheIndex(repoRoot, idx, logger)
		}
		return idx
	}

	if cfg.Index.CacheEnabled {
		if cached := cachedIndex(repoRoot, logger); cached != nil {
			logger.Warn("index file unavailable, using cached index", map[string]interface{}{
				"path": path,
			})
			return cached
		}
	}

	fmt.Fprintf(os.Stderr, "Error loading index: %v\n", err)
	os.Exit(1)
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reqmap/internal/index"
	"reqmap/internal/logging"
)

var (
	indexExportPath string
	indexImportPath string
	indexFormat     string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect, snapshot and cache the code index",
	Long: `Work with the code index produced by the external indexer.

Without flags, prints index statistics. --export writes a compressed
snapshot for sharing between machines; --import restores one into the
configured index path and cache.

Examples:
  reqmap index
  reqmap index --export index.snap.zst
  reqmap index --import index.snap.zst`,
	Run: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexExportPath, "export", "", "Write a zstd snapshot of the index")
	indexCmd.Flags().StringVar(&indexImportPath, "import", "", "Restore the index from a zstd snapshot")
	indexCmd.Flags().StringVar(&indexFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(indexCmd)
}

// IndexStatsCLI summarizes the loaded index for CLI output
type IndexStatsCLI struct {
	Path     string `json:"path"`
	Files    int    `json:"files"`
	Elements int    `json:"elements"`
	Cached   bool   `json:"cached"`
}

func runIndex(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg.Logging, indexFormat)
	indexPath := filepath.Join(repoRoot, cfg.Index.Path)

	if indexImportPath != "" {
		idx, err := index.ImportSnapshot(indexImportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing snapshot: %v\n", err)
			os.Exit(1)
		}
		if err := idx.Save(indexPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing index: %v\n", err)
			os.Exit(1)
		}
		if cfg.Index.CacheEnabled {
			cacheIndex(repoRoot, idx, logger)
		}
		logger.Info("snapshot imported", map[string]interface{}{
			"snapshot": indexImportPath,
			"files":    len(idx.Files),
		})
		return
	}

	idx := mustLoadIndex(repoRoot, cfg, indexPath, logger)

	if indexExportPath != "" {
		if err := index.ExportSnapshot(idx, indexExportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting snapshot: %v\n", err)
			os.Exit(1)
		}
		logger.Info("snapshot exported", map[string]interface{}{
			"snapshot": indexExportPath,
			"files":    len(idx.Files),
		})
		return
	}

	printResult(&IndexStatsCLI{
		Path:     indexPath,
		Files:    len(idx.Files),
		Elements: idx.TotalElements(),
		Cached:   cfg.Index.CacheEnabled,
	}, indexFormat)
}

// cacheIndex persists the index into the sqlite cache. Cache failures
// are logged, not fatal; the JSON index remains authoritative.
func cacheIndex(repoRoot string, idx *index.CodeIndex, logger *logging.Logger) {
	store, err := index.OpenStore(repoRoot, logger)
	if err != nil {
		logger.Warn("failed to open index cache", map[string]interface{}{"error": err.Error()})
		return
	}
	defer store.Close()

	if err := store.Put(idx); err != nil {
		logger.Warn("failed to cache index", map[string]interface{}{"error": err.Error()})
	}
}

// cachedIndex fetches the index from the sqlite cache, returning nil
// when the cache is absent or empty.
func cachedIndex(repoRoot string, logger *logging.Logger) *index.CodeIndex {
	store, err := index.OpenStore(repoRoot, logger)
	if err != nil {
		return nil
	}
	defer store.Close()

	idx, err := store.Get()
	if err != nil || idx == nil || len(idx.Files) == 0 {
		return nil
	}
	return idx
}

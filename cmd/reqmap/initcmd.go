package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reqmap/internal/config"
	rerr "reqmap/internal/errors"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize reqmap configuration",
	Long:  "Creates a .reqmap/ directory with default configuration in the current repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .reqmap directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return rerr.Wrap(rerr.InternalError, "failed to get current directory", err)
	}

	reqmapDir := filepath.Join(cwd, ".reqmap")
	if _, statErr := os.Stat(reqmapDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success (CI-friendly)
			fmt.Println("reqmap already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(reqmapDir, "config.json"))
			fmt.Println("\nRun 'reqmap init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(reqmapDir); removeErr != nil {
			return rerr.Wrap(rerr.IOFailure, "failed to remove existing .reqmap directory", removeErr)
		}
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = cwd
	if err := cfg.Save(cwd); err != nil {
		return err
	}

	fmt.Println("Initialized reqmap.")
	fmt.Printf("Configuration at: %s\n", filepath.Join(reqmapDir, "config.json"))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Generate a code index with your indexer into .reqmap/code_index.json")
	fmt.Println("  2. reqmap map --requirement <ticket.json>")
	fmt.Println("  3. reqmap review --proposal .reqmap/proposal-<ID>.json --confirm all")
	fmt.Println("  4. reqmap apply --proposal .reqmap/proposal-<ID>.json")
	return nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"reqmap/internal/apply"
	"reqmap/internal/proposal"
	"reqmap/internal/scm"
)

var (
	applyProposal string
	applyRepo     string
	applyFormat   string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a confirmed proposal to the working tree",
	Long: `Apply the suggested changes of a confirmed proposal.

Candidate files are processed independently by a worker pool; the
operations within one file run in order and the file is written only
if all of them succeed. A failing candidate is reported and does not
stop its siblings. Unconfirmed proposals are rejected.

Examples:
  reqmap apply --proposal .reqmap/proposal-PROJ-42.json
  reqmap apply --proposal p.json --repo /work/checkout --format=json`,
	Run: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyProposal, "proposal", "", "Proposal JSON file (required)")
	applyCmd.Flags().StringVar(&applyRepo, "repo", "", "Checkout to apply onto (default: current directory)")
	applyCmd.Flags().StringVar(&applyFormat, "format", "human", "Output format (json, human)")
	applyCmd.MarkFlagRequired("proposal")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) {
	start := time.Now()

	repoRoot := applyRepo
	if repoRoot == "" {
		repoRoot = mustGetRepoRoot()
	}
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg.Logging, applyFormat)

	prop, err := proposal.Load(applyProposal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading proposal: %v\n", err)
		os.Exit(1)
	}

	branch := scm.FeatureBranchName(cfg.Apply.BranchPrefix, prop.RequirementID, prop.Summary)
	if err := scm.NewLogBranchProvider(logger).CreateBranch(branch); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating branch: %v\n", err)
		os.Exit(1)
	}

	applier := apply.NewApplier(apply.NewOSWorkTree(repoRoot), logger, cfg.Apply.Workers)
	result, err := applier.Run(newContext(), prop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error applying proposal: %v\n", err)
		os.Exit(1)
	}
	result.BranchName = branch

	printResult(result, applyFormat)

	logger.Debug("apply completed", map[string]interface{}{
		"proposalId": prop.ProposalID,
		"duration":   time.Since(start).Milliseconds(),
	})

	if result.Failed() > 0 {
		os.Exit(1)
	}
}

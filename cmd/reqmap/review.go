package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reqmap/internal/proposal"
)

var (
	reviewProposal string
	reviewConfirm  string
	reviewEnrich   string
	reviewShow     bool
	reviewFormat   string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Inspect, enrich and confirm a change proposal",
	Long: `Review a draft proposal before it is applied.

--show (the default when no other flag is given) prints the proposal.
--enrich merges reviewer-authored suggested changes from a YAML file
into matching candidates; unknown paths become new candidates.
--confirm selects candidates ("all" or a 1-based list like "1,3,5")
and freezes the proposal; dropped candidates are removed and a
confirmed proposal rejects further edits.

Examples:
  reqmap review --proposal .reqmap/proposal-PROJ-42.json --show
  reqmap review --proposal p.json --enrich changes.yaml
  reqmap review --proposal p.json --confirm all
  reqmap review --proposal p.json --confirm 1,3`,
	Run: runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewProposal, "proposal", "", "Proposal JSON file (required)")
	reviewCmd.Flags().StringVar(&reviewConfirm, "confirm", "", `Confirm candidates: "all" or 1-based indices "1,3,5"`)
	reviewCmd.Flags().StringVar(&reviewEnrich, "enrich", "", "YAML file with suggested changes to merge")
	reviewCmd.Flags().BoolVar(&reviewShow, "show", false, "Print the proposal (default when no other flag is given)")
	reviewCmd.Flags().StringVar(&reviewFormat, "format", "human", "Output format (json, human)")
	reviewCmd.MarkFlagRequired("proposal")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg.Logging, reviewFormat)

	prop, err := proposal.Load(reviewProposal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading proposal: %v\n", err)
		os.Exit(1)
	}

	dirty := false

	if reviewEnrich != "" {
		enrichment, err := proposal.LoadEnrichment(reviewEnrich)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading enrichment: %v\n", err)
			os.Exit(1)
		}
		if err := prop.Merge(enrichment); err != nil {
			fmt.Fprintf(os.Stderr, "Error merging enrichment: %v\n", err)
			os.Exit(1)
		}
		dirty = true
		logger.Info("enrichment merged", map[string]interface{}{
			"enrichment": reviewEnrich,
			"files":      len(enrichment.Files),
		})
	}

	if reviewConfirm != "" {
		sel, err := proposal.ParseSelection(reviewConfirm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := prop.Confirm(sel); err != nil {
			fmt.Fprintf(os.Stderr, "Error confirming proposal: %v\n", err)
			os.Exit(1)
		}
		dirty = true
		logger.Info("proposal confirmed", map[string]interface{}{
			"proposalId": prop.ProposalID,
			"candidates": len(prop.Candidates),
		})
	}

	if dirty {
		if err := prop.Save(reviewProposal); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving proposal: %v\n", err)
			os.Exit(1)
		}
		// After a mutation, keep human output short unless the full
		// proposal was asked for.
		if !reviewShow && reviewFormat == "human" {
			state := "updated"
			if prop.Confirmed {
				state = "confirmed"
			}
			fmt.Printf("Proposal %s %s (%d candidates).\n", prop.ProposalID, state, len(prop.Candidates))
			return
		}
	}

	printResult(prop, reviewFormat)
}

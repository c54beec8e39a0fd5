// Package scm derives branch names for apply runs and abstracts the
// branch creation step so the applier stays checkout-agnostic.
package scm

import (
	"strings"

	"reqmap/internal/logging"
)

// maxSlugLen caps the summary part of a branch name so generated refs
// stay usable in terminals and CI logs.
const maxSlugLen = 50

// Slugify lowercases s, strips everything outside [a-z0-9 -], turns
// space runs into single hyphens and caps the result at maxSlugLen.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '\t':
			b.WriteRune(' ')
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// FeatureBranchName builds "<prefix>/<ticket>-<slug>" from a ticket ID
// and its summary, e.g. "feature/PROJ-42-add-rate-limiting".
func FeatureBranchName(prefix, ticketID, summary string) string {
	parts := []string{ticketID}
	if slug := Slugify(summary); slug != "" {
		parts = append(parts, slug)
	}
	return prefix + "/" + strings.Join(parts, "-")
}

// BranchProvider creates the branch an apply run writes onto.
type BranchProvider interface {
	CreateBranch(name string) error
}

// LogBranchProvider records the branch name without touching any
// checkout. It stands in until a real VCS integration is wired up.
type LogBranchProvider struct {
	logger *logging.Logger
}

// NewLogBranchProvider returns a provider that only logs.
func NewLogBranchProvider(logger *logging.Logger) *LogBranchProvider {
	return &LogBranchProvider{logger: logger}
}

func (p *LogBranchProvider) CreateBranch(name string) error {
	p.logger.Info("branch requested", map[string]interface{}{"branch": name})
	return nil
}

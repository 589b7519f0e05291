package service

import (
	"strings"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
)

// ReconcileCompletions rebuilds a completion map against the current
// requirement list. Every requirement starts incomplete; previously recorded
// values carry over for names still present and names no longer required are
// dropped. The input map is never modified.
func ReconcileCompletions(requirements []string, existing models.Completions) models.Completions {
	next := make(models.Completions, len(requirements))
	for _, name := range requirements {
		next[name] = false
	}
	for name, done := range existing {
		if _, ok := next[name]; ok {
			next[name] = done
		}
	}
	return next
}

// normalizeRequirements trims names and drops blanks and repeats, keeping order.
func normalizeRequirements(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

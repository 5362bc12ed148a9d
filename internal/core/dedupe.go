// ABOUTME: Near-duplicate removal by comparing a fixed-length content prefix
package core

import (
	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/util"
)

// DedupePrefix is the number of leading runes compared between results
const DedupePrefix = 200

// Dedupe drops results whose first DedupePrefix runes equal an earlier result's,
// keeping order, and caps the output at k. k <= 0 means no cap.
func Dedupe(results []models.RetrievalResult, k int) []models.RetrievalResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]models.RetrievalResult, 0, len(results))
	for _, r := range results {
		if k > 0 && len(out) >= k {
			break
		}
		key := util.TruncateRunes(r.Content, DedupePrefix)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}


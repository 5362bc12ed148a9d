// ABOUTME: Diversified sampling spreads picks across the beginning, middle and end of a book
package core

import (
	"sort"

	"github.com/harper/bookrag/internal/models"
)

// DiversifiedSample picks n chunks spread over three narrative bands.
// The pool is ordered by StartChar and cut into three contiguous bands; each band
// contributes its n/3 best-scoring chunks, the last band also takes the remainder.
// A band too small for its share leaves the gap to the best remaining chunks elsewhere.
// The sample is returned in StartChar order. Pools of at most n are returned unchanged.
func DiversifiedSample(pool []models.ScoredChunk, n int) []models.ScoredChunk {
	if len(pool) <= n {
		return pool
	}
	if n <= 0 {
		return nil
	}

	ordered := append([]models.ScoredChunk(nil), pool...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartChar < ordered[j].StartChar
	})

	band := len(ordered) / 3
	bounds := [][2]int{{0, band}, {band, 2 * band}, {2 * band, len(ordered)}}
	per := n / 3
	quotas := []int{per, per, n - 2*per}

	picked := make([]bool, len(ordered))
	taken := 0
	for b, bound := range bounds {
		for _, idx := range bestInRange(ordered, picked, bound[0], bound[1], quotas[b]) {
			picked[idx] = true
			taken++
		}
	}
	if taken < n {
		for _, idx := range bestInRange(ordered, picked, 0, len(ordered), n-taken) {
			picked[idx] = true
		}
	}

	out := make([]models.ScoredChunk, 0, n)
	for i, c := range ordered {
		if picked[i] {
			out = append(out, c)
		}
	}
	return out
}

// bestInRange returns up to limit unpicked indexes in [lo, hi) with the highest scores
func bestInRange(chunks []models.ScoredChunk, picked []bool, lo, hi, limit int) []int {
	var idxs []int
	for i := lo; i < hi; i++ {
		if !picked[i] {
			idxs = append(idxs, i)
		}
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return chunks[idxs[a]].Score > chunks[idxs[b]].Score
	})
	if len(idxs) > limit {
		idxs = idxs[:limit]
	}
	return idxs
}

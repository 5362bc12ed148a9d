// ABOUTME: Deterministic pseudo-embedding used when no real model is reachable
// ABOUTME: Feature-hashes lowercase word tokens into a fixed number of signed buckets
package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\p{L}+|\p{N}+`)

// Fake is deterministic: the same text always yields the same vector.
// Texts sharing words get positive cosine similarity, so retrieval degrades
// to lexical overlap rather than noise.
type Fake struct {
	dim int
}

// NewFake creates a fake provider of the given dimension
func NewFake(dim int) *Fake {
	if dim <= 0 {
		dim = 384
	}
	return &Fake{dim: dim}
}

// Name identifies the fallback in stats output
func (f *Fake) Name() string {
	return fmt.Sprintf("fake-deterministic-%d", f.dim)
}

// Dimension returns the vector length
func (f *Fake) Dimension() int {
	return f.dim
}

// Embed never fails
func (f *Fake) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, f.dim)

	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		tokens = []string{text}
	}

	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(f.dim))
		if sum>>63 == 1 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec, nil
}

// ABOUTME: Rune-safe string helpers shared by ingestion, retrieval and the CLI
package util

// TruncateRunes returns at most n runes of s
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// RuneLen counts runes without allocating
func RuneLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// ABOUTME: Query type labels that select a retrieval strategy
// ABOUTME: Includes parsing from user input and the default k per type
package models

import (
	"fmt"
	"strings"
)

// QueryType selects which retrieval strategy runs
type QueryType string

const (
	QuerySpecific QueryType = "SPECIFIC"
	QueryBroad    QueryType = "BROAD"
	QueryGraph    QueryType = "GRAPH"
	QueryMixed    QueryType = "MIXED"
	// QueryAuto asks the classifier to pick one of the four strategies
	QueryAuto QueryType = "AUTO"
)

// IsValid reports whether the type names a concrete retrieval strategy
func (q QueryType) IsValid() bool {
	switch q {
	case QuerySpecific, QueryBroad, QueryGraph, QueryMixed:
		return true
	default:
		return false
	}
}

// DefaultK returns the number of results to request when the caller gives none
func (q QueryType) DefaultK() int {
	switch q {
	case QueryBroad:
		return 15
	case QuerySpecific:
		return 25
	case QueryMixed:
		return 30
	default:
		return 20
	}
}

// ParseQueryType normalizes user input. Empty input means AUTO.
func ParseQueryType(s string) (QueryType, error) {
	q := QueryType(strings.ToUpper(strings.TrimSpace(s)))
	if q == "" || q == QueryAuto {
		return QueryAuto, nil
	}
	if !q.IsValid() {
		return "", fmt.Errorf("unknown query type %q (want SPECIFIC, BROAD, GRAPH, MIXED or AUTO)", s)
	}
	return q, nil
}

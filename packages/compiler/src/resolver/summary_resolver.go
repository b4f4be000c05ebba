package resolver

import (
	"sync"

	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/core"
)

// SummaryResolver holds precompiled summaries by type. Summaries are never evicted.
type SummaryResolver struct {
	mu        sync.RWMutex
	summaries map[*core.Type]*metadata.Summary
}

// NewSummaryResolver returns an empty resolver.
func NewSummaryResolver() *SummaryResolver {
	return &SummaryResolver{summaries: map[*core.Type]*metadata.Summary{}}
}

// AddSummary registers s, replacing an earlier summary of the same type.
func (s *SummaryResolver) AddSummary(summary *metadata.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.Type] = summary
}

// ResolveSummary returns the summary of t or nil.
func (s *SummaryResolver) ResolveSummary(t *core.Type) *metadata.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaries[t]
}

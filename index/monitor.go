package index

import "github.com/poiesic/lexidex/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSubQuerySplit(subQueries []string)
	AfterDenseSearch(subQuery string, ids []uint64)
	AfterSparseSearch(subQuery string, ids []uint64)
	AfterFusion(subQuery string, candidates int)
	VerbatimHit(chunk *core.Chunk)
	Finish(results []*core.ScoredChunk)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterSubQuerySplit(_ []string)        {}
func (n *noopMonitor) AfterDenseSearch(_ string, _ []uint64)  {}
func (n *noopMonitor) AfterSparseSearch(_ string, _ []uint64) {}
func (n *noopMonitor) AfterFusion(_ string, _ int)          {}
func (n *noopMonitor) VerbatimHit(_ *core.Chunk)            {}
func (n *noopMonitor) Finish(_ []*core.ScoredChunk)         {}

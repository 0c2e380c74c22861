// Package cachedoracle wraps an oracle with an in-process LRU memo.
//
// Warm-path re-walks of a cached subtree re-query the oracle for positions
// that were visited earlier in the same run but not yet marked explored; the
// memo keeps those repeats off the network.
package cachedoracle

import (
	"context"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/bookminer/internal/oracle"
	"github.com/discochess/bookminer/internal/stats"
)

// Compile-time check that Oracle implements oracle.Oracle.
var _ oracle.Oracle = (*Oracle)(nil)

// Oracle memoizes successful TopMoves responses from an underlying oracle.
type Oracle struct {
	underlying oracle.Oracle
	memo       *lru.Cache[string, []oracle.Candidate]
	stats      stats.Collector
}

// New creates a caching oracle holding at most size responses.
// If collector is nil, metrics are discarded.
func New(underlying oracle.Oracle, size int, collector stats.Collector) (*Oracle, error) {
	memo, err := lru.New[string, []oracle.Candidate](size)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Oracle{
		underlying: underlying,
		memo:       memo,
		stats:      collector,
	}, nil
}

// TopMoves returns the memoized response when present, otherwise delegates.
// Failed queries are not memoized, so a later retry reaches the service.
func (o *Oracle) TopMoves(ctx context.Context, fen string, breadth int) ([]oracle.Candidate, error) {
	key := fen + "#" + strconv.Itoa(breadth)

	if cached, ok := o.memo.Get(key); ok {
		o.stats.IncCounter(stats.MetricOracleCacheHits, 1)
		out := make([]oracle.Candidate, len(cached))
		copy(out, cached)
		return out, nil
	}
	o.stats.IncCounter(stats.MetricOracleCacheMisses, 1)

	candidates, err := o.underlying.TopMoves(ctx, fen, breadth)
	if err != nil {
		return nil, err
	}

	stored := make([]oracle.Candidate, len(candidates))
	copy(stored, candidates)
	o.memo.Add(key, stored)

	return candidates, nil
}

package models

import (
	"sort"
	"time"
)

// AggregateResult holds the three output maps of one aggregation pass.
// Pairs is symmetric: Pairs[a][b] == Pairs[b][a] for every recorded pair.
type AggregateResult struct {
	Unique       map[string]int
	TotalOverlap map[string]int
	Pairs        map[string]map[string]int
}

func NewAggregateResult() *AggregateResult {
	return &AggregateResult{
		Unique:       make(map[string]int),
		TotalOverlap: make(map[string]int),
		Pairs:        make(map[string]map[string]int),
	}
}

func (r *AggregateResult) incPair(a, b string) {
	pairs, ok := r.Pairs[a]
	if !ok {
		pairs = make(map[string]int)
		r.Pairs[a] = pairs
	}
	pairs[b]++
}

// AddChatter folds a single chatter's channel set into the result.
// Channel sets of size >= ceiling are skipped entirely (automation
// heuristic); singleton sets count unique chatters only.
func (r *AggregateResult) AddChatter(channels []string, ceiling int) {
	if ceiling > 0 && len(channels) >= ceiling {
		return
	}

	for _, channel := range channels {
		r.Unique[channel]++
	}

	if len(channels) < 2 {
		return
	}

	for _, channel := range channels {
		r.TotalOverlap[channel]++
	}

	for i := 0; i < len(channels); i++ {
		for j := i + 1; j < len(channels); j++ {
			r.incPair(channels[i], channels[j])
			r.incPair(channels[j], channels[i])
		}
	}
}

// Merge sums another accumulator into this one. Used to fold per-worker
// results single-threaded after the parallel pass.
func (r *AggregateResult) Merge(other *AggregateResult) {
	for channel, n := range other.Unique {
		r.Unique[channel] += n
	}
	for channel, n := range other.TotalOverlap {
		r.TotalOverlap[channel] += n
	}
	for a, pairs := range other.Pairs {
		dst, ok := r.Pairs[a]
		if !ok {
			dst = make(map[string]int, len(pairs))
			r.Pairs[a] = dst
		}
		for b, n := range pairs {
			dst[b] += n
		}
	}
}

// ChannelOverlap is one entry of a row's shared list.
type ChannelOverlap struct {
	Name   string `json:"name"`
	Shared int    `json:"shared"`
}

// OverlapRow is the persisted unit for one (window, channel).
// Key is a timestamp for the tick window and a date for the daily family.
type OverlapRow struct {
	Key          time.Time
	Channel      int
	TotalUnique  int
	TotalOverlap int
	Shared       []ChannelOverlap
}

// RankShared filters a channel's pair counts to those at or above the
// minimum threshold, sorted non-increasing by shared count and truncated
// to the cap. Ties order by name so output is deterministic.
func RankShared(pairs map[string]int, minShared, cap int) []ChannelOverlap {
	ranked := make([]ChannelOverlap, 0, len(pairs))
	for name, shared := range pairs {
		if shared < minShared {
			continue
		}
		ranked = append(ranked, ChannelOverlap{Name: name, Shared: shared})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Shared != ranked[j].Shared {
			return ranked[i].Shared > ranked[j].Shared
		}
		return ranked[i].Name < ranked[j].Name
	})
	if cap > 0 && len(ranked) > cap {
		ranked = ranked[:cap]
	}
	return ranked
}

package mapreduce

import (
	"sort"
)

// Entry is one ranked key.
type Entry[K comparable] struct {
	Key   K
	Count int
}

// TopK returns the k highest-count keys, descending. Ties keep first-seen
// order. When fewer than k keys exist, all of them are returned.
func TopK[K comparable](counts *Counts[K], k int) []Entry[K] {
	if counts == nil || k <= 0 {
		return []Entry[K]{}
	}

	ss := make([]Entry[K], 0, counts.Len())
	for _, key := range counts.order {
		ss = append(ss, Entry[K]{Key: key, Count: counts.n[key]})
	}

	// Sort by count (descending), stable for ties
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].Count > ss[j].Count
	})

	// Limit to top K
	limit := k
	if len(ss) < k {
		limit = len(ss)
	}

	return ss[:limit]
}

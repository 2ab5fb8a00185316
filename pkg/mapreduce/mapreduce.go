package mapreduce

// Counts is a frequency table that remembers the order in which keys were
// first seen, so rankings over it are deterministic.
type Counts[K comparable] struct {
	order []K
	n     map[K]int
}

func NewCounts[K comparable]() *Counts[K] {
	return &Counts[K]{n: make(map[K]int)}
}

// Add increments key by delta, recording it on first sight.
func (c *Counts[K]) Add(key K, delta int) {
	if _, ok := c.n[key]; !ok {
		c.order = append(c.order, key)
	}
	c.n[key] += delta
}

// Get returns the count for key, 0 when absent.
func (c *Counts[K]) Get(key K) int {
	return c.n[key]
}

// Len is the number of distinct keys.
func (c *Counts[K]) Len() int {
	return len(c.order)
}

// Keys returns the distinct keys in first-seen order.
func (c *Counts[K]) Keys() []K {
	out := make([]K, len(c.order))
	copy(out, c.order)
	return out
}

// Map exports the table as a plain map.
func (c *Counts[K]) Map() map[K]int {
	out := make(map[K]int, len(c.n))
	for k, v := range c.n {
		out[k] = v
	}
	return out
}

// Count generates a frequency table over items keyed by keyOf.
func Count[T any, K comparable](items []T, keyOf func(T) K) *Counts[K] {
	counts := NewCounts[K]()
	for _, item := range items {
		counts.Add(keyOf(item), 1)
	}
	return counts
}

// Reduce aggregates several frequency tables into one. First-seen order
// follows the order of the inputs.
func Reduce[K comparable](intermediate []*Counts[K]) *Counts[K] {
	final := NewCounts[K]()

	for _, counts := range intermediate {
		if counts == nil {
			continue
		}
		for _, key := range counts.order {
			final.Add(key, counts.n[key])
		}
	}

	return final
}

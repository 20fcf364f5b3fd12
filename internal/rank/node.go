// Package rank implements a ranked leaderboard index: an in-memory,
// multi-level, horizontally-linked ordered structure over (key, score)
// entries. Ordering is by score descending; ties are broken by insertion
// recency (a later insert with an equal score ranks lower than an earlier
// one).
//
// The structure has no concurrency guarantees of its own and performs no
// I/O — callers needing either wrap an Index the way internal/leaderboard
// wraps one.
package rank

import "cmp"

// Ordered is the constraint a score type must satisfy: a total order with
// no NaN-like values. Callers generalizing beyond integers must uphold
// this; nothing here special-cases floating point NaN.
type Ordered = cmp.Ordered

// node is one cell at one level of the tower.
//
// level is >= 1. Level 1 is the dense bottom lane holding every live entry
// exactly once; higher levels are sparse summary lanes. count is the
// number of bottom-lane entries summarized by this node's column segment —
// always 1 at level 1. key/score mirror the entry at the head of that
// column segment.
type node[K comparable, V Ordered] struct {
	level int
	count int
	key   K
	score V

	up, down, prev, next *node[K, V]
}

// arena allocates and recycles nodes so insert/remove churn doesn't hit
// the allocator on every operation.
type arena[K comparable, V Ordered] struct {
	free []*node[K, V]
}

// acquire returns a node with the requested fields and all link slots
// nil, reusing a freed node when one is available.
func (a *arena[K, V]) acquire(level, count int, key K, score V) *node[K, V] {
	if n := len(a.free); n > 0 {
		nd := a.free[n-1]
		a.free = a.free[:n-1]
		nd.level = level
		nd.count = count
		nd.key = key
		nd.score = score
		return nd
	}
	return &node[K, V]{level: level, count: count, key: key, score: score}
}

// release clears a node's link slots and returns it to the free pool.
func (a *arena[K, V]) release(n *node[K, V]) {
	n.up, n.down, n.prev, n.next = nil, nil, nil, nil
	a.free = append(a.free, n)
}

// reset drops the entire free list, releasing it to the garbage collector.
func (a *arena[K, V]) reset() {
	a.free = nil
}

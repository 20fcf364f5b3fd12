package rank

// DefaultFanout is the reference's default fanout (N): the target maximum
// column count at each non-bottom level before a promotion splits it.
const DefaultFanout = 4

// Index is a ranked leaderboard index: a multi-level, horizontally-linked
// tower over (key, score) entries, ordered by score descending with
// insertion-recency tie-breaking (a later insert/update with an equal
// score ranks lower than an earlier one).
//
// An Index is not safe for concurrent use; callers sharing one across
// goroutines must provide their own synchronization (see
// internal/leaderboard for an example).
type Index[K comparable, V Ordered] struct {
	root  *node[K, V]
	dir   directory[K, V]
	arena arena[K, V]

	fanout int
	size   int
}

// New constructs an empty Index with the given fanout. Fanout must be >= 2;
// callers wanting the reference default should pass DefaultFanout.
func New[K comparable, V Ordered](fanout int) *Index[K, V] {
	if fanout < 2 {
		fanout = DefaultFanout
	}
	return &Index[K, V]{
		dir:    newDirectory[K, V](),
		fanout: fanout,
	}
}

// SetRank inserts key with score if absent, or updates its score if
// present. A present key whose score is unchanged is a no-op. A present
// key whose new score keeps it between its current neighbors is updated
// in place with no structural change. Otherwise the key is repositioned:
// removed and reinserted at the position its new score demands.
func (ix *Index[K, V]) SetRank(key K, score V) {
	mapNode := ix.dir.lookup(key)
	if mapNode != nil && mapNode.score == score {
		return
	}

	if mapNode != nil {
		bottom := ix.bottomNode(mapNode)

		hasChanged := false
		if bottom.prev != nil && score >= bottom.prev.score {
			hasChanged = true
		}
		if bottom.next != nil && score <= bottom.next.score {
			hasChanged = true
		}

		if hasChanged {
			ix.RemoveRank(key)
		} else {
			for n := bottom; n != nil; n = n.up {
				n.score = score
			}
			return
		}
	}

	switch {
	case ix.root == nil:
		ix.createRoot(key, score)
		ix.size = 1

	case ix.root.score < score:
		ix.insertRoot(key, score)
		ix.size++

	default:
		parents := make([]*node[K, V], 0, max(ix.root.level-1, 0))
		prevNode := ix.findPrevNode(score, ix.root, &parents)
		if prevNode == nil {
			return
		}

		newNode := ix.insertNext(prevNode, key, score)
		if newNode == nil {
			return
		}
		ix.size++

		topNode := newNode
		for i := len(parents) - 1; i >= 0; i-- {
			parent := parents[i]
			parent.count++

			if parent.down != nil && parent.count > ipow(ix.fanout, parent.level-1) {
				topNode = ix.insertUp(topNode, parent)
			}
		}

		if ix.calcCount(ix.root) > ipow(ix.fanout, ix.root.level) {
			ix.increaseLevel()
		}
	}
}

// RemoveRank removes key if present. Absent keys are a no-op.
func (ix *Index[K, V]) RemoveRank(key K) {
	if ix.root != nil && ix.root.key == key {
		ix.removeRoot()
		ix.size--
		ix.dir.forget(key)
		ix.maybeDecreaseLevel()
		return
	}

	mapNode := ix.dir.lookup(key)
	if mapNode == nil {
		return
	}

	ix.removeNode(mapNode)
	ix.size--
	ix.dir.forget(key)
	ix.maybeDecreaseLevel()
}

// Clear removes every entry and drops the arena's free list.
func (ix *Index[K, V]) Clear() {
	ix.root = nil
	ix.dir.clear()
	ix.arena.reset()
	ix.size = 0
}

// Swap exchanges the contents of ix and other. O(1).
func (ix *Index[K, V]) Swap(other *Index[K, V]) {
	ix.root, other.root = other.root, ix.root
	ix.dir, other.dir = other.dir, ix.dir
	ix.arena, other.arena = other.arena, ix.arena
	ix.fanout, other.fanout = other.fanout, ix.fanout
	ix.size, other.size = other.size, ix.size
}

// MaxLevel returns the current root level, or 0 if the index is empty.
func (ix *Index[K, V]) MaxLevel() int {
	if ix.root == nil {
		return 0
	}
	return ix.root.level
}

// --- internal structural mutators, mirroring the reference's private methods ---

func (ix *Index[K, V]) topNode(n *node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}
	for n.up != nil {
		n = n.up
	}
	return n
}

func (ix *Index[K, V]) bottomNode(n *node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}
	for n.down != nil {
		n = n.down
	}
	return n
}

// findPrevNode descends from n, recording the node chosen at every level
// above the bottom into parents, and returns the bottom-lane node after
// which a new score belongs (insertion goes after every existing entry
// with an equal or greater score, per the tie-break rule).
func (ix *Index[K, V]) findPrevNode(score V, n *node[K, V], parents *[]*node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}

	for n != nil {
		for n.next != nil {
			if score > n.next.score {
				break
			}
			n = n.next
		}

		if n.down == nil {
			return n
		}

		*parents = append(*parents, n)
		n = n.down
	}

	return n
}

func (ix *Index[K, V]) removeNode(n *node[K, V]) {
	n = ix.topNode(n)
	if n == nil {
		return
	}

	for parent := n; parent != nil; parent = parent.prev {
		for parent.up != nil {
			parent = parent.up
			parent.count--
		}
	}

	for n != nil {
		down := n.down

		if n.level > 1 && n.prev != nil {
			n.prev.count += n.count - 1
		}

		if n.prev != nil {
			n.prev.next = n.next
		}
		if n.next != nil {
			n.next.prev = n.prev
		}

		ix.arena.release(n)
		n = down
	}
}

func (ix *Index[K, V]) createRoot(key K, score V) {
	ix.root = ix.arena.acquire(2, 1, key, score)

	bottom := ix.arena.acquire(1, 1, key, score)
	bottom.up = ix.root
	ix.root.down = bottom

	ix.dir.upsert(ix.root)
}

func (ix *Index[K, V]) insertRoot(key K, score V) {
	newNode := ix.insertNext(ix.bottomNode(ix.root), ix.root.key, ix.root.score)
	if newNode == nil {
		return
	}

	for n := ix.root; n != nil; n = n.down {
		n.key = key
		n.score = score
		if n.down != nil {
			n.count++
		}
	}

	ix.dir.upsert(ix.root)
}

func (ix *Index[K, V]) removeRoot() {
	bottom := ix.bottomNode(ix.root)
	if bottom == nil {
		return
	}

	next := bottom.next
	if next == nil {
		ix.removeNode(ix.root)
		ix.root = nil
		return
	}

	key, score := next.key, next.score
	for n := ix.root; n != nil; n = n.down {
		n.key = key
		n.score = score
	}
	ix.dir.upsert(ix.root)

	ix.removeNode(next)
}

func (ix *Index[K, V]) insertNext(n *node[K, V], key K, score V) *node[K, V] {
	if n == nil || n.level != 1 {
		return nil
	}

	newNode := ix.arena.acquire(1, 1, key, score)
	newNode.next = n.next
	newNode.prev = n
	if n.next != nil {
		n.next.prev = newNode
	}
	n.next = newNode

	ix.dir.upsert(newNode)
	return newNode
}

func (ix *Index[K, V]) insertUp(n, parent *node[K, V]) *node[K, V] {
	if n == nil || parent == nil || n.level+1 != parent.level {
		return nil
	}

	newNode := ix.arena.acquire(parent.level, ix.calcCount(n), n.key, n.score)
	newNode.down = n
	newNode.next = parent.next
	newNode.prev = parent
	if parent.next != nil {
		parent.next.prev = newNode
	}
	parent.next = newNode
	parent.count -= newNode.count

	n.up = newNode

	ix.dir.upsert(newNode)
	return newNode
}

func (ix *Index[K, V]) increaseLevel() {
	if ix.root == nil {
		return
	}

	newNode := ix.arena.acquire(ix.root.level+1, ix.calcCount(ix.root), ix.root.key, ix.root.score)
	newNode.down = ix.root
	ix.root.up = newNode
	ix.root = newNode

	ix.dir.upsert(ix.root)
}

// maybeDecreaseLevel is the optional symmetric counterpart to
// increaseLevel (spec's "MAY add a symmetric decrease_level"). It drops
// the root level only while doing so keeps the tower's top lane a
// singleton and the remaining root stays within its own fanout budget.
func (ix *Index[K, V]) maybeDecreaseLevel() {
	for ix.root != nil && ix.root.level > 2 && ix.root.down != nil && ix.root.down.next == nil {
		if ix.root.count > ipow(ix.fanout, ix.root.level-1) {
			break
		}

		old := ix.root
		ix.root = old.down
		ix.root.up = nil
		ix.dir.upsert(ix.root)
		ix.arena.release(old)
	}
}

func (ix *Index[K, V]) calcRank(n *node[K, V]) int {
	if n == nil {
		return 0
	}

	count := 0
	n = ix.topNode(n)

	for n.prev != nil {
		n = n.prev
		count += n.count
		n = ix.topNode(n)
	}

	return count
}

func (ix *Index[K, V]) calcCount(n *node[K, V]) int {
	if n == nil {
		return 0
	}

	count := n.count
	for n.next != nil {
		n = n.next
		if n.up != nil {
			break
		}
		count += n.count
	}

	return count
}

func ipow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

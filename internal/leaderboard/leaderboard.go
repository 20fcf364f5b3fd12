// Package leaderboard wraps the rank index with the concurrency,
// audit-logging, and batch-update surface a live service needs on top of
// the bare data structure.
package leaderboard

import (
	"sync"

	"ranklist/internal/rank"
)

// Entry is a (key, score, rank) triple returned by list-shaped queries.
type Entry struct {
	Key   string
	Score int64
	Rank  int
}

// Leaderboard provides safe concurrent access to a ranked leaderboard
// index. Reads take the read lock; every mutation takes the write lock
// and, when an audit log is attached, appends a RankEvent describing it.
//
// Operations:
//   - SetScore, IncrementScore, Remove: O(log n)
//   - Rank, Score: O(log n)
//   - Top, Around, Range: O(log n + k)
type Leaderboard struct {
	mu    sync.RWMutex
	index *rank.Index[string, int64]
	audit *AuditLog
}

// New creates an empty leaderboard with the given fanout. A fanout < 2
// falls back to rank.DefaultFanout, same as the underlying index.
func New(fanout int) *Leaderboard {
	return &Leaderboard{index: rank.New[string, int64](fanout)}
}

// AttachAuditLog wires an AuditLog that receives a RankEvent for every
// subsequent mutation. Passing nil detaches logging.
func (lb *Leaderboard) AttachAuditLog(log *AuditLog) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.audit = log
}

// SetScore inserts key with score if absent, or updates its score if
// present. O(log n).
func (lb *Leaderboard) SetScore(key string, score int64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.index.SetRank(key, score)
	lb.emit(EventTypeSetRank, key, score)
}

// IncrementScore adds delta to key's current score, treating an absent key
// as starting from zero. Returns the resulting score.
func (lb *Leaderboard) IncrementScore(key string, delta int64) int64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	current, _ := lb.index.GetScore(key)
	next := current + delta
	lb.index.SetRank(key, next)
	lb.emit(EventTypeSetRank, key, next)
	return next
}

// Remove removes key if present. Absent keys are a no-op.
func (lb *Leaderboard) Remove(key string) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.index.RemoveRank(key)
	lb.emit(EventTypeRemoveRank, key, 0)
}

// Rank returns key's 1-based rank, or 0 if it is absent.
func (lb *Leaderboard) Rank(key string) int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.index.RankOf(key)
}

// Score returns key's score and whether it is present.
func (lb *Leaderboard) Score(key string) (int64, bool) {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.index.GetScore(key)
}

// Top returns the n highest-ranked entries, fewer if the leaderboard is
// smaller than n.
func (lb *Leaderboard) Top(n int) []Entry {
	return lb.Range(1, n)
}

// Range returns up to limit consecutive entries starting at the 1-based
// rank start.
func (lb *Leaderboard) Range(start, limit int) []Entry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	entries := lb.index.ListFromRank(start, limit)
	result := make([]Entry, len(entries))
	for i, e := range entries {
		result[i] = Entry{Key: e.Key, Score: e.Score, Rank: start + i}
	}
	return result
}

// Around returns up to `above` entries ranked higher than key, key itself,
// and up to `below` entries ranked lower. Returns nil if key is absent.
func (lb *Leaderboard) Around(key string, above, below int) []Entry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	rankPos := lb.index.RankOf(key)
	if rankPos == 0 {
		return nil
	}

	start := rankPos - above
	if start < 1 {
		start = 1
	}
	limit := rankPos + below - start + 1

	entries := lb.index.ListFromRank(start, limit)
	result := make([]Entry, len(entries))
	for i, e := range entries {
		result[i] = Entry{Key: e.Key, Score: e.Score, Rank: start + i}
	}
	return result
}

// Size returns the number of entries currently tracked.
func (lb *Leaderboard) Size() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.index.Size()
}

// Clear removes every entry.
func (lb *Leaderboard) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.index.Clear()
	lb.emit(EventTypeClear, "", 0)
}

// BatchUpdate applies every (key, score) pair in updates. It holds the
// write lock for the entire batch so readers never observe a partial
// update.
func (lb *Leaderboard) BatchUpdate(updates map[string]int64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	for key, score := range updates {
		lb.index.SetRank(key, score)
		lb.emit(EventTypeSetRank, key, score)
	}
}

// emit records a RankEvent if an audit log is attached. Must be called
// with lb.mu held.
func (lb *Leaderboard) emit(eventType EventType, key string, score int64) {
	if lb.audit == nil {
		return
	}
	lb.audit.Emit(NewRankEvent(eventType, key, score))
}

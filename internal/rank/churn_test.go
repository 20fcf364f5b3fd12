package rank

import (
	"fmt"
	"math/rand"
	"testing"
)

// TestChurn mirrors the design's churn scenario: seed with random entries,
// then hammer the index with a random mix of sets and removes, checking
// every quantified invariant after every single operation.
func TestChurn(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping churn test in short mode")
	}

	const (
		seedCount = 10000
		opCount   = 10000
		keySpace  = 500
	)

	rng := rand.New(rand.NewSource(42))
	ix := New[string, int](DefaultFanout)
	live := make(map[string]int)

	key := func(i int) string { return fmt.Sprintf("k%d", i) }

	for i := 0; i < seedCount; i++ {
		k := key(rng.Intn(keySpace))
		score := rng.Intn(1_000_000)
		ix.SetRank(k, score)
		live[k] = score
	}
	for _, err := range ix.CheckInvariants() {
		t.Fatalf("after seeding: %v", err)
	}

	for i := 0; i < opCount; i++ {
		k := key(rng.Intn(keySpace))
		if rng.Intn(2) == 0 {
			score := rng.Intn(1_000_000)
			ix.SetRank(k, score)
			live[k] = score
		} else {
			ix.RemoveRank(k)
			delete(live, k)
		}

		for _, err := range ix.CheckInvariants() {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}

	if got := ix.Size(); got != len(live) {
		t.Fatalf("Size() = %d, want %d", got, len(live))
	}
	for k, score := range live {
		if got, ok := ix.GetScore(k); !ok || got != score {
			t.Errorf("GetScore(%s) = %d, %v, want %d, true", k, got, ok, score)
		}
	}
}

package leaderboard

import "testing"

func TestSetScoreAndRank(t *testing.T) {
	lb := New(4)
	lb.SetScore("alice", 100)
	lb.SetScore("bob", 200)
	lb.SetScore("carol", 150)

	if got := lb.Rank("bob"); got != 1 {
		t.Errorf("Rank(bob) = %d, want 1", got)
	}
	if got := lb.Rank("carol"); got != 2 {
		t.Errorf("Rank(carol) = %d, want 2", got)
	}
	if got := lb.Rank("alice"); got != 3 {
		t.Errorf("Rank(alice) = %d, want 3", got)
	}
	if got := lb.Rank("dave"); got != 0 {
		t.Errorf("Rank(dave) = %d, want 0", got)
	}
}

func TestIncrementScore(t *testing.T) {
	lb := New(4)

	if got := lb.IncrementScore("alice", 10); got != 10 {
		t.Errorf("IncrementScore(alice, 10) = %d, want 10", got)
	}
	if got := lb.IncrementScore("alice", 5); got != 15 {
		t.Errorf("IncrementScore(alice, 5) = %d, want 15", got)
	}

	score, ok := lb.Score("alice")
	if !ok || score != 15 {
		t.Errorf("Score(alice) = %d, %v, want 15, true", score, ok)
	}
}

func TestRemove(t *testing.T) {
	lb := New(4)
	lb.SetScore("alice", 10)
	lb.SetScore("bob", 20)

	lb.Remove("bob")

	if got := lb.Rank("bob"); got != 0 {
		t.Errorf("Rank(bob) = %d, want 0", got)
	}
	if got := lb.Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
}

func TestTop(t *testing.T) {
	lb := New(4)
	lb.SetScore("alice", 10)
	lb.SetScore("bob", 30)
	lb.SetScore("carol", 20)

	top := lb.Top(2)
	if len(top) != 2 {
		t.Fatalf("len(Top(2)) = %d, want 2", len(top))
	}
	if top[0].Key != "bob" || top[0].Rank != 1 {
		t.Errorf("top[0] = %+v, want bob at rank 1", top[0])
	}
	if top[1].Key != "carol" || top[1].Rank != 2 {
		t.Errorf("top[1] = %+v, want carol at rank 2", top[1])
	}
}

func TestAround(t *testing.T) {
	lb := New(4)
	for i, key := range []string{"a", "b", "c", "d", "e"} {
		lb.SetScore(key, int64(100-i))
	}

	around := lb.Around("c", 1, 1)
	if len(around) != 3 {
		t.Fatalf("len(Around(c, 1, 1)) = %d, want 3", len(around))
	}
	wantKeys := []string{"b", "c", "d"}
	for i, want := range wantKeys {
		if around[i].Key != want {
			t.Errorf("around[%d].Key = %s, want %s", i, around[i].Key, want)
		}
	}
}

func TestAroundMissingKey(t *testing.T) {
	lb := New(4)
	lb.SetScore("alice", 10)

	if got := lb.Around("missing", 1, 1); got != nil {
		t.Errorf("Around(missing) = %v, want nil", got)
	}
}

func TestClear(t *testing.T) {
	lb := New(4)
	lb.SetScore("alice", 10)
	lb.SetScore("bob", 20)

	lb.Clear()

	if got := lb.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}
	if got := lb.Rank("alice"); got != 0 {
		t.Errorf("Rank(alice) = %d, want 0", got)
	}
}

func TestBatchUpdate(t *testing.T) {
	lb := New(4)
	lb.BatchUpdate(map[string]int64{
		"alice": 10,
		"bob":   30,
		"carol": 20,
	})

	if got := lb.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
	if got := lb.Rank("bob"); got != 1 {
		t.Errorf("Rank(bob) = %d, want 1", got)
	}
}

func TestAuditLogReceivesEvents(t *testing.T) {
	log := NewAuditLog()
	if err := log.Start(""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer log.Stop()

	lb := New(4)
	lb.AttachAuditLog(log)

	lb.SetScore("alice", 10)
	lb.Remove("alice")
	lb.Clear()

	stats := log.GetStats()
	if stats.Total != 3 {
		t.Errorf("GetStats().Total = %d, want 3", stats.Total)
	}
}

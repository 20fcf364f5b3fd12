package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ranklist/internal/api"
	"ranklist/internal/leaderboard"
)

func newTestRouter(t *testing.T, adminKey string) (*leaderboard.Leaderboard, http.Handler) {
	t.Helper()

	lb := leaderboard.New(4)
	router := api.NewRouter(api.RouterConfig{
		Leaderboard: lb,
		AdminKey:    adminKey,
		RateLimitConfig: &api.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
		},
		DisableLogging: true,
	})
	return lb, router
}

func TestSetRankEndpoint(t *testing.T) {
	_, router := newTestRouter(t, "")
	ts := httptest.NewServer(router)
	defer ts.Close()

	body, _ := json.Marshal(map[string]interface{}{"key": "alice", "score": 100})
	resp, err := http.Post(ts.URL+"/api/rank", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/rank: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["key"] != "alice" {
		t.Errorf("key = %v, want alice", got["key"])
	}
	if got["rank"] != float64(1) {
		t.Errorf("rank = %v, want 1", got["rank"])
	}
}

func TestGetRankEndpointMissingKey(t *testing.T) {
	_, router := newTestRouter(t, "")
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/rank/ghost")
	if err != nil {
		t.Fatalf("GET /api/rank/ghost: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRemoveRankEndpoint(t *testing.T) {
	lb, router := newTestRouter(t, "")
	ts := httptest.NewServer(router)
	defer ts.Close()

	lb.SetScore("bob", 50)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/rank/bob", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/rank/bob: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := lb.Rank("bob"); got != 0 {
		t.Errorf("Rank(bob) after DELETE = %d, want 0", got)
	}
}

func TestTopEndpoint(t *testing.T) {
	lb, router := newTestRouter(t, "")
	ts := httptest.NewServer(router)
	defer ts.Close()

	lb.SetScore("a", 10)
	lb.SetScore("b", 30)
	lb.SetScore("c", 20)

	resp, err := http.Get(ts.URL + "/api/top?n=2")
	if err != nil {
		t.Fatalf("GET /api/top: %v", err)
	}
	defer resp.Body.Close()

	var entries []leaderboard.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Key != "b" {
		t.Errorf("entries[0].Key = %s, want b", entries[0].Key)
	}
}

func TestSizeEndpoint(t *testing.T) {
	lb, router := newTestRouter(t, "")
	ts := httptest.NewServer(router)
	defer ts.Close()

	lb.SetScore("a", 1)
	lb.SetScore("b", 2)

	resp, err := http.Get(ts.URL + "/api/size")
	if err != nil {
		t.Fatalf("GET /api/size: %v", err)
	}
	defer resp.Body.Close()

	var got map[string]int
	json.NewDecoder(resp.Body).Decode(&got)
	if got["size"] != 2 {
		t.Errorf("size = %d, want 2", got["size"])
	}
}

func TestClearEndpointRequiresAdminKey(t *testing.T) {
	lb, router := newTestRouter(t, "secret")
	ts := httptest.NewServer(router)
	defer ts.Close()

	lb.SetScore("a", 1)

	resp, err := http.Post(ts.URL+"/api/clear", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/clear: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if lb.Size() != 1 {
		t.Errorf("Size() = %d, want 1 (unauthorized clear should be a no-op)", lb.Size())
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/clear", nil)
	req.Header.Set("X-Admin-Key", "secret")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authorized POST /api/clear: %v", err)
	}
	defer resp2.Body.Close()

	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("authorized status = %d, want 200", resp2.StatusCode)
	}
	if lb.Size() != 0 {
		t.Errorf("Size() after authorized clear = %d, want 0", lb.Size())
	}
}

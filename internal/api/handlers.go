package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler methods for routerHandlers.
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleSetRank(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Score int64  `json:"score"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		writeError(w, "key is required", http.StatusBadRequest)
		return
	}

	h.leaderboard.SetScore(req.Key, req.Score)
	if h.hub != nil {
		h.hub.Broadcast("rank:changed", map[string]interface{}{
			"key":   req.Key,
			"score": req.Score,
			"rank":  h.leaderboard.Rank(req.Key),
		})
	}

	writeJSON(w, map[string]interface{}{
		"key":   req.Key,
		"score": req.Score,
		"rank":  h.leaderboard.Rank(req.Key),
	})
}

func (h *routerHandlers) handleRemoveRank(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	h.leaderboard.Remove(key)
	if h.hub != nil {
		h.hub.Broadcast("rank:removed", map[string]interface{}{"key": key})
	}

	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleGetRank(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	score, ok := h.leaderboard.Score(key)
	if !ok {
		writeError(w, "key not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]interface{}{
		"key":   key,
		"score": score,
		"rank":  h.leaderboard.Rank(key),
	})
}

func (h *routerHandlers) handleTop(w http.ResponseWriter, r *http.Request) {
	n := queryInt(r, "n", 10)
	writeJSON(w, h.leaderboard.Top(n))
}

func (h *routerHandlers) handleRange(w http.ResponseWriter, r *http.Request) {
	start := queryInt(r, "start", 1)
	limit := queryInt(r, "limit", 10)
	writeJSON(w, h.leaderboard.Range(start, limit))
}

func (h *routerHandlers) handleAround(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	above := queryInt(r, "above", 3)
	below := queryInt(r, "below", 3)

	entries := h.leaderboard.Around(key, above, below)
	if entries == nil {
		writeError(w, "key not found", http.StatusNotFound)
		return
	}

	writeJSON(w, entries)
}

func (h *routerHandlers) handleSize(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]int{"size": h.leaderboard.Size()})
}

func (h *routerHandlers) handleClear(w http.ResponseWriter, r *http.Request) {
	h.leaderboard.Clear()
	if h.hub != nil {
		h.hub.Broadcast("rank:cleared", nil)
	}
	writeJSON(w, map[string]bool{"success": true})
}

// Helper functions (package-level for reuse).

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package api

import (
	"encoding/json"
	"net/http"

	"space-defender/internal/game"
)

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		writeError(w, "no snapshot published yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"maxPlayers":  h.maxPlayers,
		"snapshotSeq": h.snapshots.Sequence(),
	}
	if h.slots != nil {
		stats["connected"] = h.slots.Count()
	}
	if snap, ok := h.snapshots.Latest(); ok {
		stats["phase"] = game.Phase(snap.GameState).String()
		stats["level"] = snap.Level
		stats["score"] = snap.Score
		stats["enemies"] = len(snap.Enemies)
		stats["bullets"] = len(snap.Bullets)
		stats["powerups"] = len(snap.PowerUps)
	}
	if h.rateLimiter != nil {
		stats["rateLimiter"] = h.rateLimiter.Stats()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleGetWeapons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, game.WeaponSpecs)
}

func (h *routerHandlers) handleGetEnemies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, game.EnemySpecs)
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

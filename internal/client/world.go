package client

import (
	"space-defender/internal/game"
	"space-defender/internal/protocol"
)

// World is the client's view of the authoritative state. It holds no
// simulation of its own: every Apply wholesale-replaces the previous view
// with the server's snapshot, so applying the same snapshot twice is a
// no-op.
type World struct {
	LocalSlot int

	Players  []protocol.PlayerState
	Enemies  []protocol.EnemyState
	Bullets  []protocol.BulletState
	PowerUps []protocol.PowerUpState

	Score         int
	Coins         int
	Level         int
	TimeRemaining float64
	Phase         game.Phase
}

func NewWorld(localSlot int) *World {
	return &World{LocalSlot: localSlot}
}

// Apply replaces the view with a server snapshot. Entities with type tags
// this build doesn't know are dropped rather than rendered as garbage; a
// newer server may ship types an older client has no assets for.
func (w *World) Apply(snap protocol.Snapshot) {
	w.Players = append(w.Players[:0], snap.Players...)

	w.Enemies = w.Enemies[:0]
	for _, e := range snap.Enemies {
		if _, ok := game.EnemySpecs[e.EnemyType]; ok {
			w.Enemies = append(w.Enemies, e)
		}
	}

	w.Bullets = w.Bullets[:0]
	for _, b := range snap.Bullets {
		if _, ok := game.WeaponSpecs[b.WeaponType]; ok {
			w.Bullets = append(w.Bullets, b)
		}
	}

	w.PowerUps = w.PowerUps[:0]
	for _, p := range snap.PowerUps {
		if knownPowerType(p.PowerType) {
			w.PowerUps = append(w.PowerUps, p)
		}
	}

	w.Score = snap.Score
	w.Coins = snap.Coins
	w.Level = snap.Level
	w.TimeRemaining = snap.TimeRemaining
	w.Phase = game.Phase(snap.GameState)
}

// Me returns the local player's state, or nil while the server hasn't
// seated this slot (lobby, or a snapshot from before the round started).
func (w *World) Me() *protocol.PlayerState {
	if w.LocalSlot < 0 || w.LocalSlot >= len(w.Players) {
		return nil
	}
	return &w.Players[w.LocalSlot]
}

func knownPowerType(tag string) bool {
	for _, t := range game.PowerTypes {
		if t == tag {
			return true
		}
	}
	return false
}

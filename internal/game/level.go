package game

import (
	"math/rand"
	"time"
)

// Level governs one round's spawn scheduling and win condition. Spawn cadence
// tightens as levels climb (with a floor) while the time limit grows.
type Level struct {
	Num            int
	EnemiesToSpawn int
	EnemiesSpawned int
	SpawnDelay     int // ticks between enemy spawns

	TimeLimit     float64 // seconds
	TimeRemaining float64
	Start         time.Time

	spawnTimer   int
	powerupTimer int
	powerupDelay int
}

// NewLevel derives the round parameters for level n.
func NewLevel(n, baseTimeLimit, timeBonus int) *Level {
	delay := 80 - n*3
	if delay < 40 {
		delay = 40
	}
	limit := float64(baseTimeLimit + n*timeBonus)
	return &Level{
		Num:            n,
		EnemiesToSpawn: 10 + n*5,
		SpawnDelay:     delay,
		TimeLimit:      limit,
		TimeRemaining:  limit,
		Start:          time.Now(),
		powerupDelay:   300,
	}
}

// UpdateTimer recomputes the wall-clock countdown. Returns false once the
// round is out of time.
func (l *Level) UpdateTimer() bool {
	elapsed := time.Since(l.Start).Seconds()
	l.TimeRemaining = l.TimeLimit - elapsed
	if l.TimeRemaining < 0 {
		l.TimeRemaining = 0
	}
	return l.TimeRemaining > 0
}

// ShouldSpawnEnemy advances the spawn countdown and reports whether an enemy
// is due this tick. It also accounts the spawn against the level target.
func (l *Level) ShouldSpawnEnemy() bool {
	if l.EnemiesSpawned >= l.EnemiesToSpawn {
		return false
	}
	l.spawnTimer++
	if l.spawnTimer < l.SpawnDelay {
		return false
	}
	l.spawnTimer = 0
	l.EnemiesSpawned++
	return true
}

// ShouldSpawnPowerUp fires on a fixed period combined with a probability roll.
func (l *Level) ShouldSpawnPowerUp(rng *rand.Rand, odds float64) bool {
	l.powerupTimer++
	if l.powerupTimer < l.powerupDelay {
		return false
	}
	l.powerupTimer = 0
	return rng.Float64() < odds
}

// Cleared reports the win condition: the full quota spawned and none left.
func (l *Level) Cleared(liveEnemies int) bool {
	return l.EnemiesSpawned >= l.EnemiesToSpawn && liveEnemies == 0
}

package game

import (
	"log"
	"math/rand"
	"time"

	"space-defender/internal/config"
	"space-defender/internal/protocol"
)

// MaxPlayers is the number of co-op slots in a round. The registry, the
// input array and the spawn table all size off this.
const MaxPlayers = 2

// Engine owns the authoritative world state. All mutation happens on the
// tick goroutine; everything outside the loop observes the world through
// the SnapshotBuffer.
type Engine struct {
	cfg    config.GameConfig
	pcfg   config.PlayerConfig
	limits config.ResourceLimits

	rng *rand.Rand

	phase    Phase
	players  [MaxPlayers]*Player
	enemies  []*Enemy
	bullets  []*Bullet
	powerups []*PowerUp

	level     *Level
	levelNum  int
	tickCount uint64

	snapshots *SnapshotBuffer

	// enemy tags we already warned about, so a corrupt spec table
	// doesn't flood the log
	badTags map[string]bool
}

func NewEngine(cfg config.GameConfig, pcfg config.PlayerConfig, limits config.ResourceLimits) *Engine {
	return &Engine{
		cfg:       cfg,
		pcfg:      pcfg,
		limits:    limits,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		phase:     PhaseWaiting,
		enemies:   make([]*Enemy, 0, limits.MaxEnemies),
		bullets:   make([]*Bullet, 0, limits.MaxBullets),
		powerups:  make([]*PowerUp, 0, limits.MaxPowerUps),
		levelNum:  1,
		snapshots: NewSnapshotBuffer(limits),
		badTags:   make(map[string]bool),
	}
}

func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) Level() int { return e.levelNum }

func (e *Engine) TickCount() uint64 { return e.tickCount }

func (e *Engine) EnemyCount() int { return len(e.enemies) }

func (e *Engine) BulletCount() int { return len(e.bullets) }

func (e *Engine) PowerUpCount() int { return len(e.powerups) }

// Snapshots exposes the snapshot buffer for readers outside the tick loop
// (broadcast path, HTTP state API, spectator hub).
func (e *Engine) Snapshots() *SnapshotBuffer { return e.snapshots }

// StartRound moves the engine into PLAYING. Players surviving a completed
// level keep their coins and score; after a game over fresh players are
// seated.
func (e *Engine) StartRound() {
	spawnY := e.cfg.FieldHeight - 100
	spawnX := [MaxPlayers]float64{
		e.cfg.FieldWidth / 3,
		2 * e.cfg.FieldWidth / 3,
	}

	for slot := 0; slot < MaxPlayers; slot++ {
		if e.players[slot] == nil {
			e.players[slot] = NewPlayer(slot, spawnX[slot], spawnY, e.pcfg)
		} else {
			e.players[slot].Reset(spawnX[slot], spawnY)
		}
	}

	e.enemies = e.enemies[:0]
	e.bullets = e.bullets[:0]
	e.powerups = e.powerups[:0]

	e.level = NewLevel(e.levelNum, e.cfg.LevelTimeLimit, e.cfg.LevelTimeBonus)
	e.tickCount = 0
	e.phase = PhasePlaying

	log.Printf("🚀 round started: level %d, %d enemies to spawn, %.0fs on the clock",
		e.levelNum, e.level.EnemiesToSpawn, e.level.TimeLimit)
}

// ResetToWaiting returns the engine to the lobby after a terminal phase.
// A cleared level carries the squad into the next one; a game over starts
// the campaign over.
func (e *Engine) ResetToWaiting() {
	if e.phase == PhaseLevelComplete {
		e.levelNum++
	} else {
		e.levelNum = 1
		for slot := range e.players {
			e.players[slot] = nil
		}
	}

	e.enemies = e.enemies[:0]
	e.bullets = e.bullets[:0]
	e.powerups = e.powerups[:0]
	e.level = nil
	e.phase = PhaseWaiting
}

// PublishWaiting pushes a lobby snapshot so clients connected before the
// round starts see the WAITING phase.
func (e *Engine) PublishWaiting() protocol.Snapshot {
	snap := e.snapshots.AcquireWrite()
	snap.Level = e.levelNum
	snap.GameState = int(PhaseWaiting)
	out := *snap
	e.snapshots.PublishWrite()
	return out
}

// Tick advances the world by one simulation step and publishes the
// resulting snapshot. inputs holds the latest message per slot; connected
// is how many slots currently have a live session.
func (e *Engine) Tick(inputs [MaxPlayers]protocol.ClientMessage, connected int) protocol.Snapshot {
	if e.phase != PhasePlaying {
		return e.publish()
	}
	e.tickCount++

	e.applyInputs(inputs)

	if connected < MaxPlayers {
		log.Printf("🔌 player disconnected mid-game, %d/%d remain. ending round", connected, MaxPlayers)
		e.phase = PhaseGameOver
		return e.publish()
	}

	if !e.level.UpdateTimer() {
		log.Printf("⏰ level timer expired, ending round")
		e.phase = PhaseGameOver
		return e.publish()
	}

	for _, p := range e.players {
		p.TickTimers()
		if p.Health <= 0 {
			log.Printf("💀 player %d died, ending round", p.Slot+1)
			e.phase = PhaseGameOver
			return e.publish()
		}
	}

	e.spawnEnemies()
	e.spawnPowerUps()
	e.advanceEntities()
	e.resolveCollisions()

	if e.level.Cleared(len(e.enemies)) {
		log.Printf("🏆 level %d cleared", e.levelNum)
		e.phase = PhaseLevelComplete
	}

	return e.publish()
}

func (e *Engine) applyInputs(inputs [MaxPlayers]protocol.ClientMessage) {
	for slot, msg := range inputs {
		p := e.players[slot]
		if p == nil {
			continue
		}

		var dx, dy float64
		for _, key := range msg.Keys {
			switch key {
			case protocol.KeyLeft:
				dx -= p.Speed
			case protocol.KeyRight:
				dx += p.Speed
			case protocol.KeyUp:
				dy -= p.Speed
			case protocol.KeyDown:
				dy += p.Speed
			}
		}
		p.Move(dx, dy, e.cfg.FieldWidth, e.cfg.FieldHeight)

		if msg.Shoot && len(e.bullets) < e.limits.MaxBullets {
			fired := p.Shoot(DefaultWeapon)
			// triple shot can fire a batch; never grow past the cap
			if room := e.limits.MaxBullets - len(e.bullets); len(fired) > room {
				fired = fired[:room]
			}
			e.bullets = append(e.bullets, fired...)
		}
	}
}

func (e *Engine) spawnEnemies() {
	if len(e.enemies) >= e.limits.MaxEnemies {
		return
	}
	if !e.level.ShouldSpawnEnemy() {
		return
	}

	tag := RandomEnemyType(e.levelNum, e.rng)
	x := 50 + e.rng.Float64()*(e.cfg.FieldWidth-100)
	enemy := NewEnemy(tag, x, -50, e.levelNum, e.rng)
	if enemy == nil {
		if !e.badTags[tag] {
			e.badTags[tag] = true
			log.Printf("⚠️ unknown enemy type %q, skipping spawn", tag)
		}
		return
	}
	e.enemies = append(e.enemies, enemy)
}

func (e *Engine) spawnPowerUps() {
	if len(e.powerups) >= e.limits.MaxPowerUps {
		return
	}
	if !e.level.ShouldSpawnPowerUp(e.rng, e.cfg.PowerUpSpawnOdds) {
		return
	}

	x := 50 + e.rng.Float64()*(e.cfg.FieldWidth-100)
	e.powerups = append(e.powerups, NewPowerUp(RandomPowerType(e.rng), x, -30))
}

func (e *Engine) advanceEntities() {
	fieldW := e.cfg.FieldWidth
	fieldH := e.cfg.FieldHeight

	n := 0
	for _, enemy := range e.enemies {
		enemy.Update()
		if !enemy.OffField(fieldH) {
			e.enemies[n] = enemy
			n++
		}
	}
	e.enemies = e.enemies[:n]

	n = 0
	for _, b := range e.bullets {
		b.Update()
		if !b.OffField(fieldW, fieldH) {
			e.bullets[n] = b
			n++
		}
	}
	e.bullets = e.bullets[:n]

	n = 0
	for _, pu := range e.powerups {
		pu.Update()
		if !pu.OffField(fieldH) {
			e.powerups[n] = pu
			n++
		}
	}
	e.powerups = e.powerups[:n]
}

// rectOverlap is an axis-aligned box test on entity centers and extents.
func rectOverlap(ax, ay, aw, ah, bx, by, bw, bh float64) bool {
	return ax-aw/2 < bx+bw/2 && ax+aw/2 > bx-bw/2 &&
		ay-ah/2 < by+bh/2 && ay+ah/2 > by-bh/2
}

func (e *Engine) resolveCollisions() {
	// bullets vs enemies: a bullet is spent on first contact, kills
	// credit the owning player
	n := 0
	for _, b := range e.bullets {
		hit := false
		for _, enemy := range e.enemies {
			if enemy.Health <= 0 {
				continue
			}
			if rectOverlap(b.X, b.Y, b.Width, b.Height, enemy.X, enemy.Y, enemy.Width, enemy.Height) {
				hit = true
				enemy.Health -= b.Damage
				if enemy.Health <= 0 {
					if owner := e.playerBySlot(b.Owner); owner != nil {
						owner.Coins += enemy.CoinValue
						owner.Score += enemy.ScoreValue
					}
				}
				break
			}
		}
		if !hit {
			e.bullets[n] = b
			n++
		}
	}
	e.bullets = e.bullets[:n]

	n = 0
	for _, enemy := range e.enemies {
		if enemy.Health <= 0 {
			continue
		}
		e.enemies[n] = enemy
		n++
	}
	e.enemies = e.enemies[:n]

	// enemies vs players: contact destroys the enemy and hurts the player
	n = 0
	for _, enemy := range e.enemies {
		rammed := false
		for _, p := range e.players {
			if p == nil {
				continue
			}
			if rectOverlap(enemy.X, enemy.Y, enemy.Width, enemy.Height, p.X, p.Y, p.Width, p.Height) {
				p.TakeDamage(e.cfg.EnemyContactDmg)
				rammed = true
				break
			}
		}
		if !rammed {
			e.enemies[n] = enemy
			n++
		}
	}
	e.enemies = e.enemies[:n]

	// power-ups vs players: first to touch it keeps it
	n = 0
	for _, pu := range e.powerups {
		taken := false
		for _, p := range e.players {
			if p == nil {
				continue
			}
			if rectOverlap(pu.X, pu.Y, pu.Size, pu.Size, p.X, p.Y, p.Width, p.Height) {
				p.ActivatePowerUp(pu.Type)
				taken = true
				break
			}
		}
		if !taken {
			e.powerups[n] = pu
			n++
		}
	}
	e.powerups = e.powerups[:n]
}

func (e *Engine) playerBySlot(slot int) *Player {
	if slot < 0 || slot >= MaxPlayers {
		return nil
	}
	return e.players[slot]
}

// publish builds the wire snapshot for the current world and makes it the
// latest published one. The returned copy is safe to serialize on the
// broadcast path.
func (e *Engine) publish() protocol.Snapshot {
	snap := e.snapshots.AcquireWrite()

	totalScore, totalCoins := 0, 0
	for _, p := range e.players {
		if p == nil {
			continue
		}
		snap.Players = append(snap.Players, protocol.PlayerState{
			X:         p.X,
			Y:         p.Y,
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			Coins:     p.Coins,
			Score:     p.Score,
		})
		totalScore += p.Score
		totalCoins += p.Coins
	}

	for _, enemy := range e.enemies {
		snap.Enemies = append(snap.Enemies, protocol.EnemyState{
			X:         enemy.X,
			Y:         enemy.Y,
			EnemyType: enemy.Type,
		})
	}

	for _, b := range e.bullets {
		snap.Bullets = append(snap.Bullets, protocol.BulletState{
			X:          b.X,
			Y:          b.Y,
			WeaponType: b.Weapon,
			Damage:     b.Damage,
			Angle:      b.Angle,
			Speed:      b.Speed,
		})
	}

	for _, pu := range e.powerups {
		snap.PowerUps = append(snap.PowerUps, protocol.PowerUpState{
			X:         pu.X,
			Y:         pu.Y,
			PowerType: pu.Type,
		})
	}

	snap.Score = totalScore
	snap.Coins = totalCoins
	snap.Level = e.levelNum
	if e.level != nil {
		snap.TimeRemaining = e.level.TimeRemaining
	}
	snap.GameState = int(e.phase)

	out := *snap
	e.snapshots.PublishWrite()
	return out
}

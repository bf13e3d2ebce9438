package game

import "space-defender/internal/config"

// Player is one of the two co-op seats. Mutated only by the tick engine;
// sessions feed it indirectly through the input mailbox.
type Player struct {
	Slot int

	X, Y   float64
	Width  float64
	Height float64

	Speed     float64
	Health    int
	MaxHealth int
	Damage    int
	FireRate  int

	FireCooldown int
	Coins        int
	Score        int

	// Active power-ups with remaining-duration counters.
	HasShield  bool
	ShieldT    int
	RapidFire  bool
	RapidT     int
	TripleShot bool
	TripleT    int

	// Post-hit invincibility window.
	Invincible bool
	InvincT    int

	cfg config.PlayerConfig
}

// NewPlayer creates a fresh slot at the given spawn position.
func NewPlayer(slot int, x, y float64, cfg config.PlayerConfig) *Player {
	return &Player{
		Slot:      slot,
		X:         x,
		Y:         y,
		Width:     50,
		Height:    60,
		Speed:     cfg.Speed,
		Health:    cfg.Health,
		MaxHealth: cfg.Health,
		Damage:    cfg.Damage,
		FireRate:  cfg.FireRate,
		cfg:       cfg,
	}
}

// Reset returns the slot to round-start state at a spawn position. Coins and
// score persist across rounds within a connection; combat state does not.
func (p *Player) Reset(x, y float64) {
	p.X, p.Y = x, y
	p.Health = p.MaxHealth
	p.FireCooldown = 0
	p.HasShield, p.ShieldT = false, 0
	p.RapidFire, p.RapidT = false, 0
	p.TripleShot, p.TripleT = false, 0
	p.Invincible, p.InvincT = false, 0
}

// TickTimers decays the fire cooldown, power-up durations and the
// invincibility window by one tick.
func (p *Player) TickTimers() {
	if p.FireCooldown > 0 {
		p.FireCooldown--
	}
	if p.ShieldT > 0 {
		p.ShieldT--
		if p.ShieldT == 0 {
			p.HasShield = false
		}
	}
	if p.RapidT > 0 {
		p.RapidT--
		if p.RapidT == 0 {
			p.RapidFire = false
		}
	}
	if p.TripleT > 0 {
		p.TripleT--
		if p.TripleT == 0 {
			p.TripleShot = false
		}
	}
	if p.InvincT > 0 {
		p.InvincT--
		if p.InvincT == 0 {
			p.Invincible = false
		}
	}
}

// Move applies one tick of axis-aligned movement and clamps the ship into the
// field. Two pressed axes move at full speed on both, matching the arcade
// feel of the reference client (no diagonal normalization).
func (p *Player) Move(dx, dy, fieldWidth, fieldHeight float64) {
	p.X += dx
	p.Y += dy

	halfW, halfH := p.Width/2, p.Height/2
	if p.X < halfW {
		p.X = halfW
	}
	if p.X > fieldWidth-halfW {
		p.X = fieldWidth - halfW
	}
	if p.Y < halfH {
		p.Y = halfH
	}
	if p.Y > fieldHeight-halfH {
		p.Y = fieldHeight - halfH
	}
}

// Shoot fires the player's weapon if the cooldown has elapsed, returning the
// spawned bullets (three under triple shot, one otherwise) or nil while on
// cooldown. Resets the cooldown to the active rate of fire.
func (p *Player) Shoot(weapon string) []*Bullet {
	if p.FireCooldown > 0 {
		return nil
	}
	if p.RapidFire {
		p.FireCooldown = p.cfg.RapidFireRate
	} else {
		p.FireCooldown = p.FireRate
	}

	const muzzleSpeed = -10 // negative travels up the field
	noseY := p.Y - p.Height/2

	var bullets []*Bullet
	if p.TripleShot {
		spread := p.cfg.TripleSpreadDeg
		for _, angle := range []float64{0, -spread, spread} {
			if b := NewBullet(weapon, p.X, noseY, muzzleSpeed, p.Damage, angle, p.Slot); b != nil {
				bullets = append(bullets, b)
			}
		}
	} else {
		if b := NewBullet(weapon, p.X, noseY, muzzleSpeed, p.Damage, 0, p.Slot); b != nil {
			bullets = append(bullets, b)
		}
	}
	return bullets
}

// ActivatePowerUp applies a collected power-up to the slot's transient state.
func (p *Player) ActivatePowerUp(powerType string) {
	switch powerType {
	case PowerShield:
		p.HasShield = true
		p.ShieldT = p.cfg.ShieldTicks
	case PowerRapidFire:
		p.RapidFire = true
		p.RapidT = p.cfg.RapidTicks
	case PowerTripleShot:
		p.TripleShot = true
		p.TripleT = p.cfg.TripleTicks
	case PowerHealth:
		p.Health += p.cfg.HealthPickup
		if p.Health > p.MaxHealth {
			p.Health = p.MaxHealth
		}
	}
}

// TakeDamage applies contact damage. A shield absorbs the hit and is consumed
// instead of health; otherwise the slot loses health and gains a short
// invincibility window.
func (p *Player) TakeDamage(amount int) {
	if p.Invincible {
		return
	}
	if p.HasShield {
		p.HasShield = false
		p.ShieldT = 0
		return
	}
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
	p.Invincible = true
	p.InvincT = p.cfg.InvincTicks
}

package game

import (
	"testing"

	"space-defender/internal/config"
)

func testPlayer() *Player {
	return NewPlayer(0, 512, 668, config.DefaultPlayer())
}

func TestShootCooldown(t *testing.T) {
	p := testPlayer()

	bullets := p.Shoot(DefaultWeapon)
	if len(bullets) != 1 {
		t.Fatalf("first shot produced %d bullets, want 1", len(bullets))
	}
	if p.FireCooldown != p.FireRate {
		t.Errorf("FireCooldown = %d after firing, want %d", p.FireCooldown, p.FireRate)
	}

	if got := p.Shoot(DefaultWeapon); got != nil {
		t.Errorf("shot while on cooldown produced %d bullets, want none", len(got))
	}

	for i := 0; i < p.FireRate; i++ {
		p.TickTimers()
	}
	if got := p.Shoot(DefaultWeapon); len(got) != 1 {
		t.Errorf("shot after cooldown elapsed produced %d bullets, want 1", len(got))
	}
}

func TestShootRapidFire(t *testing.T) {
	p := testPlayer()
	p.ActivatePowerUp(PowerRapidFire)

	p.Shoot(DefaultWeapon)
	if p.FireCooldown != config.DefaultPlayer().RapidFireRate {
		t.Errorf("rapid-fire cooldown = %d, want %d", p.FireCooldown, config.DefaultPlayer().RapidFireRate)
	}
}

func TestShootTriple(t *testing.T) {
	p := testPlayer()
	p.ActivatePowerUp(PowerTripleShot)

	bullets := p.Shoot(DefaultWeapon)
	if len(bullets) != 3 {
		t.Fatalf("triple shot produced %d bullets, want 3", len(bullets))
	}

	angles := map[float64]bool{}
	for _, b := range bullets {
		angles[b.Angle] = true
		if b.Owner != p.Slot {
			t.Errorf("bullet owner = %d, want %d", b.Owner, p.Slot)
		}
	}
	spread := config.DefaultPlayer().TripleSpreadDeg
	for _, want := range []float64{0, -spread, spread} {
		if !angles[want] {
			t.Errorf("missing bullet at angle %v, got %v", want, angles)
		}
	}
}

func TestShootUnknownWeapon(t *testing.T) {
	p := testPlayer()
	if got := p.Shoot("railgun"); got != nil {
		t.Errorf("unknown weapon produced %d bullets, want none", len(got))
	}
}

func TestMoveClamping(t *testing.T) {
	p := testPlayer()

	p.X, p.Y = 10, 10
	p.Move(-100, -100, 1024, 768)
	if p.X != p.Width/2 || p.Y != p.Height/2 {
		t.Errorf("clamped to (%v, %v), want (%v, %v)", p.X, p.Y, p.Width/2, p.Height/2)
	}

	p.Move(5000, 5000, 1024, 768)
	if p.X != 1024-p.Width/2 || p.Y != 768-p.Height/2 {
		t.Errorf("clamped to (%v, %v), want (%v, %v)", p.X, p.Y, 1024-p.Width/2, 768-p.Height/2)
	}
}

func TestTakeDamage(t *testing.T) {
	p := testPlayer()

	p.TakeDamage(30)
	if p.Health != 70 {
		t.Errorf("Health = %d after 30 damage, want 70", p.Health)
	}
	if !p.Invincible {
		t.Error("no invincibility window after taking damage")
	}

	// Hits during the window are ignored.
	p.TakeDamage(30)
	if p.Health != 70 {
		t.Errorf("Health = %d after invincible hit, want 70", p.Health)
	}

	for i := 0; i < config.DefaultPlayer().InvincTicks; i++ {
		p.TickTimers()
	}
	if p.Invincible {
		t.Error("invincibility did not expire")
	}

	p.Health = 10
	p.TakeDamage(30)
	if p.Health != 0 {
		t.Errorf("Health = %d, want clamp at 0", p.Health)
	}
}

func TestShieldAbsorbsHit(t *testing.T) {
	p := testPlayer()
	p.ActivatePowerUp(PowerShield)

	p.TakeDamage(30)
	if p.Health != p.MaxHealth {
		t.Errorf("Health = %d after shielded hit, want %d", p.Health, p.MaxHealth)
	}
	if p.HasShield {
		t.Error("shield survived the hit it absorbed")
	}
}

func TestHealthPickupClamp(t *testing.T) {
	p := testPlayer()

	p.Health = 90
	p.ActivatePowerUp(PowerHealth)
	if p.Health != p.MaxHealth {
		t.Errorf("Health = %d, want clamp at %d", p.Health, p.MaxHealth)
	}
}

func TestResetKeepsProgress(t *testing.T) {
	p := testPlayer()
	p.Coins = 120
	p.Score = 4500
	p.Health = 15
	p.ActivatePowerUp(PowerRapidFire)

	p.Reset(341, 668)
	if p.Coins != 120 || p.Score != 4500 {
		t.Errorf("Reset lost progress: coins=%d score=%d", p.Coins, p.Score)
	}
	if p.Health != p.MaxHealth {
		t.Errorf("Health = %d after reset, want %d", p.Health, p.MaxHealth)
	}
	if p.RapidFire {
		t.Error("power-up survived reset")
	}
}

package game

import (
	"math"
	"math/rand"
)

// Power-up type vocabulary.
const (
	PowerRapidFire  = "rapid_fire"
	PowerShield     = "shield"
	PowerTripleShot = "triple_shot"
	PowerHealth     = "health"
)

// PowerTypes lists every spawnable power-up type.
var PowerTypes = []string{PowerRapidFire, PowerShield, PowerTripleShot, PowerHealth}

// PowerUp is a falling collectible. The bob counter is cosmetic and carries no
// gameplay weight.
type PowerUp struct {
	X, Y float64
	Type string
	Size float64

	fallSpeed float64
	bobOffset float64
}

// NewPowerUp creates a power-up of the given type.
func NewPowerUp(powerType string, x, y float64) *PowerUp {
	return &PowerUp{
		X:         x,
		Y:         y,
		Type:      powerType,
		Size:      30,
		fallSpeed: 2,
	}
}

// RandomPowerType picks a spawnable type uniformly.
func RandomPowerType(rng *rand.Rand) string {
	return PowerTypes[rng.Intn(len(PowerTypes))]
}

// Update advances the bob-and-fall animation one tick.
func (p *PowerUp) Update() {
	p.Y += p.fallSpeed
	p.bobOffset += 0.1
	p.Y += math.Sin(p.bobOffset) * 2
}

// OffField reports whether the power-up has fallen past the bottom edge.
func (p *PowerUp) OffField(fieldHeight float64) bool {
	return p.Y-p.Size/2 > fieldHeight
}

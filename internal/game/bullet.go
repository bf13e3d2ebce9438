package game

import "math"

// WeaponSpec is the static stat block for one projectile type.
type WeaponSpec struct {
	Tag    string
	Width  float64
	Height float64
	Speed  float64 // default magnitude; callers pass a signed speed
}

// DefaultWeapon is the starter weapon every slot fires with.
const DefaultWeapon = "default"

// WeaponSpecs is the registry of all weapon types.
var WeaponSpecs = map[string]WeaponSpec{
	"default": {Tag: "default", Width: 6, Height: 15, Speed: 10},
	"laser":   {Tag: "laser", Width: 4, Height: 20, Speed: 15},
	"plasma":  {Tag: "plasma", Width: 12, Height: 12, Speed: 8},
	"missile": {Tag: "missile", Width: 10, Height: 18, Speed: 7},
}

// Bullet is a live projectile. Speed is signed: negative travels up the
// field. Owner is the firing player's slot so kill rewards credit the right
// seat; it is not serialized.
type Bullet struct {
	X, Y   float64
	Weapon string
	Damage int
	Angle  float64 // degrees off vertical
	Speed  float64
	Owner  int
	Width  float64
	Height float64

	vx, vy float64
}

// NewBullet creates a bullet of the given weapon type, or nil for an
// unrecognized tag (callers skip nil rather than crash).
func NewBullet(weapon string, x, y, speed float64, damage int, angle float64, owner int) *Bullet {
	spec, ok := WeaponSpecs[weapon]
	if !ok {
		return nil
	}

	rad := angle * math.Pi / 180
	return &Bullet{
		X:      x,
		Y:      y,
		Weapon: spec.Tag,
		Damage: damage,
		Angle:  angle,
		Speed:  speed,
		Owner:  owner,
		Width:  spec.Width,
		Height: spec.Height,
		vx:     math.Sin(rad) * math.Abs(speed) * 0.3,
		vy:     speed,
	}
}

// Update advances the bullet one tick along its velocity.
func (b *Bullet) Update() {
	b.X += b.vx
	b.Y += b.vy
}

// OffField reports whether the bullet has left any screen edge.
func (b *Bullet) OffField(fieldWidth, fieldHeight float64) bool {
	return b.Y+b.Height/2 < 0 ||
		b.Y-b.Height/2 > fieldHeight ||
		b.X+b.Width/2 < 0 ||
		b.X-b.Width/2 > fieldWidth
}

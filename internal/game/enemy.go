package game

import (
	"math"
	"math/rand"
)

// MovementPattern selects how an enemy advances each tick.
type MovementPattern string

const (
	MoveStraight MovementPattern = "straight"
	MoveSine     MovementPattern = "sine"
	MoveZigzag   MovementPattern = "zigzag"
	MoveSpiral   MovementPattern = "spiral"
)

// EnemySpec is the static stat block for one enemy type. Live enemies are
// stamped from a spec scaled for the current level.
type EnemySpec struct {
	Tag        string
	Width      float64
	Height     float64
	Health     int
	Speed      float64
	Movement   MovementPattern
	CoinValue  int
	ScoreValue int
}

// EnemySpecs is the registry of all enemy types.
var EnemySpecs = map[string]EnemySpec{
	"basic": {
		Tag:        "basic",
		Width:      40,
		Height:     40,
		Health:     30,
		Speed:      2.0,
		Movement:   MoveStraight,
		CoinValue:  10,
		ScoreValue: 100,
	},
	"fast": {
		Tag:        "fast",
		Width:      35,
		Height:     35,
		Health:     20,
		Speed:      4.0,
		Movement:   MoveZigzag,
		CoinValue:  15,
		ScoreValue: 150,
	},
	"tank": {
		Tag:        "tank",
		Width:      60,
		Height:     60,
		Health:     80,
		Speed:      1.0,
		Movement:   MoveStraight,
		CoinValue:  30,
		ScoreValue: 300,
	},
	"weaver": {
		Tag:        "weaver",
		Width:      45,
		Height:     45,
		Health:     40,
		Speed:      2.5,
		Movement:   MoveSine,
		CoinValue:  20,
		ScoreValue: 200,
	},
	"boss": {
		Tag:        "boss",
		Width:      80,
		Height:     80,
		Health:     200,
		Speed:      1.5,
		Movement:   MoveSine,
		CoinValue:  100,
		ScoreValue: 1000,
	},
}

// Enemy is a live hostile entity. Owned exclusively by the tick engine.
type Enemy struct {
	X, Y       float64
	Type       string
	Movement   MovementPattern
	Health     int
	MaxHealth  int
	Speed      float64
	CoinValue  int
	ScoreValue int
	Width      float64
	Height     float64

	counter   int
	direction float64
}

// NewEnemy creates an enemy of the given type scaled for level, or nil for an
// unrecognized tag (callers skip nil rather than crash).
func NewEnemy(tag string, x, y float64, level int, rng *rand.Rand) *Enemy {
	spec, ok := EnemySpecs[tag]
	if !ok {
		return nil
	}

	l := float64(level)
	health := int(float64(spec.Health) * (1 + 0.2*l))
	dir := 1.0
	if rng != nil && rng.Intn(2) == 0 {
		dir = -1.0
	}

	return &Enemy{
		X:          x,
		Y:          y,
		Type:       spec.Tag,
		Movement:   spec.Movement,
		Health:     health,
		MaxHealth:  health,
		Speed:      spec.Speed * (1 + 0.05*l),
		CoinValue:  int(float64(spec.CoinValue) * (1 + 0.1*l)),
		ScoreValue: int(float64(spec.ScoreValue) * (1 + 0.1*l)),
		Width:      spec.Width,
		Height:     spec.Height,
		direction:  dir,
	}
}

// Update advances the enemy one tick along its movement pattern.
func (e *Enemy) Update() {
	e.counter++
	switch e.Movement {
	case MoveSine:
		e.Y += e.Speed
		e.X += math.Sin(float64(e.counter)*0.1) * 3
	case MoveZigzag:
		e.Y += e.Speed
		if e.counter%30 == 0 {
			e.direction = -e.direction
		}
		e.X += e.direction * 2
	case MoveSpiral:
		e.X += math.Cos(float64(e.counter)*0.1) * 2
		e.Y += e.Speed
	default: // straight
		e.Y += e.Speed
	}
}

// OffField reports whether the enemy has fallen past the bottom edge.
func (e *Enemy) OffField(fieldHeight float64) bool {
	return e.Y-e.Height/2 > fieldHeight
}

// RandomEnemyType picks a type tag weighted by the current level band.
// Early levels serve only basics; later bands mix in the tougher types.
func RandomEnemyType(level int, rng *rand.Rand) string {
	switch {
	case level <= 2:
		return "basic"
	case level <= 5:
		pool := []string{"basic", "basic", "fast"}
		return pool[rng.Intn(len(pool))]
	case level <= 10:
		pool := []string{"basic", "fast", "weaver", "tank"}
		return pool[rng.Intn(len(pool))]
	default:
		pool := []string{"basic", "fast", "tank", "weaver", "boss"}
		return pool[rng.Intn(len(pool))]
	}
}

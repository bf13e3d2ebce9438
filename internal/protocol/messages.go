package protocol

// Message schema, matching the snapshot layout the reference client consumes.
//
//	Server → client, once after accept:  {"player_id": 0}
//	Client → server, every client tick:  {"keys":["a","d"],"shoot":true}
//	Client → server, out of band:        {"message":"game_over","player_id":0}
//	Server → client, every server tick:  full world snapshot (Snapshot)

// Movement key vocabulary accepted in ClientMessage.Keys.
const (
	KeyLeft  = "a"
	KeyRight = "d"
	KeyUp    = "w"
	KeyDown  = "s"
)

// ControlGameOver is the only recognized out-of-band control notice.
const ControlGameOver = "game_over"

// Handshake assigns a player its slot id, sent exactly once per connection.
type Handshake struct {
	PlayerID int `json:"player_id"`
}

// ClientMessage is the inbound envelope. A frame is either an input sample
// (Keys/Shoot) or a control notice (Message set); Keys are the currently
// pressed movement keys, not key events.
type ClientMessage struct {
	Keys     []string `json:"keys,omitempty"`
	Shoot    bool     `json:"shoot,omitempty"`
	Message  string   `json:"message,omitempty"`
	PlayerID int      `json:"player_id,omitempty"`
}

// IsControl reports whether the message is an out-of-band notice rather than
// an input sample.
func (m *ClientMessage) IsControl() bool {
	return m.Message != ""
}

// PlayerState is one player slot as serialized in a snapshot.
type PlayerState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"max_health"`
	Coins     int     `json:"coins"`
	Score     int     `json:"score"`
}

// EnemyState is one live enemy as serialized in a snapshot.
type EnemyState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	EnemyType string  `json:"enemy_type"`
}

// BulletState is one live bullet as serialized in a snapshot.
// Speed is signed: negative travels up the field, positive down.
type BulletState struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	WeaponType string  `json:"weapon_type"`
	Damage     int     `json:"damage"`
	Angle      float64 `json:"angle"`
	Speed      float64 `json:"speed"`
}

// PowerUpState is one live power-up as serialized in a snapshot.
type PowerUpState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	PowerType string  `json:"power_type"`
}

// Snapshot is the complete, self-consistent world serialization broadcast
// once per tick. Score and Coins are team totals across both slots.
type Snapshot struct {
	Players       []PlayerState  `json:"players"`
	Enemies       []EnemyState   `json:"enemies"`
	Bullets       []BulletState  `json:"bullets"`
	PowerUps      []PowerUpState `json:"powerups"`
	Score         int            `json:"score"`
	Coins         int            `json:"coins"`
	Level         int            `json:"level"`
	TimeRemaining float64        `json:"time_remaining"`
	GameState     int            `json:"game_state_enum"`
}

package game

// Phase is the coarse round state machine owned by the tick engine:
// Waiting → Playing → {GameOver, LevelComplete} → Waiting, looping across
// rounds. The int values appear on the wire as game_state_enum.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseGameOver
	PhaseLevelComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "WAITING_FOR_PLAYERS"
	case PhasePlaying:
		return "PLAYING"
	case PhaseGameOver:
		return "GAME_OVER"
	case PhaseLevelComplete:
		return "LEVEL_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the phase ends the current round.
func (p Phase) Terminal() bool {
	return p == PhaseGameOver || p == PhaseLevelComplete
}

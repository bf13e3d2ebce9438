// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all game and network settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// PLAY FIELD & SIMULATION
// =============================================================================

// GameConfig holds the play field dimensions and round pacing.
// These values are shared between the server simulation and the client.
type GameConfig struct {
	FieldWidth  float64 // Play field width in pixels
	FieldHeight float64 // Play field height in pixels
	TickRate    int     // Simulation ticks per second

	LevelTimeLimit   int     // Base round time limit in seconds
	LevelTimeBonus   int     // Extra seconds per level
	EnemyContactDmg  int     // Damage a player takes colliding with an enemy
	PowerUpSpawnOdds float64 // Probability of a power-up when its timer fires
}

// DefaultGame returns the default simulation configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		FieldWidth:       1024,
		FieldHeight:      768,
		TickRate:         60,
		LevelTimeLimit:   120,
		LevelTimeBonus:   10,
		EnemyContactDmg:  30,
		PowerUpSpawnOdds: 0.3,
	}
}

// GameFromEnv returns the simulation configuration with environment overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if w := getEnvInt("FIELD_WIDTH", 0); w > 0 {
		cfg.FieldWidth = float64(w)
	}
	if h := getEnvInt("FIELD_HEIGHT", 0); h > 0 {
		cfg.FieldHeight = float64(h)
	}
	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if tl := getEnvInt("LEVEL_TIME_LIMIT", 0); tl > 0 {
		cfg.LevelTimeLimit = tl
	}
	if odds := getEnvFloat("POWERUP_SPAWN_ODDS", -1); odds >= 0 && odds <= 1 {
		cfg.PowerUpSpawnOdds = odds
	}

	return cfg
}

// =============================================================================
// PLAYER TUNING
// =============================================================================

// PlayerConfig holds per-slot combat tuning.
type PlayerConfig struct {
	Speed    float64 // Pixels moved per tick per pressed axis
	Health   int     // Starting and maximum health
	Damage   int     // Base bullet damage
	FireRate int     // Ticks between shots

	RapidFireRate   int     // Cooldown while rapid fire is active
	ShieldTicks     int     // Shield power-up duration
	RapidTicks      int     // Rapid-fire power-up duration
	TripleTicks     int     // Triple-shot power-up duration
	InvincTicks     int     // Post-hit invincibility window
	HealthPickup    int     // Health restored by a health power-up
	TripleSpreadDeg float64 // Angle of the outer triple-shot bullets
}

// DefaultPlayer returns the default player tuning.
func DefaultPlayer() PlayerConfig {
	return PlayerConfig{
		Speed:           6,
		Health:          100,
		Damage:          25,
		FireRate:        10,
		RapidFireRate:   5,
		ShieldTicks:     300,
		RapidTicks:      600,
		TripleTicks:     450,
		InvincTicks:     60,
		HealthPickup:    30,
		TripleSpreadDeg: 15,
	}
}

// =============================================================================
// GAME RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls hard caps on transient entity collections.
type ResourceLimits struct {
	MaxEnemies  int // Live enemies at once
	MaxBullets  int // Live bullets at once
	MaxPowerUps int // Live power-ups at once
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxEnemies:  100,
		MaxBullets:  200,
		MaxPowerUps: 10,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds the game server's network settings.
type ServerConfig struct {
	Host       string // Bind address for the game listener
	Port       int    // TCP port for game-slot connections
	MaxPlayers int    // Concurrent game slots (co-op pair)
	Verbosity  int    // Log verbosity 0=silent 1=low 2=medium 3=high
	HTTPPort   int    // Port for the spectator/state HTTP API (0 = disabled)

	ReadTimeout     time.Duration // Per-receive poll timeout on session sockets
	WriteTimeout    time.Duration // Best-effort broadcast send timeout
	WaitingTimeout  time.Duration // Max time in the lobby before resetting
	WaitingInterval time.Duration // Waiting-state broadcast cadence
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Host:            "127.0.0.1",
		Port:            35555,
		MaxPlayers:      2,
		Verbosity:       1,
		HTTPPort:        3000,
		ReadTimeout:     100 * time.Millisecond,
		WriteTimeout:    250 * time.Millisecond,
		WaitingTimeout:  30 * time.Second,
		WaitingInterval: 200 * time.Millisecond,
	}
}

// ServerFromEnv returns the server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if h := os.Getenv("SERVER_HOST"); h != "" {
		cfg.Host = h
	}
	if p := getEnvInt("SERVER_PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("HTTP_PORT", -1); p >= 0 {
		cfg.HTTPPort = p
	}
	if v := getEnvInt("VERBOSITY", -1); v >= 0 {
		cfg.Verbosity = v
	}
	if s := getEnvInt("WAITING_TIMEOUT_SECONDS", 0); s > 0 {
		cfg.WaitingTimeout = time.Duration(s) * time.Second
	}

	return cfg
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds the headless client's network tuning.
type ClientConfig struct {
	DialTimeout time.Duration // Connection establishment timeout
	PollTimeout time.Duration // Per-receive timeout while draining snapshots
	MaxCatchUp  int           // Snapshots applied per poll to catch up
	MissLimit   int           // Consecutive empty polls before the link is lost
}

// DefaultClient returns the default client configuration.
func DefaultClient() ClientConfig {
	return ClientConfig{
		DialTimeout: 5 * time.Second,
		PollTimeout: 50 * time.Millisecond,
		MaxCatchUp:  3,
		MissLimit:   180, // ~6 seconds at a 30 Hz poll rate
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Game   GameConfig
	Player PlayerConfig
	Server ServerConfig
	Client ClientConfig
	Limits ResourceLimits
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Game:   GameFromEnv(),
		Player: DefaultPlayer(),
		Server: ServerFromEnv(),
		Client: DefaultClient(),
		Limits: DefaultLimits(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// Command client is a headless player for soak tests and filling the second
// co-op seat. It runs a simple autopilot: chase power-ups, dodge toward open
// space, hold the trigger.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"space-defender/internal/client"
	"space-defender/internal/config"
	"space-defender/internal/game"
	"space-defender/internal/protocol"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 no .env file found, using environment variables only")
	}

	host := flag.String("host", "127.0.0.1", "server host")
	port := flag.Int("port", 35555, "server port")
	flag.Parse()

	cfg := config.DefaultClient()
	addr := fmt.Sprintf("%s:%d", *host, *port)

	c, err := client.Dial(addr, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer c.Close()
	log.Printf("🎮 connected to %s as player %d", addr, c.PlayerID+1)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / 30)
	defer ticker.Stop()

	announcedOver := false
	for {
		select {
		case <-quit:
			log.Println("👋 leaving")
			return
		case <-ticker.C:
			if _, err := c.Poll(); err != nil {
				if errors.Is(err, client.ErrLinkLost) {
					log.Println("📡 server went silent, giving up")
				} else {
					log.Printf("📡 connection lost: %v", err)
				}
				return
			}

			switch c.World.Phase {
			case game.PhasePlaying:
				announcedOver = false
				if err := c.SendInput(pickKeys(c.World), true); err != nil {
					log.Printf("📡 send failed: %v", err)
					return
				}
			case game.PhaseGameOver:
				if !announcedOver {
					announcedOver = true
					log.Printf("💀 game over at level %d, score %d", c.World.Level, c.World.Score)
					c.NotifyGameOver()
				}
			case game.PhaseLevelComplete:
				if !announcedOver {
					announcedOver = true
					log.Printf("🏆 level %d complete, score %d", c.World.Level, c.World.Score)
				}
			}
		}
	}
}

// pickKeys is the autopilot: drift toward the nearest power-up, otherwise
// sidestep the nearest enemy column.
func pickKeys(w *client.World) []string {
	me := w.Me()
	if me == nil {
		return nil
	}

	if target, ok := nearestPowerUp(w, me.X); ok {
		return stepToward(me.X, target)
	}
	if threat, ok := nearestEnemy(w, me.X); ok && math.Abs(threat-me.X) < 80 {
		if threat > me.X {
			return []string{protocol.KeyLeft}
		}
		return []string{protocol.KeyRight}
	}
	return nil
}

func nearestPowerUp(w *client.World, x float64) (float64, bool) {
	best, found := 0.0, false
	for _, p := range w.PowerUps {
		if !found || math.Abs(p.X-x) < math.Abs(best-x) {
			best, found = p.X, true
		}
	}
	return best, found
}

func nearestEnemy(w *client.World, x float64) (float64, bool) {
	best, found := 0.0, false
	for _, e := range w.Enemies {
		if !found || math.Abs(e.X-x) < math.Abs(best-x) {
			best, found = e.X, true
		}
	}
	return best, found
}

func stepToward(from, to float64) []string {
	switch {
	case to > from+4:
		return []string{protocol.KeyRight}
	case to < from-4:
		return []string{protocol.KeyLeft}
	default:
		return nil
	}
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"space-defender/internal/api"
	"space-defender/internal/config"
	"space-defender/internal/game"
	"space-defender/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 no .env file found, using environment variables only")
	}

	verbosity := flag.Int("v", -1, "log verbosity (0=silent, 1=low, 2=medium, 3=high)")
	flag.Parse()

	log.Println("🚀 ================================")
	log.Println("🚀  SPACE DEFENDER - GAME SERVER")
	log.Println("🚀  2-player co-op, authoritative")
	log.Println("🚀 ================================")

	cfg := config.Load()

	// Legacy invocation: a bare port as the first positional argument.
	if arg := flag.Arg(0); arg != "" {
		port, err := strconv.Atoi(arg)
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("❌ invalid port %q", arg)
		}
		cfg.Server.Port = port
	}
	if *verbosity >= 0 {
		cfg.Server.Verbosity = *verbosity
	}

	log.Printf("🎮 config: %d TPS, %gx%g field, %d player slots",
		cfg.Game.TickRate, cfg.Game.FieldWidth, cfg.Game.FieldHeight, cfg.Server.MaxPlayers)

	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ debug server disabled: %v", err)
		}
	}

	engine := game.NewEngine(cfg.Game, cfg.Player, cfg.Limits)
	srv := server.New(cfg, engine)
	if err := srv.Start(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	var apiServer *api.Server
	if cfg.Server.HTTPPort > 0 {
		apiServer = api.NewServer(engine.Snapshots(), srv.Registry(), cfg.Server.MaxPlayers)
		go func() {
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
			if err := apiServer.Start(addr); err != nil {
				log.Printf("⚠️ state API stopped: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Println("✅ server ready, press Ctrl+C to stop")
	<-quit

	log.Println("🛑 shutting down...")
	srv.Stop()
	if apiServer != nil {
		apiServer.Stop()
	}
	log.Println("👋 goodbye")
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ashtapada/internal/cluster"
	"ashtapada/internal/config"
	"ashtapada/internal/events"
	"ashtapada/internal/network"
	"ashtapada/internal/services/game"
	"ashtapada/internal/services/room"
	"ashtapada/internal/services/tracker"
	"ashtapada/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Server] Load config: %v", err)
	}

	publisher, err := events.Connect(cfg.NATSURL)
	if err != nil {
		// Events are a side channel; the game runs without them.
		log.Printf("[Server] NATS unavailable, events disabled: %v", err)
	}
	defer publisher.Close()

	rooms := room.NewRegistry()
	games := game.NewStore(game.WithTurnLimit(cfg.TurnTimeLimit))
	identities := tracker.New()
	gateway := session.NewGateway(identities, rooms, games, publisher, cfg.ReconnectGrace)

	server := network.NewServer(gateway)
	gateway.BindScheduler(server.Hub().Do)

	if cfg.ConsulAddr != "" {
		registration, err := cluster.Register(cfg.ConsulAddr, cfg.ServiceName, cfg.ListenAddr)
		if err != nil {
			log.Printf("[Server] Consul registration failed: %v", err)
		} else {
			defer registration.Deregister()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(cfg.ListenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Server] Listen: %v", err)
		}
	case sig := <-quit:
		log.Printf("[Server] Caught %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("[Server] Shutdown: %v", err)
		}
	}
}

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantumquest/quantum-quest-go/internal/api"
	"github.com/quantumquest/quantum-quest-go/internal/config"
	"github.com/quantumquest/quantum-quest-go/internal/engine"
	"github.com/quantumquest/quantum-quest-go/internal/rooms"
	"github.com/quantumquest/quantum-quest-go/internal/store"
	"github.com/quantumquest/quantum-quest-go/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "quantum_quest.yaml", "path to the YAML config file")
	flag.Parse()

	logger := log.New(os.Stdout, "[MAIN] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	sessionSeed := cfg.Game.SessionSeed
	if sessionSeed == "" {
		sessionSeed = randomSeed()
		logger.Printf("session_seed generated=%s", sessionSeed)
	}

	db, err := store.NewSQLiteDB(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatalf("open database %s: %v", cfg.Storage.DatabasePath, err)
	}
	defer db.Close()

	sink := buildSink(cfg, logger)
	manager := rooms.NewManager(engine.NewFactory(sessionSeed))
	server := api.NewServer(manager, db, sink)

	httpServer := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      server.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Printf("listening addr=%s engine_version=%s", cfg.Server.ListenAddr, api.EngineVersion)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}

// buildSink returns a Supabase sink when a URL is configured and a service
// key can be loaded, otherwise the no-op sink.
func buildSink(cfg config.Config, logger *log.Logger) telemetry.Sink {
	if cfg.Supabase.URL == "" {
		return telemetry.NopSink{}
	}

	creds := telemetry.NewCredentials(cfg.Supabase.KeyringName, cfg.Supabase.FallbackPath)
	key, err := creds.GetServiceKey()
	if err != nil {
		logger.Printf("supabase disabled: no service key: %v", err)
		return telemetry.NopSink{}
	}
	return telemetry.NewSupabaseSink(cfg.Supabase.URL, key)
}

func randomSeed() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jdillenkofer/proteus/internal/api"
	"github.com/jdillenkofer/proteus/internal/config"
	"github.com/jdillenkofer/proteus/internal/database"
	"github.com/jdillenkofer/proteus/internal/migrations"
	"github.com/jdillenkofer/proteus/internal/redis"
	"github.com/jdillenkofer/proteus/internal/sim"
	"github.com/jdillenkofer/proteus/internal/store"
	"github.com/jdillenkofer/proteus/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Database is optional: without it the service runs without named snapshots.
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if os.Getenv("MIGRATE_ON_START") == "true" {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
	} else {
		log.Println("[BOOT] DATABASE_URL not set; named snapshots disabled")
	}

	// Redis is optional: without it there is no live snapshot slot.
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("[BOOT] REDIS_URL not set; live snapshot slot disabled")
	}

	st := store.New(db, rdb)

	// Build the simulation. If a live snapshot exists, continue that scene;
	// only generate a fresh one when there is nothing to resume.
	manager := sim.New()
	manager.MaxBalls = cfg.MaxBalls
	manager.SpawnInterval = float64(cfg.SpawnIntervalMS) / 1000

	resumed := false
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 5*time.Second)
	if data, err := st.LoadLive(bootCtx); err == nil {
		if rerr := manager.RestoreJSON(data); rerr != nil {
			log.Printf("[BOOT] live snapshot rejected, starting fresh scene: %v", rerr)
		} else {
			resumed = true
			log.Printf("[BOOT] resumed scene from live snapshot")
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[BOOT] failed to read live snapshot: %v", err)
	}
	cancelBoot()
	if !resumed {
		manager.Init(cfg.CanvasWidth, cfg.CanvasHeight)
	}

	hub := ws.NewHub()
	go hub.Run()

	go runSimLoop(manager, hub, st, cfg)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, manager, hub, st, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Proteus server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runSimLoop advances the simulation at the configured tick rate, broadcasts
// each frame to connected viewers, and periodically writes the live snapshot
// so a restart resumes the scene.
func runSimLoop(m *sim.Manager, hub *ws.Hub, st *store.Store, cfg *config.Config) {
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	dt := 1.0 / float64(tickRate)
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	snapshotEvery := time.Duration(cfg.SnapshotInterval) * time.Second
	if snapshotEvery <= 0 {
		snapshotEvery = 10 * time.Second
	}
	lastSave := time.Now()

	log.Printf("[SIM] tick loop started at %d Hz", tickRate)
	for range ticker.C {
		m.Update(dt)
		hub.Broadcast(m.Frame())

		if time.Since(lastSave) >= snapshotEvery {
			lastSave = time.Now()
			data, err := json.Marshal(m.Snapshot())
			if err != nil {
				log.Printf("[SIM] snapshot marshal failed: %v", err)
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := st.SaveLive(ctx, data); err != nil {
				log.Printf("[SIM] live snapshot save failed: %v", err)
			}
			cancel()
		}
	}
}

package main

import (
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/yourorg/transitfr/internal/config"
	appdb "github.com/yourorg/transitfr/internal/db"
	"github.com/yourorg/transitfr/internal/handlers"
	"github.com/yourorg/transitfr/internal/routes"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := fiber.New()
	app.Use(logger.New())

	// ============================================================================
	// DB CONNECTION
	// ============================================================================
	var dbReady atomic.Bool

	go func() {
		for {
			db, err := appdb.Connect()
			if err != nil {
				log.Printf("db connect error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if err := appdb.EnsureSchema(db); err != nil {
				log.Printf("ensure schema error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if err := appdb.SeedRegions(db, cfg.Regions); err != nil {
				log.Printf("seed regions error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			handlers.Setup(db, cfg.Regions)
			routes.Register(app)
			dbReady.Store(true)
			log.Printf("✅ Database ready, %d regions, routes registered", len(cfg.Regions))
			return
		}
	}()

	// Wait briefly for DB to be ready
	for i := 0; i < 10 && !dbReady.Load(); i++ {
		time.Sleep(500 * time.Millisecond)
	}

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("shutdown signal received, closing server...")

		if err := app.Shutdown(); err != nil {
			log.Printf("error closing server: %v", err)
		}
		os.Exit(0)
	}()

	log.Printf("🚀 Server listening on :%s", cfg.Port)
	log.Println("📍 Available endpoints:")
	log.Println("   GET  /api/health                                    - Health check")
	log.Println("   GET  /api/regions                                   - Active regions")
	log.Println("   GET  /api/regions/:region/networks                  - Stored networks")
	log.Println("   GET  /api/networks?dedup=true                       - All networks, deduplicated")
	log.Println("   GET  /api/regions/:region/operators/:op/routes      - Operator routes")
	log.Println("   GET  /api/regions/:region/routes/:route             - Route details")
	log.Println("   GET  /api/regions/:region/stops/:stop               - Stop with departures")
	log.Println("   GET  /api/regions/:region/stops/nearby              - Stops around a point")
	log.Println("   GET  /api/regions/:region/plan                      - Trip planning")
	log.Println("   POST /api/admin/regions/:region/check               - Reconciliation pass")
	log.Println("   POST /api/admin/networks/import                     - CSV import")
	log.Println("   GET  /api/admin/networks/export                     - CSV export")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitfr/internal/handlers"
	"github.com/yourorg/transitfr/internal/middleware"
)

func Register(app *fiber.App) {
	// ============================================================================
	// PUBLIC API
	// ============================================================================
	api := app.Group("/api")

	// Health check (no rate limiting)
	api.Get("/health", handlers.Health)

	api.Use(middleware.RateLimiter()) // 100 req/min

	// ────────────────────────────────────────────────────────────────────────
	// REGIONS AND NETWORKS
	// ────────────────────────────────────────────────────────────────────────
	api.Get("/regions", handlers.GetRegions)
	api.Get("/regions/:regionID/networks", handlers.GetNetworksByRegion)

	api.Get("/networks", handlers.GetAllNetworks)
	// GET /api/networks?dedup=true collapses networks sharing a display name
	api.Put("/networks/:networkID", handlers.UpdateNetwork)

	// ────────────────────────────────────────────────────────────────────────
	// LIVE TRANSIT DATA (per region, proxied upstream)
	// ────────────────────────────────────────────────────────────────────────
	api.Get("/regions/:regionID/operators/:operatorID/routes", handlers.GetOperatorRoutes)
	api.Get("/regions/:regionID/routes/:routeID", handlers.GetRouteDetails)
	api.Get("/regions/:regionID/routes/:routeID/patterns", handlers.GetRoutePatterns)
	api.Get("/regions/:regionID/patterns/:patternID/stops", handlers.GetPatternStops)

	// nearby must register before :stopID or it would match as a stop id
	api.Get("/regions/:regionID/stops/nearby", handlers.GetStopsNearby)
	api.Get("/regions/:regionID/stops/:stopID", handlers.GetStopDetails)

	api.Get("/regions/:regionID/plan", handlers.GetTripPlan)

	// ============================================================================
	// ADMIN (strict rate limiting)
	// ============================================================================
	admin := api.Group("/admin")
	admin.Use(middleware.StrictRateLimiter()) // 10 req/min

	// Reconciliation fans out upstream queries; tightest budget of all.
	admin.Post("/regions/:regionID/check", middleware.ReconcileRateLimiter(), handlers.CheckRegion)

	admin.Post("/networks/import", handlers.ImportNetworks)
	admin.Get("/networks/export", handlers.ExportNetworks)

	admin.Get("/cache/stats", handlers.GetCacheStats)
	admin.Post("/cache/clear", handlers.ClearCache)
}

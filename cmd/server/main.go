package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"delivery-tracking-service/internal/adapters/cache"
	"delivery-tracking-service/internal/adapters/directions"
	"delivery-tracking-service/internal/adapters/repositories"
	"delivery-tracking-service/internal/api"
	"delivery-tracking-service/internal/config"
	"delivery-tracking-service/internal/platform/db"
	"delivery-tracking-service/internal/ports"
	"delivery-tracking-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQLite/Postgres, Google Directions) behind
// ports and starts the HTTP server.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found (using environment variables)")
	}

	if level, err := logrus.ParseLevel(config.Get("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	databaseURL := config.Get("DATABASE_URL", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/clients.json")
	port := config.Get("PORT", "8080")

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := repositories.InitSchema(conn); err != nil {
		log.WithError(err).Fatal("schema initialization failed")
	}
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		log.WithError(err).Warn("client seeding skipped")
	}

	clients := repositories.NewSqliteClientRepository(conn)
	deliveries := repositories.NewSqliteDeliveryRepository(conn)
	positions := repositories.NewSqlitePositionRepository(conn)
	stopEvents := repositories.NewSqliteStopEventRepository(conn)
	metrics := repositories.NewSqliteMetricsRepository(conn)

	// Routing works without a key; the heuristic answers everything locally.
	var optimizer ports.RouteOptimizer
	if key := strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY")); key != "" {
		google, err := directions.NewGoogleDirectionsOptimizer(key)
		if err != nil {
			log.WithError(err).Fatal("directions optimizer setup failed")
		}
		// Cached responses avoid re-billing identical plans within the TTL.
		optimizer = directions.NewCachingOptimizer(google, cache.NewSqliteRouteCache(conn), log)
		log.Info("directions optimizer enabled")
	} else {
		log.Info("GOOGLE_MAPS_API_KEY not set, using nearest-neighbor ordering only")
	}

	ledger := &services.StopEventLedger{
		Events:     stopEvents,
		Positions:  positions,
		Deliveries: deliveries,
		Log:        log,
	}
	tracker := &services.Tracker{
		Positions: positions,
		Clients:   clients,
		Ledger:    ledger,
	}
	reconciler := &services.ArrivalReconciler{
		Positions:       positions,
		Deliveries:      deliveries,
		Log:             log,
		ThresholdMeters: config.GetFloat("VISIT_THRESHOLD_METERS", services.DefaultVisitThresholdMeters),
		MinDuration:     time.Duration(config.GetInt("VISIT_MIN_SECONDS", 90)) * time.Second,
	}

	router := api.NewRouter(api.Deps{
		Clients:    clients,
		Deliveries: deliveries,
		Positions:  positions,
		Metrics:    metrics,
		Tracker:    tracker,
		Ledger:     ledger,
		Orderer:    services.RouteOrderer{Optimizer: optimizer, Log: log},
		Reconciler: reconciler,
		Log:        log,
	})

	// Write timeout leaves headroom for route planning against the external
	// directions API (bounded itself at 10s).
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.WithField("addr", srv.Addr).Info("server listening")
	log.Fatal(srv.ListenAndServe())
}

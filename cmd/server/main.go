package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/daystate"
	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/provider"
	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/store"
	"github.com/AdarBahar/MyTrip-sub001/internal/api"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/budget"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/db"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
	"github.com/AdarBahar/MyTrip-sub001/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (OSRM, Google Maps, Postgres, Redis) behind ports and starts the HTTP
// server. Only OSRM_BASE_URL is mandatory; everything else degrades to an
// in-process default so local runs need no infrastructure.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := getEnv("PORT", "8080")

	osrmURL := os.Getenv("OSRM_BASE_URL")
	if strings.TrimSpace(osrmURL) == "" {
		log.Fatal("OSRM_BASE_URL is required")
	}
	primary, err := provider.NewOSRMProvider(osrmURL)
	if err != nil {
		log.Fatal(err)
	}

	coverage, err := services.NewCoverage(
		getEnvFloat("COVERAGE_MIN_LAT", 29.0),
		getEnvFloat("COVERAGE_MIN_LNG", 34.0),
		getEnvFloat("COVERAGE_MAX_LAT", 34.0),
		getEnvFloat("COVERAGE_MAX_LNG", 36.0),
	)
	if err != nil {
		log.Fatal(err)
	}

	var secondary ports.RouteProvider
	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		google, err := provider.NewGoogleProvider(key)
		if err != nil {
			log.Fatal(err)
		}
		secondary = google
		log.Printf("secondary backend enabled provider=google")
	} else {
		log.Printf("secondary backend disabled: GOOGLE_MAPS_API_KEY not set")
	}

	versions, cleanup := newVersionStore()
	defer cleanup()

	var dayState ports.DayStateProvider
	if base := os.Getenv("DAYSTATE_BASE_URL"); base != "" {
		dayState, err = daystate.NewHTTPDayState(base)
		if err != nil {
			log.Fatal(err)
		}
	}

	engine := services.NewEngine(services.EngineConfig{
		Normalizer:     services.NewNormalizer(coverage),
		Primary:        primary,
		Secondary:      secondary,
		Budget:         newSecondaryBudget(),
		Policy:         services.DefaultFailoverPolicy(),
		Store:          versions,
		DayState:       dayState,
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
	})

	router := api.NewRouter(engine)

	// Write timeout covers a full compute: retries, backoff and failover.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// newVersionStore picks Postgres when DATABASE_URL is set, otherwise the
// in-memory store for local runs.
func newVersionStore() (ports.VersionStore, func()) {
	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Printf("version store=memory (DATABASE_URL not set)")
		return store.NewMemoryVersionStore(), func() {}
	}

	pool, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("version store=postgres")
	return store.NewPostgresVersionStore(pool), func() { pool.Close() }
}

// newSecondaryBudget meters Google Maps calls. Redis makes the budget shared
// across replicas; without it each process gets its own counter.
func newSecondaryBudget() budget.Budget {
	limit := getEnvInt64("GOOGLE_DAILY_BUDGET", 10000)
	window := 24 * time.Hour

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return budget.NewMemory(limit, 30*time.Second)
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	log.Printf("secondary budget=redis addr=%s limit=%d", addr, limit)
	return budget.NewRedis(client, "routing:google:daily", limit, window)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("%s: invalid float %q: %v", key, v, err)
	}
	return f
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("%s: invalid integer %q: %v", key, v, err)
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s: invalid duration %q: %v", key, v, err)
	}
	return d
}

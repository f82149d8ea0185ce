package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/AdarBahar/MyTrip-sub001/internal/platform/db"
)

// dbtool initializes the route_versions schema. Run it once per environment
// before starting the server against a fresh database.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pool, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	log.Println("Initializing database schema...")
	if err := initSchema(pool); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}

func initSchema(pool *sql.DB) error {
	// The partial unique index backs the one-committed-version-per-day
	// invariant at the storage layer.
	const schema = `
	CREATE TABLE IF NOT EXISTS route_versions (
		id                     TEXT PRIMARY KEY,
		day_id                 TEXT NOT NULL,
		base_token             TEXT NOT NULL DEFAULT '',
		status                 TEXT NOT NULL CHECK (status IN ('committed', 'superseded')),
		total_distance_meters  BIGINT NOT NULL,
		total_duration_seconds BIGINT NOT NULL,
		computed_at            TIMESTAMPTZ NOT NULL,
		payload                JSONB NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS route_versions_one_committed
		ON route_versions (day_id) WHERE status = 'committed';

	CREATE INDEX IF NOT EXISTS route_versions_day_computed
		ON route_versions (day_id, computed_at DESC);
	`

	_, err := pool.Exec(schema)
	return err
}

package main

import (
	"log"

	"delivery-tracking-service/internal/adapters/repositories"
	"delivery-tracking-service/internal/config"
	"delivery-tracking-service/internal/platform/db"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// dbtool prepares a database out of band: schema plus demo clients. Useful
// for CI fixtures and for migrating an existing file before a deploy.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/clients.json")

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding clients...")
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}

// Command clearcache wipes every cached insight record. It is the
// out-of-band administrative clear; the HTTP API never deletes entries.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"dataspark.io/insights-service/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	databaseFile := os.Getenv("DATABASE_FILE")
	if databaseFile == "" {
		databaseFile = "insights_cache.db"
	}

	dbStore, err := store.NewSQLiteStore(databaseFile)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", databaseFile, err)
	}
	defer dbStore.Close()

	cleared, err := dbStore.ClearInsights()
	if err != nil {
		log.Fatalf("Failed to clear insights cache: %v", err)
	}
	log.Printf("Cleared %d records from the insights cache in %s", cleared, databaseFile)
}

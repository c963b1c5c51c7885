package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dataspark.io/insights-service/internal/api"
	"dataspark.io/insights-service/internal/config"
	"dataspark.io/insights-service/internal/core"
	"dataspark.io/insights-service/internal/llm"
	"dataspark.io/insights-service/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseFile)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Initialize the configured generator backend
	generator, err := llm.NewGenerator(config.AppConfig)
	if err != nil {
		log.Fatalf("Failed to initialize LLM backend: %v", err)
	}
	if closer, ok := generator.(interface{ Close() }); ok {
		defer closer.Close()
	}
	log.Printf("Using %s backend for insight generation", generator.Name())

	// Initialize the analyzer with its in-process memo cache
	memo := core.NewMemoCache()
	timeout := time.Duration(config.AppConfig.GenerateTimeout) * time.Second
	analyzer := core.NewAnalyzer(dbStore, generator, memo, timeout)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(analyzer, dbStore, generator.Name())
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,  // Uploads can be sizable
		WriteTimeout: 120 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish before forcing exit.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}

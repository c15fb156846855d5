package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diet-plan-assistant/internal/config"
	"diet-plan-assistant/internal/database"
	"diet-plan-assistant/internal/llm"
	"diet-plan-assistant/internal/metrics"
	"diet-plan-assistant/internal/planner"
	"diet-plan-assistant/internal/session"
	"diet-plan-assistant/internal/usda"
	"diet-plan-assistant/internal/web"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize Infrastructure
	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	if closer, ok := geminiClient.(llm.Closer); ok {
		defer closer.Close()
	}

	usdaClient := usda.NewClientWithBaseURL(cfg.USDAAPIKey, cfg.USDAAPIURL)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	// 3. Initialize Services
	sessions := session.NewStore(session.DefaultTTL)
	go func() {
		for range time.Tick(time.Hour) {
			if n := sessions.CleanupExpired(); n > 0 {
				log.Printf("Cleaned up %d expired sessions", n)
			}
		}
	}()

	dietPlanner := planner.NewPlanner(usdaClient, geminiClient)

	server, err := web.NewServer(sessions, dietPlanner, usdaClient, metricsStore, cfg.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// 4. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Handler(),
	}

	go func() {
		log.Printf("Diet Plan Assistant listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

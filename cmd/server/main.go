package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/easishift/clinic-scheduler-go/pkg/database"
	"github.com/easishift/clinic-scheduler-go/pkg/handlers"
	"github.com/easishift/clinic-scheduler-go/pkg/jobs"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db := database.InitDB()
	h := handlers.NewHandler(db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := jobs.NewCompletionSweeper(db, logger, sweepInterval())
	go sweeper.Start(ctx)

	dispatcher := jobs.NewReminderDispatcher(db, nil, logger, reminderInterval())
	go dispatcher.Start(ctx)

	r := gin.Default()
	h.Routes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}

func sweepInterval() time.Duration {
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return 2 * time.Hour
}

func reminderInterval() time.Duration {
	if raw := os.Getenv("REMINDER_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return 15 * time.Minute
}

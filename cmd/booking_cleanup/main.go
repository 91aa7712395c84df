package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"slotwise/internal/config"
	"slotwise/internal/database"
	"slotwise/internal/pkg/logger"
	"slotwise/internal/repository"
)

// booking_cleanup releases slots held by pending bookings that were never confirmed before they began.
func main() {
	grace := flag.Duration("grace", 0, "keep pending bookings that started less than this long ago")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "slotwise-cleanup"})

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("db connect failed", "error", err)
		os.Exit(1)
	}

	cutoff := time.Now().Add(-*grace)
	n, err := repository.NewBookingRepository(db).ExpireStalePending(context.Background(), cutoff, "Not confirmed before start")
	if err != nil {
		log.Error("expire pending bookings failed", "error", err)
		os.Exit(1)
	}
	log.Info("booking cleanup completed", "expired", n, "cutoff", cutoff.UTC())
}

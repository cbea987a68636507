package main

import (
	"finance_tracker/internal/config" // Custom import path (Config)
	"finance_tracker/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	cfg.SetupLogger()

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
}
